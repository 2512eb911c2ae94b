// Package testutil provides golden-file comparison helpers and the YAML
// fixture loader used by the test suites. CompareWithGolden wraps any
// JSON-marshalable value (the codegen golden test passes the emitted
// assembly as a string); CompareText compares plain text against a
// .golden file.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// UpdateGoldens controls whether to update golden files.
// Set via environment variable: UPDATE_GOLDENS=true go test ./...
var UpdateGoldens = os.Getenv("UPDATE_GOLDENS") == "true"

// GoldenMeta captures platform information for reproducibility.
type GoldenMeta struct {
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GoldenFile represents a golden test file with metadata.
type GoldenFile struct {
	Meta GoldenMeta  `json:"meta"`
	Data interface{} `json:"data"`
}

// GetGoldenPath returns the path to a golden file under the given
// feature directory (e.g. "typecheck", "codegen").
func GetGoldenPath(feature, name string) string {
	return filepath.Join("testdata", feature, name+".golden.json")
}

// CompareWithGolden compares actual (any JSON-marshalable value, such
// as an annotated-type report or a diagnostic list) against the golden
// file for feature/name, updating it instead when UpdateGoldens is set.
func CompareWithGolden(t *testing.T, feature, name string, actual interface{}) {
	t.Helper()

	goldenPath := GetGoldenPath(feature, name)

	goldenData := GoldenFile{
		Meta: GoldenMeta{
			GoVersion: runtime.Version(),
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
		},
		Data: actual,
	}

	actualJSON, err := marshalDeterministic(goldenData)
	if err != nil {
		t.Fatalf("failed to marshal actual data: %v", err)
	}

	if UpdateGoldens {
		if err := os.MkdirAll(filepath.Dir(goldenPath), 0755); err != nil {
			t.Fatalf("failed to create golden directory: %v", err)
		}
		if err := os.WriteFile(goldenPath, actualJSON, 0644); err != nil {
			t.Fatalf("failed to write golden file: %v", err)
		}
		t.Logf("updated golden file: %s", goldenPath)
		return
	}

	expectedJSON, err := os.ReadFile(goldenPath)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("golden file does not exist: %s\nrun with UPDATE_GOLDENS=true to create", goldenPath)
		}
		t.Fatalf("failed to read golden file: %v", err)
	}

	// Only the data payload is compared: Meta records the toolchain that
	// produced the file for debugging, but two Go versions/OSes emitting
	// identical data should never fail the comparison.
	if diff := diffJSON(goldenDataField(expectedJSON), goldenDataField(actualJSON)); diff != "" {
		t.Errorf("golden file mismatch for %s/%s (-want +got):\n%s", feature, name, diff)
	}
}

// goldenDataField extracts the "data" field from a marshaled GoldenFile,
// re-marshaled so diffJSON can compare it independent of the rest of the
// document's formatting.
func goldenDataField(raw []byte) []byte {
	var wrapper struct {
		Data interface{} `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return raw
	}
	data, err := json.Marshal(wrapper.Data)
	if err != nil {
		return raw
	}
	return data
}

// AssertGoldenJSON compares pre-marshaled JSON output with the golden
// file for feature/name.
func AssertGoldenJSON(t *testing.T, feature, name string, actualJSON []byte) {
	t.Helper()

	var actual interface{}
	if err := json.Unmarshal(actualJSON, &actual); err != nil {
		t.Fatalf("failed to unmarshal JSON: %v", err)
	}

	CompareWithGolden(t, feature, name, actual)
}

// CompareText compares plain-text output (emitted SPIM assembly,
// rendered diagnostics) against a golden file, bypassing the JSON
// wrapper entirely since assembly is not meaningfully structured data.
func CompareText(t *testing.T, feature, name, actual string) {
	t.Helper()

	path := filepath.Join("testdata", feature, name+".golden")

	if UpdateGoldens {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create golden directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(actual), 0644); err != nil {
			t.Fatalf("failed to write golden file: %v", err)
		}
		t.Logf("updated golden file: %s", path)
		return
	}

	want, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("golden file does not exist: %s\nrun with UPDATE_GOLDENS=true to create", path)
		}
		t.Fatalf("failed to read golden file: %v", err)
	}

	if diff := cmp.Diff(string(want), actual); diff != "" {
		t.Errorf("golden file mismatch for %s/%s (-want +got):\n%s", feature, name, diff)
	}
}

// marshalDeterministic marshals v with sorted keys and stable
// indentation so re-running a test never produces a spurious diff.
func marshalDeterministic(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var m interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	return json.MarshalIndent(m, "", "  ")
}

// diffJSON unmarshals both sides and cmp.Diffs the resulting values,
// so the comparison is insensitive to field ordering and whitespace.
func diffJSON(want, got []byte) string {
	var wantData, gotData interface{}
	if err := json.Unmarshal(want, &wantData); err != nil {
		return cmp.Diff(string(want), string(got))
	}
	if err := json.Unmarshal(got, &gotData); err != nil {
		return cmp.Diff(string(want), string(got))
	}
	return cmp.Diff(wantData, gotData)
}

// CreateGoldenTest runs a table of named golden comparisons as
// subtests.
func CreateGoldenTest(t *testing.T, feature string, tests []struct {
	Name string
	Data interface{}
}) {
	t.Helper()

	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			CompareWithGolden(t, feature, tt.Name, tt.Data)
		})
	}
}

// LoadGoldenFile loads and returns a golden file's data.
func LoadGoldenFile(t *testing.T, feature, name string) interface{} {
	t.Helper()

	goldenPath := GetGoldenPath(feature, name)
	data, err := os.ReadFile(goldenPath)
	if err != nil {
		t.Fatalf("failed to load golden file %s: %v", goldenPath, err)
	}

	var golden GoldenFile
	if err := json.Unmarshal(data, &golden); err != nil {
		t.Fatalf("failed to unmarshal golden file: %v", err)
	}

	return golden.Data
}
