package testutil

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Fixture describes a single <source, expected outcome> case used to
// drive table-style tests across the classtable/typecheck/codegen
// packages from a human-editable manifest instead of inline Go string
// literals.
type Fixture struct {
	Name string `yaml:"name"`
	// Source is the Cool program text to compile.
	Source string `yaml:"source"`
	// WantErrors, when true, asserts the pipeline reports at least one
	// diagnostic by the phase named in Phase.
	WantErrors bool `yaml:"want_errors"`
	// Phase names which phase is expected to fail: "parser",
	// "classtable" or "typecheck". Ignored when WantErrors is false.
	Phase string `yaml:"phase"`
	// WantType is the expected static type of Main.main's body, checked
	// when WantErrors is false.
	WantType string `yaml:"want_type"`
	// WantLabels lists substrings expected somewhere in the emitted
	// assembly. It is decoded from the manifest, but no fixture runner in
	// this module runs code generation or checks it.
	WantLabels []string `yaml:"want_labels"`
}

// FixtureSet is a named manifest of Fixtures, loaded from a single YAML
// file under testdata/.
type FixtureSet struct {
	Fixtures []Fixture `yaml:"fixtures"`
}

// LoadFixtures reads and parses a fixture manifest from path.
func LoadFixtures(path string) (*FixtureSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture manifest: %w", err)
	}

	var set FixtureSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parse fixture manifest: %w", err)
	}
	return &set, nil
}
