// Package diag implements the compiler's single diagnostic contract:
// every phase from the lexer through the type checker reports errors to
// a shared Sink in the form "file:line: message\n", and the driver
// checks Sink.Count() after each phase to decide whether to keep going.
package diag

import (
	"fmt"
	"io"

	"github.com/sunholo/coolc/internal/ast"
)

// Sink accumulates diagnostics and counts them so callers can implement
// the "abort after a phase that produced any errors" rule.
type Sink struct {
	w      io.Writer
	errors int
}

// NewSink returns a Sink that writes formatted diagnostics to w.
func NewSink(w io.Writer) *Sink {
	return &Sink{w: w}
}

// Errorf reports an error at pos and increments the error count. The
// message is formatted with fmt.Sprintf(format, args...) and must not
// include a trailing newline.
func (s *Sink) Errorf(pos ast.Pos, format string, args ...any) {
	s.errors++
	fmt.Fprintf(s.w, "%s:%d: %s\n", pos.File, pos.Line, fmt.Sprintf(format, args...))
}

// Count returns the number of errors reported so far.
func (s *Sink) Count() int { return s.errors }

// HasErrors reports whether any error has been reported.
func (s *Sink) HasErrors() bool { return s.errors > 0 }
