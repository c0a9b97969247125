package model

import "fmt"

// Position is a 1-based line and column inside a source file.
// The zero value means the position is unknown.
type Position struct {
	Line   int `yaml:"line"`
	Column int `yaml:"column"`
}

// IsKnown reports whether the position points into a file.
func (p Position) IsKnown() bool {
	return p.Line > 0
}

// StackFrame is a single entry of a translated error trace.
type StackFrame struct {
	Message  string   `yaml:"message"`
	Status   string   `yaml:"status,omitempty"`
	Position Position `yaml:"position"`
	Source   string   `yaml:"source,omitempty"`
}

// Location renders the frame position as source:line:column.
func (f StackFrame) Location() string {
	source := f.Source
	if source == "" {
		source = "<unknown>"
	}

	if !f.Position.IsKnown() {
		return source
	}

	return fmt.Sprintf("%s:%d:%d", source, f.Position.Line, f.Position.Column)
}
