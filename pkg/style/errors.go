package style

import "fmt"

// CompileError is a style sheet error with its source location.
type CompileError struct {
	File   string
	Line   int
	Column int
	Msg    string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Msg)
}
