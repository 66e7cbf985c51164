package binding

import "fmt"

// CompileError reports a template attribute that cannot be bound.
type CompileError struct {
	File   string
	Line   int
	Column int
	Key    string
	Err    error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s:%d:%d: attribute %s: %v", e.File, e.Line, e.Column, e.Key, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}
