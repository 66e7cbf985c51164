package expr

import (
	"errors"
	"fmt"
)

// ErrUnknownAlias marks an identifier that is neither an alias, a context
// variable nor a field of the root type.
var ErrUnknownAlias = errors.New("unknown alias")

// CompileError reports an expression that cannot be compiled.
type CompileError struct {
	Src string
	Pos int
	Msg string
	Err error

	// Name is the unresolved identifier for ErrUnknownAlias failures.
	Name string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s (in expression %q)", e.Msg, e.Src)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}
