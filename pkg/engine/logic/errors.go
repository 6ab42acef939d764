package logic

import (
	"errors"
	"fmt"
)

// Parse and validation failures
var (
	ErrUnknownSymbol  = errors.New("unknown symbol")
	ErrArity          = errors.New("wrong number of arguments")
	ErrUnbalanced     = errors.New("unbalanced parentheses")
	ErrMixedOperators = errors.New("mixed and/or at the same nesting level")
	ErrEmpty          = errors.New("empty expression")
	ErrUnknownKind    = errors.New("unknown requirement kind")
	ErrAccessCycle    = errors.New("can_access cycle")
	ErrMacroCycle     = errors.New("macro cycle")
)

// ParseError reports where in an expression parsing failed
type ParseError struct {
	Expr   string
	Pos    int
	Err    error
	Detail string
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%v at offset %d in %q", e.Err, e.Pos, e.Expr)
	}
	return fmt.Sprintf("%v at offset %d in %q: %s", e.Err, e.Pos, e.Expr, e.Detail)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
