package extract

import (
	"errors"
	"fmt"
)

// ErrParse matches every extraction failure via errors.Is.
var ErrParse = errors.New("parse failed")

// ParseError reports input that could not be scanned for dependencies.
// Line and Column are 1-based; zero means unknown.
type ParseError struct {
	Path   string
	Reason string
	Line   int
	Column int
}

func (e *ParseError) Error() string {
	location := e.Path
	if location == "" {
		location = "<input>"
	}
	if e.Line > 0 {
		location = fmt.Sprintf("%s:%d:%d", location, e.Line, e.Column)
	}
	return fmt.Sprintf("%s: %s", location, e.Reason)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}
