package graph

import (
	"errors"
	"fmt"
)

// ErrGraph matches every traversal failure via errors.Is.
var ErrGraph = errors.New("graph build failed")

// EntryPointNotFoundError is returned before any traversal when the entry is
// not an indexed file.
type EntryPointNotFoundError struct {
	Path string
}

func (e *EntryPointNotFoundError) Error() string {
	return fmt.Sprintf("entry point %s is not in the file index", e.Path)
}

func (e *EntryPointNotFoundError) Is(target error) bool {
	return target == ErrGraph
}

// GraphError wraps the failure that aborted a build with the file being
// processed. Specifier is empty when reading or extracting File failed.
type GraphError struct {
	File      string
	Specifier string
	Err       error
}

func (e *GraphError) Error() string {
	if e.Specifier == "" {
		return fmt.Sprintf("%s: %v", e.File, e.Err)
	}
	return fmt.Sprintf("%s: resolving %q: %v", e.File, e.Specifier, e.Err)
}

func (e *GraphError) Unwrap() error {
	return e.Err
}

func (e *GraphError) Is(target error) bool {
	return target == ErrGraph
}
