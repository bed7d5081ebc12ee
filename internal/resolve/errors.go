package resolve

import (
	"errors"
	"fmt"
)

// ErrResolution matches every resolution failure via errors.Is.
var ErrResolution = errors.New("resolution failed")

// ModuleNotFoundError means no indexed file matched the specifier.
type ModuleNotFoundError struct {
	Specifier      string
	RequestingFile string
	Kind           Kind
}

func (e *ModuleNotFoundError) Error() string {
	return fmt.Sprintf("cannot find module %q (%s) from %s", e.Specifier, e.Kind, e.RequestingFile)
}

func (e *ModuleNotFoundError) Is(target error) bool {
	return target == ErrResolution
}
