package index

import (
	"errors"
	"fmt"
)

// ErrIndex matches every index-construction failure via errors.Is.
var ErrIndex = errors.New("index construction failed")

// DuplicateModuleNameError is returned when two files declare the same module
// name. Path1 sorts before Path2.
type DuplicateModuleNameError struct {
	Name  string
	Path1 string
	Path2 string
}

func (e *DuplicateModuleNameError) Error() string {
	return fmt.Sprintf("duplicate module name %q declared by %s and %s", e.Name, e.Path1, e.Path2)
}

func (e *DuplicateModuleNameError) Is(target error) bool {
	return target == ErrIndex
}

// CrawlError wraps a file-system failure hit while scanning a root.
type CrawlError struct {
	Path string
	Err  error
}

func (e *CrawlError) Error() string {
	return fmt.Sprintf("failed to crawl %s: %v", e.Path, e.Err)
}

func (e *CrawlError) Unwrap() error {
	return e.Err
}

func (e *CrawlError) Is(target error) bool {
	return target == ErrIndex
}
