package graph

import (
	"path/filepath"

	"github.com/morozRed/reach/internal/index"
)

// EntryIndex is what ResolveEntryPoint needs from the index.
type EntryIndex interface {
	Index
	LookupByModuleName(name string) (index.FileRecord, bool)
}

// ResolveEntryPoint turns a user-supplied entry into an indexed path. A
// registered module name wins over a path of the same spelling; relative
// paths are joined to baseDir.
func ResolveEntryPoint(idx EntryIndex, entry, baseDir string) (string, error) {
	if record, ok := idx.LookupByModuleName(entry); ok {
		return record.Path, nil
	}

	path := entry
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	canonical, err := index.CanonicalPath(path)
	if err != nil {
		return "", &EntryPointNotFoundError{Path: path}
	}
	if !idx.Exists(canonical) {
		return "", &EntryPointNotFoundError{Path: canonical}
	}
	return canonical, nil
}
