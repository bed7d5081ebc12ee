// Package index crawls root directories and records every source file in an
// immutable FileIndex, keyed by absolute path and by declared module name.
package index

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileRecord describes one indexed file.
type FileRecord struct {
	Path       string    `json:"path"`
	Root       string    `json:"root"`
	ModuleName string    `json:"module_name,omitempty"`
	ModTime    time.Time `json:"mtime"`
	Size       int64     `json:"size"`
}

// FileIndex is the read-only result of a crawl. All methods are safe for
// concurrent use because nothing mutates the index after New returns.
type FileIndex struct {
	roots      []string
	extensions []string
	files      []string
	byPath     map[string]FileRecord
	byModule   map[string]FileRecord
}

// New merges crawled records into a FileIndex. It is the single merge point
// of the crawl: records are sorted by path, repeated paths (from overlapping
// roots) collapse to one, and the module-name registry is checked for
// collisions. On error no index is returned.
func New(roots, extensions []string, records []FileRecord) (*FileIndex, error) {
	sorted := make([]FileRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Path < sorted[j].Path
	})

	idx := &FileIndex{
		roots:      append([]string(nil), roots...),
		extensions: NormalizeExtensions(extensions),
		files:      make([]string, 0, len(sorted)),
		byPath:     make(map[string]FileRecord, len(sorted)),
		byModule:   make(map[string]FileRecord),
	}

	for _, record := range sorted {
		if _, seen := idx.byPath[record.Path]; seen {
			continue
		}
		if record.ModuleName != "" {
			if existing, taken := idx.byModule[record.ModuleName]; taken {
				return nil, &DuplicateModuleNameError{
					Name:  record.ModuleName,
					Path1: existing.Path,
					Path2: record.Path,
				}
			}
			idx.byModule[record.ModuleName] = record
		}
		idx.byPath[record.Path] = record
		idx.files = append(idx.files, record.Path)
	}

	return idx, nil
}

// Exists reports whether path names an indexed file.
func (x *FileIndex) Exists(path string) bool {
	_, ok := x.byPath[path]
	return ok
}

// GetAllFiles returns every indexed path in crawl order.
func (x *FileIndex) GetAllFiles() []string {
	return append([]string(nil), x.files...)
}

// Record returns the record stored for path.
func (x *FileIndex) Record(path string) (FileRecord, bool) {
	record, ok := x.byPath[path]
	return record, ok
}

// LookupByModuleName returns the single file that declared name.
func (x *FileIndex) LookupByModuleName(name string) (FileRecord, bool) {
	record, ok := x.byModule[name]
	return record, ok
}

// ModuleNames returns the declared module names, sorted.
func (x *FileIndex) ModuleNames() []string {
	names := make([]string, 0, len(x.byModule))
	for name := range x.byModule {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Roots returns the canonical crawl roots.
func (x *FileIndex) Roots() []string {
	return append([]string(nil), x.roots...)
}

// Extensions returns the normalized extension list used for the crawl.
func (x *FileIndex) Extensions() []string {
	return append([]string(nil), x.extensions...)
}

// RootFor returns the configured root that contains path.
func (x *FileIndex) RootFor(path string) (string, bool) {
	for _, root := range x.roots {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return root, true
		}
	}
	return "", false
}

// Len returns the number of indexed files.
func (x *FileIndex) Len() int {
	return len(x.files)
}

// NormalizeExtensions adds a leading dot where missing and drops empty and
// repeated entries, keeping the first occurrence's position.
func NormalizeExtensions(extensions []string) []string {
	seen := make(map[string]bool, len(extensions))
	out := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" || ext == "." {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if seen[ext] {
			continue
		}
		seen[ext] = true
		out = append(out, ext)
	}
	return out
}

// CanonicalPath returns the absolute, symlink-free form of path.
func CanonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return filepath.Clean(abs), nil
		}
		return "", err
	}
	return resolved, nil
}
