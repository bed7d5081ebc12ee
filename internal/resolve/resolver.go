package resolve

import (
	"fmt"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/morozRed/reach/internal/index"
)

// DefaultDirectoryEntry is the file name probed when a specifier names a directory.
const DefaultDirectoryEntry = "index"

// Index is the part of index.FileIndex the resolver reads.
type Index interface {
	Exists(path string) bool
	LookupByModuleName(name string) (index.FileRecord, bool)
	RootFor(path string) (string, bool)
}

// Options configures a Resolver.
type Options struct {
	// Extensions are probed in order; the first indexed match wins.
	Extensions []string
	// DirectoryEntry defaults to DefaultDirectoryEntry.
	DirectoryEntry string
	// CacheSize bounds the memo of resolved specifiers; <= 0 disables it.
	CacheSize int
}

type cacheKey struct {
	base string
	raw  string
}

// Resolver resolves specifiers against one immutable index. Successful
// resolutions are memoized per (requesting directory, specifier), which is
// sound because the index never changes after the crawl.
type Resolver struct {
	idx        Index
	extensions []string
	entry      string
	cache      *lru.Cache[cacheKey, string]
}

// New creates a Resolver over idx.
func New(idx Index, opts Options) (*Resolver, error) {
	r := &Resolver{
		idx:        idx,
		extensions: index.NormalizeExtensions(opts.Extensions),
		entry:      opts.DirectoryEntry,
	}
	if r.entry == "" {
		r.entry = DefaultDirectoryEntry
	}
	if opts.CacheSize > 0 {
		cache, err := lru.New[cacheKey, string](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create resolver cache: %w", err)
		}
		r.cache = cache
	}
	return r, nil
}

// Resolve is the uncached form: it resolves specifier as written in
// requestingFile, probing extensions in order.
func Resolve(idx Index, requestingFile, specifier string, extensions []string) (string, error) {
	r := &Resolver{idx: idx, extensions: index.NormalizeExtensions(extensions), entry: DefaultDirectoryEntry}
	return r.Resolve(requestingFile, specifier)
}

// Resolve returns the absolute path of the indexed file specifier refers to
// from requestingFile, or a *ModuleNotFoundError.
func (r *Resolver) Resolve(requestingFile, specifier string) (string, error) {
	spec := Classify(specifier)
	key := cacheKey{raw: spec.Raw}
	if spec.Kind == Relative {
		key.base = filepath.Dir(requestingFile)
	}

	if r.cache != nil {
		if path, ok := r.cache.Get(key); ok {
			return path, nil
		}
	}

	path, ok := r.resolve(requestingFile, spec)
	if !ok {
		return "", &ModuleNotFoundError{Specifier: specifier, RequestingFile: requestingFile, Kind: spec.Kind}
	}
	if r.cache != nil {
		r.cache.Add(key, path)
	}
	return path, nil
}

func (r *Resolver) resolve(requestingFile string, spec Specifier) (string, bool) {
	if spec.Kind == Bare {
		if spec.Raw == "" {
			return "", false
		}
		record, ok := r.idx.LookupByModuleName(spec.Raw)
		if !ok {
			return "", false
		}
		return record.Path, true
	}

	for _, candidate := range r.Candidates(requestingFile, spec) {
		if r.idx.Exists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// Candidates lists, in probe order, the paths tried for a relative or
// absolute specifier: the exact path, the path with each extension, then the
// directory entry file with each extension. A specifier ending in a slash,
// or "." and "..", names a directory and only probes the entry file. Bare
// specifiers and absolute paths outside every root have no candidates.
func (r *Resolver) Candidates(requestingFile string, spec Specifier) []string {
	var base string
	switch spec.Kind {
	case Relative:
		base = filepath.Join(filepath.Dir(requestingFile), spec.Raw)
	case Absolute:
		base = filepath.Clean(spec.Raw)
		if _, ok := r.idx.RootFor(base); !ok {
			return nil
		}
	default:
		return nil
	}

	candidates := make([]string, 0, 1+2*len(r.extensions))
	if !namesDirectory(spec.Raw) {
		candidates = append(candidates, base)
		for _, ext := range r.extensions {
			candidates = append(candidates, base+ext)
		}
	}
	for _, ext := range r.extensions {
		candidates = append(candidates, filepath.Join(base, r.entry+ext))
	}
	return candidates
}

func namesDirectory(raw string) bool {
	if strings.HasSuffix(raw, "/") {
		return true
	}
	switch filepath.Base(raw) {
	case ".", "..":
		return true
	}
	return false
}
