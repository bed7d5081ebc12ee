// Package extract finds the static import specifiers a source file references.
package extract

import (
	"errors"
	"path/filepath"
	"sort"
	"strings"
)

// Extractor scans file contents for statically analyzable specifiers.
type Extractor interface {
	// Language returns the language name (e.g., "javascript")
	Language() string

	// Extensions returns file extensions this extractor handles
	Extensions() []string

	// Extract returns every specifier in source order, duplicates included.
	// It must not touch the file system.
	Extract(content []byte) ([]string, error)
}

// Registry picks an Extractor by file extension.
type Registry struct {
	extractors map[string]Extractor // language name -> extractor
	extToLang  map[string]string    // extension -> language name
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		extractors: make(map[string]Extractor),
		extToLang:  make(map[string]string),
	}
}

// NewDefaultRegistry registers the JavaScript, TypeScript, TSX and JSON extractors.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(NewJavaScriptExtractor())
	r.Register(NewTypeScriptExtractor())
	r.Register(NewTSXExtractor())
	r.Register(JSONExtractor{})

	return r
}

// Register adds an extractor; later registrations win on shared extensions.
func (r *Registry) Register(e Extractor) {
	lang := e.Language()
	r.extractors[lang] = e
	for _, ext := range e.Extensions() {
		r.extToLang[strings.ToLower(ext)] = lang
	}
}

// ExtractorForFile returns the extractor registered for path's extension.
func (r *Registry) ExtractorForFile(path string) (Extractor, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	lang, ok := r.extToLang[ext]
	if !ok {
		return nil, false
	}
	e, ok := r.extractors[lang]
	return e, ok
}

// SupportedExtensions returns every registered extension, sorted.
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.extToLang))
	for ext := range r.extToLang {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Extract runs the extractor for path over content. Files without a
// registered extractor have no dependencies.
func (r *Registry) Extract(path string, content []byte) ([]string, error) {
	e, ok := r.ExtractorForFile(path)
	if !ok {
		return nil, nil
	}

	specifiers, err := e.Extract(content)
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) && parseErr.Path == "" {
			withPath := *parseErr
			withPath.Path = path
			return nil, &withPath
		}
		return nil, err
	}
	return specifiers, nil
}
