package graph

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morozRed/reach/internal/extract"
	"github.com/morozRed/reach/internal/index"
	"github.com/morozRed/reach/internal/resolve"
)

// memProject is an in-memory tree rooted at /proj.
type memProject struct {
	files   map[string]string
	modules map[string]string
	reads   int
}

func (p *memProject) builder(t *testing.T) *Builder {
	t.Helper()

	records := make([]index.FileRecord, 0, len(p.files))
	for path := range p.files {
		record := index.FileRecord{Path: path, Root: "/proj"}
		for name, target := range p.modules {
			if target == path {
				record.ModuleName = name
			}
		}
		records = append(records, record)
	}
	idx, err := index.New([]string{"/proj"}, []string{".js", ".json"}, records)
	require.NoError(t, err)

	resolver, err := resolve.New(idx, resolve.Options{Extensions: []string{".js", ".json"}, CacheSize: 64})
	require.NoError(t, err)

	return &Builder{
		Index:   idx,
		Resolve: resolver.Resolve,
		Extract: extract.NewDefaultRegistry().Extract,
		ReadFile: func(path string) ([]byte, error) {
			p.reads++
			content, ok := p.files[path]
			if !ok {
				return nil, os.ErrNotExist
			}
			return []byte(content), nil
		},
	}
}

func TestBuildVisitsClosureInBFSOrder(t *testing.T) {
	p := &memProject{files: map[string]string{
		"/proj/a.js":         "require('./b'); require('./c');",
		"/proj/b.js":         "import d from './lib';",
		"/proj/c.js":         "require('./lib/index');",
		"/proj/lib/index.js": "module.exports = 1;",
		"/proj/unused.js":    "require('./a');",
	}}

	result, err := p.builder(t).Build("/proj/a.js")
	require.NoError(t, err)

	assert.Equal(t, "/proj/a.js", result.Entry)
	assert.Equal(t, []string{"/proj/a.js", "/proj/b.js", "/proj/c.js", "/proj/lib/index.js"}, result.Files)
	assert.Equal(t, []Edge{
		{From: "/proj/a.js", To: "/proj/b.js"},
		{From: "/proj/a.js", To: "/proj/c.js"},
		{From: "/proj/b.js", To: "/proj/lib/index.js"},
		{From: "/proj/c.js", To: "/proj/lib/index.js"},
	}, result.Edges)
	assert.True(t, result.Contains("/proj/lib/index.js"))
	assert.False(t, result.Contains("/proj/unused.js"))
	assert.Equal(t, 4, p.reads)
}

func TestBuildTerminatesOnCycles(t *testing.T) {
	p := &memProject{files: map[string]string{
		"/proj/a.js": "require('./b');",
		"/proj/b.js": "require('./a'); require('./b');",
	}}

	result, err := p.builder(t).Build("/proj/a.js")
	require.NoError(t, err)

	assert.Equal(t, []string{"/proj/a.js", "/proj/b.js"}, result.Files)
	assert.Equal(t, []Edge{
		{From: "/proj/a.js", To: "/proj/b.js"},
		{From: "/proj/b.js", To: "/proj/a.js"},
		{From: "/proj/b.js", To: "/proj/b.js"},
	}, result.Edges)
	assert.Equal(t, 2, p.reads)
}

func TestBuildCollapsesDuplicateReferences(t *testing.T) {
	p := &memProject{files: map[string]string{
		"/proj/a.js": "require('./b'); import './b'; require('./b.js');",
		"/proj/b.js": "",
	}}

	result, err := p.builder(t).Build("/proj/a.js")
	require.NoError(t, err)

	assert.Equal(t, []string{"/proj/a.js", "/proj/b.js"}, result.Files)
	assert.Len(t, result.Edges, 1)
	assert.Equal(t, 2, p.reads)
}

func TestBuildIsDeterministic(t *testing.T) {
	p := &memProject{
		files: map[string]string{
			"/proj/main.js":       "require('Widget'); require('./util'); require('./data.json');",
			"/proj/ui/widget.js":  "/** @providesModule Widget */\nrequire('../util');",
			"/proj/util/index.js": "require('../data');",
			"/proj/data.json":     "{}",
		},
		modules: map[string]string{"Widget": "/proj/ui/widget.js"},
	}

	first, err := p.builder(t).Build("/proj/main.js")
	require.NoError(t, err)
	assert.Equal(t, []string{"/proj/main.js", "/proj/ui/widget.js", "/proj/util/index.js", "/proj/data.json"}, first.Files)

	for i := 0; i < 5; i++ {
		again, err := p.builder(t).Build("/proj/main.js")
		require.NoError(t, err)
		assert.Equal(t, first.Files, again.Files)
		assert.Equal(t, first.Edges, again.Edges)
	}
}

func TestBuildMissingEntryPointDoesNotTraverse(t *testing.T) {
	p := &memProject{files: map[string]string{"/proj/a.js": ""}}

	result, err := p.builder(t).Build("/proj/nope.js")
	assert.Nil(t, result)

	var notFound *EntryPointNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "/proj/nope.js", notFound.Path)
	assert.True(t, errors.Is(err, ErrGraph))
	assert.Zero(t, p.reads)
}

func TestBuildAbortsOnUnresolvableSpecifier(t *testing.T) {
	p := &memProject{files: map[string]string{
		"/proj/a.js": "require('./b');",
		"/proj/b.js": "require('./missing');",
	}}

	result, err := p.builder(t).Build("/proj/a.js")
	assert.Nil(t, result)

	var graphErr *GraphError
	require.ErrorAs(t, err, &graphErr)
	assert.Equal(t, "/proj/b.js", graphErr.File)
	assert.Equal(t, "./missing", graphErr.Specifier)

	var notFound *resolve.ModuleNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "./missing", notFound.Specifier)
	assert.Equal(t, "/proj/b.js", notFound.RequestingFile)
	assert.True(t, errors.Is(err, resolve.ErrResolution))
	assert.True(t, errors.Is(err, ErrGraph))
}

func TestBuildAbortsOnParseError(t *testing.T) {
	p := &memProject{files: map[string]string{
		"/proj/a.js":     "require('./bad.json');",
		"/proj/bad.json": "{\"a\":",
	}}

	_, err := p.builder(t).Build("/proj/a.js")

	var graphErr *GraphError
	require.ErrorAs(t, err, &graphErr)
	assert.Equal(t, "/proj/bad.json", graphErr.File)
	assert.Empty(t, graphErr.Specifier)
	assert.True(t, errors.Is(err, extract.ErrParse))
}

func TestBuildAbortsOnReadError(t *testing.T) {
	p := &memProject{files: map[string]string{"/proj/a.js": ""}}
	b := p.builder(t)
	b.ReadFile = func(string) ([]byte, error) { return nil, os.ErrPermission }

	_, err := b.Build("/proj/a.js")
	assert.True(t, errors.Is(err, os.ErrPermission))
	assert.True(t, errors.Is(err, ErrGraph))
}

func TestBuildReadsFromDisk(t *testing.T) {
	dir, err := index.CanonicalPath(t.TempDir())
	require.NoError(t, err)
	mustWriteFile(t, filepath.Join(dir, "main.js"), "import './lib/helper';")
	mustWriteFile(t, filepath.Join(dir, "lib", "helper.js"), "export const x = 1;")

	idx, _, err := index.Build(index.Options{Roots: []string{dir}, Extensions: []string{".js"}})
	require.NoError(t, err)
	resolver, err := resolve.New(idx, resolve.Options{Extensions: idx.Extensions()})
	require.NoError(t, err)

	visited := make([]string, 0)
	b := &Builder{
		Index:   idx,
		Resolve: resolver.Resolve,
		Extract: extract.NewDefaultRegistry().Extract,
		OnVisit: func(path string) { visited = append(visited, path) },
	}
	result, err := b.Build(filepath.Join(dir, "main.js"))
	require.NoError(t, err)

	want := []string{filepath.Join(dir, "main.js"), filepath.Join(dir, "lib", "helper.js")}
	assert.Equal(t, want, result.Files)
	assert.Equal(t, want, visited)
}

func TestResolveEntryPoint(t *testing.T) {
	dir, err := index.CanonicalPath(t.TempDir())
	require.NoError(t, err)
	mustWriteFile(t, filepath.Join(dir, "src", "main.js"), "")
	mustWriteFile(t, filepath.Join(dir, "app.js"), "/** @providesModule App */")

	idx, _, err := index.Build(index.Options{Roots: []string{dir}, Extensions: []string{".js"}})
	require.NoError(t, err)

	got, err := ResolveEntryPoint(idx, "App", "/elsewhere")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "app.js"), got)

	got, err = ResolveEntryPoint(idx, filepath.Join("src", "main.js"), dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "src", "main.js"), got)

	got, err = ResolveEntryPoint(idx, filepath.Join(dir, "src", "main.js"), "/elsewhere")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "src", "main.js"), got)

	_, err = ResolveEntryPoint(idx, "src/absent.js", dir)
	var notFound *EntryPointNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, filepath.Join(dir, "src", "absent.js"), notFound.Path)
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}
