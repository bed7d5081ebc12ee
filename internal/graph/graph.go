// Package graph computes the set of files reachable from an entry point.
package graph

import (
	"os"
)

// Index is the part of index.FileIndex the traversal reads.
type Index interface {
	Exists(path string) bool
}

// ResolveFunc maps a specifier found in requestingFile to an indexed path.
type ResolveFunc func(requestingFile, specifier string) (string, error)

// ExtractFunc returns the specifiers referenced by path, in source order.
type ExtractFunc func(path string, content []byte) ([]string, error)

// Edge is one resolved dependency.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Result is the transitive closure of an entry point.
type Result struct {
	Entry string
	// Files are every visited path in BFS order, entry first.
	Files []string
	// Edges are the distinct (from, to) pairs in discovery order.
	Edges []Edge

	visited map[string]bool
}

// Contains reports whether path was reached from the entry.
func (r *Result) Contains(path string) bool {
	return r.visited[path]
}

// Len returns the number of reachable files.
func (r *Result) Len() int {
	return len(r.Files)
}

// Builder walks the dependency graph of an index. ReadFile defaults to
// os.ReadFile; OnVisit, when set, is called once per file as it is marked
// visited.
type Builder struct {
	Index    Index
	Resolve  ResolveFunc
	Extract  ExtractFunc
	ReadFile func(path string) ([]byte, error)
	OnVisit  func(path string)
}

// Build runs a Builder with the default file reader.
func Build(entry string, idx Index, resolveFn ResolveFunc, extractFn ExtractFunc) (*Result, error) {
	b := &Builder{Index: idx, Resolve: resolveFn, Extract: extractFn}
	return b.Build(entry)
}

// Build traverses breadth-first from entry. Any read, extraction or
// resolution failure aborts the whole build; no partial result is returned.
func (b *Builder) Build(entry string) (*Result, error) {
	if !b.Index.Exists(entry) {
		return nil, &EntryPointNotFoundError{Path: entry}
	}

	readFile := b.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}

	result := &Result{
		Entry:   entry,
		Files:   make([]string, 0),
		Edges:   make([]Edge, 0),
		visited: make(map[string]bool),
	}
	seenEdges := make(map[Edge]bool)

	// Duplicates may be queued; the visited check at pop time drops them.
	queue := []string{entry}
	for len(queue) > 0 {
		file := queue[0]
		queue = queue[1:]
		if result.visited[file] {
			continue
		}
		result.visited[file] = true
		result.Files = append(result.Files, file)
		if b.OnVisit != nil {
			b.OnVisit(file)
		}

		content, err := readFile(file)
		if err != nil {
			return nil, &GraphError{File: file, Err: err}
		}
		specifiers, err := b.Extract(file, content)
		if err != nil {
			return nil, &GraphError{File: file, Err: err}
		}

		for _, specifier := range specifiers {
			target, err := b.Resolve(file, specifier)
			if err != nil {
				return nil, &GraphError{File: file, Specifier: specifier, Err: err}
			}

			edge := Edge{From: file, To: target}
			if !seenEdges[edge] {
				seenEdges[edge] = true
				result.Edges = append(result.Edges, edge)
			}
			queue = append(queue, target)
		}
	}

	return result, nil
}
