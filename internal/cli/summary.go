package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/morozRed/reach/internal/fileutil"
	"github.com/morozRed/reach/internal/graph"
)

type BuildSummary struct {
	Entry      string       `json:"entry"`
	Files      []string     `json:"files"`
	Edges      []graph.Edge `json:"edges"`
	DurationMS int64        `json:"duration_ms"`
}

type FilesSummary struct {
	Roots   []string          `json:"roots"`
	Files   []string          `json:"files"`
	Modules map[string]string `json:"modules"`
}

type Dependency struct {
	Specifier string `json:"specifier"`
	Path      string `json:"path"`
}

type DepsSummary struct {
	File         string       `json:"file"`
	Dependencies []Dependency `json:"dependencies"`
}

type ResolveSummary struct {
	From      string `json:"from"`
	Specifier string `json:"specifier"`
	Kind      string `json:"kind"`
	Path      string `json:"path"`
}

type StatusSummary struct {
	CacheDir     string   `json:"cache_dir"`
	Snapshot     bool     `json:"snapshot"`
	Scanned      int      `json:"scanned"`
	Changed      int      `json:"changed"`
	Deleted      int      `json:"deleted"`
	Unchanged    int      `json:"unchanged"`
	DurationMS   int64    `json:"duration_ms"`
	ChangedFiles []string `json:"changed_files,omitempty"`
	DeletedFiles []string `json:"deleted_files,omitempty"`
}

func PrintBuildSummary(w io.Writer, summary BuildSummary, asJSON, showEdges bool) error {
	if asJSON {
		return fileutil.PrintJSON(w, summary)
	}

	fmt.Fprintf(w, "building %s\n", summary.Entry)
	for _, file := range summary.Files {
		fmt.Fprintln(w, file)
	}
	if showEdges {
		for _, edge := range summary.Edges {
			fmt.Fprintf(w, "%s -> %s\n", edge.From, edge.To)
		}
	}
	fmt.Fprintf(w, "found %d files in %dms\n", len(summary.Files), summary.DurationMS)
	return nil
}

func PrintFilesSummary(w io.Writer, summary FilesSummary, asJSON bool) error {
	if asJSON {
		return fileutil.PrintJSON(w, summary)
	}

	names := make(map[string]string, len(summary.Modules))
	for name, path := range summary.Modules {
		names[path] = name
	}
	for _, file := range summary.Files {
		if name, ok := names[file]; ok {
			fmt.Fprintf(w, "%s\t%s\n", file, name)
			continue
		}
		fmt.Fprintln(w, file)
	}
	return nil
}

func PrintDepsSummary(w io.Writer, summary DepsSummary, asJSON bool) error {
	if asJSON {
		return fileutil.PrintJSON(w, summary)
	}

	for _, dep := range summary.Dependencies {
		fmt.Fprintf(w, "%s -> %s\n", dep.Specifier, dep.Path)
	}
	return nil
}

func PrintResolveSummary(w io.Writer, summary ResolveSummary, asJSON bool) error {
	if asJSON {
		return fileutil.PrintJSON(w, summary)
	}
	_, err := fmt.Fprintln(w, summary.Path)
	return err
}

func PrintStatusSummary(w io.Writer, summary StatusSummary, asJSON bool) error {
	if asJSON {
		return fileutil.PrintJSON(w, summary)
	}

	if !summary.Snapshot {
		fmt.Fprintf(w, "status: no snapshot in %s; every file counts as changed\n", summary.CacheDir)
	}
	fmt.Fprintf(
		w,
		"status: scanned=%d changed=%d deleted=%d unchanged=%d duration=%dms\n",
		summary.Scanned,
		summary.Changed,
		summary.Deleted,
		summary.Unchanged,
		summary.DurationMS,
	)
	if len(summary.ChangedFiles) > 0 {
		fmt.Fprintf(w, "changed files (%d): %s\n", len(summary.ChangedFiles), SummarizePaths(summary.ChangedFiles, 8))
	}
	if len(summary.DeletedFiles) > 0 {
		fmt.Fprintf(w, "deleted files (%d): %s\n", len(summary.DeletedFiles), SummarizePaths(summary.DeletedFiles, 8))
	}
	return nil
}

func SummarizePaths(paths []string, max int) string {
	if len(paths) <= max {
		return strings.Join(paths, ", ")
	}
	return fmt.Sprintf("%s ... (+%d more)", strings.Join(paths[:max], ", "), len(paths)-max)
}
