package cli

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/morozRed/reach/internal/graph"
)

func RunBuild(cmd *cobra.Command, args []string) error {
	start := time.Now()
	asJSON, err := OptionalBoolFlag(cmd, "json")
	if err != nil {
		return err
	}
	showEdges, err := OptionalBoolFlag(cmd, "edges")
	if err != nil {
		return err
	}

	p, err := openProject(cmd, asJSON)
	if err != nil {
		return err
	}

	entry, err := graph.ResolveEntryPoint(p.index, args[0], p.workDir)
	if err != nil {
		return eris.Wrapf(err, "failed to resolve entry point %q", args[0])
	}

	traverseStart := time.Now()
	progress := p.newProgress("build", p.index.Len(), asJSON)
	builder := &graph.Builder{
		Index:   p.index,
		Resolve: p.resolver.Resolve,
		Extract: p.registry.Extract,
		OnVisit: progress.Tick,
	}
	result, err := builder.Build(entry)
	if err != nil {
		return eris.Wrapf(err, "failed to build dependency graph of %s", entry)
	}
	progress.Done(result.Len())
	p.logf("traverse: %d files, %d edges in %s", result.Len(), len(result.Edges), time.Since(traverseStart).Round(time.Millisecond))

	summary := BuildSummary{
		Entry:      result.Entry,
		Files:      result.Files,
		Edges:      result.Edges,
		DurationMS: time.Since(start).Milliseconds(),
	}
	return PrintBuildSummary(cmd.OutOrStdout(), summary, asJSON, showEdges)
}
