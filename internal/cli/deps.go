package cli

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/morozRed/reach/internal/graph"
)

func RunDeps(cmd *cobra.Command, args []string) error {
	asJSON, err := OptionalBoolFlag(cmd, "json")
	if err != nil {
		return err
	}

	p, err := openProject(cmd, asJSON)
	if err != nil {
		return err
	}

	file, err := graph.ResolveEntryPoint(p.index, args[0], p.workDir)
	if err != nil {
		return eris.Wrapf(err, "failed to resolve %q", args[0])
	}
	content, err := os.ReadFile(file)
	if err != nil {
		return eris.Wrapf(err, "failed to read %s", file)
	}
	specifiers, err := p.registry.Extract(file, content)
	if err != nil {
		return eris.Wrapf(err, "failed to extract dependencies of %s", file)
	}

	summary := DepsSummary{File: file, Dependencies: make([]Dependency, 0, len(specifiers))}
	for _, specifier := range specifiers {
		target, err := p.resolver.Resolve(file, specifier)
		if err != nil {
			return eris.Wrapf(err, "failed to resolve dependencies of %s", file)
		}
		summary.Dependencies = append(summary.Dependencies, Dependency{Specifier: specifier, Path: target})
	}
	return PrintDepsSummary(cmd.OutOrStdout(), summary, asJSON)
}
