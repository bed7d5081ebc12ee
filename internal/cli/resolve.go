package cli

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/morozRed/reach/internal/graph"
	"github.com/morozRed/reach/internal/resolve"
)

func RunResolve(cmd *cobra.Command, args []string) error {
	asJSON, err := OptionalBoolFlag(cmd, "json")
	if err != nil {
		return err
	}

	p, err := openProject(cmd, asJSON)
	if err != nil {
		return err
	}

	from, err := graph.ResolveEntryPoint(p.index, args[0], p.workDir)
	if err != nil {
		return eris.Wrapf(err, "failed to resolve requesting file %q", args[0])
	}
	target, err := p.resolver.Resolve(from, args[1])
	if err != nil {
		return eris.Wrapf(err, "failed to resolve %q from %s", args[1], from)
	}

	summary := ResolveSummary{
		From:      from,
		Specifier: args[1],
		Kind:      resolve.Classify(args[1]).Kind.String(),
		Path:      target,
	}
	return PrintResolveSummary(cmd.OutOrStdout(), summary, asJSON)
}
