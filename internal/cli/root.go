package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "reach",
		Short: "Compute the files reachable from an entry point",
		Long: `Reach crawls your project roots, indexes every source file and its
declared module name (@providesModule), resolves import and require
specifiers, and walks the dependency graph from an entry point.

Configuration is read from reach.yml or reach.yaml in the current
directory or any parent, then REACH_* environment variables, then flags.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to a config file (default: nearest reach.yml)")
	rootCmd.PersistentFlags().StringSlice("root", []string{}, "Root directories to crawl (repeatable)")
	rootCmd.PersistentFlags().StringSlice("ext", []string{}, "File extensions to index, in resolution order")
	rootCmd.PersistentFlags().Int("workers", 0, "Concurrent crawl workers (default: number of CPUs)")
	rootCmd.PersistentFlags().Bool("no-cache", false, "Ignore and do not write the crawl snapshot")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Print per-phase timings to stderr")

	buildCmd := &cobra.Command{
		Use:   "build <entry>",
		Short: "List every file reachable from an entry path or module name",
		Args:  cobra.ExactArgs(1),
		RunE:  RunBuild,
	}
	buildCmd.Flags().Bool("json", false, "Print machine-readable build result")
	buildCmd.Flags().Bool("edges", false, "Also print resolved edges as 'from -> to'")

	filesCmd := &cobra.Command{
		Use:   "files",
		Short: "List every indexed file",
		Args:  cobra.NoArgs,
		RunE:  RunFiles,
	}
	filesCmd.Flags().Bool("json", false, "Print machine-readable file list")

	depsCmd := &cobra.Command{
		Use:   "deps <file>",
		Short: "Show the resolved direct dependencies of one file",
		Args:  cobra.ExactArgs(1),
		RunE:  RunDeps,
	}
	depsCmd.Flags().Bool("json", false, "Print machine-readable dependencies")

	resolveCmd := &cobra.Command{
		Use:   "resolve <from> <specifier>",
		Short: "Resolve one specifier as if it appeared in <from>",
		Args:  cobra.ExactArgs(2),
		RunE:  RunResolve,
	}
	resolveCmd.Flags().Bool("json", false, "Print machine-readable resolution")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show files changed since the last crawl snapshot",
		Args:  cobra.NoArgs,
		RunE:  RunStatus,
	}
	statusCmd.Flags().Bool("json", false, "Print machine-readable status output")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "reach %s\n", version)
		},
	}

	rootCmd.AddCommand(
		buildCmd,
		filesCmd,
		depsCmd,
		resolveCmd,
		statusCmd,
		versionCmd,
	)

	return rootCmd
}
