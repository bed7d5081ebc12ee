package cli

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/morozRed/reach/internal/config"
)

type globalFlags struct {
	configPath string
	verbose    bool
	overrides  config.Overrides
}

func OptionalStringFlag(cmd *cobra.Command, name string) (string, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return "", nil
	}
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", eris.Wrapf(err, "failed to read --%s flag", name)
	}
	return strings.TrimSpace(value), nil
}

func OptionalBoolFlag(cmd *cobra.Command, name string) (bool, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return false, nil
	}
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false, eris.Wrapf(err, "failed to read --%s flag", name)
	}
	return value, nil
}

func optionalStringSliceFlag(cmd *cobra.Command, name string) ([]string, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return nil, nil
	}
	values, err := cmd.Flags().GetStringSlice(name)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read --%s flag", name)
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out, nil
}

func readGlobalFlags(cmd *cobra.Command) (globalFlags, error) {
	var flags globalFlags
	var err error

	if flags.configPath, err = OptionalStringFlag(cmd, "config"); err != nil {
		return flags, err
	}
	if flags.verbose, err = OptionalBoolFlag(cmd, "verbose"); err != nil {
		return flags, err
	}
	if flags.overrides.Roots, err = optionalStringSliceFlag(cmd, "root"); err != nil {
		return flags, err
	}
	if flags.overrides.Extensions, err = optionalStringSliceFlag(cmd, "ext"); err != nil {
		return flags, err
	}
	if flags.overrides.NoCache, err = OptionalBoolFlag(cmd, "no-cache"); err != nil {
		return flags, err
	}
	if cmd != nil && cmd.Flags().Lookup("workers") != nil {
		workers, err := cmd.Flags().GetInt("workers")
		if err != nil {
			return flags, eris.Wrap(err, "failed to read --workers flag")
		}
		if workers < 0 {
			return flags, eris.Errorf("--workers must be >= 0, got %d", workers)
		}
		flags.overrides.Workers = workers
	}
	return flags, nil
}
