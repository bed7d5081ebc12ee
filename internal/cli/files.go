package cli

import (
	"github.com/spf13/cobra"
)

func RunFiles(cmd *cobra.Command, args []string) error {
	asJSON, err := OptionalBoolFlag(cmd, "json")
	if err != nil {
		return err
	}

	p, err := openProject(cmd, asJSON)
	if err != nil {
		return err
	}

	summary := FilesSummary{
		Roots:   p.index.Roots(),
		Files:   p.index.GetAllFiles(),
		Modules: make(map[string]string),
	}
	for _, name := range p.index.ModuleNames() {
		record, _ := p.index.LookupByModuleName(name)
		summary.Modules[name] = record.Path
	}
	return PrintFilesSummary(cmd.OutOrStdout(), summary, asJSON)
}
