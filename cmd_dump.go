package main

import (
	"github.com/spf13/cobra"

	"wwrando/pkg/game/devtools"
	"wwrando/pkg/game/generator"
	"wwrando/pkg/game/setup"
)

func newDumpCmd(a *app) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:    "dump",
		Short:  "Write a debug dump of the loaded rule set",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.options()
			if err != nil {
				return err
			}
			worlds, err := generator.LoadWorlds(opts.Data, 1)
			if err != nil {
				return err
			}
			w := worlds[0]
			if err := w.EnableSettings(opts.Config.Settings...); err != nil {
				return err
			}
			setup.MarkProgressionLocations(w)

			path, err := devtools.DumpRulesToFile(outPath, w, generator.EveryItem(w))
			if err != nil {
				return err
			}
			a.run.AddOutput(path)
			a.logMessage("rule set dumped to LOC{%s}", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&outPath, "out", devtools.RulesDumpFilename, "Dump file")
	return cmd
}
