package main

import (
	"errors"

	"github.com/spf13/cobra"

	"wwrando/pkg/game/generator"
	"wwrando/pkg/game/renderer"
)

var errCheckFailed = errors.New("rule set check failed")

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check a rule set",
		Long: `Check loads the rule set, reports locations that cannot be reached even
holding every item, and verifies that the original placement is beatable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.options()
			if err != nil {
				return err
			}
			report, err := generator.Check(cmd.Context(), opts)
			if err != nil {
				return err
			}
			renderer.Check(report)
			if !report.OK() {
				return reportedError{errCheckFailed}
			}
			return nil
		},
	}
}
