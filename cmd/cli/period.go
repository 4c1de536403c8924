package main

import (
	"github.com/spf13/cobra"

	"reportsql/internal/period"
)

func newPeriodCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "period",
		Short: "Resolve calendar period presets",
	}
	cmd.AddCommand(newPeriodResolveCmd())
	cmd.AddCommand(newPeriodListCmd())
	return cmd
}

func newPeriodResolveCmd() *cobra.Command {
	var flags sharedFlags

	cmd := &cobra.Command{
		Use:   "resolve <preset>",
		Short: "Resolve a preset to its half-open date range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			preset, err := period.ParsePreset(args[0])
			if err != nil {
				return err
			}
			cal, err := flags.calendar()
			if err != nil {
				return err
			}
			now, err := flags.time()
			if err != nil {
				return err
			}

			rng, err := period.Resolve(preset, now, cal)
			if err != nil {
				return err
			}
			return printYAML(map[string]string{
				"preset": string(preset),
				"start":  rng.StartDate(),
				"end":    rng.EndDate(),
			})
		},
	}

	flags.register(cmd)
	return cmd
}

func newPeriodListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the known presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := make([]string, 0, len(period.Presets()))
			for _, p := range period.Presets() {
				names = append(names, string(p))
			}
			return printYAML(names)
		},
	}
}
