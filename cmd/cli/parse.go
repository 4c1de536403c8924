package main

import (
	"strings"

	"github.com/spf13/cobra"

	"reportsql/internal/caseparse"
)

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse generated SQL back into its structured form",
	}
	cmd.AddCommand(newParseCaseCmd())
	return cmd
}

func newParseCaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "case <sql>",
		Short: "Parse a CASE expression into predicate groups",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sql := strings.Join(args, " ")
			spec, ok := caseparse.Parse(sql)
			return printYAML(map[string]interface{}{
				"parsed": ok,
				"case":   spec,
			})
		},
	}
	return cmd
}
