package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"reportsql/internal/domain"
	"reportsql/internal/predicate"
	"reportsql/internal/transform"
)

func newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a spec file to SQL fragments",
	}
	cmd.AddCommand(newCompileWhereCmd())
	cmd.AddCommand(newCompileTransformsCmd())
	return cmd
}

func newCompileWhereCmd() *cobra.Command {
	var flags sharedFlags
	var specFile string

	cmd := &cobra.Command{
		Use:   "where",
		Short: "Compile a filter spec file to a WHERE fragment",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := loadYAMLAsJSON(specFile)
			if err != nil {
				return err
			}
			var spec domain.FilterSpec
			if err := json.Unmarshal(body, &spec); err != nil {
				return fmt.Errorf("filter spec: %w", err)
			}

			d, err := flags.dialect()
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

			sql, err := predicate.CompileWhere(spec, predicate.Options{Dialect: d, Now: now, Calendar: cal})
			if err != nil {
				return err
			}
			if sql == "" {
				// No defined filters: no WHERE clause at all.
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "WHERE "+sql)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&specFile, "file", "f", "", "YAML filter spec file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newCompileTransformsCmd() *cobra.Command {
	var flags sharedFlags
	var specFile, base, table, widget string
	var columns []string

	cmd := &cobra.Command{
		Use:   "transforms",
		Short: "Compile a transform spec file against a base table",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := loadYAMLAsJSON(specFile)
			if err != nil {
				return err
			}
			var list domain.TransformList
			if err := json.Unmarshal(body, &list); err != nil {
				return fmt.Errorf("transform spec: %w", err)
			}

			d, err := flags.dialect()
			if err != nil {
				return err
			}

			query := domain.Scope{Table: table, Widget: widget}
			result, err := transform.NewCompiler(d, nil).Compile(base, query, list, columns)
			if err != nil {
				return err
			}
			return printYAML(result)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&specFile, "file", "f", "", "YAML transform spec file")
	cmd.Flags().StringVar(&base, "base", "", "base table name")
	cmd.Flags().StringVar(&table, "table", "", "query table scope")
	cmd.Flags().StringVar(&widget, "widget", "", "query widget scope")
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "available base columns (comma-separated)")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("base")
	return cmd
}
