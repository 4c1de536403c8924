// Command cli compiles filter and transform specification files to SQL from
// the command line, mirroring what the HTTP service does per request.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"reportsql/internal/dialect"
	"reportsql/internal/period"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// sharedFlags are the compilation context flags common to the subcommands.
type sharedFlags struct {
	dialectName string
	nowRaw      string
	weekStart   string
	weekend     string
}

func (f *sharedFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.dialectName, "dialect", "postgres", "target SQL dialect")
	cmd.Flags().StringVar(&f.nowRaw, "now", "", "fix the reference time (RFC 3339); defaults to the wall clock")
	cmd.Flags().StringVar(&f.weekStart, "week-start", "MON", "first day of the week")
	cmd.Flags().StringVar(&f.weekend, "weekend", "sat_sun", "weekend definition: sat_sun or fri_sat")
}

func (f *sharedFlags) dialect() (*dialect.Dialect, error) {
	return dialect.Lookup(f.dialectName)
}

func (f *sharedFlags) calendar() (period.Calendar, error) {
	cal := period.DefaultCalendar()
	day, err := period.ParseWeekday(f.weekStart)
	if err != nil {
		return cal, err
	}
	weekend, err := period.ParseWeekend(f.weekend)
	if err != nil {
		return cal, err
	}
	cal.WeekStartDay = day
	cal.Weekend = weekend
	return cal, nil
}

func (f *sharedFlags) time() (time.Time, error) {
	if f.nowRaw == "" {
		return time.Now(), nil
	}
	return time.Parse(time.RFC3339, f.nowRaw)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "reportsql",
		Short:         "Compile report filter and transform specs to SQL",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCompileCmd())
	root.AddCommand(newParseCmd())
	root.AddCommand(newPeriodCmd())
	return root
}

// loadYAMLAsJSON reads a YAML file and re-encodes it as JSON so the domain
// package's tagged-envelope decoding applies to file input too.
func loadYAMLAsJSON(path string) ([]byte, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc interface{}
	if err := yaml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return json.Marshal(doc)
}

// printYAML renders a result document on stdout.
func printYAML(v interface{}) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}
