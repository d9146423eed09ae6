package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Format string
	Input  string
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Execute read-only SQL on the warehouse",
		Long: `Execute a SQL statement against the configured SQL warehouse.

Statements are submitted asynchronously and polled until they reach a
terminal state. Write and DDL statements (DROP, DELETE, INSERT, ...)
are rejected locally before submission.

When invoked without arguments, enters interactive REPL mode.`,
		Example: `  # Execute SQL directly
  lakegate query "SELECT * FROM samples.nyctaxi.trips LIMIT 10"

  # Read SQL from a file
  lakegate query --input report.sql

  # Output as JSON
  lakegate query "SELECT current_catalog()" --format json

  # Interactive mode
  lakegate query`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: table, json, csv, md")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	format := resolveFormat(opts.Format, cmdCtx.Cfg)

	// Determine SQL source
	var sqlText string

	switch {
	case len(args) > 0:
		sqlText = strings.Join(args, " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		sqlText = string(content)
	case !isTerminal(os.Stdin):
		// Read from stdin (piped input)
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		sqlText = string(content)
	default:
		// No input, TTY detected - enter REPL mode
		return runQueryREPL(cmd, cmdCtx, format)
	}

	res := cmdCtx.Coordinator.Execute(cmd.Context(), sqlText)
	return renderResult(cmd.OutOrStdout(), res, format)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
