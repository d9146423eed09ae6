package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/lakegate/pkg/format"
)

// NewTablesCommand creates the tables command.
func NewTablesCommand() *cobra.Command {
	var withColumns bool

	cmd := &cobra.Command{
		Use:   "tables <catalog.schema>",
		Short: "List tables in a schema",
		Example: `  lakegate tables main.default

  # Include column listings
  lakegate tables main.default --columns`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			return showSchemaTables(cmd, cmdCtx, args[0], withColumns)
		},
	}

	cmd.Flags().BoolVar(&withColumns, "columns", false, "Include column listings per table")
	return cmd
}

func showSchemaTables(cmd *cobra.Command, cmdCtx *CommandContext, schemaFullName string, withColumns bool) error {
	catalogName, schemaName, ok := strings.Cut(schemaFullName, ".")
	if !ok || catalogName == "" || schemaName == "" {
		return fmt.Errorf("schema name must be <catalog>.<schema>, got %q", schemaFullName)
	}
	details, err := cmdCtx.Explorer.SchemaTables(cmd.Context(), catalogName, schemaName)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), format.SchemaDetails(details, withColumns))
	return err
}
