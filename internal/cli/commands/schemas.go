package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/lakegate/pkg/format"
)

// NewSchemasCommand creates the schemas command.
func NewSchemasCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "schemas <catalog>",
		Short:   "List schemas in a catalog",
		Example: `  lakegate schemas main`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			return showCatalogSchemas(cmd, cmdCtx, args[0])
		},
	}
}

func showCatalogSchemas(cmd *cobra.Command, cmdCtx *CommandContext, catalogName string) error {
	details, err := cmdCtx.Explorer.CatalogSchemas(cmd.Context(), catalogName)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), format.CatalogSummary(details))
	return err
}
