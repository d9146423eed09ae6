package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/lakegate/pkg/format"
)

// NewCatalogsCommand creates the catalogs command.
func NewCatalogsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "catalogs",
		Short:   "List catalogs visible to the caller",
		Example: `  lakegate catalogs`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			return showCatalogs(cmd, cmdCtx)
		},
	}
}

func showCatalogs(cmd *cobra.Command, cmdCtx *CommandContext) error {
	catalogs, err := cmdCtx.Explorer.Catalogs(cmd.Context())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), format.CatalogsSummary(catalogs))
	return err
}
