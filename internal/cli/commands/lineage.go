package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/lakegate/internal/cli/config"
	"github.com/leapstack-labs/lakegate/pkg/format"
)

// NewLineageCommand creates the lineage command.
func NewLineageCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lineage <catalog.schema.table>",
		Short: "Show table lineage",
		Long: `Resolve a table's lineage from the warehouse audit log.

The audit rows are deduplicated into upstream and downstream table
sets, and notebook entries are attributed to the jobs and tasks that
ran them. Runs a query on the configured SQL warehouse.`,
		Example: `  lakegate lineage main.default.trips`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			return showLineage(cmd, cmdCtx, args[0])
		},
	}
}

func showLineage(cmd *cobra.Command, cmdCtx *CommandContext, tableFullName string) error {
	if err := checkTableName(tableFullName); err != nil {
		return err
	}
	graph, err := cmdCtx.Fetcher.TableLineage(cmd.Context(), tableFullName)
	if err != nil {
		return err
	}
	logger := config.GetLogger(cmd.Context())
	for _, s := range graph.Skipped {
		logger.Debug("skipped lineage row", "index", s.Index, "reason", s.Reason)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), format.LineageReport(tableFullName, graph))
	return err
}
