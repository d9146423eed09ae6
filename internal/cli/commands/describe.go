package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/lakegate/pkg/format"
	"github.com/leapstack-labs/lakegate/pkg/lineage"
)

// NewDescribeCommand creates the describe command.
func NewDescribeCommand() *cobra.Command {
	var withLineage bool

	cmd := &cobra.Command{
		Use:   "describe <catalog.schema.table>",
		Short: "Show table metadata",
		Long: `Show full metadata for a table: description, partition columns, and
column details. With --lineage the table's upstream/downstream tables
and notebook attributions are resolved from the warehouse audit log and
appended; the lineage query runs on the configured SQL warehouse.`,
		Example: `  lakegate describe main.default.trips

  # Include lineage (runs a warehouse query)
  lakegate describe main.default.trips --lineage`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			return showTableDetails(cmd, cmdCtx, args[0], withLineage)
		},
	}

	cmd.Flags().BoolVar(&withLineage, "lineage", false, "Resolve and append lineage information")
	return cmd
}

func showTableDetails(cmd *cobra.Command, cmdCtx *CommandContext, tableFullName string, withLineage bool) error {
	if err := checkTableName(tableFullName); err != nil {
		return err
	}
	info, err := cmdCtx.Explorer.TableDetails(cmd.Context(), tableFullName)
	if err != nil {
		return err
	}

	// Metadata alone is still useful when the lineage query fails, so a
	// lineage error is reported inline rather than aborting the command.
	var graph *lineage.Graph
	var lineageErr error
	if withLineage {
		g, err := cmdCtx.Fetcher.TableLineage(cmd.Context(), tableFullName)
		if err != nil {
			lineageErr = err
		} else {
			graph = &g
		}
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), format.TableDetails(info, graph, lineageErr))
	return err
}

// checkTableName enforces the three-part naming the catalog requires.
func checkTableName(name string) error {
	parts := strings.Split(name, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return fmt.Errorf("table name must be <catalog>.<schema>.<table>, got %q", name)
	}
	return nil
}
