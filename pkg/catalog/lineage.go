package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/leapstack-labs/lakegate/pkg/lineage"
	"github.com/leapstack-labs/lakegate/pkg/warehouse"
)

// Audit log column names as returned by the lineage query.
const (
	colSourceTable    = "source_table_full_name"
	colTargetTable    = "target_table_full_name"
	colEntityMetadata = "entity_metadata"
	colEventTime      = "event_time"
)

// LineageSQL builds the audit-log query for one table. The table name is
// embedded as a quoted literal; single quotes are doubled.
func LineageSQL(tableFullName string) string {
	quoted := strings.ReplaceAll(tableFullName, "'", "''")
	return fmt.Sprintf(`SELECT source_table_full_name, target_table_full_name, entity_type, entity_id,
       entity_run_id, entity_metadata, created_by, event_time
FROM system.access.table_lineage
WHERE source_table_full_name = '%s'
   OR target_table_full_name = '%s'
ORDER BY event_time DESC LIMIT 100`, quoted, quoted)
}

// StatementRunner executes one SQL statement to a structured result.
// Satisfied by *warehouse.Coordinator.
type StatementRunner interface {
	Execute(ctx context.Context, sql string) warehouse.QueryResult
}

// LineageFetcher runs the audit-log query for a table and resolves the
// raw rows into a lineage graph.
type LineageFetcher struct {
	runner   StatementRunner
	resolver *lineage.Resolver
}

// NewLineageFetcher creates a fetcher over the given runner and
// resolver.
func NewLineageFetcher(runner StatementRunner, resolver *lineage.Resolver) *LineageFetcher {
	return &LineageFetcher{runner: runner, resolver: resolver}
}

// TableLineage fetches and resolves lineage for one table. A failed or
// blocked statement surfaces as an error; a successful empty result
// yields an empty graph.
func (f *LineageFetcher) TableLineage(ctx context.Context, tableFullName string) (lineage.Graph, error) {
	res := f.runner.Execute(ctx, LineageSQL(tableFullName))
	if res.Status != warehouse.StatusSuccess {
		msg := res.Error
		if res.Details != "" {
			msg += ": " + res.Details
		}
		return lineage.Graph{}, fmt.Errorf("lineage query did not succeed (%s): %s", res.Status, msg)
	}
	return f.resolver.Resolve(ctx, RowsFromResult(res), tableFullName), nil
}

// RowsFromResult zips a query result's columns and value rows into raw
// lineage rows. Unknown columns are ignored; missing ones leave the
// corresponding field empty.
func RowsFromResult(res warehouse.QueryResult) []lineage.Row {
	idx := make(map[string]int, len(res.Columns))
	for i, name := range res.Columns {
		idx[name] = i
	}

	rows := make([]lineage.Row, 0, len(res.Rows))
	for _, values := range res.Rows {
		at := func(col string) any {
			i, ok := idx[col]
			if !ok || i >= len(values) {
				return nil
			}
			return values[i]
		}
		rows = append(rows, lineage.Row{
			SourceTable:    stringAt(at(colSourceTable)),
			TargetTable:    stringAt(at(colTargetTable)),
			EntityMetadata: at(colEntityMetadata),
			EventTime:      stringAt(at(colEventTime)),
		})
	}
	return rows
}

func stringAt(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
