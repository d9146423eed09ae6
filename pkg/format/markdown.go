// Package format renders catalog metadata, lineage graphs, and query
// results into Markdown documents for terminal or downstream display.
package format

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/lakegate/pkg/catalog"
	"github.com/leapstack-labs/lakegate/pkg/lineage"
)

// TableDetails renders full table metadata. When graph is non-nil its
// lineage section is appended; lineageErr reports a lineage fetch that
// was attempted but failed.
func TableDetails(info catalog.TableInfo, graph *lineage.Graph, lineageErr error) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Table: **%s**\n", info.FullName)

	if info.Comment != "" {
		fmt.Fprintf(&b, "\n**Description**: %s\n", info.Comment)
	} else {
		b.WriteString("\n**Description**: No description provided.\n")
	}

	b.WriteString("\n## Partition Columns\n")
	if cols := info.PartitionColumns(); len(cols) > 0 {
		for _, col := range cols {
			fmt.Fprintf(&b, "- `%s`\n", col)
		}
	} else {
		b.WriteString("- *This table is not partitioned or partition key info is unavailable.*\n")
	}

	b.WriteString("\n## Table Columns\n")
	writeColumns(&b, info.Columns)

	b.WriteString("\n## Lineage Information\n")
	switch {
	case lineageErr != nil:
		b.WriteString("*Note: Could not retrieve complete lineage information.*\n")
		fmt.Fprintf(&b, "> *Lineage fetch error: %v*\n", lineageErr)
	case graph == nil:
		b.WriteString("- *Lineage fetching skipped as per request.*\n")
	case graph.Empty():
		b.WriteString("- *No table, notebook, or job dependencies found.*\n")
	default:
		writeLineage(&b, *graph)
	}

	return b.String()
}

// SchemaDetails renders a schema and its tables. Column listings are
// included only when includeColumns is set.
func SchemaDetails(details catalog.SchemaDetails, includeColumns bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Schema Details: **%s**\n", details.Schema.FullName)

	description := details.Schema.Comment
	if description == "" {
		description = "No description provided."
	}
	fmt.Fprintf(&b, "**Description**: %s\n", description)

	fmt.Fprintf(&b, "\n## Tables in Schema `%s`\n", details.Schema.Name)
	if len(details.Tables) == 0 {
		b.WriteString("- *No tables found in this schema.*\n")
		return b.String()
	}

	for i, table := range details.Tables {
		fmt.Fprintf(&b, "\n### Table: **%s**\n", table.FullName)
		if table.Comment != "" {
			fmt.Fprintf(&b, "\n**Description**: %s\n", table.Comment)
		}
		if cols := table.PartitionColumns(); len(cols) > 0 {
			b.WriteString("\n#### Partition Columns\n")
			for _, col := range cols {
				fmt.Fprintf(&b, "- `%s`\n", col)
			}
		}
		if includeColumns {
			b.WriteString("\n#### Table Columns\n")
			writeColumns(&b, table.Columns)
		}
		if i < len(details.Tables)-1 {
			b.WriteString("\n=============\n")
		}
	}

	return b.String()
}

// CatalogSummary renders the schemas within one catalog.
func CatalogSummary(details catalog.CatalogDetails) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Catalog Summary: **%s**\n", details.Name)

	if len(details.Schemas) == 0 {
		fmt.Fprintf(&b, "\nNo schemas found in catalog `%s`.\n", details.Name)
		return b.String()
	}

	fmt.Fprintf(&b, "\nFound %d schemas in catalog `%s`:\n", len(details.Schemas), details.Name)
	for _, schema := range details.Schemas {
		name := schema.FullName
		if name == "" {
			name = "Unnamed Schema"
		}
		fmt.Fprintf(&b, "\n## %s\n", name)
		if schema.Comment != "" {
			fmt.Fprintf(&b, "**Description**: %s\n", schema.Comment)
		}
	}

	fmt.Fprintf(&b, "\n**Total Schemas Found in `%s`**: %d\n", details.Name, len(details.Schemas))
	return b.String()
}

// CatalogsSummary renders the list of all visible catalogs.
func CatalogsSummary(catalogs []catalog.CatalogInfo) string {
	var b strings.Builder
	b.WriteString("# Available Catalogs\n")

	if len(catalogs) == 0 {
		b.WriteString("\n- *No catalogs found or accessible.*\n")
		return b.String()
	}

	fmt.Fprintf(&b, "\nFound %d catalog(s):\n", len(catalogs))
	for _, cat := range catalogs {
		fmt.Fprintf(&b, "\n- **`%s`**\n", cat.Name)
		description := cat.Comment
		if description == "" {
			description = "No description provided."
		}
		fmt.Fprintf(&b, "  - **Description**: %s\n", description)
		catalogType := cat.CatalogType
		if catalogType == "" {
			catalogType = "N/A"
		}
		fmt.Fprintf(&b, "  - **Type**: `%s`\n", catalogType)
	}

	return b.String()
}

// LineageReport renders a standalone lineage graph for one table.
func LineageReport(tableFullName string, graph lineage.Graph) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Lineage: **%s**\n", tableFullName)
	if graph.Empty() {
		b.WriteString("\n- *No table, notebook, or job dependencies found.*\n")
		return b.String()
	}
	b.WriteString("\n")
	writeLineage(&b, graph)
	return b.String()
}

func writeLineage(b *strings.Builder, graph lineage.Graph) {
	if len(graph.UpstreamTables) > 0 {
		b.WriteString("\n### Upstream Tables (tables this table reads from):\n")
		for _, t := range graph.UpstreamTables {
			fmt.Fprintf(b, "- `%s`\n", t)
		}
	}
	if len(graph.DownstreamTables) > 0 {
		b.WriteString("\n### Downstream Tables (tables that read from this table):\n")
		for _, t := range graph.DownstreamTables {
			fmt.Fprintf(b, "- `%s`\n", t)
		}
	}
	if len(graph.NotebooksReading) > 0 {
		b.WriteString("\n### Notebooks Reading from this Table:\n")
		for _, ref := range graph.NotebooksReading {
			b.WriteString(notebookLines(ref))
		}
	}
	if len(graph.NotebooksWriting) > 0 {
		b.WriteString("\n### Notebooks Writing to this Table:\n")
		for _, ref := range graph.NotebooksWriting {
			b.WriteString(notebookLines(ref))
		}
	}
}

// notebookLines renders one notebook attribution as a list entry.
func notebookLines(ref lineage.NotebookRef) string {
	var b strings.Builder
	if ref.Resolved() {
		fmt.Fprintf(&b, "- **`%s`**\n", ref.Name)
		fmt.Fprintf(&b, "  - **Path**: `%s`\n", ref.Path)
	} else {
		fmt.Fprintf(&b, "- **%s**\n", ref.Name)
	}
	fmt.Fprintf(&b, "  - **Job**: %s (ID: %s)\n", ref.JobName, ref.JobID)
	if ref.TaskKey != "" {
		fmt.Fprintf(&b, "  - **Task**: %s\n", ref.TaskKey)
	}
	return b.String()
}

func writeColumns(b *strings.Builder, columns []catalog.ColumnInfo) {
	if len(columns) == 0 {
		b.WriteString("  - *No column information available.*\n")
		return
	}
	for _, col := range columns {
		nullable := "not nullable"
		if col.Nullable {
			nullable = "nullable"
		}
		description := ""
		if col.Comment != "" {
			description = ": " + col.Comment
		}
		fmt.Fprintf(b, "  - **%s** (`%s`, %s)%s\n", col.Name, col.Type(), nullable, description)
	}
}
