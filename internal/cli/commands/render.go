package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/lakegate/pkg/warehouse"
)

// renderResult writes a query result in the requested format. Failures
// and timeouts render as their message regardless of format, so piped
// output stays parseable.
func renderResult(w io.Writer, res warehouse.QueryResult, format string) error {
	if res.Status != warehouse.StatusSuccess {
		return renderFailure(w, res, format)
	}
	if len(res.Rows) == 0 && res.Message != "" {
		_, _ = fmt.Fprintln(w, res.Message)
		return nil
	}

	switch format {
	case "json":
		return renderJSON(w, res)
	case "csv":
		return renderCSV(w, res.Columns, res.Rows)
	case "md", "markdown":
		return renderMarkdown(w, res.Columns, res.Rows)
	default:
		return renderTable(w, res)
	}
}

// renderFailure surfaces a non-success result as an error so the CLI
// exits non-zero.
func renderFailure(w io.Writer, res warehouse.QueryResult, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(res)
	}
	msg := res.Error
	if msg == "" {
		msg = res.Message
	}
	if res.Details != "" {
		return fmt.Errorf("%s: %s", msg, res.Details)
	}
	return fmt.Errorf("%s", msg)
}

func renderTable(w io.Writer, res warehouse.QueryResult) error {
	if len(res.Rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(res.Columns))
	for i, col := range res.Columns {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	for _, values := range res.Rows {
		row := make(table.Row, len(res.Columns))
		for i := range res.Columns {
			row[i] = formatValue(valueAt(values, i))
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(res.Rows))
	if res.Truncated {
		_, _ = fmt.Fprintln(w, "Warning: result set was truncated by the warehouse.")
	}
	return nil
}

func renderJSON(w io.Writer, res warehouse.QueryResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func renderCSV(w io.Writer, cols []string, rows [][]any) error {
	_, _ = fmt.Fprintln(w, strings.Join(cols, ","))

	for _, values := range rows {
		fields := make([]string, len(cols))
		for i := range cols {
			fields[i] = escapeCSV(formatValue(valueAt(values, i)))
		}
		_, _ = fmt.Fprintln(w, strings.Join(fields, ","))
	}
	return nil
}

func renderMarkdown(w io.Writer, cols []string, rows [][]any) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(cols, " | "))
	seps := make([]string, len(cols))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	for _, values := range rows {
		fields := make([]string, len(cols))
		for i := range cols {
			fields[i] = formatValue(valueAt(values, i))
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(fields, " | "))
	}
	return nil
}

// valueAt tolerates rows shorter than the column list.
func valueAt(values []any, i int) any {
	if i < len(values) {
		return values[i]
	}
	return nil
}

func formatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return fmt.Sprintf("%v", v)
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
