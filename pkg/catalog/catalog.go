// Package catalog exposes structural metadata of the remote catalog:
// catalogs, schemas, tables and their columns, plus per-table lineage
// derived from the warehouse audit log.
package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
)

// ColumnInfo describes one table column. TypeText is the raw type as
// rendered by the catalog; TypeName its normalized form. PartitionIndex
// is nil for non-partition columns.
type ColumnInfo struct {
	Name           string `json:"name"`
	TypeText       string `json:"type_text,omitempty"`
	TypeName       string `json:"type_name,omitempty"`
	Nullable       bool   `json:"nullable"`
	Comment        string `json:"comment,omitempty"`
	PartitionIndex *int   `json:"partition_index,omitempty"`
}

// Type returns the best available type label for display.
func (c ColumnInfo) Type() string {
	switch {
	case c.TypeText != "":
		return c.TypeText
	case c.TypeName != "":
		return c.TypeName
	default:
		return "N/A"
	}
}

// TableInfo describes one table.
type TableInfo struct {
	FullName string       `json:"full_name"`
	Comment  string       `json:"comment,omitempty"`
	Columns  []ColumnInfo `json:"columns,omitempty"`
}

// PartitionColumns returns the partition column names in partition
// order.
func (t TableInfo) PartitionColumns() []string {
	type pcol struct {
		name  string
		index int
	}
	var cols []pcol
	for _, c := range t.Columns {
		if c.PartitionIndex != nil {
			cols = append(cols, pcol{name: c.Name, index: *c.PartitionIndex})
		}
	}
	sort.Slice(cols, func(i, j int) bool { return cols[i].index < cols[j].index })
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		names = append(names, c.name)
	}
	return names
}

// SchemaInfo describes one schema.
type SchemaInfo struct {
	FullName string `json:"full_name"`
	Name     string `json:"name"`
	Comment  string `json:"comment,omitempty"`
}

// CatalogInfo describes one catalog.
type CatalogInfo struct {
	Name        string `json:"name"`
	Comment     string `json:"comment,omitempty"`
	CatalogType string `json:"catalog_type,omitempty"`
}

// MetadataClient is the remote catalog metadata service consumed by the
// Explorer.
type MetadataClient interface {
	GetTable(ctx context.Context, fullName string) (TableInfo, error)
	ListTables(ctx context.Context, catalogName, schemaName string) ([]TableInfo, error)
	GetSchema(ctx context.Context, fullName string) (SchemaInfo, error)
	ListSchemas(ctx context.Context, catalogName string) ([]SchemaInfo, error)
	ListCatalogs(ctx context.Context) ([]CatalogInfo, error)
}

// SchemaDetails is a schema together with its tables.
type SchemaDetails struct {
	Schema SchemaInfo
	Tables []TableInfo
}

// CatalogDetails is a catalog name together with its schemas.
type CatalogDetails struct {
	Name    string
	Schemas []SchemaInfo
}

// Explorer answers structural metadata questions against the remote
// catalog.
type Explorer struct {
	client MetadataClient
	logger *slog.Logger
}

// NewExplorer creates an Explorer over the given metadata client.
func NewExplorer(client MetadataClient, logger *slog.Logger) *Explorer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Explorer{client: client, logger: logger}
}

// TableDetails fetches full metadata for one table.
func (e *Explorer) TableDetails(ctx context.Context, fullName string) (TableInfo, error) {
	info, err := e.client.GetTable(ctx, fullName)
	if err != nil {
		return TableInfo{}, fmt.Errorf("fetch table %s: %w", fullName, err)
	}
	return info, nil
}

// SchemaTables fetches a schema and the tables within it.
func (e *Explorer) SchemaTables(ctx context.Context, catalogName, schemaName string) (SchemaDetails, error) {
	fullName := catalogName + "." + schemaName
	schema, err := e.client.GetSchema(ctx, fullName)
	if err != nil {
		return SchemaDetails{}, fmt.Errorf("fetch schema %s: %w", fullName, err)
	}
	tables, err := e.client.ListTables(ctx, catalogName, schemaName)
	if err != nil {
		return SchemaDetails{}, fmt.Errorf("list tables in %s: %w", fullName, err)
	}
	return SchemaDetails{Schema: schema, Tables: tables}, nil
}

// CatalogSchemas fetches the schemas within one catalog.
func (e *Explorer) CatalogSchemas(ctx context.Context, catalogName string) (CatalogDetails, error) {
	schemas, err := e.client.ListSchemas(ctx, catalogName)
	if err != nil {
		return CatalogDetails{}, fmt.Errorf("list schemas in %s: %w", catalogName, err)
	}
	return CatalogDetails{Name: catalogName, Schemas: schemas}, nil
}

// Catalogs fetches all catalogs visible to the caller.
func (e *Explorer) Catalogs(ctx context.Context) ([]CatalogInfo, error) {
	catalogs, err := e.client.ListCatalogs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalogs: %w", err)
	}
	return catalogs, nil
}
