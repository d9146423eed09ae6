package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func TestColumnInfoType(t *testing.T) {
	assert.Equal(t, "decimal(10,2)", ColumnInfo{TypeText: "decimal(10,2)", TypeName: "DECIMAL"}.Type())
	assert.Equal(t, "DECIMAL", ColumnInfo{TypeName: "DECIMAL"}.Type())
	assert.Equal(t, "N/A", ColumnInfo{}.Type())
}

func TestPartitionColumns(t *testing.T) {
	info := TableInfo{Columns: []ColumnInfo{
		{Name: "amount"},
		{Name: "region", PartitionIndex: intPtr(1)},
		{Name: "day", PartitionIndex: intPtr(0)},
	}}

	assert.Equal(t, []string{"day", "region"}, info.PartitionColumns())
}

func TestPartitionColumnsNone(t *testing.T) {
	info := TableInfo{Columns: []ColumnInfo{{Name: "a"}, {Name: "b"}}}
	assert.Empty(t, info.PartitionColumns())
}

// fakeMetadataClient serves canned catalog metadata.
type fakeMetadataClient struct {
	tables   map[string]TableInfo
	schemas  map[string]SchemaInfo
	catalogs []CatalogInfo
	err      error
}

func (f *fakeMetadataClient) GetTable(_ context.Context, fullName string) (TableInfo, error) {
	if f.err != nil {
		return TableInfo{}, f.err
	}
	info, ok := f.tables[fullName]
	if !ok {
		return TableInfo{}, errors.New("table not found")
	}
	return info, nil
}

func (f *fakeMetadataClient) ListTables(_ context.Context, catalogName, schemaName string) ([]TableInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	prefix := catalogName + "." + schemaName + "."
	var out []TableInfo
	for name, info := range f.tables {
		if len(name) > len(prefix) && name[:len(prefix)] == prefix {
			out = append(out, info)
		}
	}
	return out, nil
}

func (f *fakeMetadataClient) GetSchema(_ context.Context, fullName string) (SchemaInfo, error) {
	if f.err != nil {
		return SchemaInfo{}, f.err
	}
	info, ok := f.schemas[fullName]
	if !ok {
		return SchemaInfo{}, errors.New("schema not found")
	}
	return info, nil
}

func (f *fakeMetadataClient) ListSchemas(_ context.Context, catalogName string) ([]SchemaInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []SchemaInfo
	for _, s := range f.schemas {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeMetadataClient) ListCatalogs(_ context.Context) ([]CatalogInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.catalogs, nil
}

func TestExplorerTableDetails(t *testing.T) {
	client := &fakeMetadataClient{tables: map[string]TableInfo{
		"main.sales.orders": {FullName: "main.sales.orders", Comment: "orders"},
	}}
	e := NewExplorer(client, nil)

	info, err := e.TableDetails(context.Background(), "main.sales.orders")

	require.NoError(t, err)
	assert.Equal(t, "orders", info.Comment)
}

func TestExplorerTableDetailsError(t *testing.T) {
	e := NewExplorer(&fakeMetadataClient{tables: map[string]TableInfo{}}, nil)

	_, err := e.TableDetails(context.Background(), "main.sales.missing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "main.sales.missing")
}

func TestExplorerSchemaTables(t *testing.T) {
	client := &fakeMetadataClient{
		schemas: map[string]SchemaInfo{
			"main.sales": {FullName: "main.sales", Name: "sales"},
		},
		tables: map[string]TableInfo{
			"main.sales.orders": {FullName: "main.sales.orders"},
		},
	}
	e := NewExplorer(client, nil)

	details, err := e.SchemaTables(context.Background(), "main", "sales")

	require.NoError(t, err)
	assert.Equal(t, "sales", details.Schema.Name)
	require.Len(t, details.Tables, 1)
	assert.Equal(t, "main.sales.orders", details.Tables[0].FullName)
}

func TestExplorerCatalogs(t *testing.T) {
	e := NewExplorer(&fakeMetadataClient{catalogs: []CatalogInfo{{Name: "main"}}}, nil)

	catalogs, err := e.Catalogs(context.Background())

	require.NoError(t, err)
	require.Len(t, catalogs, 1)
	assert.Equal(t, "main", catalogs[0].Name)
}

func TestExplorerErrorWrapping(t *testing.T) {
	sentinel := errors.New("backend unavailable")
	e := NewExplorer(&fakeMetadataClient{err: sentinel}, nil)

	_, err := e.Catalogs(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)

	_, err = e.CatalogSchemas(context.Background(), "main")
	assert.ErrorIs(t, err, sentinel)
}
