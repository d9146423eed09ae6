package databricks

import (
	"context"
	"net/http"
	"net/url"

	"github.com/leapstack-labs/lakegate/pkg/catalog"
)

const (
	ucTablesPath   = "/api/2.1/unity-catalog/tables"
	ucSchemasPath  = "/api/2.1/unity-catalog/schemas"
	ucCatalogsPath = "/api/2.1/unity-catalog/catalogs"
)

var _ catalog.MetadataClient = (*Client)(nil)

type ucColumnBody struct {
	Name           string `json:"name"`
	TypeText       string `json:"type_text"`
	TypeName       string `json:"type_name"`
	Nullable       bool   `json:"nullable"`
	Comment        string `json:"comment"`
	PartitionIndex *int   `json:"partition_index"`
}

type ucTableBody struct {
	FullName string         `json:"full_name"`
	Comment  string         `json:"comment"`
	Columns  []ucColumnBody `json:"columns"`
}

type ucSchemaBody struct {
	FullName string `json:"full_name"`
	Name     string `json:"name"`
	Comment  string `json:"comment"`
}

type ucCatalogBody struct {
	Name        string `json:"name"`
	Comment     string `json:"comment"`
	CatalogType string `json:"catalog_type"`
}

// GetTable fetches full metadata for one table.
func (c *Client) GetTable(ctx context.Context, fullName string) (catalog.TableInfo, error) {
	var resp ucTableBody
	if err := c.do(ctx, http.MethodGet, ucTablesPath+"/"+url.PathEscape(fullName), nil, nil, &resp); err != nil {
		return catalog.TableInfo{}, err
	}
	return mapTable(resp), nil
}

// ListTables lists the tables in one schema.
func (c *Client) ListTables(ctx context.Context, catalogName, schemaName string) ([]catalog.TableInfo, error) {
	query := url.Values{
		"catalog_name": {catalogName},
		"schema_name":  {schemaName},
	}
	var resp struct {
		Tables []ucTableBody `json:"tables"`
	}
	if err := c.do(ctx, http.MethodGet, ucTablesPath, query, nil, &resp); err != nil {
		return nil, err
	}
	tables := make([]catalog.TableInfo, 0, len(resp.Tables))
	for _, t := range resp.Tables {
		tables = append(tables, mapTable(t))
	}
	return tables, nil
}

// GetSchema fetches one schema by full name.
func (c *Client) GetSchema(ctx context.Context, fullName string) (catalog.SchemaInfo, error) {
	var resp ucSchemaBody
	if err := c.do(ctx, http.MethodGet, ucSchemasPath+"/"+url.PathEscape(fullName), nil, nil, &resp); err != nil {
		return catalog.SchemaInfo{}, err
	}
	return catalog.SchemaInfo(resp), nil
}

// ListSchemas lists the schemas in one catalog.
func (c *Client) ListSchemas(ctx context.Context, catalogName string) ([]catalog.SchemaInfo, error) {
	query := url.Values{"catalog_name": {catalogName}}
	var resp struct {
		Schemas []ucSchemaBody `json:"schemas"`
	}
	if err := c.do(ctx, http.MethodGet, ucSchemasPath, query, nil, &resp); err != nil {
		return nil, err
	}
	schemas := make([]catalog.SchemaInfo, 0, len(resp.Schemas))
	for _, s := range resp.Schemas {
		schemas = append(schemas, catalog.SchemaInfo(s))
	}
	return schemas, nil
}

// ListCatalogs lists all catalogs visible to the caller.
func (c *Client) ListCatalogs(ctx context.Context) ([]catalog.CatalogInfo, error) {
	var resp struct {
		Catalogs []ucCatalogBody `json:"catalogs"`
	}
	if err := c.do(ctx, http.MethodGet, ucCatalogsPath, nil, nil, &resp); err != nil {
		return nil, err
	}
	catalogs := make([]catalog.CatalogInfo, 0, len(resp.Catalogs))
	for _, cat := range resp.Catalogs {
		catalogs = append(catalogs, catalog.CatalogInfo(cat))
	}
	return catalogs, nil
}

func mapTable(body ucTableBody) catalog.TableInfo {
	info := catalog.TableInfo{
		FullName: body.FullName,
		Comment:  body.Comment,
	}
	for _, col := range body.Columns {
		info.Columns = append(info.Columns, catalog.ColumnInfo(col))
	}
	return info
}
