package databricks

import (
	"context"
	"fmt"
	"net/http"

	"github.com/leapstack-labs/lakegate/pkg/warehouse"
)

const statementsPath = "/api/2.0/sql/statements"

var _ warehouse.Executor = (*Client)(nil)

type statementRequestBody struct {
	Statement     string `json:"statement"`
	WarehouseID   string `json:"warehouse_id"`
	WaitTimeout   string `json:"wait_timeout,omitempty"`
	OnWaitTimeout string `json:"on_wait_timeout,omitempty"`
}

type statementResponseBody struct {
	StatementID string `json:"statement_id"`
	Status      struct {
		State string `json:"state"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	} `json:"status"`
	Manifest *struct {
		Schema *struct {
			Columns []struct {
				Name string `json:"name"`
			} `json:"columns"`
		} `json:"schema"`
		Truncated bool `json:"truncated"`
	} `json:"manifest"`
	Result *struct {
		DataArray [][]any `json:"data_array"`
	} `json:"result"`
}

// SubmitStatement submits a SQL statement for execution on the given
// warehouse.
func (c *Client) SubmitStatement(ctx context.Context, req warehouse.StatementRequest) (warehouse.StatementResponse, error) {
	body := statementRequestBody{
		Statement:     req.SQL,
		WarehouseID:   req.WarehouseID,
		WaitTimeout:   req.WaitTimeout,
		OnWaitTimeout: req.OnWaitTimeout,
	}
	var resp statementResponseBody
	if err := c.do(ctx, http.MethodPost, statementsPath, nil, body, &resp); err != nil {
		return warehouse.StatementResponse{}, err
	}
	return mapStatement(resp), nil
}

// GetStatement re-fetches the current status of a submitted statement.
func (c *Client) GetStatement(ctx context.Context, statementID string) (warehouse.StatementResponse, error) {
	path := fmt.Sprintf("%s/%s", statementsPath, statementID)
	var resp statementResponseBody
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return warehouse.StatementResponse{}, err
	}
	return mapStatement(resp), nil
}

func mapStatement(resp statementResponseBody) warehouse.StatementResponse {
	out := warehouse.StatementResponse{
		StatementID: resp.StatementID,
		State:       warehouse.State(resp.Status.State),
	}
	if resp.Status.Error != nil {
		out.Error = &warehouse.StatementError{Message: resp.Status.Error.Message}
	}
	if resp.Manifest != nil {
		out.Truncated = resp.Manifest.Truncated
		if resp.Manifest.Schema != nil {
			for _, col := range resp.Manifest.Schema.Columns {
				out.Columns = append(out.Columns, col.Name)
			}
		}
	}
	if resp.Result != nil {
		out.Rows = resp.Result.DataArray
	}
	return out
}
