package databricks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/lakegate/pkg/warehouse"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{Host: srv.URL, Token: "test-token"}, nil)
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresHost(t *testing.T) {
	_, err := NewClient(Config{}, nil)
	assert.ErrorIs(t, err, ErrNoHost)
}

func TestNewClientTrimsTrailingSlash(t *testing.T) {
	c, err := NewClient(Config{Host: "https://acme.example.com/", Token: "t"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://acme.example.com", c.host)
}

func TestSubmitStatement(t *testing.T) {
	var gotBody statementRequestBody
	var gotAuth string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/2.0/sql/statements", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		_, _ = w.Write([]byte(`{
			"statement_id": "stmt-1",
			"status": {"state": "SUCCEEDED"},
			"manifest": {"schema": {"columns": [{"name": "n"}]}, "truncated": true},
			"result": {"data_array": [["42"]]}
		}`))
	}))

	resp, err := c.SubmitStatement(context.Background(), warehouse.StatementRequest{
		SQL:           "SELECT 42 AS n",
		WarehouseID:   "wh-1",
		WaitTimeout:   "50s",
		OnWaitTimeout: "CONTINUE",
	})

	require.NoError(t, err)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "SELECT 42 AS n", gotBody.Statement)
	assert.Equal(t, "wh-1", gotBody.WarehouseID)
	assert.Equal(t, "50s", gotBody.WaitTimeout)
	assert.Equal(t, "CONTINUE", gotBody.OnWaitTimeout)

	assert.Equal(t, "stmt-1", resp.StatementID)
	assert.Equal(t, warehouse.StateSucceeded, resp.State)
	assert.Equal(t, []string{"n"}, resp.Columns)
	assert.Equal(t, [][]any{{"42"}}, resp.Rows)
	assert.True(t, resp.Truncated)
}

func TestGetStatement(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/2.0/sql/statements/stmt-9", r.URL.Path)
		_, _ = w.Write([]byte(`{"statement_id": "stmt-9", "status": {"state": "PENDING"}}`))
	}))

	resp, err := c.GetStatement(context.Background(), "stmt-9")

	require.NoError(t, err)
	assert.Equal(t, warehouse.StatePending, resp.State)
	assert.Nil(t, resp.Error)
}

func TestGetStatementFailedState(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"statement_id": "stmt-9",
			"status": {"state": "FAILED", "error": {"message": "TABLE_OR_VIEW_NOT_FOUND"}}
		}`))
	}))

	resp, err := c.GetStatement(context.Background(), "stmt-9")

	require.NoError(t, err)
	assert.Equal(t, warehouse.StateFailed, resp.State)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "TABLE_OR_VIEW_NOT_FOUND", resp.Error.Message)
}

func TestAPIErrorWithMessageBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error_code": "PERMISSION_DENIED", "message": "no access"}`))
	}))

	_, err := c.GetStatement(context.Background(), "stmt-1")

	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "no access", apiErr.Message)
	assert.NotEmpty(t, apiErr.RequestID)
	assert.Equal(t, "HTTP error: 403 - no access", apiErr.Error())
}

func TestAPIErrorWithPlainBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded\n"))
	}))

	_, err := c.GetStatement(context.Background(), "stmt-1")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "upstream exploded", apiErr.Message)
}

func TestNoCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("request must not be sent without credentials")
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{Host: srv.URL}, nil)
	require.NoError(t, err)

	_, err = c.GetStatement(context.Background(), "stmt-1")
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestOAuthClientCredentials(t *testing.T) {
	tokenCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/oidc/v1/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "client-1", user)
		assert.Equal(t, "secret-1", pass)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "all-apis", r.PostForm.Get("scope"))
		_, _ = w.Write([]byte(`{"access_token": "oauth-tok", "expires_in": 3600}`))
	})
	mux.HandleFunc("/api/2.0/sql/statements/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer oauth-tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"statement_id": "s", "status": {"state": "SUCCEEDED"}}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{
		Host:         srv.URL,
		AuthType:     "oauth",
		ClientID:     "client-1",
		ClientSecret: "secret-1",
	}, nil)
	require.NoError(t, err)

	_, err = c.GetStatement(context.Background(), "s1")
	require.NoError(t, err)
	_, err = c.GetStatement(context.Background(), "s1")
	require.NoError(t, err)

	assert.Equal(t, 1, tokenCalls, "token is cached until near expiry")
}

func TestGetJob(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/2.2/jobs/get", r.URL.Path)
		assert.Equal(t, "101", r.URL.Query().Get("job_id"))
		_, _ = w.Write([]byte(`{
			"job_id": 101,
			"settings": {
				"name": "nightly-etl",
				"tasks": [
					{"task_key": "load", "notebook_task": {"notebook_path": "/etl/load"}},
					{"task_key": "sql-only"}
				]
			}
		}`))
	}))

	job, err := c.GetJob(context.Background(), "101")

	require.NoError(t, err)
	assert.Equal(t, "nightly-etl", job.Name)
	require.Len(t, job.Tasks, 1, "tasks without a notebook are dropped")
	assert.Equal(t, "load", job.Tasks[0].TaskKey)
	assert.Equal(t, "/etl/load", job.Tasks[0].NotebookPath)
}

func TestGetNotebookStatus(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/2.0/workspace/get-status", r.URL.Path)
		assert.Equal(t, "/etl/load", r.URL.Query().Get("path"))
		_, _ = w.Write([]byte(`{"object_type": "NOTEBOOK", "object_id": 555}`))
	}))

	status, err := c.GetNotebookStatus(context.Background(), "/etl/load")

	require.NoError(t, err)
	assert.Equal(t, int64(555), status.ObjectID)
}
