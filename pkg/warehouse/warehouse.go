// Package warehouse executes ad-hoc SQL against a remote SQL warehouse
// using the asynchronous statement-execution protocol: a statement is
// submitted with a short bounded wait, then polled by id until it reaches
// a terminal state.
package warehouse

import "context"

// State is the remote execution state of a submitted statement.
type State string

const (
	StatePending   State = "PENDING"
	StateSucceeded State = "SUCCEEDED"
	StateFailed    State = "FAILED"
	StateCanceled  State = "CANCELED"
)

// Terminal reports whether the state will no longer change.
func (s State) Terminal() bool {
	switch s {
	case StateSucceeded, StateFailed, StateCanceled:
		return true
	}
	return false
}

// Status classifies the outcome of one execution as seen by callers.
// Callers branch on Status alone; no error path escapes as a plain error.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusError   Status = "error"

	// StatusTimeout marks a statement that stayed PENDING past the wait
	// cap. It is deliberately distinct from StatusFailed so callers can
	// tell a local give-up from a remote-reported failure.
	StatusTimeout Status = "timeout"
)

// StatementRequest describes one statement submission. Immutable once
// submitted.
type StatementRequest struct {
	SQL           string
	WarehouseID   string
	WaitTimeout   string
	OnWaitTimeout string
}

// StatementError carries the remote error detail for a failed statement.
type StatementError struct {
	Message string
}

// StatementResponse is the remote view of a statement: its id, current
// state, and, once succeeded, the result payload. Optional fields are
// modeled explicitly rather than probed dynamically.
type StatementResponse struct {
	StatementID string
	State       State
	Error       *StatementError
	Columns     []string
	Rows        [][]any
	Truncated   bool
}

// Executor is the remote SQL execution service consumed by the
// Coordinator.
type Executor interface {
	SubmitStatement(ctx context.Context, req StatementRequest) (StatementResponse, error)
	GetStatement(ctx context.Context, statementID string) (StatementResponse, error)
}

// QueryResult is the single outward-facing result of one execution.
// Produced once per execution, immutable thereafter.
type QueryResult struct {
	Status    Status   `json:"status"`
	Columns   []string `json:"columns,omitempty"`
	Rows      [][]any  `json:"rows,omitempty"`
	RowCount  int      `json:"row_count"`
	Truncated bool     `json:"truncated,omitempty"`
	Message   string   `json:"message,omitempty"`
	Error     string   `json:"error,omitempty"`
	Details   string   `json:"details,omitempty"`
}
