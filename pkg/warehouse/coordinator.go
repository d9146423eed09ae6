package warehouse

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Default polling parameters. The initial submit asks the service to wait
// briefly and continue asynchronously, so the first call never blocks past
// the bound.
const (
	DefaultInitialWait  = "50s"
	DefaultPollInterval = 10 * time.Second
	DefaultMaxWait      = 600 * time.Second

	onWaitTimeoutContinue = "CONTINUE"
)

// SleepFunc waits for the given duration or until the context is done.
// Injectable so tests drive the polling loop without real delay.
type SleepFunc func(ctx context.Context, d time.Duration)

func defaultSleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Coordinator submits a statement and tracks it to a terminal state.
// Every outcome, including transport faults, is mapped to a QueryResult;
// Execute never returns an error. Polling is sequential: each poll
// observes the prior state before waiting again, so there is never more
// than one in-flight poll per statement.
type Coordinator struct {
	exec         Executor
	warehouseID  string
	initialWait  string
	pollInterval time.Duration
	maxWait      time.Duration
	sleep        SleepFunc
	logger       *slog.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithPollInterval sets the delay between status polls.
func WithPollInterval(d time.Duration) Option {
	return func(c *Coordinator) { c.pollInterval = d }
}

// WithMaxWait sets the total polling budget after which a still-pending
// statement is reported as timed out.
func WithMaxWait(d time.Duration) Option {
	return func(c *Coordinator) { c.maxWait = d }
}

// WithSleep replaces the sleep dependency.
func WithSleep(sleep SleepFunc) Option {
	return func(c *Coordinator) { c.sleep = sleep }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

// NewCoordinator creates a Coordinator bound to one warehouse.
func NewCoordinator(exec Executor, warehouseID string, opts ...Option) *Coordinator {
	c := &Coordinator{
		exec:         exec,
		warehouseID:  warehouseID,
		initialWait:  DefaultInitialWait,
		pollInterval: DefaultPollInterval,
		maxWait:      DefaultMaxWait,
		sleep:        defaultSleep,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute runs one SQL statement to completion. The safety filter and
// warehouse configuration are checked before any remote call. Mapping
// from terminal state to QueryResult is pure; no state survives the call.
func (c *Coordinator) Execute(ctx context.Context, sql string) QueryResult {
	if kw, blocked := CheckSQL(sql); blocked {
		c.logger.Warn("statement blocked by safety filter", "keyword", kw)
		return QueryResult{
			Status: StatusError,
			Error:  fmt.Sprintf("blocked: %s statements are not allowed for safety reasons", kw),
		}
	}

	if c.warehouseID == "" {
		return QueryResult{
			Status: StatusError,
			Error:  "warehouse id is not configured, cannot execute SQL statement",
		}
	}

	resp, err := c.exec.SubmitStatement(ctx, StatementRequest{
		SQL:           sql,
		WarehouseID:   c.warehouseID,
		WaitTimeout:   c.initialWait,
		OnWaitTimeout: onWaitTimeoutContinue,
	})
	if err != nil {
		return QueryResult{
			Status: StatusError,
			Error:  fmt.Sprintf("statement submission failed: %v", err),
		}
	}
	c.logger.Debug("statement submitted", "statement_id", resp.StatementID, "state", resp.State)

	var elapsed time.Duration
	for resp.State == StatePending && elapsed < c.maxWait {
		c.sleep(ctx, c.pollInterval)
		elapsed += c.pollInterval
		if err := ctx.Err(); err != nil {
			return QueryResult{
				Status: StatusError,
				Error:  fmt.Sprintf("statement polling aborted: %v", err),
			}
		}
		if resp.StatementID == "" {
			break
		}
		resp, err = c.exec.GetStatement(ctx, resp.StatementID)
		if err != nil {
			return QueryResult{
				Status: StatusError,
				Error:  fmt.Sprintf("statement status fetch failed: %v", err),
			}
		}
		c.logger.Debug("statement polled", "statement_id", resp.StatementID, "state", resp.State, "elapsed", elapsed)
	}

	if resp.State == StatePending {
		return QueryResult{
			Status: StatusTimeout,
			Error:  fmt.Sprintf("statement still pending after %s", c.maxWait),
		}
	}

	return mapResult(resp)
}

// mapResult converts a terminal StatementResponse into a QueryResult.
func mapResult(resp StatementResponse) QueryResult {
	switch resp.State {
	case StateSucceeded:
		if len(resp.Rows) > 0 {
			return QueryResult{
				Status:    StatusSuccess,
				Columns:   resp.Columns,
				Rows:      resp.Rows,
				RowCount:  len(resp.Rows),
				Truncated: resp.Truncated,
			}
		}
		return QueryResult{
			Status:  StatusSuccess,
			Columns: []string{},
			Rows:    [][]any{},
			Message: "Statement succeeded but returned no data.",
		}
	case StateFailed, StateCanceled:
		details := "No error details provided."
		if resp.Error != nil && resp.Error.Message != "" {
			details = resp.Error.Message
		}
		return QueryResult{
			Status:  StatusFailed,
			Error:   fmt.Sprintf("statement execution failed with state: %s", resp.State),
			Details: details,
		}
	default:
		return QueryResult{
			Status: StatusFailed,
			Error:  "statement execution status unknown",
		}
	}
}
