// Package ingest delivers normalized log entries to a log ingestion backend.
package ingest

import (
	"context"
	"fmt"

	"github.com/logicmonitor/lm-logs-forwarder/common"
)

// Client sends one batch of entries in a single attempt. Implementations must be safe
// for concurrent use.
type Client interface {
	IngestLogs(ctx context.Context, entries []common.LogEntry) (*Response, error)
}

// Response is the outcome reported by the backend. Success reflects the backend's own
// flag and may be false for a 2xx status.
type Response struct {
	StatusCode int
	RequestID  string
	Success    bool
	Body       string
}

// APIError is returned when the request could not be delivered or was rejected.
// Response holds whatever the backend returned and is nil when nothing was received.
type APIError struct {
	Response *Response
	Err      error
}

func (e *APIError) Error() string {
	if e.Response != nil {
		return fmt.Sprintf("ingest: HTTP %d: %v", e.Response.StatusCode, e.Err)
	}
	return fmt.Sprintf("ingest: %v", e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}
