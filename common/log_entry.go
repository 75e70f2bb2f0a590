package common

import (
	"encoding/json"
	"time"
)

// LogEntry is a normalized, vendor-neutral log record produced from one raw event.
// Entries are treated as immutable once created; Metadata must not be modified after
// the entry leaves the adapter.
type LogEntry struct {
	Message    string
	Timestamp  time.Time // zero when the event carried no usable time
	ResourceID string
	Metadata   map[string]interface{}
}

type logEntryJSON struct {
	Message    string                 `json:"message"`
	Timestamp  string                 `json:"timestamp,omitempty"`
	ResourceID string                 `json:"resourceId,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// MarshalJSON renders the entry in its vendor-neutral form, used for diagnostics.
func (e LogEntry) MarshalJSON() ([]byte, error) {
	out := logEntryJSON{
		Message:    e.Message,
		ResourceID: e.ResourceID,
		Metadata:   e.Metadata,
	}
	if !e.Timestamp.IsZero() {
		out.Timestamp = e.Timestamp.UTC().Format(time.RFC3339Nano)
	}
	return json.Marshal(out)
}
