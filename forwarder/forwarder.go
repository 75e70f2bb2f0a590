// Package forwarder adapts a batch of raw events and delivers it in a single attempt,
// reporting the outcome through the log.
package forwarder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/logicmonitor/lm-logs-forwarder/adapter"
	"github.com/logicmonitor/lm-logs-forwarder/common"
	"github.com/logicmonitor/lm-logs-forwarder/ingest"
)

// Invocation identifies one call of the function. Every log line written while handling
// the call carries both values.
type Invocation struct {
	FunctionName string
	InvocationID string
}

// NewInvocation fills in the defaults for values the host did not supply.
func NewInvocation(functionName, invocationID string) Invocation {
	if functionName == "" {
		functionName = common.FunctionName
	}
	if invocationID == "" {
		invocationID = uuid.NewString()
	}
	return Invocation{FunctionName: functionName, InvocationID: invocationID}
}

// Handler is called by the hosting integration once per delivered batch.
type Handler func(ctx context.Context, inv Invocation, events []json.RawMessage) error

// ClientProvider hands out the ingestion client, building it on first use.
type ClientProvider interface {
	Client(ctx context.Context) (ingest.Client, error)
}

// Option configures a Forwarder.
type Option func(*Forwarder)

// WithLogger sets the logger outcome lines are written to.
func WithLogger(l *logrus.Logger) Option {
	return func(f *Forwarder) { f.log = l }
}

// WithWorkers bounds the number of records adapted concurrently.
func WithWorkers(n int) Option {
	return func(f *Forwarder) { f.workers = n }
}

// Forwarder turns raw event batches into ingestion calls.
type Forwarder struct {
	clients ClientProvider
	log     *logrus.Logger
	workers int
}

// New returns a Forwarder obtaining its client from clients.
func New(clients ClientProvider, opts ...Option) *Forwarder {
	f := &Forwarder{
		clients: clients,
		log:     log,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Handler exposes Forward as a Handler.
func (f *Forwarder) Handler() Handler {
	return f.Forward
}

// Forward adapts events and sends the resulting entries. Delivery failures are logged and
// not returned; the only error is a client that cannot be configured.
func (f *Forwarder) Forward(ctx context.Context, inv Invocation, events []json.RawMessage) error {
	entry := f.log.WithFields(logrus.Fields{
		"function":     inv.FunctionName,
		"invocationId": inv.InvocationID,
	})

	entries := adapter.AdaptBatch(events, f.workers)
	if len(entries) == 0 {
		entry.Info("no entries to send")
		return nil
	}

	entry.Infof("sending %d log entries", len(entries))
	if f.log.IsLevelEnabled(logrus.TraceLevel) {
		if body, err := json.Marshal(entries); err == nil {
			entry.Tracef("request body: %s", body)
		}
	}

	client, err := f.clients.Client(ctx)
	if err != nil {
		entry.WithError(err).Error("unable to configure the ingestion client")
		return fmt.Errorf("configure ingestion client: %w", err)
	}

	resp, err := client.IngestLogs(ctx, entries)
	if err != nil {
		var apiErr *ingest.APIError
		if errors.As(err, &apiErr) {
			resp = apiErr.Response
		}
		logOutcome(entry, false, resp, err)
		return nil
	}
	if resp == nil {
		logOutcome(entry, false, nil, errors.New("ingestion client returned no response"))
		return nil
	}
	logOutcome(entry, resp.Success, resp, nil)
	return nil
}

// logOutcome writes the status line and the body line of a delivery attempt. resp may be
// nil when the request failed before a response was received.
func logOutcome(entry *logrus.Entry, success bool, resp *ingest.Response, cause error) {
	statusLevel, bodyLevel := logrus.InfoLevel, logrus.TraceLevel
	if !success {
		statusLevel, bodyLevel = logrus.WarnLevel, logrus.WarnLevel
	}

	if resp == nil {
		entry.WithError(cause).Logf(statusLevel, "received: no response")
		entry.Logf(bodyLevel, "response body: %v", cause)
		return
	}

	e := entry
	if cause != nil {
		e = e.WithError(cause)
	}
	e.Logf(statusLevel, "received: status = %d, id = %s", resp.StatusCode, resp.RequestID)
	e.Logf(bodyLevel, "response body: %s", resp.Body)
}
