package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/fnproject/fdk-go"

	"github.com/logicmonitor/lm-logs-forwarder/forwarder"
	"github.com/logicmonitor/lm-logs-forwarder/ingest"
	"github.com/logicmonitor/lm-logs-forwarder/logger"
	"github.com/logicmonitor/lm-logs-forwarder/unmarshal"
)

// fnNameKey is the configuration entry Fn uses for the function name.
const fnNameKey = "FN_FN_NAME"

var log = logger.NewLogrusLogger(logger.WithEnvLevel(), logger.WithJSONFormatter())

// The registry outlives invocations; the client is built on first use.
var logForwarder = forwarder.New(ingest.NewRegistry(ingest.FromEnvironment()))

// main function is the entry point for the FDK (Fn Project Development Kit).
func main() {
	fdk.Handle(fdk.HandlerFunc(handleFunction))
}

// handleFunction reads the invocation details from the Fn call context and forwards the payload.
func handleFunction(ctx context.Context, in io.Reader, out io.Writer) {
	fnCtx := fdk.GetContext(ctx)
	inv := forwarder.NewInvocation(fnCtx.Config()[fnNameKey], fnCtx.CallID())
	handleFunctionWithForwarder(ctx, in, out, inv, logForwarder.Handler())
}

// handleFunctionWithForwarder decodes the payload and hands it to handler. Hard failures
// are logged and reported in the function output.
func handleFunctionWithForwarder(ctx context.Context, in io.Reader, out io.Writer, inv forwarder.Invocation, handler forwarder.Handler) {
	entry := log.WithField("function", inv.FunctionName).WithField("invocationId", inv.InvocationID)

	var event unmarshal.Event
	if err := event.Unmarshal(in); err != nil {
		entry.WithError(err).Error("failed to parse input")
		writeOutput(out, map[string]interface{}{"error": err.Error()})
		return
	}
	entry.Debugf("parsed %d events (%s)", len(event.Events), event.EventType)

	if err := handler(ctx, inv, event.Events); err != nil {
		entry.WithError(err).Error("failed to forward events")
		writeOutput(out, map[string]interface{}{"error": err.Error()})
		return
	}
	writeOutput(out, map[string]interface{}{
		"invocationId": inv.InvocationID,
		"events":       len(event.Events),
	})
}

func writeOutput(out io.Writer, response map[string]interface{}) {
	if err := json.NewEncoder(out).Encode(response); err != nil {
		log.WithError(err).Error("failed to write function output")
	}
}
