// Package unmarshal decodes the function input into a batch of raw events.
package unmarshal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/logicmonitor/lm-logs-forwarder/logger"
)

// Defines the payload shapes
const (
	EVENT_BATCH  = "eventBatch"  // EVENT_BATCH is a JSON array of events.
	SINGLE_EVENT = "singleEvent" // SINGLE_EVENT is one JSON object, handled as a batch of one.
)

var log = logger.NewLogrusLogger(logger.WithEnvLevel())

// Event represents the decoded function input.
type Event struct {
	EventType string            // EventType is the shape the payload arrived in.
	Events    []json.RawMessage // Events holds the elements in payload order, untouched.
}

// Unmarshal reads the whole payload and decodes it into the Event. Elements of an array
// are kept as raw JSON whatever their type; filtering happens later.
func (event *Event) Unmarshal(in io.Reader) error {
	payloadBytes, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("error reading incoming payload: %w", err)
	}
	log.Debugf("received payload of size: %d bytes", len(payloadBytes))

	trimmed := bytes.TrimSpace(payloadBytes)
	if len(trimmed) == 0 {
		return errors.New("incoming payload is empty")
	}

	switch trimmed[0] {
	case '[':
		var events []json.RawMessage
		if err := json.Unmarshal(trimmed, &events); err != nil {
			return fmt.Errorf("error decoding incoming event batch: %w", err)
		}
		event.EventType = EVENT_BATCH
		event.Events = events
	case '{':
		if !json.Valid(trimmed) {
			return errors.New("error decoding incoming event: invalid JSON object")
		}
		event.EventType = SINGLE_EVENT
		event.Events = []json.RawMessage{json.RawMessage(trimmed)}
	default:
		return fmt.Errorf("error decoding incoming payload: expected a JSON array or object")
	}

	return nil
}
