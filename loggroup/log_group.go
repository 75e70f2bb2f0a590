// Package loggroup splits normalized log entries into payloads that respect the
// New Relic Logs API limits.
package loggroup

import (
	"encoding/json"

	"github.com/logicmonitor/lm-logs-forwarder/common"
	"github.com/logicmonitor/lm-logs-forwarder/logger"
)

var log = logger.NewLogrusLogger(logger.WithEnvLevel())

// InstrumentationAttributes returns the common attributes attached to every payload.
func InstrumentationAttributes() common.LogAttributes {
	return common.LogAttributes{
		"instrumentation.provider": common.InstrumentationProvider,
		"instrumentation.name":     common.InstrumentationName,
		"instrumentation.version":  common.InstrumentationVersion,
	}
}

// SplitLogs converts entries to New Relic records and groups them into batches whose
// estimated size stays within maxPayloadSize and whose length stays within maxMessages.
// A single record larger than maxPayloadSize is sent alone. Order is preserved.
func SplitLogs(entries []common.LogEntry, maxPayloadSize, maxMessages int, attributes common.LogAttributes) []common.DetailedLogsBatch {
	var batches []common.DetailedLogsBatch
	var currentBatch common.LogData
	currentBatchSize := 0

	flush := func() {
		if len(currentBatch) == 0 {
			return
		}
		batches = append(batches, common.DetailedLogsBatch{{
			CommonData: common.Common{
				Attributes: attributes,
			},
			Entries: currentBatch,
		}})
		currentBatch = nil
		currentBatchSize = 0
	}

	for _, logData := range common.ToLogData(entries) {
		logBytes, err := json.Marshal(logData)
		if err != nil {
			log.Debugf("Warning: Could not marshal detailed log for size estimation: %v", err)
			continue
		}
		logSize := len(logBytes)

		if len(currentBatch) > 0 && (currentBatchSize+logSize > maxPayloadSize || len(currentBatch) >= maxMessages) {
			flush()
		}
		currentBatch = append(currentBatch, logData)
		currentBatchSize += logSize
	}
	flush()

	return batches
}
