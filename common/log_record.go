package common

// DetailedLog represents a detailed log record.
//
// Reference: https://docs.newrelic.com/docs/logs/log-api/introduction-log-api/#detailed-json
type DetailedLog struct {
	CommonData Common  `json:"common"`
	Entries    LogData `json:"logs"`
}

// Common represents the common data shared by all log records.
type Common struct {
	Attributes LogAttributes `json:"attributes"` // Optional
	Timestamp  string        `json:"timestamp,omitempty"`
}

// LogData represents a collection of log records.
type LogData []map[string]interface{}

// LogAttributes represents the attributes of a log record.
type LogAttributes map[string]interface{}

// DetailedLogsBatch represents a batch of detailed log records. This is the expected payload format in the API call to New Relic.
type DetailedLogsBatch []DetailedLog

// ToLogData converts normalized entries into New Relic log records. Metadata becomes the
// record attributes and the resource id is reported as "resource.id".
func ToLogData(entries []LogEntry) LogData {
	data := make(LogData, 0, len(entries))
	for _, e := range entries {
		record := map[string]interface{}{
			"message": e.Message,
		}
		if !e.Timestamp.IsZero() {
			record["timestamp"] = e.Timestamp.UnixMilli()
		}
		attributes := make(map[string]interface{}, len(e.Metadata)+1)
		for k, v := range e.Metadata {
			attributes[k] = v
		}
		if e.ResourceID != "" {
			attributes["resource.id"] = e.ResourceID
		}
		if len(attributes) > 0 {
			record["attributes"] = attributes
		}
		data = append(data, record)
	}
	return data
}
