package ingest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/newrelic/newrelic-client-go/v2/pkg/config"
	logging "github.com/newrelic/newrelic-client-go/v2/pkg/logs"
	"github.com/newrelic/newrelic-client-go/v2/pkg/region"

	"github.com/logicmonitor/lm-logs-forwarder/common"
	lmconfig "github.com/logicmonitor/lm-logs-forwarder/config"
	"github.com/logicmonitor/lm-logs-forwarder/loggroup"
)

// NewRelicLogsAPI is the subset of the New Relic Logs client used for delivery.
type NewRelicLogsAPI interface {
	CreateLogEntry(logEntry interface{}) error
}

// NewRelicClient sends entries to the New Relic Logs API, split into payloads that
// respect the API limits.
type NewRelicClient struct {
	api         NewRelicLogsAPI
	maxPayload  int
	maxMessages int
}

// NewNewRelicClient wraps api.
func NewNewRelicClient(api NewRelicLogsAPI) *NewRelicClient {
	return &NewRelicClient{
		api:         api,
		maxPayload:  common.MaxPayloadSize,
		maxMessages: common.MaxPayloadMessages,
	}
}

// NewNewRelicLogsAPI initializes the New Relic Logs client with the configured region,
// timeout and debug level. The access key is used as the license key.
func NewNewRelicLogsAPI(cfg lmconfig.Configuration) (NewRelicLogsAPI, error) {
	nrRegion, _ := region.Get(region.Name(cfg.Region))
	timeout := cfg.ConnectTimeout + cfg.ReadTimeout

	nrConfig := config.Config{
		Compression: config.Compression.Gzip,
		LicenseKey:  cfg.AccessKey,
		Timeout:     &timeout,
	}
	if cfg.Debugging {
		nrConfig.LogLevel = "debug"
	} else {
		nrConfig.LogLevel = "info"
	}

	var nrClient logging.Logs
	if err := nrConfig.SetRegion(nrRegion); err != nil {
		return &nrClient, err
	}
	nrClient = logging.New(nrConfig)
	return &nrClient, nil
}

// IngestLogs posts every payload in order and stops at the first failure. The New Relic
// client reports no request id, so RequestID is left empty.
func (c *NewRelicClient) IngestLogs(ctx context.Context, entries []common.LogEntry) (*Response, error) {
	batches := loggroup.SplitLogs(entries, c.maxPayload, c.maxMessages, loggroup.InstrumentationAttributes())

	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			return nil, &APIError{Err: err}
		}
		if err := c.api.CreateLogEntry(batch); err != nil {
			return nil, &APIError{
				Response: &Response{
					Body: fmt.Sprintf("payload %d of %d rejected: %v", i+1, len(batches), err),
				},
				Err: err,
			}
		}
	}

	return &Response{
		StatusCode: http.StatusAccepted,
		Success:    true,
		Body:       fmt.Sprintf("%d entries accepted in %d payloads", len(entries), len(batches)),
	}, nil
}
