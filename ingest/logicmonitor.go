package ingest

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httputil"
	"strconv"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/sirupsen/logrus"

	"github.com/logicmonitor/lm-logs-forwarder/common"
	"github.com/logicmonitor/lm-logs-forwarder/config"
)

const (
	lmIngestPath   = "/log/ingest"
	lmRequestIDKey = "x-request-id"
	lmUserAgent    = "lm-logs-forwarder/" + common.InstrumentationVersion
	maxBodyBytes   = 64 * 1024
)

// LogicMonitorOption configures a LogicMonitorClient.
type LogicMonitorOption func(*LogicMonitorClient)

// WithBaseURL overrides 'https://{company}.logicmonitor.com/rest'.
func WithBaseURL(url string) LogicMonitorOption {
	return func(c *LogicMonitorClient) { c.baseURL = url }
}

// WithHTTPClient replaces the HTTP client built from the configured timeouts.
func WithHTTPClient(hc *http.Client) LogicMonitorOption {
	return func(c *LogicMonitorClient) { c.httpClient = hc }
}

// WithClock sets the time source used to sign requests.
func WithClock(now func() time.Time) LogicMonitorOption {
	return func(c *LogicMonitorClient) { c.now = now }
}

// WithLogger sets the logger used for debugging output.
func WithLogger(l *logrus.Logger) LogicMonitorOption {
	return func(c *LogicMonitorClient) { c.log = l }
}

// LogicMonitorClient posts entries to the LogicMonitor Logs ingestion API.
type LogicMonitorClient struct {
	companyName      string
	accessID         string
	accessKey        string
	resourceProperty string
	debugging        bool

	baseURL    string
	httpClient *http.Client
	now        func() time.Time
	log        *logrus.Logger
}

// lmLogEntry is the wire format of one entry.
type lmLogEntry map[string]interface{}

// lmIngestResponse is the payload returned by the ingestion API.
type lmIngestResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  []json.RawMessage `json:"errors,omitempty"`
}

// NewLogicMonitorClient builds a client from cfg. Credentials are not validated until a
// request is made.
func NewLogicMonitorClient(cfg config.Configuration, opts ...LogicMonitorOption) *LogicMonitorClient {
	transport := cleanhttp.DefaultPooledTransport()
	transport.DialContext = (&net.Dialer{
		Timeout:   cfg.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	transport.ResponseHeaderTimeout = cfg.ReadTimeout

	c := &LogicMonitorClient{
		companyName:      cfg.CompanyName,
		accessID:         cfg.AccessID,
		accessKey:        cfg.AccessKey,
		resourceProperty: cfg.ResourceProperty,
		debugging:        cfg.Debugging,
		baseURL:          fmt.Sprintf("https://%s.logicmonitor.com/rest", cfg.CompanyName),
		httpClient:       &http.Client{Transport: transport},
		now:              time.Now,
		log:              log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IngestLogs sends entries in one request. A non-2xx status or transport failure is
// returned as *APIError; a 2xx response is returned with Success taken from the payload.
func (c *LogicMonitorClient) IngestLogs(ctx context.Context, entries []common.LogEntry) (*Response, error) {
	if err := c.validate(); err != nil {
		return nil, &APIError{Err: err}
	}

	body, err := json.Marshal(c.toWire(entries))
	if err != nil {
		return nil, &APIError{Err: fmt.Errorf("marshal entries: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+lmIngestPath, bytes.NewReader(body))
	if err != nil {
		return nil, &APIError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", lmUserAgent)
	req.Header.Set("Authorization", c.authorization(http.MethodPost, body))

	if c.debugging {
		if dump, err := httputil.DumpRequestOut(req, true); err == nil {
			c.log.Debugf("LogicMonitor request:\n%s", dump)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Err: err}
	}
	defer resp.Body.Close()

	if c.debugging {
		if dump, err := httputil.DumpResponse(resp, true); err == nil {
			c.log.Debugf("LogicMonitor response:\n%s", dump)
		}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	response := &Response{
		StatusCode: resp.StatusCode,
		RequestID:  resp.Header.Get(lmRequestIDKey),
		Body:       string(raw),
	}
	if err != nil {
		return nil, &APIError{Response: response, Err: fmt.Errorf("read response: %w", err)}
	}

	var payload lmIngestResponse
	decodeErr := json.Unmarshal(raw, &payload)
	response.Success = decodeErr == nil && payload.Success

	if resp.StatusCode/100 != 2 {
		response.Success = false
		return nil, &APIError{Response: response, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	return response, nil
}

func (c *LogicMonitorClient) validate() error {
	var missing []error
	if c.companyName == "" {
		missing = append(missing, fmt.Errorf("%s is not set", common.CompanyName))
	}
	if c.accessID == "" {
		missing = append(missing, fmt.Errorf("%s is not set", common.AccessID))
	}
	if c.accessKey == "" {
		missing = append(missing, fmt.Errorf("%s is not set", common.AccessKey))
	}
	return errors.Join(missing...)
}

func (c *LogicMonitorClient) toWire(entries []common.LogEntry) []lmLogEntry {
	out := make([]lmLogEntry, 0, len(entries))
	for _, e := range entries {
		w := make(lmLogEntry, len(e.Metadata)+3)
		for k, v := range e.Metadata {
			w[k] = v
		}
		w["message"] = e.Message
		if !e.Timestamp.IsZero() {
			w["timestamp"] = e.Timestamp.UnixMilli()
		}
		if e.ResourceID != "" {
			w["_lm.resourceId"] = map[string]string{c.resourceProperty: e.ResourceID}
		}
		out = append(out, w)
	}
	return out
}

// authorization builds the LMv1 token:
// LMv1 id:base64(hex(HMAC-SHA256(key, verb+epoch+body+path))):epoch
func (c *LogicMonitorClient) authorization(method string, body []byte) string {
	epoch := strconv.FormatInt(c.now().UnixMilli(), 10)

	mac := hmac.New(sha256.New, []byte(c.accessKey))
	mac.Write([]byte(method))
	mac.Write([]byte(epoch))
	mac.Write(body)
	mac.Write([]byte(lmIngestPath))
	signature := base64.StdEncoding.EncodeToString([]byte(hex.EncodeToString(mac.Sum(nil))))

	return fmt.Sprintf("LMv1 %s:%s:%s", c.accessID, signature, epoch)
}
