package ingest

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logicmonitor/lm-logs-forwarder/common"
	"github.com/logicmonitor/lm-logs-forwarder/config"
)

var fixedNow = time.UnixMilli(1700000000000)

func testConfig() config.Configuration {
	return config.Configuration{
		CompanyName:      "acme",
		AccessID:         "id123",
		AccessKey:        "secret",
		ConnectTimeout:   time.Second,
		ReadTimeout:      time.Second,
		Backend:          common.BackendLogicMonitor,
		ResourceProperty: common.DefaultResourceProperty,
	}
}

var testEntries = []common.LogEntry{
	{
		Message:    "started",
		Timestamp:  time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC),
		ResourceID: "/subscriptions/1/vm",
		Metadata:   map[string]interface{}{"category": "Administrative"},
	},
	{Message: "plain"},
}

// TestLogicMonitorClientIngestLogs tests responses with different statuses and payloads.
func TestLogicMonitorClientIngestLogs(t *testing.T) {
	tests := []struct {
		name            string
		status          int
		body            string
		expectAPIError  bool
		expectedSuccess bool
		description     string
	}{
		{
			name:            "accepted",
			status:          http.StatusAccepted,
			body:            `{"success":true,"message":"Accepted"}`,
			expectedSuccess: true,
			description:     "Should report success from the payload flag",
		},
		{
			name:            "partial failure with 2xx",
			status:          http.StatusMultiStatus,
			body:            `{"success":false,"message":"Some events were not accepted","errors":[{"code":4001}]}`,
			expectedSuccess: false,
			description:     "Should report failure when the payload flag is false despite 2xx",
		},
		{
			name:            "2xx without JSON payload",
			status:          http.StatusOK,
			body:            `OK`,
			expectedSuccess: false,
			description:     "Should not assume success without a payload flag",
		},
		{
			name:           "server error",
			status:         http.StatusInternalServerError,
			body:           `{"success":false,"message":"internal error"}`,
			expectAPIError: true,
			description:    "Should return the response inside an APIError",
		},
		{
			name:           "unauthorized",
			status:         http.StatusUnauthorized,
			body:           `{"success":false,"message":"Authentication failed"}`,
			expectAPIError: true,
			description:    "Should return the response inside an APIError",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotReq *http.Request
			var gotBody []byte
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotReq = r
				gotBody, _ = io.ReadAll(r.Body)
				w.Header().Set("x-request-id", "req-1")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewLogicMonitorClient(testConfig(), WithBaseURL(server.URL), WithClock(func() time.Time { return fixedNow }))
			resp, err := client.IngestLogs(context.Background(), testEntries)

			require.NotNil(t, gotReq)
			assert.Equal(t, http.MethodPost, gotReq.Method)
			assert.Equal(t, "/log/ingest", gotReq.URL.Path)
			assert.Equal(t, "application/json", gotReq.Header.Get("Content-Type"))
			assert.Equal(t, expectedAuthorization(gotBody), gotReq.Header.Get("Authorization"))

			if tt.expectAPIError {
				var apiErr *APIError
				require.True(t, errors.As(err, &apiErr), tt.description)
				require.NotNil(t, apiErr.Response)
				assert.Equal(t, tt.status, apiErr.Response.StatusCode)
				assert.Equal(t, "req-1", apiErr.Response.RequestID)
				assert.Equal(t, tt.body, apiErr.Response.Body)
				assert.False(t, apiErr.Response.Success)
				assert.Nil(t, resp)
				return
			}

			require.NoError(t, err, tt.description)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, "req-1", resp.RequestID)
			assert.Equal(t, tt.expectedSuccess, resp.Success, tt.description)
			assert.Equal(t, tt.body, resp.Body)
		})
	}
}

func expectedAuthorization(body []byte) string {
	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write([]byte("POST1700000000000"))
	mac.Write(body)
	mac.Write([]byte("/log/ingest"))
	signature := base64.StdEncoding.EncodeToString([]byte(hex.EncodeToString(mac.Sum(nil))))
	return "LMv1 id123:" + signature + ":1700000000000"
}

// TestLogicMonitorClientWireFormat verifies the request body sent for each entry.
func TestLogicMonitorClientWireFormat(t *testing.T) {
	var sent []map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	client := NewLogicMonitorClient(testConfig(), WithBaseURL(server.URL))
	_, err := client.IngestLogs(context.Background(), testEntries)
	require.NoError(t, err)

	require.Len(t, sent, 2)
	assert.Equal(t, map[string]interface{}{
		"message":        "started",
		"timestamp":      float64(time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC).UnixMilli()),
		"category":       "Administrative",
		"_lm.resourceId": map[string]interface{}{common.DefaultResourceProperty: "/subscriptions/1/vm"},
	}, sent[0])
	assert.Equal(t, map[string]interface{}{"message": "plain"}, sent[1])
}

// TestLogicMonitorClientMissingCredentials verifies validation happens at call time
// without contacting the endpoint.
func TestLogicMonitorClientMissingCredentials(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.AccessID = ""
	cfg.AccessKey = ""
	client := NewLogicMonitorClient(cfg, WithBaseURL(server.URL))

	resp, err := client.IngestLogs(context.Background(), testEntries)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Nil(t, apiErr.Response)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), common.AccessID)
	assert.Contains(t, err.Error(), common.AccessKey)
	assert.NotContains(t, err.Error(), common.CompanyName)
	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
}

// TestLogicMonitorClientTransportError verifies an unreachable endpoint yields an APIError
// without a response.
func TestLogicMonitorClientTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewLogicMonitorClient(testConfig(), WithBaseURL(url))
	resp, err := client.IngestLogs(context.Background(), testEntries)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Nil(t, apiErr.Response)
	assert.Nil(t, resp)
}

// TestLogicMonitorClientDefaultURL verifies the company is used in the endpoint.
func TestLogicMonitorClientDefaultURL(t *testing.T) {
	client := NewLogicMonitorClient(testConfig())
	assert.Equal(t, "https://acme.logicmonitor.com/rest", client.baseURL)
}
