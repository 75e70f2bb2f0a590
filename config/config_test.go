package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logicmonitor/lm-logs-forwarder/common"
)

func lookupFrom(env map[string]string) LookupFunc {
	return func(name string) (string, bool) {
		v, ok := env[name]
		return v, ok
	}
}

// TestResolve tests Resolve with different environments.
func TestResolve(t *testing.T) {
	defaultTimeout := 10 * time.Second

	tests := []struct {
		name        string            // Name of the test case
		env         map[string]string // Environment visible to the resolver
		expected    Configuration     // Expected configuration, ignored when an error is expected
		expectError string            // Substring of the expected error
		description string            // Description of the test case
	}{
		{
			name: "required values only",
			env: map[string]string{
				common.CompanyName: "acme",
				common.AccessID:    "id",
				common.AccessKey:   "key",
			},
			expected: Configuration{
				CompanyName:      "acme",
				AccessID:         "id",
				AccessKey:        "key",
				ConnectTimeout:   defaultTimeout,
				ReadTimeout:      defaultTimeout,
				Backend:          common.BackendLogicMonitor,
				ResourceProperty: common.DefaultResourceProperty,
			},
			description: "Should apply defaults for every optional value",
		},
		{
			name:        "nothing set",
			env:         map[string]string{},
			expected:    Configuration{ConnectTimeout: defaultTimeout, ReadTimeout: defaultTimeout, Backend: common.BackendLogicMonitor, ResourceProperty: common.DefaultResourceProperty},
			description: "Should not validate required values",
		},
		{
			name: "blank optional values",
			env: map[string]string{
				common.ConnectTimeout: "",
				common.ReadTimeout:    "   ",
				common.Debugging:      "\t",
				common.Backend:        " ",
			},
			expected:    Configuration{ConnectTimeout: defaultTimeout, ReadTimeout: defaultTimeout, Backend: common.BackendLogicMonitor, ResourceProperty: common.DefaultResourceProperty},
			description: "Should treat empty and whitespace-only values as unset",
		},
		{
			name: "all optional values",
			env: map[string]string{
				common.ConnectTimeout:      " 2500 ",
				common.ReadTimeout:         "30000",
				common.Debugging:           "TRUE",
				common.Backend:             "NewRelic",
				common.ResourceProperty:    "system.cloud.resourceid",
				common.NewRelicRegion:      "eu",
				common.AccessKeySecretOCID: "ocid1.vaultsecret.test",
				common.VaultRegion:         "us-phoenix-1",
			},
			expected: Configuration{
				ConnectTimeout:      2500 * time.Millisecond,
				ReadTimeout:         30 * time.Second,
				Debugging:           true,
				Backend:             common.BackendNewRelic,
				ResourceProperty:    "system.cloud.resourceid",
				Region:              "eu",
				AccessKeySecretOCID: "ocid1.vaultsecret.test",
				VaultRegion:         "us-phoenix-1",
			},
			description: "Should parse trimmed optional values",
		},
		{
			name:        "invalid connect timeout",
			env:         map[string]string{common.ConnectTimeout: "notanumber"},
			expectError: common.ConnectTimeout,
			description: "Should fail instead of falling back to the default",
		},
		{
			name:        "negative read timeout",
			env:         map[string]string{common.ReadTimeout: "-1"},
			expectError: common.ReadTimeout,
			description: "Should reject negative timeouts",
		},
		{
			name:        "invalid debugging flag",
			env:         map[string]string{common.Debugging: "maybe"},
			expectError: common.Debugging,
			description: "Should fail on a flag that is not a boolean",
		},
		{
			name:        "unknown backend",
			env:         map[string]string{common.Backend: "splunk"},
			expectError: common.Backend,
			description: "Should fail on an unsupported backend",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Resolve(lookupFrom(tt.env))

			if tt.expectError != "" {
				require.Error(t, err, tt.description)
				assert.Contains(t, err.Error(), tt.expectError)
				return
			}
			require.NoError(t, err, tt.description)
			assert.Equal(t, tt.expected, cfg, tt.description)
		})
	}
}

// TestFromEnvironment verifies the process environment is read.
func TestFromEnvironment(t *testing.T) {
	t.Setenv(common.CompanyName, "acme")
	t.Setenv(common.ReadTimeout, "1500")

	cfg, err := FromEnvironment()

	require.NoError(t, err)
	assert.Equal(t, "acme", cfg.CompanyName)
	assert.Equal(t, 1500*time.Millisecond, cfg.ReadTimeout)
}
