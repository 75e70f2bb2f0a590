// Package common provides common constants structs and variables.
package common

// CompanyName is the name of the environment variable holding the LogicMonitor company,
// as in '{company}.logicmonitor.com'.
const CompanyName = "LogicMonitorCompanyName"

// AccessID is the name of the environment variable holding the LogicMonitor access ID.
const AccessID = "LogicMonitorAccessId"

// AccessKey is the name of the environment variable holding the LogicMonitor access key.
const AccessKey = "LogicMonitorAccessKey"

// ConnectTimeout is the name of the environment variable for the connection timeout in milliseconds.
const ConnectTimeout = "LogApiClientConnectTimeout"

// ReadTimeout is the name of the environment variable for the read timeout in milliseconds.
const ReadTimeout = "LogApiClientReadTimeout"

// Debugging is the name of the environment variable enabling HTTP client debugging.
const Debugging = "LogApiClientDebugging"

// Backend is the name of the environment variable selecting the ingestion backend.
const Backend = "LogApiBackend"

// ResourceProperty is the name of the environment variable for the LogicMonitor property
// the resource id of each entry is mapped to.
const ResourceProperty = "LogicMonitorResourceProperty"

// AccessKeySecretOCID is the name of the environment variable for the OCI Vault secret
// holding the access key. It is only consulted when AccessKey is not set.
const AccessKeySecretOCID = "LogicMonitorAccessKeySecretOCID"

// VaultRegion is the name of the environment variable for the OCI Vault region.
const VaultRegion = "VAULT_REGION"

// NewRelicRegion is the name of the environment variable for the New Relic region.
const NewRelicRegion = "NEW_RELIC_REGION"

// DebugEnabled is the name of the environment variable for enabling debug mode.
const DebugEnabled = "DEBUG_ENABLED"

// LogLevel is the name of the environment variable for the forwarder's own log level.
const LogLevel = "LOG_LEVEL"

// DefaultTimeoutMillis is the default connect and read timeout.
const DefaultTimeoutMillis = 10000

// BackendLogicMonitor selects the LogicMonitor Logs ingestion API.
const BackendLogicMonitor = "logicmonitor"

// BackendNewRelic selects the New Relic Logs API.
const BackendNewRelic = "newrelic"

// DefaultResourceProperty is the LogicMonitor property used to map entries to resources.
const DefaultResourceProperty = "system.azure.resourceid"

// FunctionName is the function name reported when the host does not supply one.
const FunctionName = "LogForwarder"

// InstrumentationProvider is a parameter necessary for Entity Synthesis at New Relic.
const InstrumentationProvider = "lm-logs-forwarder"

// InstrumentationName is a parameter necessary for Entity Synthesis at New Relic.
const InstrumentationName = "function"

// InstrumentationVersion is the version reported with every New Relic batch.
const InstrumentationVersion = "1.0.0"

// MaxPayloadSize is the maximum size of a New Relic payload.
// Reference: https://docs.newrelic.com/docs/logs/log-api/introduction-log-api/#limits
const MaxPayloadSize = 1 * 1024 * 1024 // 1 mb

// MaxPayloadMessages is the maximum number of messages in a New Relic payload.
const MaxPayloadMessages = 900
