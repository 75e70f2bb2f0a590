package ingest

import (
	"context"
	"fmt"

	"github.com/logicmonitor/lm-logs-forwarder/common"
	"github.com/logicmonitor/lm-logs-forwarder/config"
	"github.com/logicmonitor/lm-logs-forwarder/logger"
	"github.com/logicmonitor/lm-logs-forwarder/vault"
)

var log = logger.NewLogrusLogger(logger.WithEnvLevel(), logger.WithJSONFormatter())

// New builds the client for the backend selected by cfg.
func New(cfg config.Configuration) (Client, error) {
	switch cfg.Backend {
	case "", common.BackendLogicMonitor:
		return NewLogicMonitorClient(cfg), nil
	case common.BackendNewRelic:
		api, err := NewNewRelicLogsAPI(cfg)
		if err != nil {
			return nil, fmt.Errorf("configure New Relic client: %w", err)
		}
		return NewNewRelicClient(api), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// FromEnvironment is the production Factory: it resolves the configuration from the
// environment, fills the access key from OCI Vault when needed and builds the client.
func FromEnvironment() Factory {
	return func(ctx context.Context) (Client, error) {
		cfg, err := config.FromEnvironment()
		if err != nil {
			return nil, err
		}
		cfg, err = WithVaultAccessKey(ctx, cfg, vault.NewSecretsClient)
		if err != nil {
			return nil, err
		}
		return New(cfg)
	}
}

// WithVaultAccessKey returns cfg with AccessKey read from OCI Vault when it is not set and
// a secret OCID is configured. Otherwise cfg is returned unchanged.
func WithVaultAccessKey(ctx context.Context, cfg config.Configuration, newSecretsClient func() (vault.SecretsAPI, error)) (config.Configuration, error) {
	if cfg.AccessKey != "" || cfg.AccessKeySecretOCID == "" {
		return cfg, nil
	}

	log.Debug("fetching access key from OCI vault")
	secretsClient, err := newSecretsClient()
	if err != nil {
		return cfg, err
	}
	secret, err := vault.GetSecret(ctx, secretsClient, cfg.AccessKeySecretOCID, cfg.VaultRegion)
	if err != nil {
		return cfg, err
	}
	key, err := vault.ExtractAccessKey(secret)
	if err != nil {
		return cfg, err
	}
	cfg.AccessKey = key
	return cfg, nil
}
