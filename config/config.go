// Package config resolves the ingestion client configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/logicmonitor/lm-logs-forwarder/common"
)

// Configuration holds everything needed to build an ingestion client.
// It is resolved once and passed by value; nothing modifies it afterwards.
type Configuration struct {
	CompanyName string
	AccessID    string
	AccessKey   string

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	Debugging      bool

	Backend          string
	ResourceProperty string
	Region           string // New Relic region

	AccessKeySecretOCID string
	VaultRegion         string
}

// LookupFunc returns the value of a named variable and whether it is set.
type LookupFunc func(name string) (string, bool)

// FromEnvironment resolves the configuration from the process environment.
func FromEnvironment() (Configuration, error) {
	return Resolve(os.LookupEnv)
}

// Resolve builds a Configuration from lookup. Required values are taken verbatim and are
// not validated here. Optional values that are unset or blank keep their defaults; any
// other value must parse or Resolve fails.
func Resolve(lookup LookupFunc) (Configuration, error) {
	cfg := Configuration{
		CompanyName:         get(lookup, common.CompanyName),
		AccessID:            get(lookup, common.AccessID),
		AccessKey:           get(lookup, common.AccessKey),
		ConnectTimeout:      common.DefaultTimeoutMillis * time.Millisecond,
		ReadTimeout:         common.DefaultTimeoutMillis * time.Millisecond,
		Backend:             common.BackendLogicMonitor,
		ResourceProperty:    common.DefaultResourceProperty,
		Region:              get(lookup, common.NewRelicRegion),
		AccessKeySecretOCID: get(lookup, common.AccessKeySecretOCID),
		VaultRegion:         get(lookup, common.VaultRegion),
	}

	if err := setOptional(lookup, common.ConnectTimeout, parseMillis, &cfg.ConnectTimeout); err != nil {
		return Configuration{}, err
	}
	if err := setOptional(lookup, common.ReadTimeout, parseMillis, &cfg.ReadTimeout); err != nil {
		return Configuration{}, err
	}
	if err := setOptional(lookup, common.Debugging, strconv.ParseBool, &cfg.Debugging); err != nil {
		return Configuration{}, err
	}
	if err := setOptional(lookup, common.Backend, parseBackend, &cfg.Backend); err != nil {
		return Configuration{}, err
	}
	if err := setOptional(lookup, common.ResourceProperty, identity, &cfg.ResourceProperty); err != nil {
		return Configuration{}, err
	}

	return cfg, nil
}

func get(lookup LookupFunc, name string) string {
	value, _ := lookup(name)
	return value
}

// setOptional parses the trimmed value of name into dst unless it is unset or blank.
func setOptional[T any](lookup LookupFunc, name string, parse func(string) (T, error), dst *T) error {
	value, ok := lookup(name)
	if !ok {
		return nil
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	parsed, err := parse(value)
	if err != nil {
		return fmt.Errorf("invalid value %q for %s: %w", value, name, err)
	}
	*dst = parsed
	return nil
}

func parseMillis(value string) (time.Duration, error) {
	ms, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	if ms < 0 {
		return 0, fmt.Errorf("timeout must not be negative")
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func parseBackend(value string) (string, error) {
	switch backend := strings.ToLower(value); backend {
	case common.BackendLogicMonitor, common.BackendNewRelic:
		return backend, nil
	default:
		return "", fmt.Errorf("unknown backend, expected %q or %q", common.BackendLogicMonitor, common.BackendNewRelic)
	}
}

func identity(value string) (string, error) {
	return value, nil
}
