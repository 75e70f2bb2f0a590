// Package vault reads credentials stored in OCI Vault.
package vault

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	ociCommon "github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/common/auth"
	"github.com/oracle/oci-go-sdk/v65/secrets"

	"github.com/logicmonitor/lm-logs-forwarder/logger"
)

// AccessKeyField is the field read when the secret holds a JSON document.
const AccessKeyField = "accessKey"

var log = logger.NewLogrusLogger(logger.WithEnvLevel())

// SecretsAPI is the part of the OCI secrets client used to read a secret bundle.
type SecretsAPI interface {
	GetSecretBundle(ctx context.Context, request secrets.GetSecretBundleRequest) (secrets.GetSecretBundleResponse, error)
	SetRegion(regionId string)
}

// GetSecret reads the current version of a secret and returns its decoded content.
func GetSecret(ctx context.Context, secretsClient SecretsAPI, secretOCID string, vaultRegion string) (string, error) {
	if secretOCID == "" {
		return "", errors.New("vault: no secret OCID configured")
	}
	if vaultRegion == "" {
		return "", errors.New("vault: no vault region configured")
	}

	secretsClient.SetRegion(vaultRegion)
	fields := log.WithField("secretOCID", secretOCID).WithField("vaultRegion", vaultRegion)

	bundle, err := secretsClient.GetSecretBundle(ctx, secrets.GetSecretBundleRequest{
		SecretId: ociCommon.String(secretOCID),
	})
	if err != nil {
		return "", fmt.Errorf("vault: get secret bundle %s: %w", secretOCID, err)
	}

	content, ok := bundle.SecretBundleContent.(secrets.Base64SecretBundleContentDetails)
	if !ok || content.Content == nil {
		fields.Warn("secret bundle has no base64 content")
		return "", fmt.Errorf("vault: secret %s has no base64 content", secretOCID)
	}

	decoded, err := base64.StdEncoding.DecodeString(*content.Content)
	if err != nil {
		return "", fmt.Errorf("vault: decode secret %s: %w", secretOCID, err)
	}

	fields.Debug("read access key secret")
	return string(decoded), nil
}

// ExtractAccessKey returns the access key held by a secret. A secret starting with '{'
// must be a JSON object whose AccessKeyField is a non-empty string; one starting with '"'
// must be a JSON string. Anything else is taken verbatim.
func ExtractAccessKey(secret string) (string, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return "", errors.New("vault: access key secret is empty")
	}

	switch secret[0] {
	case '{':
		var doc map[string]interface{}
		if err := json.Unmarshal([]byte(secret), &doc); err != nil {
			return "", fmt.Errorf("vault: access key secret is not valid JSON: %w", err)
		}
		key, ok := doc[AccessKeyField].(string)
		if !ok || strings.TrimSpace(key) == "" {
			return "", fmt.Errorf("vault: %s is missing or not a string in the secret", AccessKeyField)
		}
		return strings.TrimSpace(key), nil
	case '"':
		var key string
		if err := json.Unmarshal([]byte(secret), &key); err != nil {
			return "", fmt.Errorf("vault: access key secret is not a valid JSON string: %w", err)
		}
		if strings.TrimSpace(key) == "" {
			return "", errors.New("vault: access key secret is empty")
		}
		return strings.TrimSpace(key), nil
	default:
		return secret, nil
	}
}

// NewSecretsClient creates a secrets client authenticated as the function's resource principal.
func NewSecretsClient() (SecretsAPI, error) {
	provider, err := auth.ResourcePrincipalConfigurationProvider()
	if err != nil {
		return nil, fmt.Errorf("vault: resource principal unavailable: %w", err)
	}

	secretsClient, err := secrets.NewSecretsClientWithConfigurationProvider(provider)
	if err != nil {
		return nil, fmt.Errorf("vault: create secrets client: %w", err)
	}

	log.Debug("created OCI secrets client with resource principal")
	return &secretsClient, nil
}
