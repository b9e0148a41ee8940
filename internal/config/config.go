// Package config loads and validates the CSR creation configuration.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/remiblancher/kms-csr/internal/remote"
)

// Backend names for the remote signing authority.
const (
	BackendAWSKMS = "awskms"
	BackendPKCS11 = "pkcs11"
)

// Config represents the YAML configuration for CSR creation.
type Config struct {
	// Backend selects the remote signing authority ("awskms" or "pkcs11").
	// Defaults to "awskms".
	Backend string `yaml:"backend"`

	// AWSKeyARN is the full ARN of the KMS key. Region and key ID are
	// derived from it.
	AWSKeyARN string `yaml:"aws_key_arn"`

	// AWSKeySpec is the asymmetric key spec of the KMS key.
	AWSKeySpec string `yaml:"aws_key_spec"`

	// CertCommonName is the subject common name for the request.
	CertCommonName string `yaml:"cert_common_name"`

	// CertCountryCode is the subject country code for the request.
	CertCountryCode string `yaml:"cert_country_code"`

	// PKCS11 holds the token settings for the pkcs11 backend.
	PKCS11 PKCS11Settings `yaml:"pkcs11"`
}

// PKCS11Settings holds PKCS#11 specific configuration.
type PKCS11Settings struct {
	// Lib is the path to the PKCS#11 library (.so/.dylib/.dll)
	Lib string `yaml:"lib"`

	// Token identifies the token by label (recommended)
	Token string `yaml:"token"`

	// TokenSerial identifies the token by serial number (more precise)
	TokenSerial string `yaml:"token_serial"`

	// Slot identifies the token by slot ID (less portable)
	Slot *uint `yaml:"slot"`

	// PinEnv is the name of the environment variable containing the PIN
	PinEnv string `yaml:"pin_env"`

	// KeyLabel is the CKA_LABEL of the key pair on the token
	KeyLabel string `yaml:"key_label"`

	// KeyID is the CKA_ID of the key pair (hex encoded)
	KeyID string `yaml:"key_id"`

	// KeySpec is the key spec of the token key (defaults to AWSKeySpec)
	KeySpec string `yaml:"key_spec"`
}

// KeyARN is an AWS KMS key ARN decomposed into its useful parts.
type KeyARN struct {
	// Region is the AWS region the key lives in.
	Region string

	// KeyID is the key identifier (the last ARN element).
	KeyID string
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Backend == "" {
		cfg.Backend = BackendAWSKMS
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration is complete for its backend.
// Subject content rules (the forbidden-character set) are enforced later by
// the name builder, not here.
func (c *Config) Validate() error {
	if c.CertCommonName == "" {
		return fmt.Errorf("cert_common_name is required")
	}
	if c.CertCountryCode == "" {
		return fmt.Errorf("cert_country_code is required")
	}
	if c.AWSKeySpec == "" && (c.Backend == BackendAWSKMS || c.PKCS11.KeySpec == "") {
		return fmt.Errorf("aws_key_spec is required")
	}

	switch c.Backend {
	case BackendAWSKMS:
		if c.AWSKeyARN == "" {
			return fmt.Errorf("aws_key_arn is required")
		}
		if _, err := ParseKeyARN(c.AWSKeyARN); err != nil {
			return err
		}
	case BackendPKCS11:
		if c.PKCS11.Lib == "" {
			return fmt.Errorf("pkcs11.lib is required")
		}
		if c.PKCS11.Token == "" && c.PKCS11.TokenSerial == "" && c.PKCS11.Slot == nil {
			return fmt.Errorf("at least one of pkcs11.token, pkcs11.token_serial, or pkcs11.slot is required")
		}
		if c.PKCS11.KeyLabel == "" && c.PKCS11.KeyID == "" {
			return fmt.Errorf("at least one of pkcs11.key_label or pkcs11.key_id is required")
		}
		if c.PKCS11.PinEnv == "" {
			return fmt.Errorf("pkcs11.pin_env is required (PIN must be provided via environment variable)")
		}
	default:
		return fmt.Errorf("unsupported backend: %s (only 'awskms' and 'pkcs11' are supported)", c.Backend)
	}

	return nil
}

// KeySpec returns the key spec for the active backend.
func (c *Config) KeySpec() string {
	if c.Backend == BackendPKCS11 && c.PKCS11.KeySpec != "" {
		return c.PKCS11.KeySpec
	}
	return c.AWSKeySpec
}

// KeyID returns the remote key identifier for the active backend: the ARN's
// key ID for KMS, the key label or hex CKA_ID for PKCS#11.
func (c *Config) KeyID() (string, error) {
	switch c.Backend {
	case BackendPKCS11:
		if c.PKCS11.KeyLabel != "" {
			return c.PKCS11.KeyLabel, nil
		}
		return c.PKCS11.KeyID, nil
	default:
		arn, err := ParseKeyARN(c.AWSKeyARN)
		if err != nil {
			return "", err
		}
		return arn.KeyID, nil
	}
}

// GetPIN retrieves the PKCS#11 PIN from the configured environment variable.
func (c *Config) GetPIN() (string, error) {
	pin := os.Getenv(c.PKCS11.PinEnv)
	if pin == "" {
		return "", fmt.Errorf("environment variable %s is not set or empty", c.PKCS11.PinEnv)
	}
	return pin, nil
}

// ToPKCS11Config converts the token settings for the authority.
func (c *Config) ToPKCS11Config() (*remote.PKCS11Config, error) {
	pin, err := c.GetPIN()
	if err != nil {
		return nil, err
	}

	return &remote.PKCS11Config{
		ModulePath:  c.PKCS11.Lib,
		TokenLabel:  c.PKCS11.Token,
		TokenSerial: c.PKCS11.TokenSerial,
		PIN:         pin,
		KeyID:       c.PKCS11.KeyID,
		SlotID:      c.PKCS11.Slot,
	}, nil
}

// ParseKeyARN decomposes a KMS key ARN of the form
// arn:aws:kms:<region>:<account>:key/<key-id>.
func ParseKeyARN(arn string) (*KeyARN, error) {
	parts := strings.Split(arn, ":")
	if len(parts) != 6 || parts[0] != "arn" || parts[2] != "kms" {
		return nil, fmt.Errorf("invalid KMS key ARN: %s", arn)
	}

	region := parts[3]
	if region == "" {
		return nil, fmt.Errorf("invalid KMS key ARN: missing region: %s", arn)
	}

	resource := parts[5]
	keyID, ok := strings.CutPrefix(resource, "key/")
	if !ok || keyID == "" {
		return nil, fmt.Errorf("invalid KMS key ARN: resource must be key/<id>: %s", arn)
	}

	return &KeyARN{Region: region, KeyID: keyID}, nil
}
