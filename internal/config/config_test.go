package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestU_Load_AWSKMS(t *testing.T) {
	path := writeConfig(t, `
aws_key_arn: arn:aws:kms:eu-west-1:123456789012:key/0b3ecb1a-a25e-42d1-86d9-5c1f8d9e2a44
aws_key_spec: ECC_NIST_P256
cert_common_name: device-0001
cert_country_code: FR
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Backend != BackendAWSKMS {
		t.Errorf("Backend = %q, want default %q", cfg.Backend, BackendAWSKMS)
	}
	if cfg.KeySpec() != "ECC_NIST_P256" {
		t.Errorf("KeySpec() = %q, want ECC_NIST_P256", cfg.KeySpec())
	}

	keyID, err := cfg.KeyID()
	if err != nil {
		t.Fatalf("KeyID() error = %v", err)
	}
	if keyID != "0b3ecb1a-a25e-42d1-86d9-5c1f8d9e2a44" {
		t.Errorf("KeyID() = %q", keyID)
	}
}

func TestU_Load_PKCS11(t *testing.T) {
	path := writeConfig(t, `
backend: pkcs11
aws_key_spec: ECC_NIST_P256
cert_common_name: device-0001
cert_country_code: FR
pkcs11:
  lib: /usr/lib/softhsm/libsofthsm2.so
  token: test-token
  pin_env: HSM_PIN
  key_label: csr-key
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	keyID, err := cfg.KeyID()
	if err != nil {
		t.Fatalf("KeyID() error = %v", err)
	}
	if keyID != "csr-key" {
		t.Errorf("KeyID() = %q, want csr-key", keyID)
	}
}

func TestU_Load_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"[U] Load: missing common name", `
aws_key_arn: arn:aws:kms:eu-west-1:123456789012:key/abc
aws_key_spec: ECC_NIST_P256
cert_country_code: FR
`},
		{"[U] Load: missing country code", `
aws_key_arn: arn:aws:kms:eu-west-1:123456789012:key/abc
aws_key_spec: ECC_NIST_P256
cert_common_name: device-0001
`},
		{"[U] Load: missing key spec", `
aws_key_arn: arn:aws:kms:eu-west-1:123456789012:key/abc
cert_common_name: device-0001
cert_country_code: FR
`},
		{"[U] Load: missing ARN", `
aws_key_spec: ECC_NIST_P256
cert_common_name: device-0001
cert_country_code: FR
`},
		{"[U] Load: unknown backend", `
backend: vault
aws_key_arn: arn:aws:kms:eu-west-1:123456789012:key/abc
aws_key_spec: ECC_NIST_P256
cert_common_name: device-0001
cert_country_code: FR
`},
		{"[U] Load: pkcs11 without lib", `
backend: pkcs11
aws_key_spec: ECC_NIST_P256
cert_common_name: device-0001
cert_country_code: FR
pkcs11:
  token: test-token
  pin_env: HSM_PIN
  key_label: csr-key
`},
		{"[U] Load: pkcs11 without pin_env", `
backend: pkcs11
aws_key_spec: ECC_NIST_P256
cert_common_name: device-0001
cert_country_code: FR
pkcs11:
  lib: /usr/lib/softhsm/libsofthsm2.so
  token: test-token
  key_label: csr-key
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("Load() expected error, got nil")
			}
		})
	}
}

func TestU_ParseKeyARN(t *testing.T) {
	tests := []struct {
		name       string
		arn        string
		wantRegion string
		wantKeyID  string
		wantErr    bool
	}{
		{"[U] ARN: valid", "arn:aws:kms:us-east-1:123456789012:key/mrk-1234", "us-east-1", "mrk-1234", false},
		{"[U] ARN: valid eu region", "arn:aws:kms:eu-central-1:000000000000:key/abc-def", "eu-central-1", "abc-def", false},
		{"[U] ARN: not an ARN", "not-an-arn", "", "", true},
		{"[U] ARN: wrong service", "arn:aws:s3:us-east-1:123456789012:key/abc", "", "", true},
		{"[U] ARN: missing region", "arn:aws:kms::123456789012:key/abc", "", "", true},
		{"[U] ARN: alias resource", "arn:aws:kms:us-east-1:123456789012:alias/my-key", "", "", true},
		{"[U] ARN: empty key id", "arn:aws:kms:us-east-1:123456789012:key/", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKeyARN(tt.arn)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseKeyARN() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got.Region != tt.wantRegion {
				t.Errorf("Region = %q, want %q", got.Region, tt.wantRegion)
			}
			if got.KeyID != tt.wantKeyID {
				t.Errorf("KeyID = %q, want %q", got.KeyID, tt.wantKeyID)
			}
		})
	}
}
