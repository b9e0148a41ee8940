//go:build !cgo

package remote

import (
	"context"
	"fmt"
)

// PKCS11Config holds the PKCS#11 token configuration.
type PKCS11Config struct {
	ModulePath  string `yaml:"module_path"`
	TokenLabel  string `yaml:"token_label"`
	TokenSerial string `yaml:"token_serial"`
	PIN         string `yaml:"pin"`
	KeyID       string `yaml:"key_id"`
	SlotID      *uint  `yaml:"slot_id"`
}

// PKCS11Authority is a stub used when CGO is not available.
// PKCS#11 support requires CGO.
type PKCS11Authority struct{}

var _ Authority = (*PKCS11Authority)(nil)

// NewPKCS11Authority returns an error: PKCS#11 requires CGO.
func NewPKCS11Authority(PKCS11Config) (*PKCS11Authority, error) {
	return nil, fmt.Errorf("PKCS#11 support requires CGO (rebuild with CGO_ENABLED=1)")
}

func (a *PKCS11Authority) GetPublicKey(context.Context, string) ([]byte, error) {
	return nil, fmt.Errorf("PKCS#11 support requires CGO")
}

func (a *PKCS11Authority) Sign(context.Context, string, string, []byte) ([]byte, error) {
	return nil, fmt.Errorf("PKCS#11 support requires CGO")
}

func (a *PKCS11Authority) Close() error { return nil }
