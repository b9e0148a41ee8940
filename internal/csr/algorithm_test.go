package csr

import (
	"crypto"
	"crypto/elliptic"
	"crypto/x509"
	"errors"
	"testing"
)

func TestU_ResolveKeySpec_P256(t *testing.T) {
	info, err := ResolveKeySpec(KeySpecECCNistP256)
	if err != nil {
		t.Fatalf("ResolveKeySpec() error = %v", err)
	}

	if info.SigningAlgorithm != "ECDSA_SHA_256" {
		t.Errorf("SigningAlgorithm = %q, want ECDSA_SHA_256", info.SigningAlgorithm)
	}
	if info.Family != FamilyECDSA {
		t.Errorf("Family = %v, want FamilyECDSA", info.Family)
	}
	if info.Curve != elliptic.P256() {
		t.Errorf("Curve = %v, want P-256", info.Curve.Params().Name)
	}
	if info.Hash != crypto.SHA256 {
		t.Errorf("Hash = %v, want SHA-256", info.Hash)
	}
	if !info.SignatureOID.Equal(OIDSignatureECDSAWithSHA256) {
		t.Errorf("SignatureOID = %v, want %v", info.SignatureOID, OIDSignatureECDSAWithSHA256)
	}
	if info.X509SigAlg != x509.ECDSAWithSHA256 {
		t.Errorf("X509SigAlg = %v, want ECDSAWithSHA256", info.X509SigAlg)
	}
}

func TestU_ResolveKeySpec_Unsupported(t *testing.T) {
	tests := []struct {
		name string
		spec KeySpec
	}{
		{"[U] Resolve: empty spec", ""},
		{"[U] Resolve: unknown spec", "RSA_2048"},
		{"[U] Resolve: case mismatch", "ecc_nist_p256"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveKeySpec(tt.spec)
			if !errors.Is(err, ErrUnsupportedKeySpec) {
				t.Errorf("ResolveKeySpec(%q) error = %v, want ErrUnsupportedKeySpec", tt.spec, err)
			}
		})
	}
}

func TestU_SupportedKeySpecs(t *testing.T) {
	specs := SupportedKeySpecs()
	if len(specs) == 0 {
		t.Fatal("SupportedKeySpecs() is empty")
	}

	found := false
	for _, spec := range specs {
		if spec == KeySpecECCNistP256 {
			found = true
		}
		if _, err := ResolveKeySpec(spec); err != nil {
			t.Errorf("ResolveKeySpec(%s) error = %v", spec, err)
		}
	}
	if !found {
		t.Error("ECC_NIST_P256 missing from SupportedKeySpecs()")
	}
}
