package csr

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"fmt"
	"testing"
)

// testAuthority implements remote.Authority backed by a locally generated
// ECDSA key. Sign hashes the full message with SHA-256 before signing, the
// same contract the real backends honor for ECDSA_SHA_256.
type testAuthority struct {
	key *ecdsa.PrivateKey

	getCalls  int
	signCalls int

	getErr   error
	signErr  error
	fixedPub []byte
	fixedSig []byte
}

func newTestAuthority(t *testing.T) *testAuthority {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	return &testAuthority{key: key}
}

func (a *testAuthority) GetPublicKey(_ context.Context, keyID string) ([]byte, error) {
	a.getCalls++
	if a.getErr != nil {
		return nil, a.getErr
	}
	if a.fixedPub != nil {
		return a.fixedPub, nil
	}
	return x509.MarshalPKIXPublicKey(&a.key.PublicKey)
}

func (a *testAuthority) Sign(_ context.Context, keyID, signingAlgorithm string, message []byte) ([]byte, error) {
	a.signCalls++
	if a.signErr != nil {
		return nil, a.signErr
	}
	if a.fixedSig != nil {
		return a.fixedSig, nil
	}
	if signingAlgorithm != "ECDSA_SHA_256" {
		return nil, fmt.Errorf("unexpected signing algorithm: %s", signingAlgorithm)
	}
	digest := sha256.Sum256(message)
	return ecdsa.SignASN1(rand.Reader, a.key, digest[:])
}

func (a *testAuthority) publicKeyDER(t *testing.T) []byte {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(&a.key.PublicKey)
	if err != nil {
		t.Fatalf("MarshalPKIXPublicKey() error = %v", err)
	}
	return der
}

func mustResolve(t *testing.T, spec KeySpec) AlgorithmInfo {
	t.Helper()
	info, err := ResolveKeySpec(spec)
	if err != nil {
		t.Fatalf("ResolveKeySpec(%s) error = %v", spec, err)
	}
	return info
}

func mustSubject(t *testing.T, cn, country string) *SubjectName {
	t.Helper()
	subject, err := BuildSubjectName(cn, country)
	if err != nil {
		t.Fatalf("BuildSubjectName() error = %v", err)
	}
	return subject
}
