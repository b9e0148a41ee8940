package csr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestU_RemoteSigner_AlgorithmIdentifier(t *testing.T) {
	info := mustResolve(t, KeySpecECCNistP256)
	signer := NewRemoteSigner(info, "key-1", newTestAuthority(t))

	algID, err := signer.AlgorithmIdentifier()
	if err != nil {
		t.Fatalf("AlgorithmIdentifier() error = %v", err)
	}
	if !algID.Algorithm.Equal(OIDSignatureECDSAWithSHA256) {
		t.Errorf("Algorithm = %v, want %v", algID.Algorithm, OIDSignatureECDSAWithSHA256)
	}
}

func TestU_RemoteSigner_AlgorithmIdentifier_Unsupported(t *testing.T) {
	info := mustResolve(t, KeySpecECCNistP256)
	info.SigningAlgorithm = "RSASSA_PSS_SHA_256"
	signer := NewRemoteSigner(info, "key-1", newTestAuthority(t))

	_, err := signer.AlgorithmIdentifier()
	if !errors.Is(err, ErrUnsupportedAlgorithm) {
		t.Errorf("AlgorithmIdentifier() error = %v, want ErrUnsupportedAlgorithm", err)
	}
}

// The signature returned by the authority must reach the signed request
// byte-for-byte, with no re-encoding in between.
func TestU_RemoteSigner_SignaturePassthrough(t *testing.T) {
	authority := newTestAuthority(t)
	authority.fixedSig = []byte{0xDE, 0xAD, 0xBE, 0xEF}

	info := mustResolve(t, KeySpecECCNistP256)
	signer := NewRemoteSigner(info, "key-1", authority)

	tbs := []byte("to-be-signed")
	signed, err := signer.NewUnsigned(tbs).Finalize(context.Background())
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if !bytes.Equal(signed.Signature, authority.fixedSig) {
		t.Errorf("Signature = %x, want %x", signed.Signature, authority.fixedSig)
	}
	if !bytes.Equal(signed.TBS, tbs) {
		t.Errorf("TBS = %x, want %x", signed.TBS, tbs)
	}

	bits := signed.SignatureBitString()
	if bits.BitLength != len(authority.fixedSig)*8 {
		t.Errorf("BitLength = %d, want %d", bits.BitLength, len(authority.fixedSig)*8)
	}
}

func TestU_RemoteSigner_Finalize_ExactlyOnce(t *testing.T) {
	authority := newTestAuthority(t)
	info := mustResolve(t, KeySpecECCNistP256)
	signer := NewRemoteSigner(info, "key-1", authority)

	unsigned := signer.NewUnsigned([]byte("to-be-signed"))

	if _, err := unsigned.Finalize(context.Background()); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if authority.signCalls != 1 {
		t.Errorf("signCalls = %d, want 1", authority.signCalls)
	}

	_, err := unsigned.Finalize(context.Background())
	if !errors.Is(err, ErrAlreadyFinalized) {
		t.Errorf("second Finalize() error = %v, want ErrAlreadyFinalized", err)
	}
	if authority.signCalls != 1 {
		t.Errorf("signCalls after second Finalize = %d, want 1", authority.signCalls)
	}
}

func TestU_RemoteSigner_Finalize_RemoteError(t *testing.T) {
	authority := newTestAuthority(t)
	authority.signErr = fmt.Errorf("kms unavailable")

	info := mustResolve(t, KeySpecECCNistP256)
	signer := NewRemoteSigner(info, "key-1", authority)

	_, err := signer.NewUnsigned([]byte("to-be-signed")).Finalize(context.Background())
	if !errors.Is(err, ErrSigning) {
		t.Errorf("Finalize() error = %v, want ErrSigning", err)
	}
}

// A failed Finalize still consumes the request: the transition is one-way
// even on error.
func TestU_RemoteSigner_Finalize_NoRetryAfterFailure(t *testing.T) {
	authority := newTestAuthority(t)
	authority.signErr = fmt.Errorf("kms unavailable")

	info := mustResolve(t, KeySpecECCNistP256)
	unsigned := NewRemoteSigner(info, "key-1", authority).NewUnsigned([]byte("tbs"))

	if _, err := unsigned.Finalize(context.Background()); err == nil {
		t.Fatal("Finalize() expected error")
	}

	authority.signErr = nil
	_, err := unsigned.Finalize(context.Background())
	if !errors.Is(err, ErrAlreadyFinalized) {
		t.Errorf("Finalize() after failure error = %v, want ErrAlreadyFinalized", err)
	}
}
