package csr

import (
	"context"
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"

	"github.com/remiblancher/kms-csr/internal/remote"
)

// RemoteSigner delegates the CSR signature to a remote authority. It separates
// the three timings of a deferred signature: declaring the algorithm
// identifier, capturing the exact bytes to be signed, and the single remote
// call that produces the signature.
//
// A RemoteSigner is not safe to share across concurrent builds; each pipeline
// must use its own instance.
type RemoteSigner struct {
	info      AlgorithmInfo
	keyID     string
	authority remote.Authority
}

// NewRemoteSigner creates a signer for the given catalog entry, key and authority.
func NewRemoteSigner(info AlgorithmInfo, keyID string, authority remote.Authority) *RemoteSigner {
	return &RemoteSigner{
		info:      info,
		keyID:     keyID,
		authority: authority,
	}
}

// AlgorithmIdentifier returns the signature-algorithm identifier the
// CertificationRequestInfo must declare. Pure function of the configured
// algorithm; fails if the local encoder has no representation for it.
func (s *RemoteSigner) AlgorithmIdentifier() (pkix.AlgorithmIdentifier, error) {
	switch s.info.SigningAlgorithm {
	case "ECDSA_SHA_256":
		return pkix.AlgorithmIdentifier{Algorithm: OIDSignatureECDSAWithSHA256}, nil
	default:
		return pkix.AlgorithmIdentifier{}, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, s.info.SigningAlgorithm)
	}
}

// NewUnsigned captures the exact bytes to be signed. The caller must hand over
// the complete serialized CertificationRequestInfo; nothing may be appended
// after this point.
func (s *RemoteSigner) NewUnsigned(tbs []byte) *UnsignedRequest {
	return &UnsignedRequest{
		tbs:    tbs,
		signer: s,
	}
}

// UnsignedRequest is a to-be-signed request body awaiting its one remote
// signing call. The transition to SignedRequest happens in Finalize and can
// occur at most once.
type UnsignedRequest struct {
	tbs       []byte
	signer    *RemoteSigner
	finalized bool
}

// TBS returns the bytes that will be signed.
func (u *UnsignedRequest) TBS() []byte {
	return u.tbs
}

// Finalize issues exactly one remote sign call over the captured bytes and
// returns the signed request. Calling Finalize twice on the same value is an
// error; a remote failure aborts with no partial result.
func (u *UnsignedRequest) Finalize(ctx context.Context) (*SignedRequest, error) {
	if u.finalized {
		return nil, ErrAlreadyFinalized
	}
	u.finalized = true

	algID, err := u.signer.AlgorithmIdentifier()
	if err != nil {
		return nil, err
	}

	sig, err := u.signer.authority.Sign(ctx, u.signer.keyID, u.signer.info.SigningAlgorithm, u.tbs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSigning, err)
	}

	return &SignedRequest{
		TBS:       u.tbs,
		Algorithm: algID,
		Signature: sig,
	}, nil
}

// SignedRequest is the outcome of a successful remote signing call.
// Immutable once constructed.
type SignedRequest struct {
	// TBS is the exact byte sequence that was signed.
	TBS []byte

	// Algorithm is the identifier declared before signing.
	Algorithm pkix.AlgorithmIdentifier

	// Signature is the raw signature returned by the authority.
	Signature []byte
}

// SignatureBitString returns the signature framed as an ASN.1 BIT STRING.
func (r *SignedRequest) SignatureBitString() asn1.BitString {
	return asn1.BitString{Bytes: r.Signature, BitLength: len(r.Signature) * 8}
}
