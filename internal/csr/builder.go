package csr

import (
	"context"
	"crypto/ecdsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"
)

// certificationRequestInfo is the TBS portion of a PKCS#10 request (RFC 2986).
// All fields are carried as raw DER so the serialized bytes handed to the
// signer are reproduced byte-for-byte in the final structure.
type certificationRequestInfo struct {
	Version       int
	Subject       asn1.RawValue
	PublicKey     asn1.RawValue
	RawAttributes asn1.RawValue
}

// certificationRequest is the final signed PKCS#10 structure.
type certificationRequest struct {
	CertificationRequestInfo asn1.RawValue
	SignatureAlgorithm       pkix.AlgorithmIdentifier
	Signature                asn1.BitString
}

// SignedCertificationRequest is a fully built and signed certification
// request. Immutable once constructed; it exists only after a successful
// remote signing call.
type SignedCertificationRequest struct {
	// RawTBS is the exact serialized CertificationRequestInfo that was signed.
	RawTBS []byte

	// Algorithm is the declared signature algorithm identifier.
	Algorithm pkix.AlgorithmIdentifier

	// Signature is the raw signature bytes from the authority.
	Signature []byte
}

// MarshalDER returns the DER encoding of the signed request. The embedded TBS
// bytes are emitted untouched, so the signature stays verifiable.
func (r *SignedCertificationRequest) MarshalDER() ([]byte, error) {
	der, err := asn1.Marshal(certificationRequest{
		CertificationRequestInfo: asn1.RawValue{FullBytes: r.RawTBS},
		SignatureAlgorithm:       r.Algorithm,
		Signature:                asn1.BitString{Bytes: r.Signature, BitLength: len(r.Signature) * 8},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal certification request: %w", err)
	}
	return der, nil
}

// CreateAndSign assembles the certification-request body from the subject
// name, public key and requested extensions, has it signed by the remote
// signer, and returns the signed structure.
//
// The sequence is linear and fail-fast: any step error aborts the whole build
// and no partial artifact is produced.
func CreateAndSign(ctx context.Context, publicKeyDER []byte, subject *SubjectName, extraExts []pkix.Extension, signer *RemoteSigner) (*SignedCertificationRequest, error) {
	if err := checkPublicKey(publicKeyDER, signer.info); err != nil {
		return nil, err
	}

	exts := make([]pkix.Extension, 0, 1+len(extraExts))
	bc, err := BasicConstraintsExtension()
	if err != nil {
		return nil, err
	}
	exts = append(exts, bc)
	exts = append(exts, extraExts...)

	attrBytes, err := extensionRequestAttribute(exts)
	if err != nil {
		return nil, err
	}
	attrsWrapped, err := wrapAttributes(attrBytes)
	if err != nil {
		return nil, err
	}

	tbs, err := asn1.Marshal(certificationRequestInfo{
		Version:       0,
		Subject:       asn1.RawValue{FullBytes: subject.RawDER()},
		PublicKey:     asn1.RawValue{FullBytes: publicKeyDER},
		RawAttributes: asn1.RawValue{FullBytes: attrsWrapped},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal CertificationRequestInfo: %w", err)
	}

	// Declare before signing: an algorithm the encoder cannot represent must
	// fail without a remote call.
	if _, err := signer.AlgorithmIdentifier(); err != nil {
		return nil, err
	}

	signed, err := signer.NewUnsigned(tbs).Finalize(ctx)
	if err != nil {
		return nil, err
	}

	return &SignedCertificationRequest{
		RawTBS:    signed.TBS,
		Algorithm: signed.Algorithm,
		Signature: signed.Signature,
	}, nil
}

// checkPublicKey verifies the fetched key material is a well-formed
// SubjectPublicKeyInfo for the catalog entry's key family.
func checkPublicKey(publicKeyDER []byte, info AlgorithmInfo) error {
	pub, err := x509.ParsePKIXPublicKey(publicKeyDER)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}

	switch info.Family {
	case FamilyECDSA:
		ecPub, ok := pub.(*ecdsa.PublicKey)
		if !ok {
			return fmt.Errorf("%w: expected ECDSA key, got %T", ErrInvalidPublicKey, pub)
		}
		if ecPub.Curve != info.Curve {
			return fmt.Errorf("%w: expected curve %s, got %s", ErrInvalidPublicKey,
				info.Curve.Params().Name, ecPub.Curve.Params().Name)
		}
	default:
		return fmt.Errorf("%w: unknown key family", ErrInvalidPublicKey)
	}
	return nil
}
