package csr

import (
	"crypto"
	"crypto/elliptic"
	"crypto/x509"
	"encoding/asn1"
	"fmt"
)

// KeySpec identifies the asymmetric key spec of the remote key, using the
// authority's naming (e.g. "ECC_NIST_P256").
type KeySpec string

// Supported key specs.
const (
	KeySpecECCNistP256 KeySpec = "ECC_NIST_P256"
)

// KeyFamily categorizes the local verification key family for a key spec.
type KeyFamily int

const (
	FamilyUnknown KeyFamily = iota
	FamilyECDSA
)

// String returns the family name.
func (f KeyFamily) String() string {
	switch f {
	case FamilyECDSA:
		return "ecdsa"
	default:
		return "unknown"
	}
}

// AlgorithmInfo holds the catalog entry for a key spec: the remote signing
// algorithm name, the local verification family, and the identifiers the
// local encoder needs to represent the signature.
type AlgorithmInfo struct {
	// SigningAlgorithm is the algorithm name sent on the remote sign call
	// (e.g. "ECDSA_SHA_256").
	SigningAlgorithm string

	// Family is the local key family used to interpret the public key.
	Family KeyFamily

	// Curve is the expected curve for ECDSA keys.
	Curve elliptic.Curve

	// Hash is the digest the signature scheme is defined over.
	Hash crypto.Hash

	// SignatureOID is the AlgorithmIdentifier OID carried in the CSR.
	SignatureOID asn1.ObjectIdentifier

	// X509SigAlg is the matching crypto/x509 signature algorithm.
	X509SigAlg x509.SignatureAlgorithm
}

// catalog maps each key spec to exactly one signing algorithm and one local
// verification family. The lookup is keyed by KeySpec so a future spec that
// supports several hash sizes is a table change, not an interface change.
var catalog = map[KeySpec]AlgorithmInfo{
	KeySpecECCNistP256: {
		SigningAlgorithm: "ECDSA_SHA_256",
		Family:           FamilyECDSA,
		Curve:            elliptic.P256(),
		Hash:             crypto.SHA256,
		SignatureOID:     OIDSignatureECDSAWithSHA256,
		X509SigAlg:       x509.ECDSAWithSHA256,
	},
}

// ResolveKeySpec resolves a key spec to its algorithm mapping.
// Unknown or empty specs are configuration errors, rejected before any
// remote call is made.
func ResolveKeySpec(spec KeySpec) (AlgorithmInfo, error) {
	if spec == "" {
		return AlgorithmInfo{}, fmt.Errorf("%w: key spec is empty", ErrUnsupportedKeySpec)
	}
	info, ok := catalog[spec]
	if !ok {
		return AlgorithmInfo{}, fmt.Errorf("%w: %s", ErrUnsupportedKeySpec, spec)
	}
	return info, nil
}

// SupportedKeySpecs returns the key specs present in the catalog.
func SupportedKeySpecs() []KeySpec {
	specs := make([]KeySpec, 0, len(catalog))
	for spec := range catalog {
		specs = append(specs, spec)
	}
	return specs
}
