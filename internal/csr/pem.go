package csr

import (
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/pem"
	"fmt"
)

// pemTypeCertificateRequest is the PEM block type for PKCS#10 requests.
const pemTypeCertificateRequest = "CERTIFICATE REQUEST"

// EncodePEM serializes the signed request to DER and frames it as a PEM block
// with the standard certificate-request delimiters (base64, 64-column lines).
func EncodePEM(r *SignedCertificationRequest) ([]byte, error) {
	der, err := r.MarshalDER()
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{
		Type:  pemTypeCertificateRequest,
		Bytes: der,
	}), nil
}

// DecodePEM parses a PEM-framed certification request back into its signed
// structure. The embedded TBS bytes are preserved exactly as encoded, so
// EncodePEM(DecodePEM(x)) reproduces x byte-for-byte.
func DecodePEM(data []byte) (*SignedCertificationRequest, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}
	if block.Type != pemTypeCertificateRequest {
		return nil, fmt.Errorf("unexpected PEM block type: %s", block.Type)
	}
	return ParseDER(block.Bytes)
}

// ParseDER parses a DER-encoded certification request.
func ParseDER(der []byte) (*SignedCertificationRequest, error) {
	var req certificationRequest
	rest, err := asn1.Unmarshal(der, &req)
	if err != nil {
		return nil, fmt.Errorf("failed to parse certification request: %w", err)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("trailing data after certification request")
	}

	return &SignedCertificationRequest{
		RawTBS: req.CertificationRequestInfo.FullBytes,
		Algorithm: pkix.AlgorithmIdentifier{
			Algorithm:  req.SignatureAlgorithm.Algorithm,
			Parameters: req.SignatureAlgorithm.Parameters,
		},
		Signature: req.Signature.Bytes,
	}, nil
}
