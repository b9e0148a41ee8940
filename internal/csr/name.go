package csr

import (
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"
	"strings"
)

// forbiddenNameChars are RDN separators and the assignment operator. A value
// containing them would corrupt the distinguished-name encoding, so both
// fields are rejected up front (RFC 1779 section 2.3 defines the full syntax;
// this matches the checks the signing pipeline relies on).
const forbiddenNameChars = ",;="

// SubjectName is the validated, encoded subject of the certification request.
// The RDN order is fixed: Common Name first, then Country. The order affects
// the DER encoding and must stay stable for reproducible output.
type SubjectName struct {
	CommonName  string
	CountryCode string

	raw []byte // DER-encoded RDNSequence
}

// BuildSubjectName validates the subject fields and encodes them as an
// RDNSequence. A field containing ',', ';' or '=' yields an InvalidNameError
// naming the field; no encoding is attempted in that case.
func BuildSubjectName(commonName, countryCode string) (*SubjectName, error) {
	if strings.ContainsAny(commonName, forbiddenNameChars) {
		return nil, &InvalidNameError{Field: "common_name", Value: commonName}
	}
	if strings.ContainsAny(countryCode, forbiddenNameChars) {
		return nil, &InvalidNameError{Field: "country_code", Value: countryCode}
	}

	// pkix.Name.ToRDNSequence emits attributes in its own fixed order
	// (country before CN), so the sequence is assembled by hand to keep the
	// CN-then-C order of the request format.
	rdns := pkix.RDNSequence{
		{pkix.AttributeTypeAndValue{Type: OIDCommonName, Value: commonName}},
		{pkix.AttributeTypeAndValue{Type: OIDCountry, Value: countryCode}},
	}

	raw, err := asn1.Marshal(rdns)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal subject name: %w", err)
	}

	return &SubjectName{
		CommonName:  commonName,
		CountryCode: countryCode,
		raw:         raw,
	}, nil
}

// RawDER returns the DER-encoded RDNSequence.
func (n *SubjectName) RawDER() []byte {
	return n.raw
}

// String returns the subject in RFC 2253-style notation.
func (n *SubjectName) String() string {
	return fmt.Sprintf("CN=%s,C=%s", n.CommonName, n.CountryCode)
}
