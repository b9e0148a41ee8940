package csr

import (
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// basicConstraints mirrors the X.509 BasicConstraints ASN.1 structure.
//
//	BasicConstraints ::= SEQUENCE {
//	    cA                 BOOLEAN DEFAULT FALSE,
//	    pathLenConstraint  INTEGER (0..MAX) OPTIONAL
//	}
type basicConstraints struct {
	IsCA       bool `asn1:"optional"`
	MaxPathLen int  `asn1:"optional,default:-1"`
}

// extension mirrors the X.509 Extension structure for marshalling.
type extension struct {
	OID      asn1.ObjectIdentifier
	Critical bool `asn1:"optional"`
	Value    []byte
}

// rawAttribute is a PKCS#10 attribute in standard format:
//
//	Attribute ::= SEQUENCE { type OBJECT IDENTIFIER, values SET OF ANY }
//
// This avoids the extra nesting that Go's pkix.AttributeTypeAndValueSET produces.
type rawAttribute struct {
	Type   asn1.ObjectIdentifier
	Values []asn1.RawValue `asn1:"set"`
}

// BasicConstraintsExtension builds the non-critical BasicConstraints extension
// with CA=false. This request is for an end-entity certificate only.
func BasicConstraintsExtension() (pkix.Extension, error) {
	value, err := asn1.Marshal(basicConstraints{IsCA: false, MaxPathLen: -1})
	if err != nil {
		return pkix.Extension{}, fmt.Errorf("%w: basic constraints: %v", ErrExtensionEncoding, err)
	}
	return pkix.Extension{
		Id:       OIDBasicConstraints,
		Critical: false,
		Value:    value,
	}, nil
}

// extensionRequestAttribute packs the requested extensions into the PKCS#9
// extensionRequest attribute (RFC 2985). The attribute value is the DER
// Extensions SEQUENCE, wrapped in the attribute's SET.
func extensionRequestAttribute(exts []pkix.Extension) ([]byte, error) {
	var extsContent []byte
	for _, ext := range exts {
		extBytes, err := asn1.Marshal(extension{
			OID:      ext.Id,
			Critical: ext.Critical,
			Value:    ext.Value,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: extension %s: %v", ErrExtensionEncoding, ext.Id, err)
		}
		extsContent = append(extsContent, extBytes...)
	}

	extsSeq, err := asn1.Marshal(asn1.RawValue{
		Class:      asn1.ClassUniversal,
		Tag:        asn1.TagSequence,
		IsCompound: true,
		Bytes:      extsContent,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: extensions sequence: %v", ErrExtensionEncoding, err)
	}

	attrBytes, err := asn1.Marshal(rawAttribute{
		Type:   OIDExtensionRequest,
		Values: []asn1.RawValue{{FullBytes: extsSeq}},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: extension request attribute: %v", ErrExtensionEncoding, err)
	}
	return attrBytes, nil
}

// wrapAttributes wraps the concatenated attribute encodings in the
// context-specific [0] IMPLICIT tag required by CertificationRequestInfo.
func wrapAttributes(content []byte) ([]byte, error) {
	var b cryptobyte.Builder
	b.AddASN1(cryptobyte_asn1.Tag(0).Constructed().ContextSpecific(), func(b *cryptobyte.Builder) {
		b.AddBytes(content)
	})
	wrapped, err := b.Bytes()
	if err != nil {
		return nil, fmt.Errorf("%w: attribute wrapping: %v", ErrExtensionEncoding, err)
	}
	return wrapped, nil
}
