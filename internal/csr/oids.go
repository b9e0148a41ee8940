package csr

import "encoding/asn1"

// X.500 attribute type OIDs used in the subject name.
var (
	// OIDCommonName is the commonName attribute (2.5.4.3).
	OIDCommonName = asn1.ObjectIdentifier{2, 5, 4, 3}

	// OIDCountry is the countryName attribute (2.5.4.6).
	OIDCountry = asn1.ObjectIdentifier{2, 5, 4, 6}
)

// PKCS#9 and X.509v3 extension OIDs.
var (
	// OIDExtensionRequest is the PKCS#9 extensionRequest attribute (1.2.840.113549.1.9.14).
	OIDExtensionRequest = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 14}

	// OIDBasicConstraints is the X.509 basicConstraints extension (2.5.29.19).
	OIDBasicConstraints = asn1.ObjectIdentifier{2, 5, 29, 19}
)

// Signature algorithm OIDs.
var (
	// OIDSignatureECDSAWithSHA256 is ecdsa-with-SHA256 (1.2.840.10045.4.3.2).
	OIDSignatureECDSAWithSHA256 = asn1.ObjectIdentifier{1, 2, 840, 10045, 4, 3, 2}
)
