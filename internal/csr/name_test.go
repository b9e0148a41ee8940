package csr

import (
	"crypto/x509/pkix"
	"encoding/asn1"
	"errors"
	"testing"
)

func TestU_BuildSubjectName(t *testing.T) {
	subject, err := BuildSubjectName("device-0001", "FR")
	if err != nil {
		t.Fatalf("BuildSubjectName() error = %v", err)
	}

	if subject.CommonName != "device-0001" {
		t.Errorf("CommonName = %q", subject.CommonName)
	}
	if subject.CountryCode != "FR" {
		t.Errorf("CountryCode = %q", subject.CountryCode)
	}
	if got := subject.String(); got != "CN=device-0001,C=FR" {
		t.Errorf("String() = %q, want CN=device-0001,C=FR", got)
	}
	if len(subject.RawDER()) == 0 {
		t.Error("RawDER() is empty")
	}
}

// The RDN order is CN first, then C. pkix.Name would emit the country first,
// so the encoding is checked directly.
func TestU_BuildSubjectName_RDNOrder(t *testing.T) {
	subject := mustSubject(t, "device-0001", "FR")

	var rdns pkix.RDNSequence
	rest, err := asn1.Unmarshal(subject.RawDER(), &rdns)
	if err != nil {
		t.Fatalf("Unmarshal(RawDER) error = %v", err)
	}
	if len(rest) != 0 {
		t.Fatal("trailing data after RDNSequence")
	}

	if len(rdns) != 2 {
		t.Fatalf("len(rdns) = %d, want 2", len(rdns))
	}
	if !rdns[0][0].Type.Equal(OIDCommonName) {
		t.Errorf("first RDN type = %v, want commonName", rdns[0][0].Type)
	}
	if !rdns[1][0].Type.Equal(OIDCountry) {
		t.Errorf("second RDN type = %v, want countryName", rdns[1][0].Type)
	}
	if rdns[0][0].Value != "device-0001" {
		t.Errorf("CN value = %v", rdns[0][0].Value)
	}
	if rdns[1][0].Value != "FR" {
		t.Errorf("C value = %v", rdns[1][0].Value)
	}
}

func TestU_BuildSubjectName_ForbiddenChars(t *testing.T) {
	tests := []struct {
		name      string
		cn        string
		country   string
		wantField string
	}{
		{"[U] Name: comma in CN", "device,0001", "FR", "common_name"},
		{"[U] Name: semicolon in CN", "device;0001", "FR", "common_name"},
		{"[U] Name: equals in CN", "device=0001", "FR", "common_name"},
		{"[U] Name: comma in country", "device-0001", "F,R", "country_code"},
		{"[U] Name: equals in country", "device-0001", "F=", "country_code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildSubjectName(tt.cn, tt.country)
			var nameErr *InvalidNameError
			if !errors.As(err, &nameErr) {
				t.Fatalf("BuildSubjectName() error = %v, want InvalidNameError", err)
			}
			if nameErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", nameErr.Field, tt.wantField)
			}
		})
	}
}

// Both fields are validated before any encoding, so a bad CN is reported
// even when the country is also bad.
func TestU_BuildSubjectName_CNCheckedFirst(t *testing.T) {
	_, err := BuildSubjectName("a,b", "F=")
	var nameErr *InvalidNameError
	if !errors.As(err, &nameErr) {
		t.Fatalf("BuildSubjectName() error = %v, want InvalidNameError", err)
	}
	if nameErr.Field != "common_name" {
		t.Errorf("Field = %q, want common_name", nameErr.Field)
	}
}
