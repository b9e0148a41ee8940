package main

import (
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/asn1"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/remiblancher/kms-csr/internal/csr"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <csr-file>",
	Short: "Display certification request information",
	Long: `Display detailed information about a PEM-encoded certification request.

Shows subject, public key algorithm, signature algorithm and requested
extensions, and verifies the signature against the embedded public key.

Examples:
  kmscsr inspect device.csr`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	signed, err := csr.DecodePEM(data)
	if err != nil {
		return err
	}

	der, err := signed.MarshalDER()
	if err != nil {
		return err
	}

	req, err := x509.ParseCertificateRequest(der)
	if err != nil {
		return fmt.Errorf("failed to parse CSR: %w", err)
	}

	fmt.Println("Certification Request:")
	fmt.Printf("  Subject:        %s\n", req.Subject.String())
	fmt.Printf("  Signature Alg:  %s\n", req.SignatureAlgorithm)
	fmt.Printf("  Public Key Alg: %s\n", formatPublicKey(req))

	showRequestedExtensions(req)

	// Verify signature
	if err := req.CheckSignature(); err != nil {
		fmt.Printf("  Signature:      INVALID (%v)\n", err)
	} else {
		fmt.Printf("  Signature:      valid\n")
	}

	return nil
}

func formatPublicKey(req *x509.CertificateRequest) string {
	if pub, ok := req.PublicKey.(*ecdsa.PublicKey); ok {
		return fmt.Sprintf("ECDSA (%s)", pub.Curve.Params().Name)
	}
	return req.PublicKeyAlgorithm.String()
}

func showRequestedExtensions(req *x509.CertificateRequest) {
	for _, ext := range req.Extensions {
		if !ext.Id.Equal(csr.OIDBasicConstraints) {
			continue
		}

		var bc struct {
			IsCA       bool `asn1:"optional"`
			MaxPathLen int  `asn1:"optional,default:-1"`
		}
		if _, err := asn1.Unmarshal(ext.Value, &bc); err != nil {
			fmt.Printf("  Extensions:     BasicConstraints (unparsable)\n")
			continue
		}
		fmt.Printf("  Extensions:     BasicConstraints CA=%v\n", bc.IsCA)
	}
}
