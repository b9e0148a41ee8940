package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/remiblancher/kms-csr/internal/config"
	"github.com/remiblancher/kms-csr/internal/csr"
	"github.com/remiblancher/kms-csr/internal/remote"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a certification request",
	Long: `Create a PKCS#10 certification request signed by the remote key.

The key pair never leaves the authority: the public key is fetched, the
request body is assembled locally, and the signature is delegated to the
backend (AWS KMS or a PKCS#11 token).

The subject contains exactly a common name and a country code. A
BasicConstraints extension with CA=false is requested via the PKCS#9
extensionRequest attribute.

Examples:
  # Create a CSR using the settings in config.yaml
  kmscsr create --config config.yaml --out device.csr

  # Override the subject from the command line
  kmscsr create --config config.yaml --cn device-0002 --out device.csr`,
	RunE: runCreate,
}

var (
	createConfigPath string
	createOutput     string
	createCN         string
	createCountry    string
)

func init() {
	createCmd.Flags().StringVarP(&createConfigPath, "config", "c", "", "Path to configuration file (required)")
	_ = createCmd.MarkFlagRequired("config")
	createCmd.Flags().StringVarP(&createOutput, "out", "o", "", "Output file (default: stdout)")
	createCmd.Flags().StringVar(&createCN, "cn", "", "Override the subject common name")
	createCmd.Flags().StringVar(&createCountry, "country", "", "Override the subject country code")
}

func runCreate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(createConfigPath)
	if err != nil {
		return err
	}

	if createCN != "" {
		cfg.CertCommonName = createCN
	}
	if createCountry != "" {
		cfg.CertCountryCode = createCountry
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	authority, cleanup, err := buildAuthority(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	keyID, err := cfg.KeyID()
	if err != nil {
		return err
	}

	creator := &csr.Creator{
		Authority:   authority,
		Backend:     cfg.Backend,
		KeyID:       keyID,
		KeySpec:     csr.KeySpec(cfg.KeySpec()),
		CommonName:  cfg.CertCommonName,
		CountryCode: cfg.CertCountryCode,
	}

	result, err := creator.Create(ctx)
	if err != nil {
		return err
	}

	if createOutput == "" {
		fmt.Print(string(result.PEM))
		return nil
	}

	if err := os.WriteFile(createOutput, result.PEM, 0644); err != nil {
		return fmt.Errorf("failed to write CSR: %w", err)
	}

	fmt.Printf("CSR created: %s\n", createOutput)
	fmt.Printf("  Subject:   %s\n", result.Subject)
	fmt.Printf("  Key:       %s (%s)\n", keyID, cfg.KeySpec())
	return nil
}

// buildAuthority constructs the remote authority for the configured backend.
// The returned cleanup function releases backend resources and must always
// be called.
func buildAuthority(ctx context.Context, cfg *config.Config) (remote.Authority, func(), error) {
	switch cfg.Backend {
	case config.BackendPKCS11:
		p11cfg, err := cfg.ToPKCS11Config()
		if err != nil {
			return nil, nil, err
		}
		authority, err := remote.NewPKCS11Authority(*p11cfg)
		if err != nil {
			return nil, nil, err
		}
		return authority, func() { _ = authority.Close() }, nil

	default:
		arn, err := config.ParseKeyARN(cfg.AWSKeyARN)
		if err != nil {
			return nil, nil, err
		}
		authority, err := remote.NewAWSKMSAuthority(ctx, arn.Region)
		if err != nil {
			return nil, nil, err
		}
		return authority, func() {}, nil
	}
}
