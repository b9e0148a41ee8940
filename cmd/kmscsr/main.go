// Command kmscsr creates PKCS#10 certification requests signed by a remote
// key authority (AWS KMS or a PKCS#11 token).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/remiblancher/kms-csr/internal/audit"
)

// Build-time variables (injected by GoReleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags
var auditLogPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "kmscsr",
	Short: "Create certification requests signed by a remote key authority",
	Long: `kmscsr creates PKCS#10 certification requests whose private key never
leaves the remote authority. The key pair lives in AWS KMS (or a PKCS#11
token); the tool fetches the public key, assembles the request body locally
and delegates the signature to the authority.

Examples:
  # Create a CSR using the settings in config.yaml
  kmscsr create --config config.yaml --out device.csr

  # Display CSR information
  kmscsr inspect device.csr

  # Serve CSR creation over HTTP
  kmscsr serve --config config.yaml --port 8080`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Check for audit log path from environment if not set via flag
		if auditLogPath == "" {
			auditLogPath = os.Getenv("KMSCSR_AUDIT_LOG")
		}

		// Initialize audit logging
		if auditLogPath != "" {
			if err := audit.InitFile(auditLogPath); err != nil {
				return fmt.Errorf("failed to initialize audit log: %w", err)
			}
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return audit.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&auditLogPath, "audit-log", "",
		"Path to audit log file (or set KMSCSR_AUDIT_LOG env var)")

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(auditCmd)
}
