package main

import (
	"context"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/remiblancher/kms-csr/internal/api/server"
	"github.com/remiblancher/kms-csr/internal/api/service"
	"github.com/remiblancher/kms-csr/internal/config"
	"github.com/remiblancher/kms-csr/internal/csr"
)

// Serve command flags
var (
	serveConfigPath string
	servePort       int
	serveHost       string
	serveTLSCert    string
	serveTLSKey     string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve CSR creation over HTTP",
	Long: `Start a REST API that creates certification requests on demand.

The backend, remote key and key spec are fixed by the configuration file;
API callers only provide the subject.

Environment variables:
  KMSCSR_PORT      Port to listen on
  KMSCSR_TLS_CERT  TLS certificate file
  KMSCSR_TLS_KEY   TLS private key file

Examples:
  # Start the API
  kmscsr serve --config config.yaml --port 8080

  # Start with TLS
  kmscsr serve --config config.yaml --port 8443 --tls-cert server.crt --tls-key server.key`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "", "Path to configuration file (required)")
	_ = serveCmd.MarkFlagRequired("config")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default: 8080)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default: all interfaces)")
	serveCmd.Flags().StringVar(&serveTLSCert, "tls-cert", "", "TLS certificate file")
	serveCmd.Flags().StringVar(&serveTLSKey, "tls-key", "", "TLS private key file")
}

func runServe(cmd *cobra.Command, args []string) error {
	applyServeEnvVars()

	cfg, err := config.Load(serveConfigPath)
	if err != nil {
		return err
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

	svc := service.NewCSRService(authority, cfg.Backend, keyID, csr.KeySpec(cfg.KeySpec()))

	port := servePort
	if port == 0 {
		port = 8080
	}

	srv := server.New(&server.Config{
		Host:    serveHost,
		Port:    port,
		TLSCert: serveTLSCert,
		TLSKey:  serveTLSKey,
	}, version, svc)

	return srv.Start()
}

// applyServeEnvVars applies environment variable defaults for unset flags.
func applyServeEnvVars() {
	if servePort == 0 {
		if v := os.Getenv("KMSCSR_PORT"); v != "" {
			if p, err := strconv.Atoi(v); err == nil {
				servePort = p
			}
		}
	}
	if serveTLSCert == "" {
		serveTLSCert = os.Getenv("KMSCSR_TLS_CERT")
	}
	if serveTLSKey == "" {
		serveTLSKey = os.Getenv("KMSCSR_TLS_KEY")
	}
}
