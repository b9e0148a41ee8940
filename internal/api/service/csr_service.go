// Package service implements the business logic behind the REST API.
package service

import (
	"context"

	"github.com/remiblancher/kms-csr/internal/csr"
	"github.com/remiblancher/kms-csr/internal/remote"
)

// CSRService creates certification requests against a fixed remote key.
// The authority, key and key spec are bound at startup; callers only
// provide the subject.
type CSRService struct {
	authority remote.Authority
	backend   string
	keyID     string
	keySpec   csr.KeySpec
}

// NewCSRService creates a new CSRService.
func NewCSRService(authority remote.Authority, backend, keyID string, keySpec csr.KeySpec) *CSRService {
	return &CSRService{
		authority: authority,
		backend:   backend,
		keyID:     keyID,
		keySpec:   keySpec,
	}
}

// Backend returns the name of the remote signing backend.
func (s *CSRService) Backend() string {
	return s.backend
}

// KeyID returns the remote key identifier.
func (s *CSRService) KeyID() string {
	return s.keyID
}

// Algorithm returns the signing algorithm name for the configured key spec.
func (s *CSRService) Algorithm() (string, error) {
	info, err := csr.ResolveKeySpec(s.keySpec)
	if err != nil {
		return "", err
	}
	return info.SigningAlgorithm, nil
}

// Create runs the CSR pipeline for the given subject.
func (s *CSRService) Create(ctx context.Context, commonName, countryCode string) (*csr.Result, error) {
	creator := &csr.Creator{
		Authority:   s.authority,
		Backend:     s.backend,
		KeyID:       s.keyID,
		KeySpec:     s.keySpec,
		CommonName:  commonName,
		CountryCode: countryCode,
	}
	return creator.Create(ctx)
}
