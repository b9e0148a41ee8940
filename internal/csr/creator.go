package csr

import (
	"context"
	"errors"
	"fmt"

	"github.com/remiblancher/kms-csr/internal/audit"
	"github.com/remiblancher/kms-csr/internal/remote"
)

// Creator runs the full delegated-signing CSR pipeline:
// resolve key spec, build subject name, fetch public key, build and sign the
// request body, encode as PEM. Stages run strictly in that order because each
// depends on the previous stage's output, and configuration and name errors
// must surface before any remote call is made.
//
// A Creator is single-use per call; the fetched key material is read-only
// after fetch and the signer instance is never shared.
type Creator struct {
	// Authority is the remote signing capability.
	Authority remote.Authority

	// Backend names the authority implementation for audit purposes.
	Backend string

	// KeyID identifies the remote key.
	KeyID string

	// KeySpec is the asymmetric key spec of the remote key.
	KeySpec KeySpec

	// CommonName and CountryCode form the request subject.
	CommonName  string
	CountryCode string
}

// Result is the outcome of a successful pipeline run.
type Result struct {
	// PEM is the encoded certification request.
	PEM []byte

	// Signed is the underlying signed structure.
	Signed *SignedCertificationRequest

	// Subject is the validated subject name.
	Subject *SubjectName
}

// Create executes the pipeline. Every failure aborts the whole build; there
// is no retry or partial-completion state.
func (c *Creator) Create(ctx context.Context) (*Result, error) {
	info, err := ResolveKeySpec(c.KeySpec)
	if err != nil {
		return nil, NewBuildError("configure", err)
	}

	subject, err := BuildSubjectName(c.CommonName, c.CountryCode)
	if err != nil {
		return nil, NewBuildError("name", err)
	}

	publicKeyDER, err := c.Authority.GetPublicKey(ctx, c.KeyID)
	if err != nil {
		_ = audit.LogKeyFetched(c.Backend, c.KeyID, false, err.Error())
		return nil, NewBuildError("fetch-key", fmt.Errorf("%w: %v", remote.ErrRemoteCall, err))
	}
	if err := audit.LogKeyFetched(c.Backend, c.KeyID, true, ""); err != nil {
		return nil, NewBuildError("fetch-key", err)
	}

	signer := NewRemoteSigner(info, c.KeyID, c.Authority)
	signed, err := CreateAndSign(ctx, publicKeyDER, subject, nil, signer)
	if err != nil {
		// Only failures of the remote call itself belong to the sign stage.
		// Everything before it (key check, extension encoding, TBS assembly)
		// is local and never produced a sign call worth auditing.
		if !errors.Is(err, ErrSigning) {
			return nil, NewBuildError("build", err)
		}
		_ = audit.LogCSRSigned(c.Backend, c.KeyID, subject.String(), info.SigningAlgorithm, false, err.Error())
		return nil, NewBuildError("sign", err)
	}
	if err := audit.LogCSRSigned(c.Backend, c.KeyID, subject.String(), info.SigningAlgorithm, true, ""); err != nil {
		return nil, NewBuildError("sign", err)
	}

	pemBytes, err := EncodePEM(signed)
	if err != nil {
		return nil, NewBuildError("encode", err)
	}

	if err := audit.LogCSRCreated(c.Backend, c.KeyID, subject.String(), string(c.KeySpec), true, ""); err != nil {
		return nil, NewBuildError("encode", err)
	}

	return &Result{
		PEM:     pemBytes,
		Signed:  signed,
		Subject: subject,
	}, nil
}
