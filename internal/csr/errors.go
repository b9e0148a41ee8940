// Package csr builds PKCS#10 certification requests whose signature is
// produced by a remote signing authority. The private key never leaves the
// authority; the builder only hands over the exact bytes to be signed and
// receives the raw signature back.
package csr

import (
	"errors"
	"fmt"
)

// Sentinel errors for request construction.
// Use errors.Is() to check for these errors through the error chain.
var (
	// ErrUnsupportedKeySpec indicates the configured key spec has no catalog entry.
	ErrUnsupportedKeySpec = errors.New("unsupported key spec")

	// ErrUnsupportedAlgorithm indicates the signing algorithm cannot be
	// represented by the local encoder.
	ErrUnsupportedAlgorithm = errors.New("unsupported signing algorithm")

	// ErrInvalidPublicKey indicates the public key bytes are not a well-formed
	// SubjectPublicKeyInfo for the expected key family.
	ErrInvalidPublicKey = errors.New("invalid public key")

	// ErrExtensionEncoding indicates the requested-extensions set could not be encoded.
	ErrExtensionEncoding = errors.New("extension encoding failed")

	// ErrSigning indicates the remote signing call failed.
	ErrSigning = errors.New("remote signing failed")

	// ErrAlreadyFinalized indicates Finalize was called twice on the same request.
	ErrAlreadyFinalized = errors.New("request already finalized")
)

// InvalidNameError reports a subject name field containing forbidden characters.
// It supports errors.As() so callers can recover the offending field.
type InvalidNameError struct {
	Field string // "common_name" or "country_code"
	Value string
}

// Error implements the error interface.
func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("subject name field %s contains illegal characters: %q", e.Field, e.Value)
}

// BuildError wraps a pipeline failure with the stage that produced it.
// The CSR pipeline is fail-fast: any stage error aborts the whole build and
// surfaces here with enough context to diagnose without retrying.
type BuildError struct {
	Stage string // "configure", "name", "fetch-key", "build", "sign", "encode"
	Err   error
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	return fmt.Sprintf("csr %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *BuildError) Unwrap() error { return e.Err }

// NewBuildError creates a BuildError for the given stage.
func NewBuildError(stage string, err error) *BuildError {
	return &BuildError{Stage: stage, Err: err}
}
