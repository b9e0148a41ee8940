// Package remote provides access to signing authorities that hold the private
// key and perform signature computation on request, never exposing the key
// itself. Two backends are implemented: AWS KMS and PKCS#11 tokens.
package remote

import (
	"context"
	"errors"
)

// ErrRemoteCall indicates a call to the signing authority failed
// (network, auth, throttling). The caller does not retry; any retry policy
// belongs to the backend's own client configuration.
var ErrRemoteCall = errors.New("remote call failed")

// Authority is the capability exposed by a remote signing authority.
//
// Both operations are synchronous, single-shot calls with opaque latency and
// failure modes. The package imposes no timeout of its own; cancellation and
// deadlines flow through the context.
type Authority interface {
	// GetPublicKey returns the DER-encoded SubjectPublicKeyInfo of the key.
	GetPublicKey(ctx context.Context, keyID string) ([]byte, error)

	// Sign signs message under the given key and signing algorithm name
	// (e.g. "ECDSA_SHA_256") and returns the raw signature bytes.
	// For ECDSA keys the signature is the DER-encoded r/s sequence.
	Sign(ctx context.Context, keyID, signingAlgorithm string, message []byte) ([]byte, error)
}
