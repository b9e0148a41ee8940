package remote

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/kms/types"
)

// kmsAPI is the subset of the KMS client used by the authority.
// Narrowed for testability.
type kmsAPI interface {
	GetPublicKey(ctx context.Context, params *kms.GetPublicKeyInput, optFns ...func(*kms.Options)) (*kms.GetPublicKeyOutput, error)
	Sign(ctx context.Context, params *kms.SignInput, optFns ...func(*kms.Options)) (*kms.SignOutput, error)
}

// AWSKMSAuthority implements Authority on top of AWS KMS. The private key is
// held by KMS; only GetPublicKey and Sign are ever called. Connection
// management, credentials and retries belong to the SDK client.
type AWSKMSAuthority struct {
	client kmsAPI
}

var _ Authority = (*AWSKMSAuthority)(nil)

// NewAWSKMSAuthority creates an authority bound to the given region using the
// default AWS credential chain.
func NewAWSKMSAuthority(ctx context.Context, region string) (*AWSKMSAuthority, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &AWSKMSAuthority{client: kms.NewFromConfig(cfg)}, nil
}

// GetPublicKey fetches the DER-encoded SubjectPublicKeyInfo for the key.
func (a *AWSKMSAuthority) GetPublicKey(ctx context.Context, keyID string) ([]byte, error) {
	out, err := a.client.GetPublicKey(ctx, &kms.GetPublicKeyInput{
		KeyId: aws.String(keyID),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: KMS GetPublicKey: %v", ErrRemoteCall, err)
	}
	return out.PublicKey, nil
}

// Sign signs the full message under the key. KMS hashes the message itself
// (MessageType RAW), matching the signing algorithm's digest. For ECDSA keys
// KMS returns the DER-encoded signature.
func (a *AWSKMSAuthority) Sign(ctx context.Context, keyID, signingAlgorithm string, message []byte) ([]byte, error) {
	spec, err := signingAlgorithmSpec(signingAlgorithm)
	if err != nil {
		return nil, err
	}

	out, err := a.client.Sign(ctx, &kms.SignInput{
		KeyId:            aws.String(keyID),
		Message:          message,
		MessageType:      types.MessageTypeRaw,
		SigningAlgorithm: spec,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: KMS Sign: %v", ErrRemoteCall, err)
	}
	return out.Signature, nil
}

// signingAlgorithmSpec maps the catalog's algorithm name to the KMS spec.
func signingAlgorithmSpec(name string) (types.SigningAlgorithmSpec, error) {
	switch name {
	case "ECDSA_SHA_256":
		return types.SigningAlgorithmSpecEcdsaSha256, nil
	default:
		return "", fmt.Errorf("signing algorithm %s is not supported by the KMS backend", name)
	}
}
