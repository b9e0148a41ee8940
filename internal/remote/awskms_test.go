package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/kms/types"
)

// fakeKMS records the requests the authority makes.
type fakeKMS struct {
	getPublicKeyIn  *kms.GetPublicKeyInput
	getPublicKeyOut *kms.GetPublicKeyOutput
	getPublicKeyErr error

	signIn  *kms.SignInput
	signOut *kms.SignOutput
	signErr error
}

func (f *fakeKMS) GetPublicKey(_ context.Context, params *kms.GetPublicKeyInput, _ ...func(*kms.Options)) (*kms.GetPublicKeyOutput, error) {
	f.getPublicKeyIn = params
	if f.getPublicKeyErr != nil {
		return nil, f.getPublicKeyErr
	}
	return f.getPublicKeyOut, nil
}

func (f *fakeKMS) Sign(_ context.Context, params *kms.SignInput, _ ...func(*kms.Options)) (*kms.SignOutput, error) {
	f.signIn = params
	if f.signErr != nil {
		return nil, f.signErr
	}
	return f.signOut, nil
}

func TestU_AWSKMS_GetPublicKey(t *testing.T) {
	spki := []byte{0x30, 0x59, 0x30, 0x13}
	client := &fakeKMS{
		getPublicKeyOut: &kms.GetPublicKeyOutput{PublicKey: spki},
	}
	a := &AWSKMSAuthority{client: client}

	got, err := a.GetPublicKey(context.Background(), "key-1")
	if err != nil {
		t.Fatalf("GetPublicKey() error = %v", err)
	}
	if !bytes.Equal(got, spki) {
		t.Errorf("public key = %x, want %x", got, spki)
	}
	if client.getPublicKeyIn == nil || *client.getPublicKeyIn.KeyId != "key-1" {
		t.Errorf("KeyId not passed through: %+v", client.getPublicKeyIn)
	}
}

func TestU_AWSKMS_GetPublicKey_Error(t *testing.T) {
	client := &fakeKMS{getPublicKeyErr: fmt.Errorf("AccessDeniedException")}
	a := &AWSKMSAuthority{client: client}

	_, err := a.GetPublicKey(context.Background(), "key-1")
	if !errors.Is(err, ErrRemoteCall) {
		t.Errorf("GetPublicKey() error = %v, want ErrRemoteCall", err)
	}
}

// The full message is sent with MessageType RAW; KMS hashes it itself.
func TestU_AWSKMS_Sign(t *testing.T) {
	sig := []byte{0x30, 0x44, 0x02, 0x20}
	client := &fakeKMS{
		signOut: &kms.SignOutput{Signature: sig},
	}
	a := &AWSKMSAuthority{client: client}

	message := []byte("certification-request-info")
	got, err := a.Sign(context.Background(), "key-1", "ECDSA_SHA_256", message)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	if !bytes.Equal(got, sig) {
		t.Errorf("signature = %x, want %x", got, sig)
	}

	in := client.signIn
	if in == nil {
		t.Fatal("Sign request not recorded")
	}
	if *in.KeyId != "key-1" {
		t.Errorf("KeyId = %q, want key-1", *in.KeyId)
	}
	if in.MessageType != types.MessageTypeRaw {
		t.Errorf("MessageType = %v, want RAW", in.MessageType)
	}
	if in.SigningAlgorithm != types.SigningAlgorithmSpecEcdsaSha256 {
		t.Errorf("SigningAlgorithm = %v, want ECDSA_SHA_256", in.SigningAlgorithm)
	}
	if !bytes.Equal(in.Message, message) {
		t.Error("message bytes not passed through unchanged")
	}
}

func TestU_AWSKMS_Sign_Error(t *testing.T) {
	client := &fakeKMS{signErr: fmt.Errorf("KMSInvalidStateException")}
	a := &AWSKMSAuthority{client: client}

	_, err := a.Sign(context.Background(), "key-1", "ECDSA_SHA_256", []byte("msg"))
	if !errors.Is(err, ErrRemoteCall) {
		t.Errorf("Sign() error = %v, want ErrRemoteCall", err)
	}
}

func TestU_AWSKMS_Sign_UnsupportedAlgorithm(t *testing.T) {
	client := &fakeKMS{}
	a := &AWSKMSAuthority{client: client}

	_, err := a.Sign(context.Background(), "key-1", "RSASSA_PSS_SHA_256", []byte("msg"))
	if err == nil {
		t.Fatal("Sign() expected error for unsupported algorithm")
	}
	if client.signIn != nil {
		t.Error("Sign request should not reach KMS for unsupported algorithm")
	}
}
