//go:build cgo

package remote

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/x509"
	"encoding/asn1"
	"encoding/hex"
	"fmt"
	"math/big"
	"sync"

	"github.com/miekg/pkcs11"
)

// PKCS11Config holds the PKCS#11 token configuration.
type PKCS11Config struct {
	// ModulePath is the path to the PKCS#11 module (.so/.dylib/.dll)
	ModulePath string `yaml:"module_path"`

	// TokenLabel is the label of the token to use
	TokenLabel string `yaml:"token_label"`

	// TokenSerial is the serial number of the token (alternative to TokenLabel)
	TokenSerial string `yaml:"token_serial"`

	// PIN is the user PIN for the token
	PIN string `yaml:"pin"`

	// KeyID is the CKA_ID of the key (hex encoded, alternative to the key label
	// passed per call)
	KeyID string `yaml:"key_id"`

	// SlotID is the slot ID (optional, use TokenLabel if not specified)
	SlotID *uint `yaml:"slot_id"`
}

// PKCS11Authority implements Authority against a PKCS#11 token. The key ID
// passed to GetPublicKey and Sign is interpreted as the CKA_LABEL of the key
// pair on the token, unless the configuration pins a CKA_ID instead.
//
// Signing uses CKM_ECDSA_SHA256 over the full message so the token hashes the
// input itself. The raw r||s signature is re-encoded as ASN.1 DER to match
// what the KMS backend produces.
type PKCS11Authority struct {
	mu      sync.Mutex
	ctx     *pkcs11.Ctx
	session pkcs11.SessionHandle
	cfg     PKCS11Config
	closed  bool
}

var _ Authority = (*PKCS11Authority)(nil)

// NewPKCS11Authority loads the module, opens a session on the configured
// token and logs in. The caller must Close the authority when done.
func NewPKCS11Authority(cfg PKCS11Config) (*PKCS11Authority, error) {
	if cfg.ModulePath == "" {
		return nil, fmt.Errorf("PKCS#11 module path is required")
	}

	ctx := pkcs11.New(cfg.ModulePath)
	if ctx == nil {
		return nil, fmt.Errorf("failed to load PKCS#11 module: %s", cfg.ModulePath)
	}

	if err := ctx.Initialize(); err != nil {
		if p11err, ok := err.(pkcs11.Error); !ok || p11err != pkcs11.CKR_CRYPTOKI_ALREADY_INITIALIZED {
			ctx.Destroy()
			return nil, fmt.Errorf("failed to initialize: %w", err)
		}
	}

	slot, err := findSlot(ctx, cfg)
	if err != nil {
		ctx.Destroy()
		return nil, err
	}

	session, err := ctx.OpenSession(slot, pkcs11.CKF_SERIAL_SESSION)
	if err != nil {
		ctx.Destroy()
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	if cfg.PIN != "" {
		if err := ctx.Login(session, pkcs11.CKU_USER, cfg.PIN); err != nil {
			if p11err, ok := err.(pkcs11.Error); !ok || p11err != pkcs11.CKR_USER_ALREADY_LOGGED_IN {
				_ = ctx.CloseSession(session)
				ctx.Destroy()
				return nil, fmt.Errorf("failed to login: %w", err)
			}
		}
	}

	return &PKCS11Authority{ctx: ctx, session: session, cfg: cfg}, nil
}

// Close logs out and releases the session. The module is not finalized:
// C_Finalize is a global operation that would affect all PKCS#11 users in the
// process.
func (a *PKCS11Authority) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true

	if a.cfg.PIN != "" {
		_ = a.ctx.Logout(a.session)
	}
	err := a.ctx.CloseSession(a.session)
	a.ctx.Destroy()
	return err
}

// GetPublicKey exports the EC public key for the given label and returns it
// as DER-encoded SubjectPublicKeyInfo, the same shape the KMS backend
// returns.
func (a *PKCS11Authority) GetPublicKey(_ context.Context, keyID string) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil, fmt.Errorf("%w: authority is closed", ErrRemoteCall)
	}

	handle, err := a.findKey(pkcs11.CKO_PUBLIC_KEY, keyID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteCall, err)
	}

	pub, err := a.exportECPublicKey(handle)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteCall, err)
	}

	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode public key: %v", ErrRemoteCall, err)
	}
	return der, nil
}

// Sign signs the full message with the private key for the given label.
// The token hashes the message (CKM_ECDSA_SHA256), mirroring how the KMS
// backend handles raw messages.
func (a *PKCS11Authority) Sign(_ context.Context, keyID, signingAlgorithm string, message []byte) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil, fmt.Errorf("%w: authority is closed", ErrRemoteCall)
	}

	if signingAlgorithm != "ECDSA_SHA_256" {
		return nil, fmt.Errorf("signing algorithm %s is not supported by the PKCS#11 backend", signingAlgorithm)
	}

	handle, err := a.findKey(pkcs11.CKO_PRIVATE_KEY, keyID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteCall, err)
	}

	mech := []*pkcs11.Mechanism{pkcs11.NewMechanism(pkcs11.CKM_ECDSA_SHA256, nil)}
	if err := a.ctx.SignInit(a.session, mech, handle); err != nil {
		return nil, fmt.Errorf("%w: failed to init sign: %v", ErrRemoteCall, err)
	}

	raw, err := a.ctx.Sign(a.session, message)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to sign: %v", ErrRemoteCall, err)
	}

	sig, err := ecdsaRawToDER(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteCall, err)
	}
	return sig, nil
}

// findSlot finds the slot matching the configuration.
func findSlot(ctx *pkcs11.Ctx, cfg PKCS11Config) (uint, error) {
	if cfg.SlotID != nil {
		return *cfg.SlotID, nil
	}

	slots, err := ctx.GetSlotList(true)
	if err != nil {
		return 0, fmt.Errorf("failed to get slot list: %w", err)
	}
	if len(slots) == 0 {
		return 0, fmt.Errorf("no slots with tokens found")
	}

	for _, slot := range slots {
		info, err := ctx.GetTokenInfo(slot)
		if err != nil {
			continue
		}
		if cfg.TokenLabel != "" && info.Label == cfg.TokenLabel {
			return slot, nil
		}
		if cfg.TokenSerial != "" && info.SerialNumber == cfg.TokenSerial {
			return slot, nil
		}
	}

	if cfg.TokenLabel != "" {
		return 0, fmt.Errorf("token with label %q not found", cfg.TokenLabel)
	}
	if cfg.TokenSerial != "" {
		return 0, fmt.Errorf("token with serial %q not found", cfg.TokenSerial)
	}

	// No specific token requested, use the first one
	return slots[0], nil
}

// findKey locates a single object of the given class by label, or by the
// configured CKA_ID when set.
func (a *PKCS11Authority) findKey(class uint, label string) (pkcs11.ObjectHandle, error) {
	template := []*pkcs11.Attribute{
		pkcs11.NewAttribute(pkcs11.CKA_CLASS, class),
	}

	if a.cfg.KeyID != "" {
		id, err := hex.DecodeString(a.cfg.KeyID)
		if err != nil {
			return 0, fmt.Errorf("invalid key ID (must be hex): %w", err)
		}
		template = append(template, pkcs11.NewAttribute(pkcs11.CKA_ID, id))
	} else {
		template = append(template, pkcs11.NewAttribute(pkcs11.CKA_LABEL, label))
	}

	if err := a.ctx.FindObjectsInit(a.session, template); err != nil {
		return 0, fmt.Errorf("failed to init find: %w", err)
	}
	handles, _, err := a.ctx.FindObjects(a.session, 2)
	finalErr := a.ctx.FindObjectsFinal(a.session)
	if err != nil {
		return 0, fmt.Errorf("failed to find objects: %w", err)
	}
	if finalErr != nil {
		return 0, fmt.Errorf("failed to finalize find: %w", finalErr)
	}

	if len(handles) == 0 {
		return 0, fmt.Errorf("key %q not found on token", label)
	}
	if len(handles) > 1 {
		return 0, fmt.Errorf("multiple keys match %q, use key_id to disambiguate", label)
	}
	return handles[0], nil
}

// exportECPublicKey reads CKA_EC_PARAMS and CKA_EC_POINT from the public key
// object and builds an ecdsa.PublicKey.
func (a *PKCS11Authority) exportECPublicKey(handle pkcs11.ObjectHandle) (*ecdsa.PublicKey, error) {
	attrs, err := a.ctx.GetAttributeValue(a.session, handle, []*pkcs11.Attribute{
		pkcs11.NewAttribute(pkcs11.CKA_EC_PARAMS, nil),
		pkcs11.NewAttribute(pkcs11.CKA_EC_POINT, nil),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get EC attributes: %w", err)
	}

	curve, err := parseECParams(attrs[0].Value)
	if err != nil {
		return nil, err
	}

	point := attrs[1].Value
	if len(point) == 0 {
		return nil, fmt.Errorf("empty CKA_EC_POINT")
	}

	// CKA_EC_POINT is a DER OCTET STRING wrapping the uncompressed point
	var unwrapped []byte
	if _, err := asn1.Unmarshal(point, &unwrapped); err == nil && len(unwrapped) > 0 {
		point = unwrapped
	}

	x, y := elliptic.Unmarshal(curve, point)
	if x == nil {
		return nil, fmt.Errorf("invalid EC point for curve %s", curve.Params().Name)
	}

	return &ecdsa.PublicKey{Curve: curve, X: x, Y: y}, nil
}

// parseECParams maps the DER-encoded curve OID in CKA_EC_PARAMS to a curve.
func parseECParams(params []byte) (elliptic.Curve, error) {
	var oid asn1.ObjectIdentifier
	if _, err := asn1.Unmarshal(params, &oid); err != nil {
		return nil, fmt.Errorf("failed to parse EC params: %w", err)
	}

	switch {
	case oid.Equal(asn1.ObjectIdentifier{1, 2, 840, 10045, 3, 1, 7}):
		return elliptic.P256(), nil
	default:
		return nil, fmt.Errorf("unsupported curve OID: %v", oid)
	}
}

// ecdsaRawToDER converts a raw ECDSA signature (r||s) to ASN.1 DER.
func ecdsaRawToDER(raw []byte) ([]byte, error) {
	if len(raw) == 0 || len(raw)%2 != 0 {
		return nil, fmt.Errorf("invalid ECDSA signature length %d", len(raw))
	}

	n := len(raw) / 2
	r := new(big.Int).SetBytes(raw[:n])
	s := new(big.Int).SetBytes(raw[n:])

	return asn1.Marshal(struct {
		R, S *big.Int
	}{r, s})
}
