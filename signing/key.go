package signing

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	pkerrors "github.com/kbukum/paykit/errors"
)

// Key holds a signing key id and the parsed private key. Immutable after
// construction.
type Key struct {
	id   string
	priv *ecdsa.PrivateKey
}

// NewKey parses an EC P-521 private key from PEM. The PEM bytes are zeroed
// before returning, on success and on failure; the caller must not reuse
// them.
func NewKey(keyID string, privateKeyPEM []byte) (*Key, error) {
	defer zero(privateKeyPEM)

	if keyID == "" {
		return nil, pkerrors.NewSigningError("key id is required", nil)
	}

	block, _ := pem.Decode(privateKeyPEM)
	if block == nil {
		return nil, pkerrors.NewSigningError("private key is not valid PEM", nil)
	}

	priv, err := parseECPrivateKey(block.Bytes)
	if err != nil {
		return nil, pkerrors.NewSigningError("parse private key", err)
	}
	if priv.Curve != elliptic.P521() {
		return nil, pkerrors.NewSigningError(
			fmt.Sprintf("unsupported curve %s, ES512 requires P-521", priv.Curve.Params().Name), nil)
	}

	return &Key{id: keyID, priv: priv}, nil
}

// ID returns the key identifier bound to signatures made with this key.
func (k *Key) ID() string {
	return k.id
}

// parseECPrivateKey tries the SEC 1 and PKCS#8 encodings.
func parseECPrivateKey(der []byte) (*ecdsa.PrivateKey, error) {
	if key, err := x509.ParseECPrivateKey(der); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, err
	}
	key, ok := parsed.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("not an EC private key")
	}
	return key, nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
