package signing

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"strings"
	"testing"

	pkerrors "github.com/kbukum/paykit/errors"
)

// generateKeyPair returns a P-521 key pair as (private PEM, public PEM).
func generateKeyPair(t *testing.T) ([]byte, []byte) {
	t.Helper()
	priv, err := ecdsa.GenerateKey(elliptic.P521(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	privDER, err := x509.MarshalECPrivateKey(priv)
	if err != nil {
		t.Fatalf("marshal private key: %v", err)
	}
	pubDER, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	privPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: privDER})
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	return privPEM, pubPEM
}

func TestSignAndVerify(t *testing.T) {
	privPEM, pubPEM := generateKeyPair(t)
	key, err := NewKey("test-key-id", privPEM)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	signer := NewSigner(key)

	headers := map[string]string{"Idempotency-Key": "idem-123"}
	body := []byte(`{"amount_in_minor":100,"currency":"GBP"}`)

	sig, err := signer.Sign("POST", "/payments", headers, body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(sig, "..") {
		t.Errorf("expected detached jws (header..signature), got %q", sig)
	}

	if err := Verify(pubPEM, "POST", "/payments", headers, body, sig); err != nil {
		t.Errorf("signature did not verify: %v", err)
	}
}

func TestSign_BodyMutationInvalidatesSignature(t *testing.T) {
	privPEM, pubPEM := generateKeyPair(t)
	key, err := NewKey("test-key-id", privPEM)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	signer := NewSigner(key)

	headers := map[string]string{"Idempotency-Key": "idem-123"}
	sig, err := signer.Sign("POST", "/payments", headers, []byte(`{"amount_in_minor":100}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := Verify(pubPEM, "POST", "/payments", headers, []byte(`{"amount_in_minor":101}`), sig); err == nil {
		t.Error("expected verification to fail for a mutated body")
	}
	if err := Verify(pubPEM, "PUT", "/payments", headers, []byte(`{"amount_in_minor":100}`), sig); err == nil {
		t.Error("expected verification to fail for a different method")
	}
	if err := Verify(pubPEM, "POST", "/payments", map[string]string{"Idempotency-Key": "other"}, []byte(`{"amount_in_minor":100}`), sig); err == nil {
		t.Error("expected verification to fail for a different idempotency key")
	}
}

func TestSign_Deterministic(t *testing.T) {
	privPEM, pubPEM := generateKeyPair(t)
	key, err := NewKey("test-key-id", privPEM)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	signer := NewSigner(key)

	headers := map[string]string{"Idempotency-Key": "idem-123"}
	body := []byte("payload")

	// ECDSA signatures are randomized, so the signature bytes differ, but
	// both must verify against the same canonical input.
	for i := 0; i < 2; i++ {
		sig, err := signer.Sign("POST", "/test", headers, body)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := Verify(pubPEM, "POST", "/test", headers, body, sig); err != nil {
			t.Errorf("signature %d did not verify: %v", i, err)
		}
	}
}

func TestNewKey_InvalidMaterial(t *testing.T) {
	t.Run("not pem", func(t *testing.T) {
		_, err := NewKey("id", []byte("definitely not pem"))
		if !pkerrors.IsSigning(err) {
			t.Errorf("expected signing error, got %v", err)
		}
	})

	t.Run("wrong curve", func(t *testing.T) {
		priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			t.Fatalf("generate key: %v", err)
		}
		der, err := x509.MarshalECPrivateKey(priv)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		pemBytes := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der})
		_, err = NewKey("id", pemBytes)
		if !pkerrors.IsSigning(err) {
			t.Errorf("expected signing error for P-256 key, got %v", err)
		}
	})

	t.Run("missing key id", func(t *testing.T) {
		privPEM, _ := generateKeyPair(t)
		_, err := NewKey("", privPEM)
		if !pkerrors.IsSigning(err) {
			t.Errorf("expected signing error, got %v", err)
		}
	})
}

func TestNewKey_ZeroesPEM(t *testing.T) {
	privPEM, _ := generateKeyPair(t)
	_, err := NewKey("id", privPEM)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, b := range privPEM {
		if b != 0 {
			t.Fatal("expected pem bytes to be zeroed after parse")
		}
	}
}

func TestVerify_RejectsMalformedSignature(t *testing.T) {
	_, pubPEM := generateKeyPair(t)
	err := Verify(pubPEM, "POST", "/x", nil, nil, "not-a-jws")
	if !pkerrors.IsSigning(err) {
		t.Errorf("expected signing error, got %v", err)
	}
}
