package security

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewKeyring_Validation(t *testing.T) {
	k1 := mustGenerateKey(t, "k1")

	if _, err := NewKeyring("k1", nil); err == nil {
		t.Error("empty key list should fail")
	}
	if _, err := NewKeyring("missing", []SigningKey{k1}); err == nil {
		t.Error("active kid not in ring should fail")
	}
	if _, err := NewKeyring("k1", []SigningKey{k1, k1}); err == nil {
		t.Error("duplicate kid should fail")
	}
	if _, err := NewKeyring("k1", []SigningKey{{ID: "k1"}}); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("nil private key: err = %v, want ErrInvalidKey", err)
	}

	ring, err := NewKeyring("k1", []SigningKey{k1})
	if err != nil {
		t.Fatalf("NewKeyring: %v", err)
	}
	if ring.Active().ID != "k1" {
		t.Errorf("Active().ID = %q, want k1", ring.Active().ID)
	}
	if _, ok := ring.Lookup("k1"); !ok {
		t.Error("Lookup(k1) should succeed")
	}
	if _, ok := ring.Lookup("k2"); ok {
		t.Error("Lookup(k2) should fail")
	}
}

func TestParsePrivateKey_InlinePEM(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der, err := x509.MarshalECPrivateKey(priv)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	pemStr := string(pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der}))

	signer, err := ParsePrivateKey(pemStr)
	if err != nil {
		t.Fatalf("ParsePrivateKey inline: %v", err)
	}
	if _, ok := signer.(*ecdsa.PrivateKey); !ok {
		t.Errorf("signer type = %T, want *ecdsa.PrivateKey", signer)
	}
}

func TestParsePrivateKey_FromFile(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "key.pem")
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
	if err := os.WriteFile(path, pemBytes, 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}

	if _, err := ParsePrivateKey(path); err != nil {
		t.Fatalf("ParsePrivateKey from file: %v", err)
	}
}

func TestParsePrivateKey_Invalid(t *testing.T) {
	for _, s := range []string{"", "not pem", "-----BEGIN GARBAGE-----\nabc\n-----END GARBAGE-----"} {
		if _, err := ParsePrivateKey(s); err == nil {
			t.Errorf("ParsePrivateKey(%q) should fail", s)
		}
	}
}

func TestKeyAlg(t *testing.T) {
	ecPriv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate ecdsa key: %v", err)
	}
	if got := KeyAlg(ecPriv.Public()); got != "ES256" {
		t.Errorf("ecdsa KeyAlg = %q, want ES256", got)
	}

	rsaPriv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	if got := KeyAlg(rsaPriv.Public()); got != "RS256" {
		t.Errorf("rsa KeyAlg = %q, want RS256", got)
	}

	if got := KeyAlg("not a key"); got != "" {
		t.Errorf("unknown key type KeyAlg = %q, want empty", got)
	}
}
