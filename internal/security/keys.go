package security

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrInvalidKey is returned when PEM or key type is invalid.
var ErrInvalidKey = errors.New("invalid key")

// SigningKey is one versioned signing key. ID becomes the kid header on
// minted tokens so verification can pick the right key after a rotation.
type SigningKey struct {
	ID      string
	Private crypto.Signer
	Public  crypto.PublicKey
}

// Keyring holds the process-wide signing keys. New tokens are signed with the
// active key; verification accepts any key still in the ring, which lets old
// tokens expire naturally after a rotation. Blacklist entries key off the
// signature hash, so they survive rotations too.
type Keyring struct {
	active string
	keys   map[string]SigningKey
}

// NewKeyring builds a Keyring from the given keys. activeKID must name one of
// them.
func NewKeyring(activeKID string, keys []SigningKey) (*Keyring, error) {
	if len(keys) == 0 {
		return nil, errors.New("keyring: no signing keys")
	}
	m := make(map[string]SigningKey, len(keys))
	for _, k := range keys {
		if k.ID == "" || k.Private == nil {
			return nil, ErrInvalidKey
		}
		if _, dup := m[k.ID]; dup {
			return nil, fmt.Errorf("keyring: duplicate kid %q", k.ID)
		}
		k.Public = k.Private.Public()
		m[k.ID] = k
	}
	if _, ok := m[activeKID]; !ok {
		return nil, fmt.Errorf("keyring: active kid %q not present", activeKID)
	}
	return &Keyring{active: activeKID, keys: m}, nil
}

// Active returns the key used to sign new tokens.
func (r *Keyring) Active() SigningKey {
	return r.keys[r.active]
}

// Lookup returns the key for kid, if still in the ring.
func (r *Keyring) Lookup(kid string) (SigningKey, bool) {
	k, ok := r.keys[kid]
	return k, ok
}

// LoadPEM reads content from path if s does not look like inline PEM;
// otherwise returns s as bytes.
func LoadPEM(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrInvalidKey
	}
	if strings.HasPrefix(s, "-----BEGIN") {
		return []byte(s), nil
	}
	return os.ReadFile(s)
}

// ParsePrivateKey parses a PEM-encoded private key (RSA or ECDSA). s may be
// inline PEM or a file path.
func ParsePrivateKey(s string) (crypto.Signer, error) {
	pemBytes, err := LoadPEM(s)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, ErrInvalidKey
	}
	switch block.Type {
	case "RSA PRIVATE KEY":
		return x509.ParsePKCS1PrivateKey(block.Bytes)
	case "PRIVATE KEY":
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		signer, ok := key.(crypto.Signer)
		if !ok {
			return nil, ErrInvalidKey
		}
		return signer, nil
	case "EC PRIVATE KEY":
		return x509.ParseECPrivateKey(block.Bytes)
	default:
		return nil, ErrInvalidKey
	}
}

// KeyAlg returns "RS256" for RSA and "ES256" for ECDSA P-256; empty otherwise.
func KeyAlg(pub crypto.PublicKey) string {
	switch pub.(type) {
	case *rsa.PublicKey:
		return "RS256"
	case *ecdsa.PublicKey:
		return "ES256"
	default:
		return ""
	}
}
