package security

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SignatureHash returns a SHA-256 hash, hex-encoded, of a JWT's signature
// segment. The blacklist keys off this value rather than the whole token or
// the signing-key version, so entries stay valid across key rotations and the
// raw token never needs to be stored.
func SignatureHash(token string) string {
	sig := token
	if i := strings.LastIndexByte(token, '.'); i >= 0 {
		sig = token[i+1:]
	}
	h := sha256.Sum256([]byte(sig))
	return hex.EncodeToString(h[:])
}
