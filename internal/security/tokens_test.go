package security

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"strings"
	"testing"
	"time"

	"submitiq/backend/internal/autherrors"
)

func newTestKeyring(t *testing.T, activeKID string, kids ...string) *Keyring {
	t.Helper()
	keys := make([]SigningKey, 0, len(kids))
	for _, kid := range kids {
		priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			t.Fatalf("generate key: %v", err)
		}
		keys = append(keys, SigningKey{ID: kid, Private: priv})
	}
	ring, err := NewKeyring(activeKID, keys)
	if err != nil {
		t.Fatalf("NewKeyring: %v", err)
	}
	return ring
}

func newTestProvider(t *testing.T, accessTTL, refreshTTL time.Duration) *TokenProvider {
	t.Helper()
	ring := newTestKeyring(t, "k1", "k1")
	return NewTokenProvider(ring, "submitiq-auth", "submitiq-api", accessTTL, refreshTTL)
}

func TestIssueAndParseAccess(t *testing.T) {
	p := newTestProvider(t, 10*time.Minute, 24*time.Hour)

	tok, exp, err := p.IssueAccess("acct-1", "Company", "sess-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if time.Until(exp) > 10*time.Minute || time.Until(exp) < 9*time.Minute {
		t.Errorf("access expiry %v not ~10m out", exp)
	}

	claims, err := p.ParseAccess(tok)
	if err != nil {
		t.Fatalf("ParseAccess: %v", err)
	}
	if claims.Subject != "acct-1" {
		t.Errorf("Subject = %q, want acct-1", claims.Subject)
	}
	if claims.Role != "Company" {
		t.Errorf("Role = %q, want Company", claims.Role)
	}
	if claims.SessionID != "sess-1" {
		t.Errorf("SessionID = %q, want sess-1", claims.SessionID)
	}
}

func TestIssueAndParseRefresh(t *testing.T) {
	p := newTestProvider(t, 10*time.Minute, 24*time.Hour)

	tok, _, err := p.IssueRefresh("sess-1")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	claims, err := p.ParseRefresh(tok)
	if err != nil {
		t.Fatalf("ParseRefresh: %v", err)
	}
	if claims.SessionID != "sess-1" {
		t.Errorf("SessionID = %q, want sess-1", claims.SessionID)
	}
}

func TestParseAccess_RejectsRefreshToken(t *testing.T) {
	p := newTestProvider(t, 10*time.Minute, 24*time.Hour)

	refresh, _, err := p.IssueRefresh("sess-1")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	if _, err := p.ParseAccess(refresh); !autherrors.IsKind(err, autherrors.KindMalformed) {
		t.Errorf("ParseAccess(refresh token) kind = %v, want Malformed", autherrors.KindOf(err))
	}
}

func TestParseRefresh_RejectsAccessToken(t *testing.T) {
	p := newTestProvider(t, 10*time.Minute, 24*time.Hour)

	access, _, err := p.IssueAccess("acct-1", "Company", "sess-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := p.ParseRefresh(access); !autherrors.IsKind(err, autherrors.KindMalformed) {
		t.Errorf("ParseRefresh(access token) kind = %v, want Malformed", autherrors.KindOf(err))
	}
}

func TestParseAccess_Expired(t *testing.T) {
	p := newTestProvider(t, -1*time.Minute, 24*time.Hour)

	tok, _, err := p.IssueAccess("acct-1", "Company", "sess-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := p.ParseAccess(tok); !autherrors.IsKind(err, autherrors.KindExpired) {
		t.Errorf("kind = %v, want Expired", autherrors.KindOf(err))
	}
}

func TestParseAccess_Garbage(t *testing.T) {
	p := newTestProvider(t, 10*time.Minute, 24*time.Hour)

	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := p.ParseAccess(tok); !autherrors.IsKind(err, autherrors.KindMalformed) {
			t.Errorf("ParseAccess(%q) kind = %v, want Malformed", tok, autherrors.KindOf(err))
		}
	}
}

func TestParseAccess_WrongIssuerAndAudience(t *testing.T) {
	ring := newTestKeyring(t, "k1", "k1")
	issuing := NewTokenProvider(ring, "other-issuer", "submitiq-api", 10*time.Minute, time.Hour)
	verifying := NewTokenProvider(ring, "submitiq-auth", "submitiq-api", 10*time.Minute, time.Hour)

	tok, _, err := issuing.IssueAccess("acct-1", "Company", "sess-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := verifying.ParseAccess(tok); !autherrors.IsKind(err, autherrors.KindMalformed) {
		t.Errorf("issuer mismatch kind = %v, want Malformed", autherrors.KindOf(err))
	}

	issuing = NewTokenProvider(ring, "submitiq-auth", "other-api", 10*time.Minute, time.Hour)
	tok, _, err = issuing.IssueAccess("acct-1", "Company", "sess-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := verifying.ParseAccess(tok); !autherrors.IsKind(err, autherrors.KindMalformed) {
		t.Errorf("audience mismatch kind = %v, want Malformed", autherrors.KindOf(err))
	}
}

func TestParseAccess_TamperedSignature(t *testing.T) {
	p := newTestProvider(t, 10*time.Minute, 24*time.Hour)

	tok, _, err := p.IssueAccess("acct-1", "Company", "sess-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	parts := strings.Split(tok, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))
	if _, err := p.ParseAccess(tampered); !autherrors.IsKind(err, autherrors.KindMalformed) {
		t.Errorf("tampered kind = %v, want Malformed", autherrors.KindOf(err))
	}
}

func TestKeyRotation_OldKidStillVerifies(t *testing.T) {
	oldRing := newTestKeyring(t, "k1", "k1")
	oldProvider := NewTokenProvider(oldRing, "submitiq-auth", "submitiq-api", 10*time.Minute, time.Hour)

	tok, _, err := oldProvider.IssueAccess("acct-1", "Company", "sess-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	// Rotate: k2 becomes active, k1 stays in the ring for verification.
	rotated, err := NewKeyring("k2", []SigningKey{
		oldRing.Active(),
		mustGenerateKey(t, "k2"),
	})
	if err != nil {
		t.Fatalf("NewKeyring: %v", err)
	}
	newProvider := NewTokenProvider(rotated, "submitiq-auth", "submitiq-api", 10*time.Minute, time.Hour)

	if _, err := newProvider.ParseAccess(tok); err != nil {
		t.Errorf("token signed with retired kid should still verify: %v", err)
	}

	// A ring without k1 must reject the old token.
	dropped, err := NewKeyring("k2", []SigningKey{mustGenerateKey(t, "k2")})
	if err != nil {
		t.Fatalf("NewKeyring: %v", err)
	}
	droppedProvider := NewTokenProvider(dropped, "submitiq-auth", "submitiq-api", 10*time.Minute, time.Hour)
	if _, err := droppedProvider.ParseAccess(tok); !autherrors.IsKind(err, autherrors.KindMalformed) {
		t.Errorf("unknown kid kind = %v, want Malformed", autherrors.KindOf(err))
	}
}

func TestSign_RSAAndECDSA(t *testing.T) {
	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	ring, err := NewKeyring("rsa1", []SigningKey{{ID: "rsa1", Private: rsaKey}})
	if err != nil {
		t.Fatalf("NewKeyring: %v", err)
	}
	p := NewTokenProvider(ring, "submitiq-auth", "submitiq-api", 10*time.Minute, time.Hour)

	tok, _, err := p.IssueAccess("acct-1", "Administrator", "sess-1")
	if err != nil {
		t.Fatalf("IssueAccess with RSA key: %v", err)
	}
	claims, err := p.ParseAccess(tok)
	if err != nil {
		t.Fatalf("ParseAccess: %v", err)
	}
	if claims.Role != "Administrator" {
		t.Errorf("Role = %q, want Administrator", claims.Role)
	}
}

func mustGenerateKey(t *testing.T, kid string) SigningKey {
	t.Helper()
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return SigningKey{ID: kid, Private: priv}
}
