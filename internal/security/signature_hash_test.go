package security

import (
	"testing"
	"time"
)

func TestSignatureHash(t *testing.T) {
	p := newTestProvider(t, 10*time.Minute, time.Hour)

	tok, _, err := p.IssueAccess("acct-1", "Company", "sess-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	h1 := SignatureHash(tok)
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(h1))
	}
	if h2 := SignatureHash(tok); h2 != h1 {
		t.Error("hash should be deterministic")
	}

	tok2, _, err := p.IssueAccess("acct-1", "Company", "sess-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if SignatureHash(tok2) == h1 {
		t.Error("distinct tokens should hash differently")
	}
}

func TestSignatureHash_HashesOnlySignatureSegment(t *testing.T) {
	// Same signature segment behind different header/payload must collide:
	// only the part after the last dot matters.
	if SignatureHash("aaa.bbb.SIG") != SignatureHash("xxx.yyy.SIG") {
		t.Error("hash should depend only on the signature segment")
	}
	if SignatureHash("aaa.bbb.SIG") == SignatureHash("aaa.bbb.OTHER") {
		t.Error("different signatures should hash differently")
	}
}
