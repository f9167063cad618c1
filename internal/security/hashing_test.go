package security

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHasher_RoundTrip(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash([]byte("correct horse battery staple"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if err := h.Compare(hash, []byte("correct horse battery staple")); err != nil {
		t.Errorf("Compare with right secret: %v", err)
	}
	if err := h.Compare(hash, []byte("wrong")); err == nil {
		t.Error("Compare with wrong secret should fail")
	}
}

func TestNewHasher_ClampsCost(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{0, bcrypt.DefaultCost},
		{-5, bcrypt.DefaultCost},
		{2, bcrypt.MinCost},
		{99, bcrypt.MaxCost},
		{12, 12},
	}
	for _, tc := range cases {
		if got := NewHasher(tc.in).Cost; got != tc.want {
			t.Errorf("NewHasher(%d).Cost = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestHasher_CompareGarbageHash(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	if err := h.Compare("not-a-bcrypt-hash", []byte("x")); err == nil {
		t.Error("Compare with malformed hash should fail")
	}
}
