package security

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"submitiq/backend/internal/autherrors"
)

// Token type claim values. Parsing rejects a token presented as the wrong
// type, so a refresh token can never stand in for an access token.
const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

// AccessClaims holds JWT claims for the access token. Access tokens are
// stateless: verification is signature plus expiry, never a store lookup.
type AccessClaims struct {
	jwt.RegisteredClaims
	TokenType string `json:"typ"`
	Role      string `json:"role"`
	SessionID string `json:"sid"`
}

// RefreshClaims holds JWT claims for the refresh token. Refresh tokens carry
// only the session id; everything else lives on the Session record.
type RefreshClaims struct {
	jwt.RegisteredClaims
	TokenType string `json:"typ"`
	SessionID string `json:"sid"`
}

// TokenProvider issues and verifies JWT access and refresh tokens using
// RS256 or ES256 keys from a Keyring. The minted kid header lets verification
// survive signing-key rotation.
type TokenProvider struct {
	keys       *Keyring
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenProvider returns a TokenProvider signing with the keyring's active key.
// issuer and audience are set on claims and checked on every parse.
func NewTokenProvider(keys *Keyring, issuer, audience string, accessTTL, refreshTTL time.Duration) *TokenProvider {
	return &TokenProvider{
		keys:       keys,
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// AccessTTL returns the configured access-token lifetime. This bounds the
// staleness window between an approval revocation and token expiry.
func (p *TokenProvider) AccessTTL() time.Duration { return p.accessTTL }

// RefreshTTL returns the configured refresh-token lifetime.
func (p *TokenProvider) RefreshTTL() time.Duration { return p.refreshTTL }

// IssueAccess mints a short-lived access JWT for the given account, role, and
// session. Returns the token string and its expiry.
func (p *TokenProvider) IssueAccess(accountID, role, sessionID string) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(p.accessTTL)
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		TokenType: typeAccess,
		Role:      role,
		SessionID: sessionID,
	}
	token, err := p.sign(claims)
	return token, expiresAt, err
}

// IssueRefresh mints a longer-lived refresh JWT bound to the session.
func (p *TokenProvider) IssueRefresh(sessionID string) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(p.refreshTTL)
	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		TokenType: typeRefresh,
		SessionID: sessionID,
	}
	token, err := p.sign(claims)
	return token, expiresAt, err
}

func (p *TokenProvider) sign(claims jwt.Claims) (string, error) {
	key := p.keys.Active()
	var method jwt.SigningMethod
	switch key.Public.(type) {
	case *rsa.PublicKey:
		method = jwt.SigningMethodRS256
	case *ecdsa.PublicKey:
		method = jwt.SigningMethodES256
	default:
		return "", ErrInvalidKey
	}
	t := jwt.NewWithClaims(method, claims)
	t.Header["kid"] = key.ID
	return t.SignedString(key.Private)
}

// ParseAccess parses and verifies an access token (signature, exp, iss, aud).
// Failures carry KindMalformed or KindExpired.
func (p *TokenProvider) ParseAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := p.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if err := p.checkRegistered(&claims.RegisteredClaims); err != nil {
		return nil, err
	}
	if claims.TokenType != typeAccess {
		return nil, autherrors.E(autherrors.KindMalformed, "not an access token")
	}
	return claims, nil
}

// ParseRefresh parses and verifies a refresh token (signature, exp, iss, aud).
func (p *TokenProvider) ParseRefresh(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := p.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if err := p.checkRegistered(&claims.RegisteredClaims); err != nil {
		return nil, err
	}
	if claims.TokenType != typeRefresh {
		return nil, autherrors.E(autherrors.KindMalformed, "not a refresh token")
	}
	return claims, nil
}

func (p *TokenProvider) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		switch token.Method.(type) {
		case *jwt.SigningMethodRSA, *jwt.SigningMethodECDSA:
		default:
			return nil, autherrors.E(autherrors.KindMalformed, "unexpected signing method")
		}
		kid, _ := token.Header["kid"].(string)
		key, ok := p.keys.Lookup(kid)
		if !ok {
			return nil, autherrors.E(autherrors.KindMalformed, "unknown kid")
		}
		return key.Public, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return autherrors.Wrap(autherrors.KindExpired, "token expired", err)
		}
		return autherrors.Wrap(autherrors.KindMalformed, "token parse failed", err)
	}
	if !token.Valid {
		return autherrors.E(autherrors.KindMalformed, "token invalid")
	}
	return nil
}

func (p *TokenProvider) checkRegistered(rc *jwt.RegisteredClaims) error {
	if rc.Issuer != p.issuer {
		return autherrors.E(autherrors.KindMalformed, "issuer mismatch")
	}
	for _, a := range rc.Audience {
		if a == p.audience {
			return nil
		}
	}
	return autherrors.E(autherrors.KindMalformed, "audience mismatch")
}
