package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

var ErrNoToken = errors.New("session: no token")

type tokenSource struct {
	m *Manager
}

// TokenSource exposes the live credential to anything built on x/oauth2,
// e.g. oauth2.NewClient for downloading signed document URLs.
func (m *Manager) TokenSource() oauth2.TokenSource {
	return tokenSource{m: m}
}

func (s tokenSource) Token() (*oauth2.Token, error) {
	raw, ok := s.m.Token()
	if !ok {
		return nil, ErrNoToken
	}
	tok := &oauth2.Token{AccessToken: raw, TokenType: "Bearer"}
	if info, ok := Inspect(raw); ok && info.ExpiresAt != nil {
		tok.Expiry = *info.ExpiresAt
	}
	return tok, nil
}

// TokenInfo is what can be read from a credential without verifying it.
type TokenInfo struct {
	Subject   string     `json:"subject,omitempty"`
	IssuedAt  *time.Time `json:"issued_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Inspect decodes the claims of a signed JWT without checking the signature.
// Xano usually issues encrypted tokens, which are reported as unreadable (ok=false);
// callers must never rely on this for authorization.
func Inspect(raw string) (TokenInfo, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return TokenInfo{}, false
	}

	var info TokenInfo
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		t := iat.Time
		info.IssuedAt = &t
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		info.ExpiresAt = &t
	}
	return info, true
}

// Status summarises the session for display.
type Status struct {
	Authenticated bool       `json:"authenticated"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	Expired       bool       `json:"expired"`
}

func (m *Manager) Status(now time.Time) Status {
	raw, ok := m.Token()
	if !ok {
		return Status{}
	}
	st := Status{Authenticated: true}
	if info, readable := Inspect(raw); readable && info.ExpiresAt != nil {
		st.ExpiresAt = info.ExpiresAt
		st.Expired = now.After(*info.ExpiresAt)
	}
	return st
}
