package apiclient

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"unsafe"
)

// TokenProvider resolves a credential at request time. Providers are called
// once per request so rotated credentials take effect without rebuilding the
// client.
type TokenProvider func(ctx context.Context) (string, error)

// StaticToken returns a provider that always yields the given token.
func StaticToken(token string) TokenProvider {
	return func(context.Context) (string, error) {
		return token, nil
	}
}

// AuthConfig is a sealed set of auth schemes: BearerAuth, APIKeyAuth and
// BasicAuth. Each variant knows how to synthesize its header; the client
// applies it after the final header merge so user headers cannot strip it
// by accident.
type AuthConfig interface {
	// header returns the header key/value pair for one request.
	header(ctx context.Context) (key, value string, err error)
	// fingerprint identifies the auth shape and credential source (never
	// the plaintext credential) for registry cache keys. Configs with
	// different credential sources must never collide.
	fingerprint() string
}

// BearerAuth sends "Authorization: <Scheme> <token>". Scheme defaults to
// "Bearer".
type BearerAuth struct {
	Scheme string
	Tokens TokenProvider
}

func (a BearerAuth) header(ctx context.Context) (string, string, error) {
	if a.Tokens == nil {
		return "", "", fmt.Errorf("bearer auth: no token provider")
	}
	token, err := a.Tokens(ctx)
	if err != nil {
		return "", "", fmt.Errorf("bearer auth: %w", err)
	}
	scheme := a.Scheme
	if scheme == "" {
		scheme = "Bearer"
	}
	return "Authorization", scheme + " " + token, nil
}

func (a BearerAuth) fingerprint() string {
	scheme := a.Scheme
	if scheme == "" {
		scheme = "Bearer"
	}
	return "bearer:" + scheme + ":" + providerID(a.Tokens)
}

// APIKeyAuth sends the token under a configurable header name, defaulting
// to "X-API-Key".
type APIKeyAuth struct {
	Header string
	Tokens TokenProvider
}

func (a APIKeyAuth) header(ctx context.Context) (string, string, error) {
	if a.Tokens == nil {
		return "", "", fmt.Errorf("api key auth: no token provider")
	}
	token, err := a.Tokens(ctx)
	if err != nil {
		return "", "", fmt.Errorf("api key auth: %w", err)
	}
	name := a.Header
	if name == "" {
		name = "X-API-Key"
	}
	return name, token, nil
}

func (a APIKeyAuth) fingerprint() string {
	name := a.Header
	if name == "" {
		name = "X-API-Key"
	}
	return "apiKey:" + name + ":" + providerID(a.Tokens)
}

// BasicAuth sends "Authorization: Basic <base64(user:pass)>".
type BasicAuth struct {
	Username string
	Password string
}

func (a BasicAuth) header(context.Context) (string, string, error) {
	cred := base64.StdEncoding.EncodeToString([]byte(a.Username + ":" + a.Password))
	return "Authorization", "Basic " + cred, nil
}

func (a BasicAuth) fingerprint() string {
	return "basic:" + credentialDigest(a.Username+":"+a.Password)
}

// providerID identifies a token provider for cache keys. The func code
// pointer collides for closures built from one function literal (every
// StaticToken shares one), so the func value's data word is read instead:
// it is unique per closure and stable for the provider's lifetime.
func providerID(p TokenProvider) string {
	if p == nil {
		return "none"
	}
	return fmt.Sprintf("%x", *(*uintptr)(unsafe.Pointer(&p)))
}

// credentialDigest maps a credential to a short stable digest so cache keys
// distinguish credentials without embedding them.
func credentialDigest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:8])
}
