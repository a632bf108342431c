// Package auth provides authentication support for outbound HTTP requests,
// primarily the media service client.
//
//go:generate mockgen -destination=./mocks/auth.go . Authenticator
package auth

import "net/http"

// Authenticator defines the interface for applying authentication to HTTP requests.
type Authenticator interface {
	Apply(req *http.Request) error
	Type() Type
}

// Type represents the type of authentication.
type Type string

// Authentication types.
const (
	// APIKeyAuthType represents API key authentication via the X-API-Key header.
	APIKeyAuthType Type = "apikey"
	// BasicAuthType represents HTTP Basic Authentication.
	BasicAuthType Type = "basic"
	// BearerAuthType represents Bearer token authentication.
	BearerAuthType Type = "bearer"
)

// APIKeyAuth represents API key authentication. The media service expects
// the key in the X-API-Key header.
type APIKeyAuth struct {
	Key string
}

// Apply adds the API key header to the HTTP request.
func (a APIKeyAuth) Apply(req *http.Request) error {
	req.Header.Set("X-API-Key", a.Key)
	return nil
}

// Type returns the authentication type (APIKeyAuthType).
func (a APIKeyAuth) Type() Type { return APIKeyAuthType }

// BasicAuth represents HTTP Basic Authentication credentials.
type BasicAuth struct {
	Username string
	Password string
}

// Apply adds Basic Authentication headers to the HTTP request.
func (b BasicAuth) Apply(req *http.Request) error {
	req.SetBasicAuth(b.Username, b.Password)
	return nil
}

// Type returns the authentication type (BasicAuthType).
func (b BasicAuth) Type() Type { return BasicAuthType }

// BearerAuth represents Bearer token authentication.
type BearerAuth struct {
	Token string
}

// Apply adds a Bearer token to the Authorization header of the HTTP request.
func (b BearerAuth) Apply(req *http.Request) error {
	req.Header.Set("Authorization", "Bearer "+b.Token)
	return nil
}

// Type returns the authentication type (BearerAuthType).
func (b BearerAuth) Type() Type { return BearerAuthType }
