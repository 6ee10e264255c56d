package jwt

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// JWT header constants required by RFC 7519.
const (
	headerType      = "JWT"
	headerAlgorithm = "HS256"
)

type header struct {
	Type      string `json:"typ"`
	Algorithm string `json:"alg"`
}

// RegisteredClaims carries the temporal claims every token in the
// system uses. Claim structs embed it and add their own fields.
type RegisteredClaims struct {
	ExpiresAt int64 `json:"exp,omitempty"`
	IssuedAt  int64 `json:"iat,omitempty"`
}

// Valid checks the expiry against the current time. A zero ExpiresAt is
// treated as unset per RFC 7519.
func (c RegisteredClaims) Valid() error {
	if c.ExpiresAt > 0 && time.Now().Unix() > c.ExpiresAt {
		return ErrExpiredToken
	}
	return nil
}

// Service signs and verifies tokens with a single HMAC-SHA256 key. The
// server holds two instances: one for access tokens and one for refresh
// tokens, so compromise of one key cannot forge the other kind.
type Service struct {
	signingKey []byte
}

// New creates a JWT service from a string signing key. The key should
// be at least 32 bytes for adequate security with HMAC-SHA256.
func New(signingKey string) (*Service, error) {
	if signingKey == "" {
		return nil, ErrMissingSigningKey
	}
	return &Service{signingKey: []byte(signingKey)}, nil
}

// Generate signs the given claims and returns a compact JWT string.
func (s *Service) Generate(claims any) (string, error) {
	if claims == nil {
		return "", ErrMissingClaims
	}

	headerJSON, err := json.Marshal(header{Type: headerType, Algorithm: headerAlgorithm})
	if err != nil {
		return "", fmt.Errorf("failed to marshal header: %w", err)
	}

	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("failed to marshal claims: %w", err)
	}

	payload := base64URLEncode(headerJSON) + "." + base64URLEncode(claimsJSON)
	return payload + "." + s.sign(payload), nil
}

// Parse verifies a token's signature, algorithm and temporal claims,
// unmarshalling the claims into the provided structure. Any malformed,
// mis-signed or expired input yields a sentinel error; callers at the
// authentication boundary must collapse all of them to a single generic
// denial.
func (s *Service) Parse(tokenString string, claims any) error {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return ErrInvalidToken
	}

	payload := parts[0] + "." + parts[1]
	expected := s.sign(payload)
	if subtle.ConstantTimeCompare([]byte(parts[2]), []byte(expected)) != 1 {
		return ErrInvalidSignature
	}

	headerJSON, err := base64URLDecode(parts[0])
	if err != nil {
		return ErrInvalidToken
	}
	var hdr header
	if err := json.Unmarshal(headerJSON, &hdr); err != nil {
		return ErrInvalidToken
	}
	// Pin the algorithm to prevent algorithm confusion attacks.
	if hdr.Algorithm != headerAlgorithm {
		return ErrUnexpectedSigningMethod
	}

	claimsJSON, err := base64URLDecode(parts[1])
	if err != nil {
		return ErrInvalidToken
	}
	if err := json.Unmarshal(claimsJSON, claims); err != nil {
		return ErrInvalidToken
	}

	if validator, ok := claims.(interface{ Valid() error }); ok {
		if err := validator.Valid(); err != nil {
			return err
		}
	}

	return nil
}

func (s *Service) sign(payload string) string {
	h := hmac.New(sha256.New, s.signingKey)
	h.Write([]byte(payload))
	return base64URLEncode(h.Sum(nil))
}

// base64URLEncode encodes without padding as required by RFC 7515.
func base64URLEncode(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

func base64URLDecode(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}
