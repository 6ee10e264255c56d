// Package jwt implements a minimal HMAC-SHA256 JWT codec: compact
// serialization, constant-time signature verification, algorithm
// pinning and expiry validation. It deliberately supports a single
// algorithm; the claim shape is owned by the caller.
package jwt
