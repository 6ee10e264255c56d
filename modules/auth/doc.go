// Package auth implements the credential subsystem of the remaster
// backend: access/refresh token issuance with version-counter
// revocation, cache-backed one-time codes for email verification and
// password reset, three mutually exclusive request-authentication
// strategies (password session, Google identity, Spotify passthrough),
// and the Spotify client-credential fetcher with bounded retry.
//
// The package exposes operations as a Service over small storage and
// provider interfaces; HTTP wiring lives in Handlers and the Gate
// middleware.
package auth
