package auth

import "errors"

var (
	// ErrNotAuthenticated is the single failure kind the strategy gate
	// exposes. Header missing, malformed encoding, bad signature,
	// expiry, stale token version and unknown user all collapse into it
	// so callers cannot probe which step failed.
	ErrNotAuthenticated = errors.New("auth: not authenticated")

	// ErrOTPExpired signals that no code is stored for the subject,
	// either because it was consumed or because the TTL lapsed.
	ErrOTPExpired = errors.New("auth: one-time code expired")
	// ErrOTPInvalid signals a code mismatch. The stored entry is kept
	// so the caller may retry within the TTL window.
	ErrOTPInvalid = errors.New("auth: one-time code invalid")

	// ErrSpotifyUnavailable is returned once the client-credential
	// fetcher has exhausted its attempts. Callers degrade by omitting
	// the Spotify fields rather than failing the whole operation.
	ErrSpotifyUnavailable = errors.New("auth: spotify token endpoint unavailable")

	ErrUserNotFound  = errors.New("auth: user not found")
	ErrEmailTaken    = errors.New("auth: email already in use")
	ErrUsernameTaken = errors.New("auth: username already taken")
)
