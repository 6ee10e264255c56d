package auth

import "context"

// contextKey is a private type for context keys to avoid collisions.
type contextKey struct{ name string }

var (
	userContextKey         = &contextKey{name: "auth_user"}
	googleEmailContextKey  = &contextKey{name: "auth_google_email"}
	spotifyTokenContextKey = &contextKey{name: "auth_spotify_token"}
)

// Exactly one of the three setters runs per request, depending on which
// gate variant guards the operation. The context is written once by the
// gate and only read downstream.

// SetUser stores the authenticated user (password-session variant).
func SetUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(userContextKey).(*User)
	return u, ok
}

// SetGoogleEmail stores the verified Google email (Google variant).
func SetGoogleEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, googleEmailContextKey, email)
}

// GoogleEmailFromContext returns the verified Google email, if any.
func GoogleEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(googleEmailContextKey).(string)
	return email, ok
}

// SetSpotifyToken stores the passthrough Spotify bearer token.
func SetSpotifyToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, spotifyTokenContextKey, token)
}

// SpotifyTokenFromContext returns the passthrough Spotify token, if any.
func SpotifyTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(spotifyTokenContextKey).(string)
	return token, ok
}
