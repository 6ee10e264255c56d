package auth

import "time"

// Config carries the secrets and tunables of the auth subsystem. All
// secrets are required: a process without them must not start.
type Config struct {
	AccessTokenSecret  string `env:"ACCESS_TOKEN_SECRET,required"`
	RefreshTokenSecret string `env:"REFRESH_TOKEN_SECRET,required"`

	GoogleClientID string `env:"GOOGLE_OAUTH_CLIENT_ID,required"`

	SpotifyClientID     string `env:"SPOTIFY_API_CLIENT_ID,required"`
	SpotifyClientSecret string `env:"SPOTIFY_API_CLIENT_SECRET,required"`
	SpotifyTokenURL     string `env:"SPOTIFY_TOKEN_URL" envDefault:"https://accounts.spotify.com/api/token"`
	SpotifyAPIURL       string `env:"SPOTIFY_API_URL" envDefault:"https://api.spotify.com"`

	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"1h"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"8760h"`

	// OTPTTL bounds the lifetime of verification and reset codes. One
	// hour, expressed in seconds at the cache boundary.
	OTPTTL time.Duration `env:"OTP_TTL" envDefault:"1h"`
}
