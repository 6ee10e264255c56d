package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/remasterhq/remaster/pkg/logger"
)

// SpotifyClientToken is a service-level (non-user) token obtained with
// the client-credentials grant.
type SpotifyClientToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// SpotifyUser is the profile behind a user-delegated Spotify token.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Product     string `json:"product"`
}

// SpotifyFetcher talks to Spotify's accounts and API hosts. The HTTP
// client is a field so tests can inject a failing transport; the retry
// policy is a per-call argument rather than shared client state.
type SpotifyFetcher struct {
	tokenURL     string
	apiURL       string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	baseDelay    time.Duration
	log          *slog.Logger
}

// SpotifyOption customizes the fetcher, mainly for tests.
type SpotifyOption func(*SpotifyFetcher)

// WithSpotifyHTTPClient replaces the HTTP client.
func WithSpotifyHTTPClient(c *http.Client) SpotifyOption {
	return func(f *SpotifyFetcher) {
		if c != nil {
			f.httpClient = c
		}
	}
}

// WithSpotifyBaseDelay sets the first backoff delay. Tests use a
// near-zero value to avoid real sleeps.
func WithSpotifyBaseDelay(d time.Duration) SpotifyOption {
	return func(f *SpotifyFetcher) {
		if d >= 0 {
			f.baseDelay = d
		}
	}
}

func NewSpotifyFetcher(cfg Config, log *slog.Logger, opts ...SpotifyOption) *SpotifyFetcher {
	f := &SpotifyFetcher{
		tokenURL:     cfg.SpotifyTokenURL,
		apiURL:       strings.TrimRight(cfg.SpotifyAPIURL, "/"),
		clientID:     cfg.SpotifyClientID,
		clientSecret: cfg.SpotifyClientSecret,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		baseDelay:    500 * time.Millisecond,
		log:          log,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchClientToken performs the client-credentials grant, retrying
// transport failures and non-2xx responses with exponential backoff.
// attempts is the total number of tries; values below one are treated
// as one. Exhaustion returns ErrSpotifyUnavailable so callers can
// degrade by omitting the Spotify fields instead of failing the parent
// operation.
func (f *SpotifyFetcher) FetchClientToken(ctx context.Context, attempts int) (SpotifyClientToken, error) {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := range attempts {
		if i > 0 {
			select {
			case <-ctx.Done():
				return SpotifyClientToken{}, errors.Join(ErrSpotifyUnavailable, ctx.Err())
			case <-time.After(f.baseDelay << (i - 1)):
			}
			if f.log != nil {
				f.log.DebugContext(ctx, "retrying spotify token fetch", slog.Int("attempt", i+1))
			}
		}

		token, err := f.requestClientToken(ctx)
		if err == nil {
			return token, nil
		}
		lastErr = err
	}

	if f.log != nil {
		f.log.WarnContext(ctx, "spotify token fetch exhausted retries",
			slog.Int("attempts", attempts), logger.Error(lastErr))
	}
	return SpotifyClientToken{}, errors.Join(ErrSpotifyUnavailable, lastErr)
}

func (f *SpotifyFetcher) requestClientToken(ctx context.Context) (SpotifyClientToken, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return SpotifyClientToken{}, err
	}
	req.SetBasicAuth(f.clientID, f.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return SpotifyClientToken{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return SpotifyClientToken{}, fmt.Errorf("spotify token endpoint returned %d", resp.StatusCode)
	}

	var token SpotifyClientToken
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return SpotifyClientToken{}, err
	}
	if token.AccessToken == "" {
		return SpotifyClientToken{}, errors.New("spotify token endpoint returned empty token")
	}

	return token, nil
}

// CurrentUser resolves a user-delegated bearer token to the Spotify
// profile behind it. Used by operations guarded by the passthrough
// gate; Spotify itself is the validator of the token.
func (f *SpotifyFetcher) CurrentUser(ctx context.Context, accessToken string) (SpotifyUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.apiURL+"/v1/me", nil)
	if err != nil {
		return SpotifyUser{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return SpotifyUser{}, errors.Join(ErrSpotifyUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return SpotifyUser{}, ErrNotAuthenticated
	}
	if resp.StatusCode != http.StatusOK {
		return SpotifyUser{}, fmt.Errorf("%w: spotify api returned %d", ErrSpotifyUnavailable, resp.StatusCode)
	}

	var user SpotifyUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return SpotifyUser{}, err
	}
	return user, nil
}
