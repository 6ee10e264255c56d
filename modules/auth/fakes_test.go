package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/remasterhq/remaster/pkg/email"
)

// memUserStorage is an in-memory UserStorage used across the package
// tests. Uniqueness is enforced case-insensitively like the real
// schema.
type memUserStorage struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*User
}

func newMemUserStorage() *memUserStorage {
	return &memUserStorage{nextID: 1, users: make(map[int64]*User)}
}

func (s *memUserStorage) CreateUser(ctx context.Context, params CreateUserParams) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, params.Email) {
			return nil, ErrEmailTaken
		}
		if strings.EqualFold(u.Username, params.Username) {
			return nil, ErrUsernameTaken
		}
	}

	now := time.Now()
	u := &User{
		ID:           s.nextID,
		Email:        params.Email,
		Username:     params.Username,
		PasswordHash: params.PasswordHash,
		Verified:     params.Verified,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.nextID++
	s.users[u.ID] = u
	return copyUser(u), nil
}

func (s *memUserStorage) GetUserByID(ctx context.Context, id int64) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return copyUser(u), nil
}

func (s *memUserStorage) GetUserByEmail(ctx context.Context, emailAddr string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, emailAddr) {
			return copyUser(u), nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *memUserStorage) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			return copyUser(u), nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *memUserStorage) UpdateUsername(ctx context.Context, id int64, username string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID != id && strings.EqualFold(u.Username, username) {
			return nil, ErrUsernameTaken
		}
	}
	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	u.Username = username
	u.UpdatedAt = time.Now()
	return copyUser(u), nil
}

func (s *memUserStorage) UpdateEmail(ctx context.Context, id int64, emailAddr string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID != id && strings.EqualFold(u.Email, emailAddr) {
			return nil, ErrEmailTaken
		}
	}
	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	u.Email = emailAddr
	u.UpdatedAt = time.Now()
	return copyUser(u), nil
}

func (s *memUserStorage) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now()
	return nil
}

func (s *memUserStorage) ResetPassword(ctx context.Context, id int64, passwordHash string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.TokenVersion++
	u.UpdatedAt = time.Now()
	return copyUser(u), nil
}

func (s *memUserStorage) MarkVerified(ctx context.Context, id int64) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	u.Verified = true
	u.UpdatedAt = time.Now()
	return copyUser(u), nil
}

func copyUser(u *User) *User {
	c := *u
	return &c
}

// memCache is an in-memory Cache with TTL bookkeeping.
type memCache struct {
	mu      sync.Mutex
	entries map[string]memCacheEntry
}

type memCacheEntry struct {
	value     string
	expiresAt time.Time
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]memCacheEntry)}
}

func (c *memCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memCacheEntry{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (c *memCache) Get(ctx context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(c.entries, key)
		return "", false, nil
	}
	return entry.value, true, nil
}

func (c *memCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// fakeMailer records sent messages for assertions.
type fakeMailer struct {
	mu   sync.Mutex
	sent []email.SendParams
}

func (m *fakeMailer) Send(ctx context.Context, params email.SendParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, params)
	return nil
}

func (m *fakeMailer) lastCode() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return ""
	}
	body := m.sent[len(m.sent)-1].BodyHTML
	return body[strings.LastIndex(body, " ")+1:]
}

// fakeGoogleFetcher returns a canned profile or error.
type fakeGoogleFetcher struct {
	profile GoogleProfile
	err     error
}

func (f *fakeGoogleFetcher) FetchProfile(ctx context.Context, accessToken string) (GoogleProfile, error) {
	if f.err != nil {
		return GoogleProfile{}, f.err
	}
	return f.profile, nil
}

// fakeGoogleVerifier returns a canned email or error.
type fakeGoogleVerifier struct {
	email string
	err   error
}

func (f *fakeGoogleVerifier) VerifyIDToken(ctx context.Context, token string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.email, nil
}

// roundTripperFunc adapts a function into an http.RoundTripper for
// fault injection.
type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func testConfig() Config {
	return Config{
		AccessTokenSecret:   "access-secret",
		RefreshTokenSecret:  "refresh-secret",
		GoogleClientID:      "google-client-id",
		SpotifyClientID:     "spotify-id",
		SpotifyClientSecret: "spotify-secret",
		SpotifyTokenURL:     "https://accounts.spotify.test/api/token",
		SpotifyAPIURL:       "https://api.spotify.test",
		AccessTokenTTL:      time.Hour,
		RefreshTokenTTL:     8760 * time.Hour,
		OTPTTL:              time.Hour,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
