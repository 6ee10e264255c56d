package catalog

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remasterhq/remaster/modules/auth"
)

// singleUserStorage serves exactly one account, enough to drive the
// session gate in these tests.
type singleUserStorage struct {
	user auth.User
}

func (s *singleUserStorage) CreateUser(ctx context.Context, params auth.CreateUserParams) (*auth.User, error) {
	return nil, auth.ErrUserNotFound
}

func (s *singleUserStorage) GetUserByID(ctx context.Context, id int64) (*auth.User, error) {
	if id != s.user.ID {
		return nil, auth.ErrUserNotFound
	}
	u := s.user
	return &u, nil
}

func (s *singleUserStorage) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	return nil, auth.ErrUserNotFound
}

func (s *singleUserStorage) GetUserByUsername(ctx context.Context, username string) (*auth.User, error) {
	return nil, auth.ErrUserNotFound
}

func (s *singleUserStorage) UpdateUsername(ctx context.Context, id int64, username string) (*auth.User, error) {
	return nil, auth.ErrUserNotFound
}

func (s *singleUserStorage) UpdateEmail(ctx context.Context, id int64, email string) (*auth.User, error) {
	return nil, auth.ErrUserNotFound
}

func (s *singleUserStorage) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return auth.ErrUserNotFound
}

func (s *singleUserStorage) ResetPassword(ctx context.Context, id int64, passwordHash string) (*auth.User, error) {
	return nil, auth.ErrUserNotFound
}

func (s *singleUserStorage) MarkVerified(ctx context.Context, id int64) (*auth.User, error) {
	return nil, auth.ErrUserNotFound
}

type deniedGoogleVerifier struct{}

func (deniedGoogleVerifier) VerifyIDToken(ctx context.Context, token string) (string, error) {
	return "", auth.ErrNotAuthenticated
}

func newRouterFixture(t *testing.T) (http.Handler, *Service, string) {
	t.Helper()

	cfg := auth.Config{
		AccessTokenSecret:   "access-secret",
		RefreshTokenSecret:  "refresh-secret",
		GoogleClientID:      "google-client-id",
		SpotifyClientID:     "spotify-id",
		SpotifyClientSecret: "spotify-secret",
		AccessTokenTTL:      time.Hour,
		RefreshTokenTTL:     time.Hour,
		OTPTTL:              time.Hour,
	}
	issuer, err := auth.NewTokenIssuer(cfg)
	require.NoError(t, err)

	user := auth.User{ID: 7, Email: "alice@example.com", Username: "alice"}
	token, err := issuer.AccessToken(&user)
	require.NoError(t, err)

	log := slog.New(slog.DiscardHandler)
	gate := auth.NewGate(issuer, &singleUserStorage{user: user}, deniedGoogleVerifier{}, log)
	service := NewService(newMemStorage(), log)

	authz := "Bearer " + base64.StdEncoding.EncodeToString([]byte(token))
	return NewHandlers(service, gate).Router(), service, authz
}

func doRequest(handler http.Handler, method, path, body, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRouterPublicRoutes(t *testing.T) {
	t.Parallel()

	handler, service, _ := newRouterFixture(t)

	created, err := service.CreateRemaster(context.Background(), 7, testInput("Stevie Ray Vaughan"))
	require.NoError(t, err)

	t.Run("list", func(t *testing.T) {
		rec := doRequest(handler, http.MethodGet, "/remasters", "", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var list []Remaster
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		require.Len(t, list, 1)
		assert.Equal(t, created.ID, list[0].ID)
	})

	t.Run("get", func(t *testing.T) {
		rec := doRequest(handler, http.MethodGet, "/remasters/1", "", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var rm Remaster
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rm))
		assert.Equal(t, "Riviera Paradise", rm.Name)
	})

	t.Run("get missing", func(t *testing.T) {
		rec := doRequest(handler, http.MethodGet, "/remasters/404", "", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("get with a junk id", func(t *testing.T) {
		rec := doRequest(handler, http.MethodGet, "/remasters/abc", "", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRouterGatedRoutes(t *testing.T) {
	t.Parallel()

	handler, _, authz := newRouterFixture(t)

	t.Run("create requires a session", func(t *testing.T) {
		rec := doRequest(handler, http.MethodPost, "/remasters", `{"name":"x"}`, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("create and read back creator-scoped", func(t *testing.T) {
		body, err := json.Marshal(testInput("Stevie Ray Vaughan"))
		require.NoError(t, err)

		rec := doRequest(handler, http.MethodPost, "/remasters", string(body), authz)
		require.Equal(t, http.StatusCreated, rec.Code)

		var created Remaster
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.Equal(t, int64(7), created.CreatorID)

		rec = doRequest(handler, http.MethodGet, "/user/remasters", "", authz)
		require.Equal(t, http.StatusOK, rec.Code)

		var list []Remaster
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		require.Len(t, list, 1)
		require.NotNil(t, list[0].Artist)
		assert.Equal(t, "Stevie Ray Vaughan", list[0].Artist.Name)

		rec = doRequest(handler, http.MethodGet, "/user/remasters/1", "", authz)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		rec := doRequest(handler, http.MethodPost, "/remasters", `{not json`, authz)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
