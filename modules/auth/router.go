package auth

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// refreshTokenAttempts is the retry budget for the Spotify fetch piggy-
// backed on the refresh route. The dedicated /spotify_token route uses
// a single attempt so its latency stays bounded.
const refreshTokenAttempts = 3

// Handlers owns the HTTP surface of the auth module.
type Handlers struct {
	service *Service
	gate    *Gate
	spotify *SpotifyFetcher
}

func NewHandlers(service *Service, gate *Gate, spotify *SpotifyFetcher) *Handlers {
	return &Handlers{service: service, gate: gate, spotify: spotify}
}

// Router mounts the credential operations and the two token REST
// routes. Protected operations each pick exactly one gate variant.
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	r.Post("/refresh_token", h.refreshToken)
	r.Get("/spotify_token", h.spotifyToken)

	r.Post("/register", h.register)
	r.Post("/register/google", h.registerWithGoogle)
	r.Post("/login", h.login)
	r.Post("/login/google", h.loginWithGoogle)
	r.Post("/login/guest", h.loginWithGuestAccess)
	r.Post("/forgot_password", h.forgotPassword)
	r.Post("/change_forgot_password", h.changeForgotPassword)

	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireSession)
		r.Post("/change_password", h.changePassword)
		r.Post("/change_username", h.changeUsername)
		r.Post("/change_email", h.changeEmail)
		r.Post("/verify_email", h.verifyEmail)
		r.Post("/send_verify_email", h.sendVerifyEmail)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireGoogleIdentity)
		r.Post("/login/google_identity", h.loginWithGoogleIdentity)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireSpotifyToken)
		r.Get("/spotify/me", h.spotifyMe)
	})

	return r
}

// refreshTokenResponse mirrors the historical REST contract: Spotify
// fields stay null when the upstream fetch failed, the bundle is still
// returned.
type refreshTokenResponse struct {
	OK                 bool    `json:"ok"`
	AccessToken        string  `json:"access_token"`
	RefreshToken       string  `json:"refresh_token"`
	ExpiresIn          int     `json:"expires_in"`
	User               *User   `json:"user"`
	SpotifyAccessToken *string `json:"spotify_access_token"`
	SpotifyExpiresIn   *int    `json:"spotify_expires_in"`
}

func (h *Handlers) refreshToken(w http.ResponseWriter, r *http.Request) {
	spotifyToken, spotifyErr := h.spotify.FetchClientToken(r.Context(), refreshTokenAttempts)

	token, err := decodedBearerToken(r)
	if err != nil {
		respondJSON(w, http.StatusUnauthorized, errorBody{Error: "Failed to Refresh Token"})
		return
	}

	user, bundle, err := h.service.Refresh(r.Context(), token)
	if err != nil {
		respondJSON(w, http.StatusUnauthorized, errorBody{Error: "Failed to Refresh Token"})
		return
	}

	resp := refreshTokenResponse{
		OK:           true,
		AccessToken:  bundle.AccessToken,
		RefreshToken: bundle.RefreshToken,
		ExpiresIn:    bundle.ExpiresIn,
		User:         user,
	}
	if spotifyErr == nil {
		resp.SpotifyAccessToken = &spotifyToken.AccessToken
		resp.SpotifyExpiresIn = &spotifyToken.ExpiresIn
	}
	respondJSON(w, http.StatusOK, resp)
}

type spotifyTokenResponse struct {
	OK                 bool   `json:"ok"`
	SpotifyAccessToken string `json:"spotify_access_token"`
	SpotifyExpiresIn   int    `json:"spotify_expires_in"`
}

func (h *Handlers) spotifyToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.spotify.FetchClientToken(r.Context(), 1)
	if err != nil {
		respondJSON(w, http.StatusGatewayTimeout, errorBody{Error: "Failed to Connect to Spotify"})
		return
	}
	respondJSON(w, http.StatusOK, spotifyTokenResponse{
		OK:                 true,
		SpotifyAccessToken: token.AccessToken,
		SpotifyExpiresIn:   token.ExpiresIn,
	})
}

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var input RegisterInput
	if !decodeBody(w, r, &input) {
		return
	}
	resp, err := h.service.Register(r.Context(), input)
	writeResult(w, resp, err)
}

func (h *Handlers) registerWithGoogle(w http.ResponseWriter, r *http.Request) {
	var input RegisterWithGoogleInput
	if !decodeBody(w, r, &input) {
		return
	}
	resp, err := h.service.RegisterWithGoogle(r.Context(), input)
	writeResult(w, resp, err)
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var input LoginInput
	if !decodeBody(w, r, &input) {
		return
	}
	resp, err := h.service.Login(r.Context(), input)
	writeResult(w, resp, err)
}

func (h *Handlers) loginWithGoogle(w http.ResponseWriter, r *http.Request) {
	var input struct {
		AccessToken string `json:"access_token"`
	}
	if !decodeBody(w, r, &input) {
		return
	}
	resp, err := h.service.LoginWithGoogle(r.Context(), input.AccessToken)
	writeResult(w, resp, err)
}

func (h *Handlers) loginWithGuestAccess(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.LoginWithGuestAccess(r.Context())
	writeResult(w, resp, err)
}

func (h *Handlers) loginWithGoogleIdentity(w http.ResponseWriter, r *http.Request) {
	googleEmail, ok := GoogleEmailFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorBody{Error: "Not Authenticated"})
		return
	}
	resp, err := h.service.LoginWithGoogleIdentity(r.Context(), googleEmail)
	writeResult(w, resp, err)
}

func (h *Handlers) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email string `json:"email"`
	}
	if !decodeBody(w, r, &input) {
		return
	}
	ok, err := h.service.ForgotPassword(r.Context(), input.Email)
	writeResult(w, map[string]bool{"ok": ok}, err)
}

func (h *Handlers) changeForgotPassword(w http.ResponseWriter, r *http.Request) {
	var input ChangeForgotPasswordInput
	if !decodeBody(w, r, &input) {
		return
	}
	resp, err := h.service.ChangeForgotPassword(r.Context(), input)
	writeResult(w, resp, err)
}

func (h *Handlers) changePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorBody{Error: "Not Authenticated"})
		return
	}
	var input ChangePasswordInput
	if !decodeBody(w, r, &input) {
		return
	}
	resp, err := h.service.ChangePassword(r.Context(), user, input)
	writeResult(w, resp, err)
}

func (h *Handlers) changeUsername(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorBody{Error: "Not Authenticated"})
		return
	}
	var input struct {
		Username string `json:"username"`
	}
	if !decodeBody(w, r, &input) {
		return
	}
	resp, err := h.service.ChangeUsername(r.Context(), user, input.Username)
	writeResult(w, resp, err)
}

func (h *Handlers) changeEmail(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorBody{Error: "Not Authenticated"})
		return
	}
	var input struct {
		Email string `json:"email"`
	}
	if !decodeBody(w, r, &input) {
		return
	}
	resp, err := h.service.ChangeEmail(r.Context(), user, input.Email)
	writeResult(w, resp, err)
}

func (h *Handlers) verifyEmail(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorBody{Error: "Not Authenticated"})
		return
	}
	var input struct {
		Token string `json:"token"`
	}
	if !decodeBody(w, r, &input) {
		return
	}
	resp, err := h.service.VerifyEmail(r.Context(), user, input.Token)
	writeResult(w, resp, err)
}

func (h *Handlers) sendVerifyEmail(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorBody{Error: "Not Authenticated"})
		return
	}
	ok, err := h.service.SendVerifyEmail(r.Context(), user)
	writeResult(w, map[string]bool{"ok": ok}, err)
}

func (h *Handlers) spotifyMe(w http.ResponseWriter, r *http.Request) {
	token, ok := SpotifyTokenFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorBody{Error: "Not Authenticated"})
		return
	}
	profile, err := h.spotify.CurrentUser(r.Context(), token)
	if err != nil {
		respondJSON(w, http.StatusBadGateway, errorBody{Error: "Failed to Retrieve Spotify Account"})
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid Request Body"})
		return false
	}
	return true
}

func writeResult(w http.ResponseWriter, resp any, err error) {
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal Server Error"})
		return
	}
	respondJSON(w, http.StatusOK, resp)
}
