package auth

import (
	"encoding/json"
	"net/http"
)

// FieldError attributes a user-visible failure to a single input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Auth is the token bundle returned by every successful credential
// operation.
type Auth struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// SpotifyAuth carries the optional service-level Spotify token piggy-
// backed on auth responses.
type SpotifyAuth struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// AuthResponse is the uniform result shape of credential operations:
// either field errors or a user with a token bundle.
type AuthResponse struct {
	Errors      []FieldError `json:"errors,omitempty"`
	User        *User        `json:"user,omitempty"`
	Auth        *Auth        `json:"auth,omitempty"`
	SpotifyAuth *SpotifyAuth `json:"spotify_auth,omitempty"`
}

// UserResponse is the result shape of account-maintenance operations.
type UserResponse struct {
	Errors []FieldError `json:"errors,omitempty"`
	User   *User        `json:"user,omitempty"`
}

func fieldErrors(field, message string) []FieldError {
	return []FieldError{{Field: field, Message: message}}
}

type errorBody struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
