package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/remasterhq/remaster/pkg/email"
	"github.com/remasterhq/remaster/pkg/logger"
)

const (
	verifyEmailSubject    = "REMASTER - VERIFY EMAIL"
	forgotPasswordSubject = "REMASTER - FORGOT PASSWORD"
)

// Service implements the credential and account operations. Every
// method returns a response value; field-level failures are data, not
// Go errors. Returned errors are reserved for infrastructure faults the
// transport maps to a 500.
type Service struct {
	users  UserStorage
	tokens *TokenIssuer
	otps   *OTPStore
	mailer email.Sender
	google GoogleProfileFetcher
	log    *slog.Logger
}

func NewService(users UserStorage, tokens *TokenIssuer, otps *OTPStore, mailer email.Sender, google GoogleProfileFetcher, log *slog.Logger) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		otps:   otps,
		mailer: mailer,
		google: google,
		log:    log,
	}
}

// RegisterInput is the payload for Register.
type RegisterInput struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a password account, issues an email-verification
// code and returns a token bundle. Uniqueness conflicts come back as
// field errors naming the colliding field.
func (s *Service) Register(ctx context.Context, input RegisterInput) (AuthResponse, error) {
	hash, err := HashPassword(input.Password)
	if err != nil {
		return AuthResponse{}, err
	}

	user, err := s.users.CreateUser(ctx, CreateUserParams{
		Email:        strings.ToLower(input.Email),
		Username:     input.Username,
		PasswordHash: hash,
	})
	if err != nil {
		if resp, ok := createConflictResponse(err); ok {
			return resp, nil
		}
		return AuthResponse{}, err
	}

	code, err := s.otps.IssueVerifyEmail(ctx, user.ID)
	if err != nil {
		return AuthResponse{}, err
	}
	s.sendOTPEmail(ctx, user.Email, verifyEmailSubject, code)

	return s.authResponse(user)
}

// RegisterWithGoogleInput is the payload for RegisterWithGoogle.
type RegisterWithGoogleInput struct {
	AccessToken string `json:"access_token"`
	Username    string `json:"username"`
}

// RegisterWithGoogle creates a pre-verified, passwordless account from
// a Google OAuth access token.
func (s *Service) RegisterWithGoogle(ctx context.Context, input RegisterWithGoogleInput) (AuthResponse, error) {
	profile, err := s.google.FetchProfile(ctx, input.AccessToken)
	if err != nil {
		s.log.InfoContext(ctx, "google profile fetch failed", logger.Error(err))
		return AuthResponse{Errors: fieldErrors("username", "Failed to Retrieve Google Account")}, nil
	}

	user, err := s.users.CreateUser(ctx, CreateUserParams{
		Email:    strings.ToLower(profile.Email),
		Username: input.Username,
		Verified: true,
	})
	if err != nil {
		if resp, ok := createConflictResponse(err); ok {
			return resp, nil
		}
		return AuthResponse{}, err
	}

	return s.authResponse(user)
}

// LoginInput is the payload for Login.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a password account. Unknown email and wrong
// password produce the same message so account existence is not leaked.
func (s *Service) Login(ctx context.Context, input LoginInput) (AuthResponse, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(input.Email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return AuthResponse{Errors: fieldErrors("email", "Invalid Email or Password")}, nil
		}
		return AuthResponse{}, err
	}

	if !user.HasPassword() {
		return AuthResponse{Errors: fieldErrors("email", "Login With Google")}, nil
	}

	ok, err := VerifyPassword(user.PasswordHash, input.Password)
	if err != nil {
		return AuthResponse{}, err
	}
	if !ok {
		return AuthResponse{Errors: fieldErrors("email", "Invalid Email or Password")}, nil
	}

	return s.authResponse(user)
}

// LoginWithGoogle authenticates an existing account through a Google
// OAuth access token.
func (s *Service) LoginWithGoogle(ctx context.Context, accessToken string) (AuthResponse, error) {
	profile, err := s.google.FetchProfile(ctx, accessToken)
	if err != nil {
		s.log.InfoContext(ctx, "google profile fetch failed", logger.Error(err))
		return AuthResponse{Errors: fieldErrors("google", "Failed to Retrieve Google Account")}, nil
	}

	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(profile.Email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return AuthResponse{Errors: fieldErrors("google", "No Account Found")}, nil
		}
		return AuthResponse{}, err
	}

	return s.authResponse(user)
}

// LoginWithGoogleIdentity issues a bundle for the account matching a
// gate-verified Google email, for operations guarded by the Google
// variant of the strategy gate.
func (s *Service) LoginWithGoogleIdentity(ctx context.Context, googleEmail string) (AuthResponse, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(googleEmail))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return AuthResponse{Errors: fieldErrors("google", "No Account Found")}, nil
		}
		return AuthResponse{}, err
	}
	return s.authResponse(user)
}

// LoginWithGuestAccess creates a throwaway pre-verified account with a
// generated identity and returns its token bundle.
func (s *Service) LoginWithGuestAccess(ctx context.Context) (AuthResponse, error) {
	id := uuid.NewString()
	user, err := s.users.CreateUser(ctx, CreateUserParams{
		Email:    fmt.Sprintf("guest-%s@guest.remaster.local", id),
		Username: "guest-" + id[:8],
		Verified: true,
	})
	if err != nil {
		// uuid collisions are not a practical concern; any conflict
		// here is an infrastructure fault.
		return AuthResponse{}, err
	}

	return s.authResponse(user)
}

// ChangePasswordInput is the payload for ChangePassword.
type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ChangePassword rotates the password of the session user after
// checking the old one.
func (s *Service) ChangePassword(ctx context.Context, user *User, input ChangePasswordInput) (UserResponse, error) {
	ok, err := VerifyPassword(user.PasswordHash, input.OldPassword)
	if err != nil {
		return UserResponse{}, err
	}
	if !ok {
		return UserResponse{Errors: fieldErrors("oldPassword", "Incorrect Password")}, nil
	}

	hash, err := HashPassword(input.NewPassword)
	if err != nil {
		return UserResponse{}, err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return UserResponse{}, err
	}

	return UserResponse{User: user}, nil
}

// ForgotPassword issues a reset code for the account behind the email.
// When no such account exists it still reports success so callers
// cannot probe which addresses are registered.
func (s *Service) ForgotPassword(ctx context.Context, emailAddr string) (bool, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(emailAddr))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return true, nil
		}
		return false, err
	}

	code, err := s.otps.IssueForgotPassword(ctx, user.Email, user.ID)
	if err != nil {
		return false, err
	}
	s.sendOTPEmail(ctx, user.Email, forgotPasswordSubject, code)

	return true, nil
}

// ChangeForgotPasswordInput is the payload for ChangeForgotPassword.
type ChangeForgotPasswordInput struct {
	Email    string `json:"email"`
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ChangeForgotPassword consumes a reset code and, on match, stores the
// new password while atomically bumping the token version, killing all
// refresh tokens issued before this call.
func (s *Service) ChangeForgotPassword(ctx context.Context, input ChangeForgotPasswordInput) (AuthResponse, error) {
	userID, err := s.otps.ConsumeForgotPassword(ctx, strings.ToLower(input.Email), input.Token)
	if err != nil {
		if resp, ok := otpFailureResponse(err); ok {
			return resp, nil
		}
		return AuthResponse{}, err
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return AuthResponse{}, err
	}

	user, err := s.users.ResetPassword(ctx, userID, hash)
	if err != nil {
		return AuthResponse{}, err
	}

	return s.authResponse(user)
}

// SendVerifyEmail re-issues the verification code for the session user.
func (s *Service) SendVerifyEmail(ctx context.Context, user *User) (bool, error) {
	code, err := s.otps.IssueVerifyEmail(ctx, user.ID)
	if err != nil {
		return false, err
	}
	s.sendOTPEmail(ctx, user.Email, verifyEmailSubject, code)
	return true, nil
}

// VerifyEmail consumes a verification code for the session user and
// marks the account verified on match.
func (s *Service) VerifyEmail(ctx context.Context, user *User, code string) (UserResponse, error) {
	if err := s.otps.ConsumeVerifyEmail(ctx, user.ID, code); err != nil {
		switch {
		case errors.Is(err, ErrOTPExpired):
			return UserResponse{Errors: fieldErrors("token", "Token Expired")}, nil
		case errors.Is(err, ErrOTPInvalid):
			return UserResponse{Errors: fieldErrors("token", "Token Invalid")}, nil
		}
		return UserResponse{}, err
	}

	updated, err := s.users.MarkVerified(ctx, user.ID)
	if err != nil {
		return UserResponse{}, err
	}

	return UserResponse{User: updated}, nil
}

// ChangeUsername renames the session user after a duplicate check.
func (s *Service) ChangeUsername(ctx context.Context, user *User, username string) (UserResponse, error) {
	updated, err := s.users.UpdateUsername(ctx, user.ID, username)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return UserResponse{Errors: fieldErrors("username", "Username Taken")}, nil
		}
		return UserResponse{}, err
	}
	return UserResponse{User: updated}, nil
}

// ChangeEmail re-addresses the session user after a duplicate check.
func (s *Service) ChangeEmail(ctx context.Context, user *User, emailAddr string) (UserResponse, error) {
	updated, err := s.users.UpdateEmail(ctx, user.ID, strings.ToLower(emailAddr))
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return UserResponse{Errors: fieldErrors("email", "Email in Use")}, nil
		}
		return UserResponse{}, err
	}
	return UserResponse{User: updated}, nil
}

// Refresh validates a refresh token (signature, expiry, live token
// version) and mints a fresh bundle for its user.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*User, *Auth, error) {
	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, nil, ErrNotAuthenticated
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, nil, ErrNotAuthenticated
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, nil, ErrNotAuthenticated
	}

	bundle, err := s.tokenBundle(user)
	if err != nil {
		return nil, nil, err
	}
	return user, bundle, nil
}

func (s *Service) authResponse(user *User) (AuthResponse, error) {
	bundle, err := s.tokenBundle(user)
	if err != nil {
		return AuthResponse{}, err
	}
	return AuthResponse{User: user, Auth: bundle}, nil
}

func (s *Service) tokenBundle(user *User) (*Auth, error) {
	accessToken, err := s.tokens.AccessToken(user)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokens.RefreshToken(user)
	if err != nil {
		return nil, err
	}
	return &Auth{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.tokens.ExpiresIn(),
	}, nil
}

// sendOTPEmail delivers a code out of band. Delivery failures are
// logged and never roll back the operation that issued the code.
func (s *Service) sendOTPEmail(ctx context.Context, to, subject, code string) {
	err := s.mailer.Send(ctx, email.SendParams{
		To:       to,
		Subject:  subject,
		BodyHTML: fmt.Sprintf("Your Token is: %s", code),
		Tag:      "otp",
	})
	if err != nil {
		s.log.ErrorContext(ctx, "failed to send otp email", logger.Email(to), logger.Error(err))
	}
}

func createConflictResponse(err error) (AuthResponse, bool) {
	switch {
	case errors.Is(err, ErrUsernameTaken):
		return AuthResponse{Errors: fieldErrors("username", "Username Taken")}, true
	case errors.Is(err, ErrEmailTaken):
		return AuthResponse{Errors: fieldErrors("email", "Email in Use")}, true
	}
	return AuthResponse{}, false
}

func otpFailureResponse(err error) (AuthResponse, bool) {
	switch {
	case errors.Is(err, ErrOTPExpired):
		return AuthResponse{Errors: fieldErrors("token", "Token Expired")}, true
	case errors.Is(err, ErrOTPInvalid):
		return AuthResponse{Errors: fieldErrors("token", "Token Invalid")}, true
	}
	return AuthResponse{}, false
}
