package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/iliyamo/justloook-provider-portal/internal/backend"
	"github.com/iliyamo/justloook-provider-portal/internal/model"
	"github.com/iliyamo/justloook-provider-portal/internal/session"
	"github.com/iliyamo/justloook-provider-portal/internal/validation"
)

// MinPasswordLength is enforced before sign-up reaches the backend.
const MinPasswordLength = 6

const (
	MsgIncorrectPassword = "Incorrect password."
	MsgNoAccount         = "No account found for this email."
	MsgEmailInUse        = "An account with this email already exists."
	MsgWeakPassword      = "Password must be at least 6 characters."
	MsgInvalidEmail      = "Please enter a valid email address."
	MsgMissingPassword   = "Please enter your password."
	MsgTooManyAttempts   = "Too many attempts. Please wait a moment and try again."
	MsgUnexpected        = "An unexpected error occurred."
	MsgAccountCreated    = "Account created, you are now signed in."
	MsgResetNeedsEmail   = "Enter your email to reset password."
	MsgResetSent         = "Password reset email sent. Check your inbox (and spam folder)."
	MsgResetFailed       = "Could not send reset email."
)

// RememberStore persists the last email used on this device.
type RememberStore interface {
	Remembered() (string, bool)
	Remember(email string)
	Forget()
}

type providerCreator interface {
	Create(ctx context.Context, p model.Provider) error
}

type credentials struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// SignUpResult describes a successful sign-up. The two optional follow-up
// writes never fail the sign-up; their errors are kept for the caller.
type SignUpResult struct {
	Identity       model.Identity
	DisplayNameErr error
	ProfileErr     error
}

// Degraded reports whether a follow-up write failed.
func (r SignUpResult) Degraded() bool { return r.DisplayNameErr != nil || r.ProfileErr != nil }

type AuthService struct {
	auth      backend.Authenticator
	providers providerCreator
	validate  *validation.Validator
	now       func() time.Time
	logger    *slog.Logger
}

func NewAuthService(auth backend.Authenticator, providers providerCreator, logger *slog.Logger) *AuthService {
	return &AuthService{
		auth:      auth,
		providers: providers,
		validate:  validation.New(),
		now:       time.Now,
		logger:    logger,
	}
}

// SignIn verifies credentials and publishes SignedIn on store.
func (s *AuthService) SignIn(ctx context.Context, store *session.Store, remember RememberStore, email, password string, rememberMe bool) (model.Identity, error) {
	email = strings.TrimSpace(email)
	if err := s.checkCredentials(email, password); err != nil {
		return model.Identity{}, err
	}
	id, err := s.auth.SignIn(ctx, email, password)
	if err != nil {
		s.logger.InfoContext(ctx, "sign in failed", "email", email, "code", backend.AuthCodeOf(err), "error", err)
		return model.Identity{}, authFailure(err)
	}
	store.Publish(session.Event{Kind: session.SignedIn, Identity: id})
	applyRemember(remember, email, rememberMe)
	s.logger.InfoContext(ctx, "signed in", "uid", id.UID)
	return id, nil
}

// SignUp creates the account, then best-effort sets the display name and
// writes the provider document.
func (s *AuthService) SignUp(ctx context.Context, store *session.Store, remember RememberStore, email, password, companyName string, rememberMe bool) (SignUpResult, error) {
	email = strings.TrimSpace(email)
	if len(password) < MinPasswordLength {
		return SignUpResult{}, userError(KindValidation, MsgWeakPassword, nil)
	}
	if err := s.checkCredentials(email, password); err != nil {
		return SignUpResult{}, err
	}

	id, err := s.auth.SignUp(ctx, email, password)
	if err != nil {
		s.logger.InfoContext(ctx, "sign up failed", "email", email, "code", backend.AuthCodeOf(err), "error", err)
		return SignUpResult{}, authFailure(err)
	}

	res := SignUpResult{}
	name := strings.TrimSpace(companyName)
	if name != "" {
		if err := s.auth.UpdateDisplayName(ctx, id, name); err != nil {
			s.logger.WarnContext(ctx, "set display name failed", "uid", id.UID, "error", err)
			res.DisplayNameErr = err
		} else {
			id.DisplayName = name
		}
	}

	err = s.providers.Create(ctx, model.Provider{
		UID:       id.UID,
		Name:      name,
		Email:     id.Email,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "create provider document failed", "uid", id.UID, "error", err)
		res.ProfileErr = err
	}

	id.Token = ""
	res.Identity = id
	store.Publish(session.Event{Kind: session.SignedIn, Identity: id})
	applyRemember(remember, email, rememberMe)
	s.logger.InfoContext(ctx, "signed up", "uid", id.UID, "degraded", res.Degraded())
	return res, nil
}

// RequestPasswordReset asks the backend to email a reset link.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return userError(KindValidation, MsgResetNeedsEmail, nil)
	}
	if err := s.auth.SendPasswordReset(ctx, email); err != nil {
		s.logger.InfoContext(ctx, "password reset failed", "email", email, "code", backend.AuthCodeOf(err), "error", err)
		if backend.AuthCodeOf(err) == backend.CodeUserNotFound {
			return userError(KindAuthorization, MsgNoAccount, err)
		}
		return userError(KindGeneric, Message(err, MsgResetFailed), err)
	}
	return nil
}

// SignOut clears the session.
func (s *AuthService) SignOut(ctx context.Context, store *session.Store) {
	if id, ok := store.Current(); ok {
		s.logger.InfoContext(ctx, "signed out", "uid", id.UID)
	}
	store.Publish(session.Event{Kind: session.SignedOut})
}

func (s *AuthService) checkCredentials(email, password string) error {
	err := s.validate.Validate(credentials{Email: email, Password: password})
	var fe validation.FieldErrors
	if errors.As(err, &fe) {
		if fe.Has("email") {
			return userError(KindValidation, MsgInvalidEmail, err)
		}
		return userError(KindValidation, MsgMissingPassword, err)
	}
	return err
}

func authFailure(err error) error {
	switch backend.AuthCodeOf(err) {
	case backend.CodeWrongPassword:
		return userError(KindAuthorization, MsgIncorrectPassword, err)
	case backend.CodeUserNotFound:
		return userError(KindAuthorization, MsgNoAccount, err)
	case backend.CodeEmailInUse:
		return userError(KindValidation, MsgEmailInUse, err)
	case backend.CodeWeakPassword:
		return userError(KindValidation, MsgWeakPassword, err)
	case backend.CodeInvalidEmail:
		return userError(KindValidation, MsgInvalidEmail, err)
	case backend.CodeTooManyRequests:
		return userError(KindAuthorization, MsgTooManyAttempts, err)
	}
	return userError(KindGeneric, Message(err, MsgUnexpected), err)
}

func applyRemember(r RememberStore, email string, remember bool) {
	if r == nil {
		return
	}
	if remember {
		r.Remember(email)
		return
	}
	r.Forget()
}
