package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/justloook-provider-portal/internal/backend"
	"github.com/iliyamo/justloook-provider-portal/internal/model"
	"github.com/iliyamo/justloook-provider-portal/internal/utils"
)

const (
	minPasswordLength = 6
	resetTokenTTL     = time.Hour
)

// ResetNotifier delivers a password reset token to its owner.
type ResetNotifier func(ctx context.Context, email, rawToken string, exp time.Time) error

// Auth is the self-hosted identity backend: bcrypt hashes in the users
// table.
type Auth struct {
	users  *userRepo
	cost   int
	notify ResetNotifier
	logger *slog.Logger
}

// NewAuth returns an Authenticator over db. A nil notifier only logs that
// a reset was issued; the token itself is never logged.
func NewAuth(db *sql.DB, bcryptCost int, notify ResetNotifier, logger *slog.Logger) *Auth {
	if notify == nil {
		notify = func(ctx context.Context, email, _ string, exp time.Time) error {
			logger.InfoContext(ctx, "password reset issued", "email", email, "expires_at", exp)
			return nil
		}
	}
	return &Auth{users: &userRepo{db: db}, cost: bcryptCost, notify: notify, logger: logger}
}

func (a *Auth) SignIn(ctx context.Context, email, password string) (model.Identity, error) {
	u, err := a.users.byEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Identity{}, backend.NewAuthError(backend.CodeUserNotFound, "no user with this email", nil)
		}
		return model.Identity{}, wrap("sign in", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return model.Identity{}, backend.NewAuthError(backend.CodeWrongPassword, "password does not match", nil)
	}
	return u.Identity(), nil
}

func (a *Auth) SignUp(ctx context.Context, email, password string) (model.Identity, error) {
	if !strings.Contains(email, "@") {
		return model.Identity{}, backend.NewAuthError(backend.CodeInvalidEmail, "email is malformed", nil)
	}
	if len(password) < minPasswordLength {
		return model.Identity{}, backend.NewAuthError(backend.CodeWeakPassword, "password too short", nil)
	}
	u, err := a.users.create(ctx, uuid.NewString(), email, password, a.cost)
	if err != nil {
		switch {
		case errors.Is(err, errEmailExists):
			return model.Identity{}, backend.NewAuthError(backend.CodeEmailInUse, "email already registered", err)
		case errors.Is(err, utils.ErrPasswordTooLong):
			return model.Identity{}, backend.NewAuthError(backend.CodeWeakPassword, err.Error(), err)
		}
		return model.Identity{}, err
	}
	return u.Identity(), nil
}

func (a *Auth) SendPasswordReset(ctx context.Context, email string) error {
	u, err := a.users.byEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return backend.NewAuthError(backend.CodeUserNotFound, "no user with this email", nil)
		}
		return wrap("password reset", err)
	}
	raw, exp, err := utils.NewOpaqueToken(32, resetTokenTTL)
	if err != nil {
		return fmt.Errorf("reset token: %w", err)
	}
	if err := a.users.storeReset(ctx, u.UID, utils.HashToken(raw), exp); err != nil {
		return err
	}
	return a.notify(ctx, u.Email, raw, exp)
}

func (a *Auth) UpdateDisplayName(ctx context.Context, id model.Identity, name string) error {
	ok, err := a.users.setDisplayName(ctx, id.UID, name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("update display name %s: %w", id.UID, backend.ErrNotFound)
	}
	return nil
}
