package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/iliyamo/justloook-provider-portal/internal/backend"
	"github.com/iliyamo/justloook-provider-portal/internal/model"
)

// MinPasswordLength matches the hosted identity provider's rule.
const MinPasswordLength = 6

type account struct {
	identity model.Identity
	password string
}

// Auth keeps accounts in memory with plaintext passwords. Development
// and tests only.
type Auth struct {
	mu       sync.Mutex
	accounts map[string]*account // by lower-cased email
	resets   []string
}

func NewAuth() *Auth {
	return &Auth{accounts: make(map[string]*account)}
}

func (a *Auth) SignIn(ctx context.Context, email, password string) (model.Identity, error) {
	if err := ctx.Err(); err != nil {
		return model.Identity{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	acc, ok := a.accounts[normalizeEmail(email)]
	if !ok {
		return model.Identity{}, backend.NewAuthError(backend.CodeUserNotFound, "EMAIL_NOT_FOUND", nil)
	}
	if acc.password != password {
		return model.Identity{}, backend.NewAuthError(backend.CodeWrongPassword, "INVALID_PASSWORD", nil)
	}
	return acc.identity, nil
}

func (a *Auth) SignUp(ctx context.Context, email, password string) (model.Identity, error) {
	if err := ctx.Err(); err != nil {
		return model.Identity{}, err
	}
	email = normalizeEmail(email)
	if !strings.Contains(email, "@") {
		return model.Identity{}, backend.NewAuthError(backend.CodeInvalidEmail, "INVALID_EMAIL", nil)
	}
	if len(password) < MinPasswordLength {
		return model.Identity{}, backend.NewAuthError(backend.CodeWeakPassword, "WEAK_PASSWORD", nil)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.accounts[email]; exists {
		return model.Identity{}, backend.NewAuthError(backend.CodeEmailInUse, "EMAIL_EXISTS", nil)
	}
	id := model.Identity{UID: uuid.NewString(), Email: email}
	a.accounts[email] = &account{identity: id, password: password}
	return id, nil
}

// SendPasswordReset records the request; PasswordResets exposes the log.
func (a *Auth) SendPasswordReset(ctx context.Context, email string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	email = normalizeEmail(email)
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.accounts[email]; !ok {
		return backend.NewAuthError(backend.CodeUserNotFound, "EMAIL_NOT_FOUND", nil)
	}
	a.resets = append(a.resets, email)
	return nil
}

func (a *Auth) UpdateDisplayName(ctx context.Context, id model.Identity, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	acc, ok := a.accounts[normalizeEmail(id.Email)]
	if !ok || acc.identity.UID != id.UID {
		return fmt.Errorf("update display name: %w", backend.ErrNotFound)
	}
	acc.identity.DisplayName = name
	return nil
}

// PasswordResets returns the emails a reset was requested for, oldest first.
func (a *Auth) PasswordResets() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.resets...)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
