// Package service holds the provider workflows: authentication, screen
// registration, the dashboard and profile/settings. Every failure that
// reaches a user is a *UserError carrying the message to display.
package service

import (
	"errors"
)

// Kind classifies a failure for display and logging.
type Kind string

const (
	KindValidation       Kind = "validation"
	KindAuthorization    Kind = "authorization"
	KindPermissionDenied Kind = "permission_denied"
	KindResource         Kind = "resource"
	KindGeneric          Kind = "generic"
)

// UserError is a failure converted at an operation boundary. Message is
// safe to show; Err keeps the cause for logs.
type UserError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *UserError) Error() string { return e.Message }

func (e *UserError) Unwrap() error { return e.Err }

func userError(kind Kind, msg string, cause error) *UserError {
	return &UserError{Kind: kind, Message: msg, Err: cause}
}

// KindOf returns the kind of err, KindGeneric for foreign errors.
func KindOf(err error) Kind {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.Kind
	}
	return KindGeneric
}

// Message returns the text to show for err. Errors that were not
// converted fall back to their own text, or fallback when empty.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var ue *UserError
	if errors.As(err, &ue) && ue.Message != "" {
		return ue.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}

// ErrNoSession is returned when an operation needs a signed-in provider.
var ErrNoSession = errors.New("no signed-in provider")

// ErrSubmitInProgress rejects a second submit while one is running.
var ErrSubmitInProgress = errors.New("submission already in progress")
