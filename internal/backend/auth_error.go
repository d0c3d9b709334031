package backend

import (
	"errors"
	"fmt"
)

// AuthCode identifies an identity provider failure the UI knows how to
// explain.
type AuthCode string

const (
	CodeWrongPassword   AuthCode = "auth/wrong-password"
	CodeUserNotFound    AuthCode = "auth/user-not-found"
	CodeEmailInUse      AuthCode = "auth/email-already-in-use"
	CodeWeakPassword    AuthCode = "auth/weak-password"
	CodeInvalidEmail    AuthCode = "auth/invalid-email"
	CodeTooManyRequests AuthCode = "auth/too-many-requests"
	CodeUnknown         AuthCode = "auth/unknown"
)

// AuthError is returned by Authenticator implementations.
type AuthError struct {
	Code    AuthCode
	Message string
	Err     error
}

func NewAuthError(code AuthCode, msg string, cause error) *AuthError {
	return &AuthError{Code: code, Message: msg, Err: cause}
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

func (e *AuthError) Unwrap() error { return e.Err }

// AuthCodeOf returns the code of the first AuthError in err's chain, or
// CodeUnknown.
func AuthCodeOf(err error) AuthCode {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}
