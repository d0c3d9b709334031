package firebase

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/iliyamo/justloook-provider-portal/internal/backend"
)

// Identity Toolkit reports failures as an upper-case reason at the start
// of the error message, optionally followed by " : detail".
var authReasons = map[string]backend.AuthCode{
	"EMAIL_NOT_FOUND":             backend.CodeUserNotFound,
	"INVALID_PASSWORD":            backend.CodeWrongPassword,
	"INVALID_LOGIN_CREDENTIALS":   backend.CodeWrongPassword,
	"EMAIL_EXISTS":                backend.CodeEmailInUse,
	"WEAK_PASSWORD":               backend.CodeWeakPassword,
	"INVALID_EMAIL":               backend.CodeInvalidEmail,
	"MISSING_EMAIL":               backend.CodeInvalidEmail,
	"TOO_MANY_ATTEMPTS_TRY_LATER": backend.CodeTooManyRequests,
}

// Firestore and Storage are reached with the server's credentials, so
// security rules never run; a denial means the service account lacks a role.
const (
	firestoreIAMHint = "grant the server's service account a Firestore role such as roles/datastore.user"
	storageIAMHint   = "grant the server's service account a Storage role such as roles/storage.objectAdmin"
)

func authError(op string, err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	reason, detail := splitReason(gerr.Message)
	if code, ok := authReasons[reason]; ok {
		msg := reason
		if detail != "" {
			msg = detail
		}
		return backend.NewAuthError(code, msg, err)
	}
	if gerr.Code == http.StatusForbidden {
		return fmt.Errorf("%s: %w: %v", op, backend.ErrPermissionDenied, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func splitReason(msg string) (reason, detail string) {
	reason, detail, _ = strings.Cut(msg, " : ")
	return strings.TrimSpace(reason), strings.TrimSpace(detail)
}

// docError translates Firestore gRPC status codes.
func docError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%s: %w", op, backend.ErrNotFound)
	case codes.PermissionDenied, codes.Unauthenticated:
		return fmt.Errorf("%s: %w: %v; %s", op, backend.ErrPermissionDenied, err, firestoreIAMHint)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// objectError translates Cloud Storage failures.
func objectError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return fmt.Errorf("%s: %w", op, backend.ErrNotFound)
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && (gerr.Code == http.StatusForbidden || gerr.Code == http.StatusUnauthorized) {
		return fmt.Errorf("%s: %w: %v; %s", op, backend.ErrPermissionDenied, err, storageIAMHint)
	}
	return fmt.Errorf("%s: %w", op, err)
}
