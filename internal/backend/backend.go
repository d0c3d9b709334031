// Package backend declares the contracts the app needs from its hosted
// backend: an identity provider, a document database and an object store.
// Implementations live in the subpackages firebase, mysql, local and memory.
package backend

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/justloook-provider-portal/internal/model"
)

var (
	// ErrNotFound is returned by Get when the document does not exist and by
	// DownloadURL when the object does not exist.
	ErrNotFound = errors.New("backend: not found")

	// ErrPermissionDenied means the backend's security rules rejected the
	// call. Implementations wrap it around the native error.
	ErrPermissionDenied = errors.New("backend: missing or insufficient permissions")

	// ErrEmptyInFilter rejects an "in" filter with no values. Callers must
	// short-circuit instead of issuing such a query.
	ErrEmptyInFilter = errors.New("backend: empty in filter")
)

// IsPermissionDenied also matches errors that only carry the backend's
// message text, which is how some SDK layers surface rule rejections.
func IsPermissionDenied(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrPermissionDenied) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "missing or insufficient permissions") ||
		strings.Contains(msg, "permission-denied") ||
		strings.Contains(msg, "permission_denied")
}

// Authenticator is the identity provider.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (model.Identity, error)
	SignUp(ctx context.Context, email, password string) (model.Identity, error)
	SendPasswordReset(ctx context.Context, email string) error
	// UpdateDisplayName sets the display name of a freshly signed-up
	// identity. The identity must come from SignIn or SignUp in the same
	// request because some backends need its Token.
	UpdateDisplayName(ctx context.Context, id model.Identity, name string) error
}

// Op is a query comparison.
type Op string

const (
	OpEqual Op = "=="
	OpIn    Op = "in"
)

// Filter is one clause of a conjunctive query. Value is a scalar for
// OpEqual; Values holds the candidates for OpIn.
type Filter struct {
	Field  string
	Op     Op
	Value  any
	Values []string
}

func Equal(field string, value any) Filter { return Filter{Field: field, Op: OpEqual, Value: value} }

func In(field string, values []string) Filter { return Filter{Field: field, Op: OpIn, Values: values} }

// WriteMode selects between replacing a document and merging into it.
type WriteMode int

const (
	Overwrite WriteMode = iota
	// Merge updates only the given top-level fields and creates the
	// document when it is missing.
	Merge
)

// Document is a stored record: an id plus an untyped field map.
type Document struct {
	ID   string
	Data map[string]any
}

// DocumentStore is a schemaless document database organised in
// collections.
type DocumentStore interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	Set(ctx context.Context, collection, id string, data map[string]any, mode WriteMode) error
	Add(ctx context.Context, collection string, data map[string]any) (string, error)
	Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error)
}

// ObjectStore holds uploaded binaries such as screen images.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, r io.Reader) error
	DownloadURL(ctx context.Context, key string) (string, error)
}

// Backend bundles the three collaborators chosen by configuration.
type Backend struct {
	Auth    Authenticator
	Docs    DocumentStore
	Objects ObjectStore
	// Close releases clients held by the backend; never nil.
	Close func() error
}

// ValidateFilters enforces the query contract shared by all stores.
func ValidateFilters(filters []Filter) error {
	for _, f := range filters {
		switch f.Op {
		case OpEqual:
		case OpIn:
			if len(f.Values) == 0 {
				return ErrEmptyInFilter
			}
		default:
			return errors.New("backend: unsupported operator " + string(f.Op))
		}
		if f.Field == "" {
			return errors.New("backend: filter without field")
		}
	}
	return nil
}

// NewDocumentID returns a 20 character random id in the style of
// Firestore auto ids.
func NewDocumentID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
}

// ObjectReader is implemented by object stores whose download URLs point
// back at this server (see the /media route).
type ObjectReader interface {
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)
}
