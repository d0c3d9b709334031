// Package preview keeps an image attached to the screen form between
// requests, so a failed submission can show the preview again and be
// retried without re-uploading. Entries are released when the screen is
// saved and expire on their own otherwise.
package preview

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown or expired tokens.
var ErrNotFound = errors.New("preview not found")

// Image is an attached file held for preview. Owner is the uid of the
// provider who uploaded it; only that provider may read it back.
type Image struct {
	Owner       string
	Filename    string
	ContentType string
	Data        []byte
}

// OwnedBy reports whether uid uploaded img.
func (img Image) OwnedBy(uid string) bool { return uid != "" && img.Owner == uid }

// Cache stores images under opaque tokens.
type Cache interface {
	Put(ctx context.Context, img Image) (string, error)
	Get(ctx context.Context, token string) (Image, error)
	Release(ctx context.Context, token string) error
}

func newToken() string { return uuid.NewString() }

// validToken rejects anything that is not a token we could have issued,
// so user input never reaches a cache key unchecked.
func validToken(token string) bool {
	_, err := uuid.Parse(token)
	return err == nil
}
