package service

import (
	"context"
	"errors"
	"io"

	"github.com/iliyamo/justloook-provider-portal/internal/backend"
	"github.com/iliyamo/justloook-provider-portal/internal/model"
	"github.com/iliyamo/justloook-provider-portal/internal/session"
)

// fakeRemember is an in-memory RememberStore.
type fakeRemember struct{ email string }

func (r *fakeRemember) Remembered() (string, bool) { return r.email, r.email != "" }
func (r *fakeRemember) Remember(email string)      { r.email = email }
func (r *fakeRemember) Forget()                    { r.email = "" }

// failingDocs fails every write with err.
type failingDocs struct {
	backend.DocumentStore
	err error
}

func (d failingDocs) Set(context.Context, string, string, map[string]any, backend.WriteMode) error {
	return d.err
}

func (d failingDocs) Add(context.Context, string, map[string]any) (string, error) {
	return "", d.err
}

func (d failingDocs) Get(context.Context, string, string) (backend.Document, error) {
	return backend.Document{}, d.err
}

// failingObjects fails every upload with err.
type failingObjects struct{ err error }

func (o failingObjects) Upload(context.Context, string, string, io.Reader) error { return o.err }
func (o failingObjects) DownloadURL(context.Context, string) (string, error)    { return "", o.err }

func signedIn(uid string) *session.Store {
	return session.New(&model.Identity{UID: uid, Email: uid + "@example.com", DisplayName: "Acme"})
}

var errBoom = errors.New("boom")
