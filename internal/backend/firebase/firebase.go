// Package firebase implements the backend contracts on Firebase:
// Authentication via the Identity Toolkit API, Firestore for documents and
// Firebase Storage (a Cloud Storage bucket) for uploads.
package firebase

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/iliyamo/justloook-provider-portal/internal/backend"
)

// Options configures New. Firestore and Storage authenticate with
// application default credentials unless ClientOptions say otherwise;
// Authentication uses APIKey.
type Options struct {
	ProjectID     string
	APIKey        string
	StorageBucket string
	ClientOptions []option.ClientOption
}

// NewFirestoreClient creates a Firestore client for the given project.
func NewFirestoreClient(ctx context.Context, projectID string, opts ...option.ClientOption) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	return client, nil
}

func New(ctx context.Context, opts Options) (backend.Backend, error) {
	auth, err := NewAuth(ctx, opts.APIKey, opts.ClientOptions...)
	if err != nil {
		return backend.Backend{}, err
	}
	fs, err := NewFirestoreClient(ctx, opts.ProjectID, opts.ClientOptions...)
	if err != nil {
		return backend.Backend{}, err
	}
	gcs, err := storage.NewClient(ctx, opts.ClientOptions...)
	if err != nil {
		_ = fs.Close()
		return backend.Backend{}, fmt.Errorf("failed to create Storage client: %w", err)
	}
	return backend.Backend{
		Auth:    auth,
		Docs:    NewDocStore(fs),
		Objects: NewObjectStore(gcs, opts.StorageBucket),
		Close: func() error {
			return errors.Join(fs.Close(), gcs.Close())
		},
	}, nil
}
