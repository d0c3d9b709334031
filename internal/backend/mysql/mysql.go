// Package mysql is the self-hosted backend: accounts and documents live in
// MySQL, uploads on the local filesystem (see package local).
package mysql

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/iliyamo/justloook-provider-portal/internal/backend"
	"github.com/iliyamo/justloook-provider-portal/internal/backend/local"
	"github.com/iliyamo/justloook-provider-portal/internal/database"
)

// Options configures New.
type Options struct {
	BcryptCost   int
	MediaDir     string
	MediaBaseURL string
	Notify       ResetNotifier
}

// New ensures the schema exists and assembles the backend. Close closes db.
func New(ctx context.Context, db *sql.DB, opts Options, logger *slog.Logger) (backend.Backend, error) {
	if err := database.EnsureSchema(ctx, db); err != nil {
		return backend.Backend{}, err
	}
	objects, err := local.NewObjectStore(opts.MediaDir, opts.MediaBaseURL)
	if err != nil {
		return backend.Backend{}, err
	}
	return backend.Backend{
		Auth:    NewAuth(db, opts.BcryptCost, opts.Notify, logger),
		Docs:    NewDocStore(db),
		Objects: objects,
		Close:   db.Close,
	}, nil
}
