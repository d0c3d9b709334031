package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/justloook-provider-portal/internal/backend"
	"github.com/iliyamo/justloook-provider-portal/internal/model"
)

// ProviderRepo owns providers/{uid}. Profile and settings share the
// document and are written with merges so neither clobbers the other.
type ProviderRepo struct{ docs backend.DocumentStore }

func NewProviderRepo(docs backend.DocumentStore) *ProviderRepo { return &ProviderRepo{docs: docs} }

// Get reports found=false when the provider has no document yet.
func (r *ProviderRepo) Get(ctx context.Context, uid string) (model.Provider, bool, error) {
	if uid == "" {
		return model.Provider{}, false, ErrMissingUID
	}
	doc, err := r.docs.Get(ctx, model.ProvidersCollection, uid)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return model.Provider{UID: uid}, false, nil
		}
		return model.Provider{}, false, fmt.Errorf("get provider: %w", err)
	}
	return model.ProviderFromDocument(uid, doc.Data), true, nil
}

// Create writes the initial document made at sign-up.
func (r *ProviderRepo) Create(ctx context.Context, p model.Provider) error {
	if p.UID == "" {
		return ErrMissingUID
	}
	err := r.docs.Set(ctx, model.ProvidersCollection, p.UID, map[string]any{
		"name":      p.Name,
		"email":     p.Email,
		"createdAt": p.CreatedAt,
	}, backend.Overwrite)
	if err != nil {
		return fmt.Errorf("create provider: %w", err)
	}
	return nil
}

// Merge writes only the given fields, creating the document if needed.
func (r *ProviderRepo) Merge(ctx context.Context, uid string, fields map[string]any) error {
	if uid == "" {
		return ErrMissingUID
	}
	if err := r.docs.Set(ctx, model.ProvidersCollection, uid, fields, backend.Merge); err != nil {
		return fmt.Errorf("update provider: %w", err)
	}
	return nil
}
