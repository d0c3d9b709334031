package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/iliyamo/justloook-provider-portal/internal/backend"
	"github.com/iliyamo/justloook-provider-portal/internal/model"
)

type ScreenRepo struct{ docs backend.DocumentStore }

func NewScreenRepo(docs backend.DocumentStore) *ScreenRepo { return &ScreenRepo{docs: docs} }

// ListByProvider returns the provider's screens, newest first.
func (r *ScreenRepo) ListByProvider(ctx context.Context, uid string) ([]model.Screen, error) {
	if uid == "" {
		return nil, ErrMissingUID
	}
	docs, err := r.docs.Query(ctx, model.ScreensCollection, backend.Equal("providerId", uid))
	if err != nil {
		return nil, fmt.Errorf("list screens: %w", err)
	}
	screens := make([]model.Screen, 0, len(docs))
	for _, d := range docs {
		screens = append(screens, model.ScreenFromDocument(d.ID, d.Data))
	}
	sort.SliceStable(screens, func(i, j int) bool {
		return screens[i].CreatedAt.After(screens[j].CreatedAt)
	})
	return screens, nil
}

// Create stores s owned by uid and returns it with its new id.
func (r *ScreenRepo) Create(ctx context.Context, uid string, s model.Screen) (model.Screen, error) {
	if uid == "" {
		return model.Screen{}, ErrMissingUID
	}
	if s.ProviderID != "" && s.ProviderID != uid {
		return model.Screen{}, ErrForbidden
	}
	s.ProviderID = uid
	id, err := r.docs.Add(ctx, model.ScreensCollection, s.Document())
	if err != nil {
		return model.Screen{}, fmt.Errorf("create screen: %w", err)
	}
	s.ID = id
	return s, nil
}
