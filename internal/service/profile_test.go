package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/justloook-provider-portal/internal/backend"
	"github.com/iliyamo/justloook-provider-portal/internal/backend/memory"
	"github.com/iliyamo/justloook-provider-portal/internal/logging"
	"github.com/iliyamo/justloook-provider-portal/internal/model"
	"github.com/iliyamo/justloook-provider-portal/internal/repository"
	"github.com/iliyamo/justloook-provider-portal/internal/session"
)

func newProfileFixture(docs backend.DocumentStore) *ProfileService {
	return NewProfileService(repository.NewProviderRepo(docs), logging.Discard())
}

func TestLoadProfile(t *testing.T) {
	ctx := context.Background()
	docs := memory.NewDocStore()
	svc := newProfileFixture(docs)
	store := signedIn("u1")

	p, err := svc.LoadProfile(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, Profile{Name: "Acme", Email: "u1@example.com", UID: "u1"}, p)

	require.NoError(t, docs.Set(ctx, model.ProvidersCollection, "u1", map[string]any{"name": "Acme Outdoor"}, backend.Overwrite))
	p, err = svc.LoadProfile(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, "Acme Outdoor", p.Name)
}

func TestLoadProfile_Failure(t *testing.T) {
	svc := newProfileFixture(failingDocs{DocumentStore: memory.NewDocStore(), err: errBoom})
	p, err := svc.LoadProfile(context.Background(), signedIn("u1"))
	assert.Equal(t, "Could not load profile: get provider: boom", Message(err, ""))
	assert.Equal(t, "Acme", p.Name)
}

func TestSaveProfile_MergesNameAndEmail(t *testing.T) {
	ctx := context.Background()
	docs := memory.NewDocStore()
	svc := newProfileFixture(docs)
	require.NoError(t, docs.Set(ctx, model.ProvidersCollection, "u1", map[string]any{"notify": false}, backend.Overwrite))

	require.NoError(t, svc.SaveProfile(ctx, signedIn("u1"), " New Name "))

	doc, err := docs.Get(ctx, model.ProvidersCollection, "u1")
	require.NoError(t, err)
	assert.Equal(t, "New Name", doc.Data["name"])
	assert.Equal(t, "u1@example.com", doc.Data["email"])
	assert.Equal(t, false, doc.Data["notify"])
}

func TestSaveProfile_Errors(t *testing.T) {
	ctx := context.Background()

	err := newProfileFixture(memory.NewDocStore()).SaveProfile(ctx, session.New(nil), "x")
	assert.Equal(t, MsgProfileNeedsSession, Message(err, ""))

	denied := fmt.Errorf("set: %w", backend.ErrPermissionDenied)
	err = newProfileFixture(failingDocs{DocumentStore: memory.NewDocStore(), err: denied}).SaveProfile(ctx, signedIn("u1"), "x")
	assert.Equal(t, KindPermissionDenied, KindOf(err))
	assert.Contains(t, Message(err, ""), "/providers/{uid}")

	err = newProfileFixture(failingDocs{DocumentStore: memory.NewDocStore(), err: errBoom}).SaveProfile(ctx, signedIn("u1"), "x")
	assert.Equal(t, "Could not save profile: update provider: boom", Message(err, ""))
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	docs := memory.NewDocStore()
	svc := newProfileFixture(docs)
	store := signedIn("u1")

	s, err := svc.LoadSettings(ctx, store)
	require.NoError(t, err)
	assert.True(t, s.Notify, "notify defaults to on without a document")

	require.NoError(t, docs.Set(ctx, model.ProvidersCollection, "u1", map[string]any{"name": "Acme"}, backend.Overwrite))
	require.NoError(t, svc.SaveSettings(ctx, store, Settings{Notify: false}))

	s, err = svc.LoadSettings(ctx, store)
	require.NoError(t, err)
	assert.False(t, s.Notify)

	doc, err := docs.Get(ctx, model.ProvidersCollection, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", doc.Data["name"])
}

func TestSaveSettings_Errors(t *testing.T) {
	ctx := context.Background()

	err := newProfileFixture(memory.NewDocStore()).SaveSettings(ctx, session.New(nil), Settings{})
	assert.Equal(t, MsgSettingsNeedsSession, Message(err, ""))

	err = newProfileFixture(failingDocs{DocumentStore: memory.NewDocStore(), err: errBoom}).SaveSettings(ctx, signedIn("u1"), Settings{})
	assert.Equal(t, "Could not save settings: update provider: boom", Message(err, ""))
}
