package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/iliyamo/justloook-provider-portal/internal/backend"
	"github.com/iliyamo/justloook-provider-portal/internal/model"
	"github.com/iliyamo/justloook-provider-portal/internal/session"
)

const (
	MsgProfileSaved         = "Profile saved."
	MsgSettingsSaved        = "Settings saved."
	MsgProfileNeedsSession  = "You must be signed in to save your profile."
	MsgSettingsNeedsSession = "You must be signed in to save your settings."

	msgProfilePermission  = "Permission denied when saving profile. Check your database security rules and that the signed-in provider can write to /providers/{uid}. (%s)"
	msgSettingsPermission = "Permission denied when saving settings. Check your database security rules and that the signed-in provider can write to /providers/{uid}. (%s)"
	msgProfileSaveFailed  = "Could not save profile: %s"
	msgSettingsSaveFailed = "Could not save settings: %s"
	msgProfileLoadFailed  = "Could not load profile: %s"
)

type providerStore interface {
	Get(ctx context.Context, uid string) (model.Provider, bool, error)
	Merge(ctx context.Context, uid string, fields map[string]any) error
}

// Profile is what the profile page edits and shows.
type Profile struct {
	Name  string
	Email string
	UID   string
}

// Settings is what the settings page edits.
type Settings struct {
	Notify bool
}

type ProfileService struct {
	providers providerStore
	logger    *slog.Logger
}

func NewProfileService(providers providerStore, logger *slog.Logger) *ProfileService {
	return &ProfileService{providers: providers, logger: logger}
}

// LoadProfile starts from the identity's display name and overlays the
// stored provider document when there is one.
func (s *ProfileService) LoadProfile(ctx context.Context, store *session.Store) (Profile, error) {
	id, ok := store.Current()
	if !ok {
		return Profile{}, userError(KindAuthorization, MsgProfileNeedsSession, ErrNoSession)
	}
	p := Profile{Name: id.DisplayName, Email: id.Email, UID: id.UID}
	doc, found, err := s.providers.Get(ctx, id.UID)
	if err != nil {
		s.logger.ErrorContext(ctx, "load profile failed", "uid", id.UID, "error", err)
		return p, userError(KindResource, fmt.Sprintf(msgProfileLoadFailed, causeText(err)), err)
	}
	if found && doc.Name != "" {
		p.Name = doc.Name
	}
	return p, nil
}

// SaveProfile merges the company name and the session email into the
// provider document.
func (s *ProfileService) SaveProfile(ctx context.Context, store *session.Store, name string) error {
	id, ok := store.Current()
	if !ok {
		return userError(KindAuthorization, MsgProfileNeedsSession, ErrNoSession)
	}
	err := s.providers.Merge(ctx, id.UID, map[string]any{
		"name":  strings.TrimSpace(name),
		"email": id.Email,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "save profile failed", "uid", id.UID, "error", err)
		if backend.IsPermissionDenied(err) {
			return userError(KindPermissionDenied, fmt.Sprintf(msgProfilePermission, causeText(err)), err)
		}
		return userError(KindGeneric, fmt.Sprintf(msgProfileSaveFailed, causeText(err)), err)
	}
	s.logger.InfoContext(ctx, "profile saved", "uid", id.UID)
	return nil
}

// LoadSettings defaults notify to true until the provider has a document.
func (s *ProfileService) LoadSettings(ctx context.Context, store *session.Store) (Settings, error) {
	id, ok := store.Current()
	if !ok {
		return Settings{}, userError(KindAuthorization, MsgSettingsNeedsSession, ErrNoSession)
	}
	doc, found, err := s.providers.Get(ctx, id.UID)
	if err != nil {
		s.logger.ErrorContext(ctx, "load settings failed", "uid", id.UID, "error", err)
		return Settings{Notify: true}, userError(KindResource, fmt.Sprintf(msgProfileLoadFailed, causeText(err)), err)
	}
	if !found {
		return Settings{Notify: true}, nil
	}
	return Settings{Notify: doc.Notify}, nil
}

func (s *ProfileService) SaveSettings(ctx context.Context, store *session.Store, settings Settings) error {
	id, ok := store.Current()
	if !ok {
		return userError(KindAuthorization, MsgSettingsNeedsSession, ErrNoSession)
	}
	if err := s.providers.Merge(ctx, id.UID, map[string]any{"notify": settings.Notify}); err != nil {
		s.logger.WarnContext(ctx, "save settings failed", "uid", id.UID, "error", err)
		if backend.IsPermissionDenied(err) {
			return userError(KindPermissionDenied, fmt.Sprintf(msgSettingsPermission, causeText(err)), err)
		}
		return userError(KindGeneric, fmt.Sprintf(msgSettingsSaveFailed, causeText(err)), err)
	}
	s.logger.InfoContext(ctx, "settings saved", "uid", id.UID, "notify", settings.Notify)
	return nil
}

func causeText(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "Unknown error"
}
