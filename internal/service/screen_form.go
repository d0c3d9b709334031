package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/justloook-provider-portal/internal/backend"
	"github.com/iliyamo/justloook-provider-portal/internal/model"
	"github.com/iliyamo/justloook-provider-portal/internal/preview"
	"github.com/iliyamo/justloook-provider-portal/internal/queue"
	"github.com/iliyamo/justloook-provider-portal/internal/session"
	"github.com/iliyamo/justloook-provider-portal/internal/validation"
)

const (
	MsgScreenRequired     = "Please provide a screen name and address."
	MsgScreenInvalidTier  = "Please choose tier A, B or C."
	MsgScreenNeedsSession = "You must be signed in to add a screen."
	MsgScreenSaved        = "Screen saved."
	MsgScreenSaveFailed   = "Could not save screen."
	MsgScreenPermission   = "Permission denied when saving screen. Check your database security rules and that the signed-in provider is allowed to write to /screens."
	msgImageUploadFailed  = "Image upload failed: %s. Check storage rules and that you are authenticated."
)

// FormState is the lifecycle of one screen registration attempt.
type FormState int

const (
	Editing FormState = iota
	Submitting
	Saved
	Failed
)

func (s FormState) String() string {
	return [...]string{"editing", "submitting", "saved", "failed"}[s]
}

// ScreenInput is the form exactly as entered. Numbers stay strings until
// the payload is composed.
type ScreenInput struct {
	Name         string `form:"name" validate:"required"`
	Address      string `form:"address" validate:"required"`
	Lat          string `form:"lat"`
	Lng          string `form:"lng"`
	Size         string `form:"size"`
	Type         string `form:"type"`
	Tier         string `form:"tier" validate:"oneof=A B C"`
	PlaysPerHour string `form:"playsPerHour"`
	Prime        string `form:"prime"`
	Shoulder     string `form:"shoulder"`
	Late         string `form:"late"`
	Overnight    string `form:"overnight"`
	Availability string `form:"availability"`
}

// DefaultScreenInput is the blank form.
func DefaultScreenInput() ScreenInput {
	return ScreenInput{
		Size:         "6x3m",
		Type:         "Digital LED",
		Tier:         string(model.TierB),
		PlaysPerHour: "120",
		Prime:        "850",
		Shoulder:     "500",
		Late:         "350",
		Overnight:    "200",
		Availability: "00:00-24:00",
	}
}

func (in ScreenInput) trimmed() ScreenInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	in.Size = strings.TrimSpace(in.Size)
	in.Type = strings.TrimSpace(in.Type)
	in.Tier = strings.ToUpper(strings.TrimSpace(in.Tier))
	in.Availability = strings.TrimSpace(in.Availability)
	return in
}

// Attachment is an image picked on the form, held in the preview cache
// under PreviewToken until the screen is saved.
type Attachment struct {
	PreviewToken string
	Image        preview.Image
}

type screenCreator interface {
	Create(ctx context.Context, uid string, s model.Screen) (model.Screen, error)
}

type previewReleaser interface {
	Release(ctx context.Context, token string) error
}

type screenEvents interface {
	PublishScreenRegistered(ctx context.Context, ev queue.ScreenRegisteredEvent) error
}

// ScreenFormDeps are the collaborators of a ScreenForm.
type ScreenFormDeps struct {
	Screens  screenCreator
	Objects  backend.ObjectStore
	Previews previewReleaser
	Events   screenEvents
	Logger   *slog.Logger
	Now      func() time.Time
}

// ScreenForm registers one screen. It is safe for concurrent use; a
// submit while another is running is rejected.
type ScreenForm struct {
	deps     ScreenFormDeps
	validate *validation.Validator

	mu         sync.Mutex
	state      FormState
	input      ScreenInput
	attachment *Attachment
	err        error
	message    string
}

func NewScreenForm(deps ScreenFormDeps) *ScreenForm {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Events == nil {
		deps.Events = queue.NopPublisher{}
	}
	return &ScreenForm{deps: deps, validate: validation.New(), input: DefaultScreenInput()}
}

// Edit replaces the entered values and attachment. Edits during a submit
// are ignored.
func (f *ScreenForm) Edit(input ScreenInput, att *Attachment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Submitting {
		return
	}
	f.input = input
	f.attachment = att
	f.state = Editing
	f.err = nil
	f.message = ""
}

// Submit validates, uploads the image if any and writes the screen owned
// by the signed-in provider. On success the form resets to defaults; on
// failure the entered values and attachment are kept.
func (f *ScreenForm) Submit(ctx context.Context, store *session.Store) (model.Screen, error) {
	f.mu.Lock()
	if f.state == Submitting {
		f.mu.Unlock()
		return model.Screen{}, ErrSubmitInProgress
	}
	input := f.input.trimmed()
	att := f.attachment
	if err := f.checkInput(input); err != nil {
		f.state, f.err, f.message = Failed, err, ""
		f.mu.Unlock()
		return model.Screen{}, err
	}
	f.state, f.err, f.message = Submitting, nil, ""
	f.mu.Unlock()

	saved, err := f.save(ctx, store, input, att)

	f.mu.Lock()
	if err != nil {
		f.state, f.err = Failed, err
		f.mu.Unlock()
		return model.Screen{}, err
	}
	f.state, f.message = Saved, MsgScreenSaved
	f.input, f.attachment = DefaultScreenInput(), nil
	f.mu.Unlock()

	if att != nil && att.PreviewToken != "" && f.deps.Previews != nil {
		if err := f.deps.Previews.Release(ctx, att.PreviewToken); err != nil {
			f.deps.Logger.WarnContext(ctx, "release preview failed", "error", err)
		}
	}
	return saved, nil
}

func (f *ScreenForm) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *ScreenForm) Input() ScreenInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.input
}

func (f *ScreenForm) Attachment() *Attachment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attachment
}

// Err is the error of the last submit, if it failed.
func (f *ScreenForm) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Message is the confirmation shown after a successful submit.
func (f *ScreenForm) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

func (f *ScreenForm) checkInput(in ScreenInput) error {
	err := f.validate.Validate(in)
	var fe validation.FieldErrors
	if !errors.As(err, &fe) {
		return err
	}
	if fe.Has("name") || fe.Has("address") {
		return userError(KindValidation, MsgScreenRequired, err)
	}
	return userError(KindValidation, MsgScreenInvalidTier, err)
}

func (f *ScreenForm) save(ctx context.Context, store *session.Store, in ScreenInput, att *Attachment) (model.Screen, error) {
	id, ok := store.Current()
	if !ok {
		return model.Screen{}, userError(KindAuthorization, MsgScreenNeedsSession, ErrNoSession)
	}
	now := f.deps.Now().UTC()
	log := f.deps.Logger.With("uid", id.UID)

	var imageURL string
	if att != nil && len(att.Image.Data) > 0 {
		key := imageKey(now, att.Image.Filename)
		url, err := f.upload(ctx, key, att.Image)
		if err != nil {
			log.WarnContext(ctx, "screen image upload failed", "key", key, "error", err)
			return model.Screen{}, userError(KindResource, fmt.Sprintf(msgImageUploadFailed, err), err)
		}
		imageURL = url
	}

	screen := composeScreen(in, id.UID, imageURL, now)
	created, err := f.deps.Screens.Create(ctx, id.UID, screen)
	if err != nil {
		log.WarnContext(ctx, "save screen failed", "error", err)
		if backend.IsPermissionDenied(err) {
			return model.Screen{}, userError(KindPermissionDenied, MsgScreenPermission, err)
		}
		return model.Screen{}, userError(KindGeneric, Message(err, MsgScreenSaveFailed), err)
	}
	log.InfoContext(ctx, "screen saved", "screen_id", created.ID, "has_image", imageURL != "")

	ev := queue.ScreenRegisteredEvent{
		ScreenID:     created.ID,
		ProviderID:   created.ProviderID,
		Name:         created.Name,
		Address:      created.Address,
		Tier:         string(created.Tier),
		PrimeRate:    created.HourlyRates.Prime,
		HasImage:     created.ImageURL != "",
		RegisteredAt: now.Format(time.RFC3339),
	}
	if err := f.deps.Events.PublishScreenRegistered(ctx, ev); err != nil {
		log.WarnContext(ctx, "publish screen.registered failed", "screen_id", created.ID, "error", err)
	}
	return created, nil
}

func (f *ScreenForm) upload(ctx context.Context, key string, img preview.Image) (string, error) {
	if err := f.deps.Objects.Upload(ctx, key, img.ContentType, bytes.NewReader(img.Data)); err != nil {
		return "", err
	}
	return f.deps.Objects.DownloadURL(ctx, key)
}

// composeScreen builds the stored payload. Numeric fields are coerced
// with non-numeric input becoming 0; blank coordinates are left out.
func composeScreen(in ScreenInput, uid, imageURL string, now time.Time) model.Screen {
	return model.Screen{
		ProviderID:   uid,
		Name:         in.Name,
		Address:      in.Address,
		Lat:          model.ParseOptionalNumber(in.Lat),
		Lng:          model.ParseOptionalNumber(in.Lng),
		Size:         in.Size,
		Type:         in.Type,
		Tier:         model.Tier(in.Tier),
		PlaysPerHour: model.ParseNumber(in.PlaysPerHour),
		HourlyRates: model.HourlyRates{
			Prime:     model.ParseNumber(in.Prime),
			Shoulder:  model.ParseNumber(in.Shoulder),
			Late:      model.ParseNumber(in.Late),
			Overnight: model.ParseNumber(in.Overnight),
		},
		Availability: in.Availability,
		ImageURL:     imageURL,
		CreatedAt:    now,
	}
}

// imageKey is screens/<unix millis>_<file name>.
func imageKey(now time.Time, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == "/" || name == ".." {
		name = "image"
	}
	return fmt.Sprintf("screens/%d_%s", now.UnixMilli(), name)
}
