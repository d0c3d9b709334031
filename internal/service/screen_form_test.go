package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/justloook-provider-portal/internal/backend"
	"github.com/iliyamo/justloook-provider-portal/internal/backend/memory"
	"github.com/iliyamo/justloook-provider-portal/internal/logging"
	"github.com/iliyamo/justloook-provider-portal/internal/model"
	"github.com/iliyamo/justloook-provider-portal/internal/preview"
	"github.com/iliyamo/justloook-provider-portal/internal/queue"
	"github.com/iliyamo/justloook-provider-portal/internal/repository"
	"github.com/iliyamo/justloook-provider-portal/internal/session"
)

type recordingEvents struct {
	mu     sync.Mutex
	events []queue.ScreenRegisteredEvent
	err    error
}

func (r *recordingEvents) PublishScreenRegistered(_ context.Context, ev queue.ScreenRegisteredEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

// blockingCreator holds Create until release is closed.
type blockingCreator struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingCreator) Create(_ context.Context, uid string, s model.Screen) (model.Screen, error) {
	close(b.started)
	<-b.release
	s.ID = "s1"
	return s, nil
}

type formFixture struct {
	form     *ScreenForm
	docs     *memory.DocStore
	objects  *memory.ObjectStore
	previews *preview.MemoryCache
	events   *recordingEvents
}

var fixedNow = time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)

func newFormFixture(docs backend.DocumentStore, objects backend.ObjectStore) formFixture {
	f := formFixture{
		docs:     memory.NewDocStore(),
		objects:  memory.NewObjectStore("/media"),
		previews: preview.NewMemoryCache(time.Hour),
		events:   &recordingEvents{},
	}
	if docs == nil {
		docs = f.docs
	}
	if objects == nil {
		objects = f.objects
	}
	f.form = NewScreenForm(ScreenFormDeps{
		Screens:  repository.NewScreenRepo(docs),
		Objects:  objects,
		Previews: f.previews,
		Events:   f.events,
		Logger:   logging.Discard(),
		Now:      func() time.Time { return fixedNow },
	})
	return f
}

func validInput() ScreenInput {
	in := DefaultScreenInput()
	in.Name = " Main Road LED "
	in.Address = "1 Main Road, Cape Town"
	in.Lat = "-33.92"
	in.Lng = ""
	in.Tier = "a"
	in.Prime = "abc"
	return in
}

func (f formFixture) attach(t *testing.T, name string) *Attachment {
	t.Helper()
	img := preview.Image{Filename: name, ContentType: "image/png", Data: []byte("png-bytes")}
	token, err := f.previews.Put(context.Background(), img)
	require.NoError(t, err)
	return &Attachment{PreviewToken: token, Image: img}
}

func TestScreenForm_StartsWithDefaults(t *testing.T) {
	f := newFormFixture(nil, nil)
	assert.Equal(t, Editing, f.form.State())
	in := f.form.Input()
	assert.Equal(t, "6x3m", in.Size)
	assert.Equal(t, "Digital LED", in.Type)
	assert.Equal(t, "B", in.Tier)
	assert.Equal(t, "120", in.PlaysPerHour)
	assert.Equal(t, "850", in.Prime)
	assert.Equal(t, "500", in.Shoulder)
	assert.Equal(t, "350", in.Late)
	assert.Equal(t, "200", in.Overnight)
	assert.Equal(t, "00:00-24:00", in.Availability)
}

func TestScreenForm_SubmitWithImage(t *testing.T) {
	ctx := context.Background()
	f := newFormFixture(nil, nil)
	att := f.attach(t, `C:\photos\front.png`)
	f.form.Edit(validInput(), att)

	saved, err := f.form.Submit(ctx, signedIn("u1"))
	require.NoError(t, err)

	assert.Equal(t, Saved, f.form.State())
	assert.Equal(t, MsgScreenSaved, f.form.Message())
	assert.Equal(t, DefaultScreenInput(), f.form.Input())
	assert.Nil(t, f.form.Attachment())

	key := fmt.Sprintf("screens/%d_front.png", fixedNow.UnixMilli())
	assert.Equal(t, "/media/"+key, saved.ImageURL)
	rc, ct, err := f.objects.Open(ctx, key)
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, "image/png", ct)

	doc, err := f.docs.Get(ctx, model.ScreensCollection, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", doc.Data["providerId"])
	assert.Equal(t, "Main Road LED", doc.Data["name"])
	assert.Equal(t, "A", doc.Data["tier"])
	assert.Equal(t, -33.92, doc.Data["lat"])
	assert.NotContains(t, doc.Data, "lng")
	assert.Equal(t, float64(0), saved.HourlyRates.Prime)
	assert.Equal(t, float64(500), saved.HourlyRates.Shoulder)

	_, err = f.previews.Get(ctx, att.PreviewToken)
	assert.ErrorIs(t, err, preview.ErrNotFound)

	require.Len(t, f.events.events, 1)
	ev := f.events.events[0]
	assert.Equal(t, saved.ID, ev.ScreenID)
	assert.Equal(t, "u1", ev.ProviderID)
	assert.True(t, ev.HasImage)
}

func TestScreenForm_Validation(t *testing.T) {
	tests := []struct {
		name string
		edit func(*ScreenInput)
		want string
	}{
		{"blank name", func(in *ScreenInput) { in.Name = "   " }, MsgScreenRequired},
		{"blank address", func(in *ScreenInput) { in.Address = "" }, MsgScreenRequired},
		{"bad tier", func(in *ScreenInput) { in.Tier = "D" }, MsgScreenInvalidTier},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFormFixture(nil, nil)
			in := validInput()
			tt.edit(&in)
			f.form.Edit(in, nil)

			_, err := f.form.Submit(context.Background(), signedIn("u1"))
			assert.Equal(t, tt.want, Message(err, ""))
			assert.Equal(t, KindValidation, KindOf(err))
			assert.Equal(t, Failed, f.form.State())
			assert.Equal(t, in, f.form.Input())

			docs, err := f.docs.Query(context.Background(), model.ScreensCollection)
			require.NoError(t, err)
			assert.Empty(t, docs)
		})
	}
}

func TestScreenForm_RequiresSession(t *testing.T) {
	f := newFormFixture(nil, nil)
	f.form.Edit(validInput(), nil)
	_, err := f.form.Submit(context.Background(), session.New(nil))
	assert.Equal(t, MsgScreenNeedsSession, Message(err, ""))
	assert.ErrorIs(t, err, ErrNoSession)
	assert.Equal(t, Failed, f.form.State())
}

func TestScreenForm_UploadFailureSkipsWrite(t *testing.T) {
	f := newFormFixture(nil, failingObjects{err: errBoom})
	att := f.attach(t, "front.png")
	in := validInput()
	f.form.Edit(in, att)

	_, err := f.form.Submit(context.Background(), signedIn("u1"))
	require.Error(t, err)
	assert.Equal(t, "Image upload failed: boom. Check storage rules and that you are authenticated.", Message(err, ""))
	assert.Equal(t, KindResource, KindOf(err))

	docs, err := f.docs.Query(context.Background(), model.ScreensCollection)
	require.NoError(t, err)
	assert.Empty(t, docs)

	assert.Equal(t, Failed, f.form.State())
	assert.Equal(t, in, f.form.Input())
	assert.Equal(t, att, f.form.Attachment())
	_, err = f.previews.Get(context.Background(), att.PreviewToken)
	assert.NoError(t, err)
	assert.Empty(t, f.events.events)
}

func TestScreenForm_WriteFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind Kind
		want string
	}{
		{"permission sentinel", fmt.Errorf("add: %w", backend.ErrPermissionDenied), KindPermissionDenied, MsgScreenPermission},
		{"permission text", errors.New("Missing or insufficient permissions."), KindPermissionDenied, MsgScreenPermission},
		{"other", errBoom, KindGeneric, "create screen: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFormFixture(failingDocs{DocumentStore: memory.NewDocStore(), err: tt.err}, nil)
			f.form.Edit(validInput(), nil)
			_, err := f.form.Submit(context.Background(), signedIn("u1"))
			assert.Equal(t, tt.kind, KindOf(err))
			assert.Equal(t, tt.want, Message(err, ""))
			assert.Equal(t, Failed, f.form.State())
		})
	}
}

func TestScreenForm_EditAfterFailureReturnsToEditing(t *testing.T) {
	f := newFormFixture(nil, nil)
	in := validInput()
	in.Name = ""
	f.form.Edit(in, nil)
	_, err := f.form.Submit(context.Background(), signedIn("u1"))
	require.Error(t, err)

	f.form.Edit(validInput(), nil)
	assert.Equal(t, Editing, f.form.State())
	assert.NoError(t, f.form.Err())

	_, err = f.form.Submit(context.Background(), signedIn("u1"))
	assert.NoError(t, err)
}

func TestScreenForm_RejectsConcurrentSubmit(t *testing.T) {
	creator := &blockingCreator{started: make(chan struct{}), release: make(chan struct{})}
	form := NewScreenForm(ScreenFormDeps{
		Screens: creator,
		Objects: memory.NewObjectStore("/media"),
		Logger:  logging.Discard(),
	})
	form.Edit(validInput(), nil)

	done := make(chan error, 1)
	go func() {
		_, err := form.Submit(context.Background(), signedIn("u1"))
		done <- err
	}()
	<-creator.started
	assert.Equal(t, Submitting, form.State())

	_, err := form.Submit(context.Background(), signedIn("u1"))
	assert.ErrorIs(t, err, ErrSubmitInProgress)

	form.Edit(ScreenInput{}, nil)
	close(creator.release)
	require.NoError(t, <-done)
	assert.Equal(t, Saved, form.State())
}

func TestScreenForm_PublishFailureIsIgnored(t *testing.T) {
	f := newFormFixture(nil, nil)
	f.events.err = errBoom
	f.form.Edit(validInput(), nil)
	_, err := f.form.Submit(context.Background(), signedIn("u1"))
	assert.NoError(t, err)
	assert.Equal(t, Saved, f.form.State())
}

func TestImageKey(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	assert.Equal(t, "screens/1700000000123_a.jpg", imageKey(now, "a.jpg"))
	assert.Equal(t, "screens/1700000000123_b.png", imageKey(now, "../../b.png"))
	assert.Equal(t, "screens/1700000000123_image", imageKey(now, ""))
	assert.True(t, strings.HasPrefix(imageKey(now, `dir\c.gif`), "screens/1700000000123_c.gif"))
}
