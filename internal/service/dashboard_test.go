package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/justloook-provider-portal/internal/backend"
	"github.com/iliyamo/justloook-provider-portal/internal/backend/memory"
	"github.com/iliyamo/justloook-provider-portal/internal/logging"
	"github.com/iliyamo/justloook-provider-portal/internal/model"
	"github.com/iliyamo/justloook-provider-portal/internal/repository"
	"github.com/iliyamo/justloook-provider-portal/internal/session"
)

// recordingBookings remembers the screen ids each load was made with.
type recordingBookings struct {
	inner *repository.BookingRepo
	calls [][]string
}

func (r *recordingBookings) ListForScreens(ctx context.Context, ids []string) ([]model.Booking, error) {
	r.calls = append(r.calls, append([]string(nil), ids...))
	return r.inner.ListForScreens(ctx, ids)
}

func seedBooking(t *testing.T, docs backend.DocumentStore, b model.Booking) {
	t.Helper()
	_, err := docs.Add(context.Background(), model.BookingsCollection, b.Document())
	require.NoError(t, err)
}

func TestParseView(t *testing.T) {
	assert.Equal(t, ViewAnalytics, ParseView("analytics"))
	assert.Equal(t, ViewAddScreen, ParseView("add-screen"))
	assert.Equal(t, ViewOverview, ParseView(""))
	assert.Equal(t, ViewOverview, ParseView("admin"))
}

func TestNewDashboard_RequiresSession(t *testing.T) {
	docs := memory.NewDocStore()
	_, err := NewDashboard(session.New(nil), repository.NewScreenRepo(docs), repository.NewBookingRepo(docs), logging.Discard())
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestDashboard_MountLoadsBookingsForFreshScreens(t *testing.T) {
	ctx := context.Background()
	docs := memory.NewDocStore()
	screens := repository.NewScreenRepo(docs)
	bookings := &recordingBookings{inner: repository.NewBookingRepo(docs)}

	s1, err := screens.Create(ctx, "u1", model.Screen{Name: "One", CreatedAt: time.Now()})
	require.NoError(t, err)
	other, err := screens.Create(ctx, "u2", model.Screen{Name: "Other"})
	require.NoError(t, err)
	seedBooking(t, docs, model.Booking{ScreenID: s1.ID, AdvertiserName: "Cola", Date: "2025-08-02"})
	seedBooking(t, docs, model.Booking{ScreenID: other.ID, AdvertiserName: "Not mine"})

	d, err := NewDashboard(signedIn("u1"), screens, bookings, logging.Discard())
	require.NoError(t, err)
	require.NoError(t, d.Mount(ctx))

	require.Len(t, d.Screens(), 1)
	require.Len(t, d.Bookings(), 1)
	assert.Equal(t, "Cola", d.Bookings()[0].AdvertiserName)
	assert.Equal(t, [][]string{{s1.ID}}, bookings.calls)
	assert.Equal(t, ViewOverview, d.View())

	s2, err := screens.Create(ctx, "u1", model.Screen{Name: "Two", CreatedAt: time.Now().Add(time.Minute)})
	require.NoError(t, err)
	require.NoError(t, d.ScreenSaved(ctx))

	assert.Equal(t, ViewScreens, d.View())
	require.Len(t, d.Screens(), 2)
	assert.Equal(t, s2.ID, d.Screens()[0].ID)
	require.Len(t, bookings.calls, 2)
	assert.ElementsMatch(t, []string{s1.ID, s2.ID}, bookings.calls[1])
	assert.Len(t, d.Bookings(), 1)
}

func TestDashboard_NoScreensNoBookings(t *testing.T) {
	docs := memory.NewDocStore()
	d, err := NewDashboard(signedIn("u1"), repository.NewScreenRepo(docs), repository.NewBookingRepo(docs), logging.Discard())
	require.NoError(t, err)
	require.NoError(t, d.Mount(context.Background()))
	assert.Empty(t, d.Screens())
	assert.Empty(t, d.Bookings())
}

func TestDashboard_LoadFailure(t *testing.T) {
	docs := failingQueries{DocumentStore: memory.NewDocStore(), err: errBoom}
	d, err := NewDashboard(signedIn("u1"), repository.NewScreenRepo(docs), repository.NewBookingRepo(docs), logging.Discard())
	require.NoError(t, err)
	assert.ErrorIs(t, d.Mount(context.Background()), errBoom)
}

func TestDashboard_Navigate(t *testing.T) {
	docs := memory.NewDocStore()
	d, err := NewDashboard(signedIn("u1"), repository.NewScreenRepo(docs), repository.NewBookingRepo(docs), logging.Discard())
	require.NoError(t, err)
	d.Navigate(ViewSettings)
	assert.Equal(t, ViewSettings, d.View())
	d.Navigate(View("bogus"))
	assert.Equal(t, ViewOverview, d.View())
	assert.Equal(t, "u1", d.Identity().UID)
}

type failingQueries struct {
	backend.DocumentStore
	err error
}

func (f failingQueries) Query(context.Context, string, ...backend.Filter) ([]backend.Document, error) {
	return nil, f.err
}
