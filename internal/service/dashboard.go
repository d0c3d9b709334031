package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iliyamo/justloook-provider-portal/internal/model"
	"github.com/iliyamo/justloook-provider-portal/internal/session"
)

// View names a dashboard page.
type View string

const (
	ViewOverview  View = "overview"
	ViewScreens   View = "screens"
	ViewAddScreen View = "add-screen"
	ViewAnalytics View = "analytics"
	ViewBookings  View = "bookings"
	ViewProfile   View = "profile"
	ViewSettings  View = "settings"
)

// Views in navigation order.
var Views = []View{ViewOverview, ViewScreens, ViewAddScreen, ViewAnalytics, ViewBookings, ViewProfile, ViewSettings}

// ParseView maps a query value to a View, defaulting to overview.
func ParseView(s string) View {
	for _, v := range Views {
		if string(v) == s {
			return v
		}
	}
	return ViewOverview
}

type screenLister interface {
	ListByProvider(ctx context.Context, uid string) ([]model.Screen, error)
}

type bookingLister interface {
	ListForScreens(ctx context.Context, screenIDs []string) ([]model.Booking, error)
}

// Dashboard composes the signed-in provider's screens and the bookings
// made against them.
type Dashboard struct {
	identity model.Identity
	screens  screenLister
	bookings bookingLister
	logger   *slog.Logger

	view        View
	screenList  []model.Screen
	bookingList []model.Booking
}

// NewDashboard returns ErrNoSession when store has no identity.
func NewDashboard(store *session.Store, screens screenLister, bookings bookingLister, logger *slog.Logger) (*Dashboard, error) {
	id, ok := store.Current()
	if !ok {
		return nil, ErrNoSession
	}
	return &Dashboard{
		identity: id,
		screens:  screens,
		bookings: bookings,
		logger:   logger.With("uid", id.UID),
		view:     ViewOverview,
	}, nil
}

// Mount loads everything the dashboard shows.
func (d *Dashboard) Mount(ctx context.Context) error { return d.LoadScreens(ctx) }

// LoadScreens replaces the screen list, then reloads bookings for exactly
// the screen ids just loaded.
func (d *Dashboard) LoadScreens(ctx context.Context) error {
	screens, err := d.screens.ListByProvider(ctx, d.identity.UID)
	if err != nil {
		d.logger.ErrorContext(ctx, "load screens failed", "error", err)
		return fmt.Errorf("load screens: %w", err)
	}
	d.screenList = screens
	return d.loadBookings(ctx, screenIDs(screens))
}

func (d *Dashboard) loadBookings(ctx context.Context, ids []string) error {
	bookings, err := d.bookings.ListForScreens(ctx, ids)
	if err != nil {
		d.logger.ErrorContext(ctx, "load bookings failed", "screens", len(ids), "error", err)
		return fmt.Errorf("load bookings: %w", err)
	}
	d.bookingList = bookings
	return nil
}

func (d *Dashboard) Navigate(v View) { d.view = ParseView(string(v)) }

// ScreenSaved refreshes after a registration and shows the screen list.
func (d *Dashboard) ScreenSaved(ctx context.Context) error {
	d.view = ViewScreens
	return d.LoadScreens(ctx)
}

func (d *Dashboard) View() View                { return d.view }
func (d *Dashboard) Identity() model.Identity  { return d.identity }
func (d *Dashboard) Screens() []model.Screen   { return d.screenList }
func (d *Dashboard) Bookings() []model.Booking { return d.bookingList }

func screenIDs(screens []model.Screen) []string {
	ids := make([]string, 0, len(screens))
	for _, s := range screens {
		ids = append(ids, s.ID)
	}
	return ids
}
