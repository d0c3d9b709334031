package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/justloook-provider-portal/internal/middleware"
	"github.com/iliyamo/justloook-provider-portal/internal/model"
	"github.com/iliyamo/justloook-provider-portal/internal/service"
)

const (
	noticeWelcome     = "welcome"
	noticeScreenSaved = "screen-saved"
)

var notices = map[string]string{
	noticeWelcome:     service.MsgAccountCreated,
	noticeScreenSaved: service.MsgScreenSaved,
}

type formView struct {
	Input        service.ScreenInput
	PreviewToken string
	Error        string
	Message      string
}

type dashboardPage struct {
	Identity  model.Identity
	View      service.View
	Nav       []navItem
	Notice    string
	LoadError string

	Screens   []model.Screen
	Bookings  []service.BookingRow
	Recent    []service.BookingRow
	Earnings  service.Earnings
	Analytics service.Analytics

	Form        formView
	Tiers       []tierOption
	MapsEnabled bool
	MapsAPIKey  string

	Profile        service.Profile
	ProfileError   string
	ProfileMessage string
	profileLoaded  bool

	Settings        service.Settings
	SettingsError   string
	SettingsMessage string
	settingsLoaded  bool

	screenSaved bool
}

// Index handles GET /: the auth page without a session, otherwise the
// dashboard view named by the view query value.
func (h *Handler) Index(c echo.Context) error {
	store := middleware.SessionStore(c)
	if _, ok := store.Current(); !ok {
		page := authPage{Mode: c.QueryParam("mode")}
		if email, ok := h.remember(c).Remembered(); ok {
			page.Email, page.Remember = email, true
		}
		return h.renderAuth(c, http.StatusOK, page)
	}
	notice := c.QueryParam("notice")
	return h.renderDashboard(c, http.StatusOK, dashboardPage{
		View:        service.ParseView(c.QueryParam("view")),
		Notice:      notices[notice],
		screenSaved: notice == noticeScreenSaved,
	})
}

// renderDashboard loads the provider's screens and bookings and renders
// page. Without a session the auth page is shown with the page's error.
func (h *Handler) renderDashboard(c echo.Context, status int, page dashboardPage) error {
	ctx := c.Request().Context()
	store := middleware.SessionStore(c)

	d, err := service.NewDashboard(store, h.Screens, h.Bookings, h.Logger)
	if errors.Is(err, service.ErrNoSession) {
		msg := firstNonEmpty(page.Form.Error, page.ProfileError, page.SettingsError)
		return h.renderAuth(c, http.StatusUnauthorized, authPage{Error: msg})
	}
	if err != nil {
		return err
	}

	d.Navigate(page.View)
	if page.screenSaved {
		err = d.ScreenSaved(ctx)
	} else {
		err = d.Mount(ctx)
	}
	if err != nil {
		page.LoadError = "Could not load your screens and bookings: " + err.Error()
	}

	page.Identity = d.Identity()
	page.View = d.View()
	page.Nav = navFor(page.View)
	page.Screens = d.Screens()
	page.Bookings = service.BookingRows(d.Bookings(), d.Screens())
	page.Recent = service.RecentBookings(page.Bookings, service.RecentBookingCount)
	page.Earnings = service.SummarizeEarnings(d.Bookings())
	page.Analytics = service.SummarizeAnalytics(d.Screens(), d.Bookings())
	page.Tiers = tierOptions
	page.MapsAPIKey = h.MapsAPIKey
	page.MapsEnabled = h.MapsAPIKey != ""
	if page.Form == (formView{}) {
		page.Form.Input = service.DefaultScreenInput()
	}

	switch {
	case page.View == service.ViewProfile && !page.profileLoaded:
		p, err := h.Profiles.LoadProfile(ctx, store)
		page.Profile = p
		if err != nil {
			page.ProfileError = service.Message(err, "")
		}
	case page.View == service.ViewSettings && !page.settingsLoaded:
		s, err := h.Profiles.LoadSettings(ctx, store)
		page.Settings = s
		if err != nil {
			page.SettingsError = service.Message(err, "")
		}
	}
	return c.Render(status, pageDashboard, page)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
