// Package handler serves the provider portal as server-rendered pages.
// Handlers translate form posts into service calls and render the result;
// session changes flow through the request's session.Store.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/justloook-provider-portal/internal/backend"
	"github.com/iliyamo/justloook-provider-portal/internal/model"
	"github.com/iliyamo/justloook-provider-portal/internal/preview"
	"github.com/iliyamo/justloook-provider-portal/internal/queue"
	"github.com/iliyamo/justloook-provider-portal/internal/repository"
	"github.com/iliyamo/justloook-provider-portal/internal/service"
)

// DefaultMaxImageBytes caps an uploaded screen image.
const DefaultMaxImageBytes = 10 << 20

type eventPublisher interface {
	PublishScreenRegistered(ctx context.Context, ev queue.ScreenRegisteredEvent) error
}

// Deps are the collaborators of a Handler. Media may be nil when the
// object store serves its own download URLs.
type Deps struct {
	Auth          *service.AuthService
	Profiles      *service.ProfileService
	Screens       *repository.ScreenRepo
	Bookings      *repository.BookingRepo
	Objects       backend.ObjectStore
	Media         backend.ObjectReader
	Previews      preview.Cache
	Events        eventPublisher
	MapsAPIKey    string
	SecureCookies bool
	MaxImageBytes int64
	Logger        *slog.Logger
}

type Handler struct {
	Deps
}

func New(d Deps) *Handler {
	if d.MaxImageBytes <= 0 {
		d.MaxImageBytes = DefaultMaxImageBytes
	}
	if d.Events == nil {
		d.Events = queue.NopPublisher{}
	}
	return &Handler{Deps: d}
}

// statusFor maps a failure kind to the status of the re-rendered page.
func statusFor(err error) int {
	if errors.Is(err, service.ErrSubmitInProgress) {
		return http.StatusConflict
	}
	switch service.KindOf(err) {
	case service.KindValidation:
		return http.StatusUnprocessableEntity
	case service.KindAuthorization:
		return http.StatusUnauthorized
	case service.KindPermissionDenied:
		return http.StatusForbidden
	case service.KindResource:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// Health reports that the process is serving.
func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

type navItem struct {
	View   service.View
	Label  string
	Active bool
}

var navLabels = []struct {
	view  service.View
	label string
}{
	{service.ViewOverview, "Overview"},
	{service.ViewScreens, "Screens"},
	{service.ViewAnalytics, "Analytics"},
	{service.ViewBookings, "Bookings"},
	{service.ViewProfile, "Profile"},
	{service.ViewSettings, "Settings"},
}

func navFor(active service.View) []navItem {
	items := make([]navItem, 0, len(navLabels))
	for _, n := range navLabels {
		items = append(items, navItem{View: n.view, Label: n.label, Active: n.view == active})
	}
	return items
}

type tierOption struct {
	Value string
	Label string
}

var tierOptions = []tierOption{
	{string(model.TierA), "Tier A - Premium"},
	{string(model.TierB), "Tier B - Standard"},
	{string(model.TierC), "Tier C - Value"},
}
