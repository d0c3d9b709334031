package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/justloook-provider-portal/internal/middleware"
	"github.com/iliyamo/justloook-provider-portal/internal/service"
)

type profileForm struct {
	Name   string `form:"name"`
	Action string `form:"action"`
}

// SaveProfile handles POST /profile. The reset action discards the
// entered name and shows the account display name again.
func (h *Handler) SaveProfile(c echo.Context) error {
	var f profileForm
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	store := middleware.SessionStore(c)
	id, _ := store.Current()
	page := dashboardPage{
		View:          service.ViewProfile,
		Profile:       service.Profile{Name: strings.TrimSpace(f.Name), Email: id.Email, UID: id.UID},
		profileLoaded: true,
	}

	if f.Action == "reset" {
		page.Profile.Name = id.DisplayName
		return h.renderDashboard(c, http.StatusOK, page)
	}

	if err := h.Profiles.SaveProfile(c.Request().Context(), store, f.Name); err != nil {
		page.ProfileError = service.Message(err, "")
		return h.renderDashboard(c, statusFor(err), page)
	}
	page.ProfileMessage = service.MsgProfileSaved
	return h.renderDashboard(c, http.StatusOK, page)
}

// SaveSettings handles POST /settings. An unchecked box is not posted,
// so a missing value means notifications off.
func (h *Handler) SaveSettings(c echo.Context) error {
	settings := service.Settings{Notify: c.FormValue("notify") == "on"}
	page := dashboardPage{View: service.ViewSettings, Settings: settings, settingsLoaded: true}

	if err := h.Profiles.SaveSettings(c.Request().Context(), middleware.SessionStore(c), settings); err != nil {
		page.SettingsError = service.Message(err, "")
		return h.renderDashboard(c, statusFor(err), page)
	}
	page.SettingsMessage = service.MsgSettingsSaved
	return h.renderDashboard(c, http.StatusOK, page)
}
