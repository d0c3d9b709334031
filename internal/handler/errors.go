package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type errorPage struct {
	Status  int
	Message string
}

// HTTPErrorHandler renders errors as pages. A rate-limited auth post is
// shown on the auth form itself.
func (h *Handler) HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := "Something went wrong. Please try again."
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok && m != "" {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	}
	if code >= http.StatusInternalServerError {
		h.Logger.ErrorContext(c.Request().Context(), "request failed",
			"method", c.Request().Method, "path", c.Request().URL.Path, "error", err)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}

	var rerr error
	if code == http.StatusTooManyRequests && strings.HasPrefix(c.Request().URL.Path, "/auth/") {
		rerr = h.renderAuth(c, code, authPage{
			Mode:  c.FormValue("mode"),
			Email: strings.TrimSpace(c.FormValue("email")),
			Error: msg,
		})
	} else {
		rerr = c.Render(code, pageError, errorPage{Status: code, Message: msg})
	}
	if rerr != nil {
		h.Logger.ErrorContext(c.Request().Context(), "render error page failed", "error", rerr)
		_ = c.String(code, msg)
	}
}
