package handler

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/justloook-provider-portal/internal/middleware"
	"github.com/iliyamo/justloook-provider-portal/internal/service"
)

const (
	rememberCookie = "rememberEmail"
	rememberMaxAge = 365 * 24 * time.Hour

	modeSignIn = "signin"
	modeSignUp = "signup"
)

type authPage struct {
	Mode        string
	Email       string
	CompanyName string
	Remember    bool
	Error       string
	Message     string
}

type authForm struct {
	Mode     string `form:"mode"`
	Email    string `form:"email"`
	Password string `form:"password"`
	Company  string `form:"company"`
	Remember string `form:"remember"`
}

func (f authForm) page() authPage {
	return authPage{
		Mode:        authMode(f.Mode),
		Email:       strings.TrimSpace(f.Email),
		CompanyName: f.Company,
		Remember:    f.Remember == "on",
	}
}

func authMode(s string) string {
	if s == modeSignUp {
		return modeSignUp
	}
	return modeSignIn
}

// cookieRemember keeps the remembered email in a long-lived cookie.
type cookieRemember struct {
	c      echo.Context
	secure bool
}

func (r cookieRemember) Remembered() (string, bool) {
	ck, err := r.c.Cookie(rememberCookie)
	if err != nil || ck.Value == "" {
		return "", false
	}
	email, err := url.QueryUnescape(ck.Value)
	if err != nil || email == "" {
		return "", false
	}
	return email, true
}

func (r cookieRemember) Remember(email string) {
	r.c.SetCookie(&http.Cookie{
		Name:     rememberCookie,
		Value:    url.QueryEscape(email),
		Path:     "/",
		MaxAge:   int(rememberMaxAge / time.Second),
		HttpOnly: true,
		Secure:   r.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (r cookieRemember) Forget() {
	r.c.SetCookie(&http.Cookie{
		Name:     rememberCookie,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) remember(c echo.Context) cookieRemember {
	return cookieRemember{c: c, secure: h.SecureCookies}
}

func (h *Handler) renderAuth(c echo.Context, status int, page authPage) error {
	page.Mode = authMode(page.Mode)
	return c.Render(status, pageAuth, page)
}

// SignIn handles POST /auth/signin.
func (h *Handler) SignIn(c echo.Context) error {
	var f authForm
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	_, err := h.Auth.SignIn(c.Request().Context(), middleware.SessionStore(c), h.remember(c),
		f.Email, f.Password, f.Remember == "on")
	if err != nil {
		page := f.page()
		page.Mode = modeSignIn
		page.Error = service.Message(err, service.MsgUnexpected)
		return h.renderAuth(c, statusFor(err), page)
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// SignUp handles POST /auth/signup.
func (h *Handler) SignUp(c echo.Context) error {
	var f authForm
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	_, err := h.Auth.SignUp(c.Request().Context(), middleware.SessionStore(c), h.remember(c),
		f.Email, f.Password, f.Company, f.Remember == "on")
	if err != nil {
		page := f.page()
		page.Mode = modeSignUp
		page.Error = service.Message(err, service.MsgUnexpected)
		return h.renderAuth(c, statusFor(err), page)
	}
	return c.Redirect(http.StatusSeeOther, "/?notice="+noticeWelcome)
}

// ResetPassword handles POST /auth/reset.
func (h *Handler) ResetPassword(c echo.Context) error {
	var f authForm
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	page := f.page()
	if err := h.Auth.RequestPasswordReset(c.Request().Context(), f.Email); err != nil {
		page.Error = service.Message(err, service.MsgResetFailed)
		return h.renderAuth(c, statusFor(err), page)
	}
	page.Message = service.MsgResetSent
	return h.renderAuth(c, http.StatusOK, page)
}

// SignOut handles POST /auth/signout.
func (h *Handler) SignOut(c echo.Context) error {
	h.Auth.SignOut(c.Request().Context(), middleware.SessionStore(c))
	return c.Redirect(http.StatusSeeOther, "/")
}
