package handler

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/justloook-provider-portal/internal/service"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestAllowedImageMIME(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
		ok   bool
	}{
		{"png", pngHeader, "image/png", true},
		{"jpeg", []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00"), "image/jpeg", true},
		{"gif", []byte("GIF89a\x01\x00\x01\x00"), "image/gif", true},
		{"webp", []byte("RIFF\x24\x00\x00\x00WEBPVP8 "), "image/webp", true},
		{"text", []byte("hello, world"), "", false},
		{"pdf", []byte("%PDF-1.7\n"), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := allowedImageMIME(tt.data)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(&service.UserError{Kind: service.KindValidation}))
	assert.Equal(t, http.StatusUnauthorized, statusFor(&service.UserError{Kind: service.KindAuthorization}))
	assert.Equal(t, http.StatusForbidden, statusFor(&service.UserError{Kind: service.KindPermissionDenied}))
	assert.Equal(t, http.StatusBadGateway, statusFor(&service.UserError{Kind: service.KindResource}))
	assert.Equal(t, http.StatusConflict, statusFor(service.ErrSubmitInProgress))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}

func TestCookieRemember(t *testing.T) {
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)
	cookieRemember{c: c}.Remember("a+b@example.com")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, rememberCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	email, ok := cookieRemember{c: e.NewContext(req, httptest.NewRecorder())}.Remembered()
	assert.True(t, ok)
	assert.Equal(t, "a+b@example.com", email)

	_, ok = cookieRemember{c: e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())}.Remembered()
	assert.False(t, ok)

	rec = httptest.NewRecorder()
	cookieRemember{c: e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)}.Forget()
	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestAuthMode(t *testing.T) {
	assert.Equal(t, modeSignUp, authMode("signup"))
	assert.Equal(t, modeSignIn, authMode("signin"))
	assert.Equal(t, modeSignIn, authMode("anything"))
}

func TestRenderer_AuthPage(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, pageAuth, authPage{Mode: modeSignUp, Error: "Bad input"}, nil))
	assert.Contains(t, buf.String(), "Company name")
	assert.Contains(t, buf.String(), "Bad input")
	assert.Contains(t, buf.String(), `action="/auth/signup"`)

	buf.Reset()
	require.NoError(t, r.Render(&buf, pageAuth, authPage{Mode: modeSignIn}, nil))
	assert.NotContains(t, buf.String(), "Company name")
	assert.Contains(t, buf.String(), `action="/auth/signin"`)
}

func TestRenderer_ScreenFormWithoutMaps(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	page := dashboardPage{
		View:  service.ViewAddScreen,
		Nav:   navFor(service.ViewAddScreen),
		Form:  formView{Input: service.DefaultScreenInput(), PreviewToken: "tok-1"},
		Tiers: tierOptions,
	}
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, pageDashboard, page, nil))
	assert.Contains(t, buf.String(), "Tip: set MAPS_API_KEY")
	assert.Contains(t, buf.String(), "Tier A - Premium")
	assert.NotContains(t, buf.String(), "maps.googleapis.com")
}

func TestRenderer_ScreenFormWithMaps(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	page := dashboardPage{
		View:        service.ViewAddScreen,
		Form:        formView{Input: service.DefaultScreenInput()},
		Tiers:       tierOptions,
		MapsEnabled: true,
		MapsAPIKey:  "key-123",
	}
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, pageDashboard, page, nil))
	assert.Contains(t, buf.String(), "maps.googleapis.com")
	assert.NotContains(t, buf.String(), "Tip: set MAPS_API_KEY")
}

func TestRenderer_UnknownPage(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	assert.Error(t, r.Render(&bytes.Buffer{}, "nope", nil, nil))
}
