package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/justloook-provider-portal/internal/config"
	"github.com/iliyamo/justloook-provider-portal/internal/logging"
	"github.com/iliyamo/justloook-provider-portal/internal/model"
	"github.com/iliyamo/justloook-provider-portal/internal/session"
	"github.com/iliyamo/justloook-provider-portal/internal/utils"
)

const testSecret = "0123456789abcdef0123"

func sessionCfg(now time.Time) SessionConfig {
	return SessionConfig{Secret: testSecret, TTL: time.Hour, Now: func() time.Time { return now }}
}

func run(t *testing.T, mw echo.MiddlewareFunc, req *http.Request, h echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, mw(h)(c))
	return rec
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestSession_SignInWritesCookieAndNextRequestSeesIt(t *testing.T) {
	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	mw := Session(sessionCfg(now), logging.Discard())
	id := model.Identity{UID: "u1", Email: "a@example.com", DisplayName: "Acme"}

	rec := run(t, mw, httptest.NewRequest(http.MethodPost, "/auth/signin", nil), func(c echo.Context) error {
		_, ok := SessionStore(c).Current()
		assert.False(t, ok)
		SessionStore(c).Publish(session.Event{Kind: session.SignedIn, Identity: id})
		return c.NoContent(http.StatusSeeOther)
	})
	ck := findCookie(rec, SessionCookie)
	require.NotNil(t, ck)
	assert.True(t, ck.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(ck)
	rec = run(t, mw, req, func(c echo.Context) error {
		got, ok := SessionStore(c).Current()
		require.True(t, ok)
		assert.Equal(t, id, got)
		return c.NoContent(http.StatusOK)
	})
	assert.Nil(t, findCookie(rec, SessionCookie), "fresh token is not rewritten")
}

func TestSession_SignOutClearsCookie(t *testing.T) {
	now := time.Now()
	tok, err := utils.NewSessionToken(testSecret, model.Identity{UID: "u1"}, time.Hour, now)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/auth/signout", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tok.Token})
	rec := run(t, Session(sessionCfg(now), logging.Discard()), req, func(c echo.Context) error {
		SessionStore(c).Publish(session.Event{Kind: session.SignedOut})
		return nil
	})
	ck := findCookie(rec, SessionCookie)
	require.NotNil(t, ck)
	assert.Empty(t, ck.Value)
	assert.Less(t, ck.MaxAge, 0)
}

func TestSession_RefreshesAgingToken(t *testing.T) {
	issued := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	tok, err := utils.NewSessionToken(testSecret, model.Identity{UID: "u1"}, time.Hour, issued)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tok.Token})
	rec := run(t, Session(sessionCfg(issued.Add(40*time.Minute)), logging.Discard()), req, func(c echo.Context) error {
		_, ok := SessionStore(c).Current()
		assert.True(t, ok)
		return nil
	})
	ck := findCookie(rec, SessionCookie)
	require.NotNil(t, ck)
	assert.NotEqual(t, tok.Token, ck.Value)
}

func TestSession_RejectsBadCookie(t *testing.T) {
	now := time.Now()
	tests := map[string]string{
		"garbage":    "not-a-jwt",
		"bad secret": mustToken(t, "another-secret-value", now),
		"expired":    mustToken(t, testSecret, now.Add(-2*time.Hour)),
	}
	for name, value := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: SessionCookie, Value: value})
			rec := run(t, Session(sessionCfg(now), logging.Discard()), req, func(c echo.Context) error {
				_, ok := SessionStore(c).Current()
				assert.False(t, ok)
				return nil
			})
			ck := findCookie(rec, SessionCookie)
			require.NotNil(t, ck)
			assert.Empty(t, ck.Value)
		})
	}
}

func mustToken(t *testing.T, secret string, at time.Time) string {
	t.Helper()
	tok, err := utils.NewSessionToken(secret, model.Identity{UID: "u1"}, time.Hour, at)
	require.NoError(t, err)
	return tok.Token
}

func TestSessionStore_WithoutMiddleware(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	_, ok := SessionStore(c).Current()
	assert.False(t, ok)
}

func TestNewTokenBucket_DisabledPassesThrough(t *testing.T) {
	called := false
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil, logging.Discard())
	run(t, mw, httptest.NewRequest(http.MethodPost, "/auth/signin", nil), func(c echo.Context) error {
		called = true
		return nil
	})
	assert.True(t, called)
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/signin", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/auth/signin")

	tests := []struct {
		strategy string
		want     string
	}{
		{"ip", "rl:ip:10.0.0.1"},
		{"ip_route", "rl:ip:10.0.0.1:route:POST /auth/signin"},
		{"user", "rl:user:anon"},
		{"email", "rl:email:none"},
		{"", "rl:ip:10.0.0.1:user:anon:route:POST /auth/signin"},
		{"bogus", "rl:ip:10.0.0.1:user:anon:route:POST /auth/signin"},
	}
	for _, tt := range tests {
		cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: tt.strategy}
		assert.Equal(t, tt.want, buildRateKey(cfg, c), tt.strategy)
	}

	c.Set(storeKey, session.New(&model.Identity{UID: "u9"}))
	assert.Equal(t, "rl:user:u9", buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}, c))
}

func TestBuildRateKey_SubmittedEmail(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/reset", strings.NewReader("email=+Owner%40Example.com+"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.2")
	c := e.NewContext(req, httptest.NewRecorder())

	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_email"}
	assert.Equal(t, "rl:ip:10.0.0.2:email:owner@example.com", buildRateKey(cfg, c))
}

func TestParseBucketResult(t *testing.T) {
	allowed, remaining, retry, ok := parseBucketResult([]any{int64(1), int64(4), int64(0)})
	assert.True(t, ok)
	assert.True(t, allowed)
	assert.Equal(t, int64(4), remaining)
	assert.Zero(t, retry)

	allowed, _, retry, ok = parseBucketResult([]any{int64(0), int64(0), "6000"})
	assert.True(t, ok)
	assert.False(t, allowed)
	assert.Equal(t, int64(6000), retry)

	_, _, _, ok = parseBucketResult("nope")
	assert.False(t, ok)
}

func TestTimeout(t *testing.T) {
	run(t, Timeout(time.Second), httptest.NewRequest(http.MethodGet, "/", nil), func(c echo.Context) error {
		deadline, ok := c.Request().Context().Deadline()
		assert.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(time.Second), deadline, time.Second)
		return nil
	})
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	run(t, RequestLogger(logger), httptest.NewRequest(http.MethodGet, "/missing", nil), func(c echo.Context) error {
		return echo.ErrNotFound
	})
	line := buf.String()
	assert.True(t, strings.Contains(line, `"path":"/missing"`), line)
	assert.True(t, strings.Contains(line, `"status":404`), line)
}

func TestSecurityHeaders(t *testing.T) {
	rec := run(t, SecurityHeaders(true), httptest.NewRequest(http.MethodGet, "/", nil), func(c echo.Context) error {
		return nil
	})
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "maps.googleapis.com")
	assert.NotEmpty(t, rec.Header().Get("Referrer-Policy"))
}
