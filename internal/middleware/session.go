package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/justloook-provider-portal/internal/model"
	"github.com/iliyamo/justloook-provider-portal/internal/session"
	"github.com/iliyamo/justloook-provider-portal/internal/utils"
)

// SessionCookie holds the signed session token.
const SessionCookie = "session"

const storeKey = "session_store"

// SessionConfig configures the session cookie.
type SessionConfig struct {
	Secret string
	TTL    time.Duration
	Secure bool
	Now    func() time.Time
}

// Session gives every request a session.Store seeded from the cookie.
// Events published on the store during the request are written back as
// cookie changes, so handlers never touch the cookie themselves. A token
// past half its lifetime is refreshed.
func Session(cfg SessionConfig, logger *slog.Logger) echo.MiddlewareFunc {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			now := cfg.Now()
			var seed *model.Identity
			claims, hasCookie, err := readSession(c, cfg.Secret, now)
			switch {
			case err != nil:
				logger.DebugContext(c.Request().Context(), "discarding session cookie", "error", err)
				clearSessionCookie(c, cfg)
			case hasCookie:
				id := claims.Identity
				seed = &id
			}

			store := session.New(seed)
			unsubscribe := store.Subscribe(func(ev session.Event) {
				switch ev.Kind {
				case session.SignedIn, session.TokenRefreshed:
					if err := writeSessionCookie(c, cfg, ev.Identity); err != nil {
						logger.ErrorContext(c.Request().Context(), "write session cookie failed", "uid", ev.Identity.UID, "error", err)
					}
				case session.SignedOut:
					clearSessionCookie(c, cfg)
				}
			})
			defer unsubscribe()
			c.Set(storeKey, store)

			if seed != nil && claims.NeedsRefresh(now) {
				store.Publish(session.Event{Kind: session.TokenRefreshed, Identity: claims.Identity})
			}
			return next(c)
		}
	}
}

// SessionStore returns the request's store. Outside the Session
// middleware it returns an empty store.
func SessionStore(c echo.Context) *session.Store {
	if s, ok := c.Get(storeKey).(*session.Store); ok {
		return s
	}
	return session.New(nil)
}

func readSession(c echo.Context, secret string, now time.Time) (utils.SessionClaims, bool, error) {
	ck, err := c.Cookie(SessionCookie)
	if err != nil || ck.Value == "" {
		return utils.SessionClaims{}, false, nil
	}
	claims, err := utils.ParseSessionToken(secret, ck.Value, now)
	if err != nil {
		return utils.SessionClaims{}, false, err
	}
	return claims, true, nil
}

func writeSessionCookie(c echo.Context, cfg SessionConfig, id model.Identity) error {
	tok, err := utils.NewSessionToken(cfg.Secret, id, cfg.TTL, cfg.Now())
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    tok.Token,
		Path:     "/",
		Expires:  tok.Exp,
		MaxAge:   int(cfg.TTL / time.Second),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func clearSessionCookie(c echo.Context, cfg SessionConfig) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
