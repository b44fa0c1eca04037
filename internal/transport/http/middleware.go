package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kekec/storefront/internal/domain"
	"github.com/kekec/storefront/internal/service"
	"github.com/kekec/storefront/internal/util"
)

const (
	sessionCookieName = "token"
	contextUserKey    = "auth.user"
)

// RequireAuth gates protected routes on the session cookie. The token is
// verified and resolved to a live user before the handler runs; any
// failure is answered with 401 and the handler never executes.
func RequireAuth(auth *service.AccountService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(sessionCookieName)
			if err != nil || cookie.Value == "" {
				return c.JSON(http.StatusUnauthorized, util.Error("not authenticated, please login"))
			}
			user, err := auth.Authenticate(c.Request().Context(), cookie.Value)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, util.Error("not authenticated, please login"))
			}
			c.Set(contextUserKey, user)
			return next(c)
		}
	}
}

func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(contextUserKey).(*domain.User)
	return user, ok
}

func setSessionCookie(c echo.Context, token string, expires time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

func clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}
