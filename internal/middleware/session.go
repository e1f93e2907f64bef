package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"billingportal/internal/common"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// SessionValidator resolves a session token to the customer that owns it
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (uuid.UUID, error)
}

// SessionAuth requires a valid portal session. The token comes from the
// session cookie, or from an "Authorization: Bearer" header for API clients.
func SessionAuth(validator SessionValidator, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := SessionToken(c, cookieName)
			if token == "" {
				return common.Render(c, common.Failure(common.NewAuthError("Not authenticated")))
			}

			customerID, err := validator.ValidateSession(c.Request().Context(), token)
			if err != nil {
				return common.Render(c, common.Failure(err))
			}

			ctx := common.WithCustomer(c.Request().Context(), customerID, token)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// SessionToken extracts the raw session token from the request, or ""
func SessionToken(c echo.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// SessionCookie builds the portal session cookie
func SessionCookie(name, token string, ttl time.Duration, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearSessionCookie expires the portal session cookie
func ClearSessionCookie(name string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
