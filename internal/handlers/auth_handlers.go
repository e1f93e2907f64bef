package handlers

import (
	"log"
	"net/http"
	"net/url"
	"time"

	"billingportal/internal/common"
	"billingportal/internal/middleware"
	"billingportal/internal/services"

	"github.com/labstack/echo/v4"
)

const (
	dashboardPath = "/portal/dashboard.html"
	loginPath     = "/portal/login.html"
)

// CookieSettings controls the portal session cookie
type CookieSettings struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// AuthHandlers handles magic-link login and logout
type AuthHandlers struct {
	authService services.AuthService
	cookie      CookieSettings
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(authService services.AuthService, cookie CookieSettings) *AuthHandlers {
	return &AuthHandlers{authService: authService, cookie: cookie}
}

// LoginRequest is the body of a magic-link request
type LoginRequest struct {
	Email string `json:"email"`
}

// Login handles POST /api/auth/login
//
//	@Summary	Request a magic login link
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		LoginRequest	true	"Customer email"
//	@Success	200		{object}	MessageResponse
//	@Failure	400		{object}	common.ErrorBody
//	@Router		/api/auth/login [post]
func (h *AuthHandlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	if err := h.authService.RequestMagicLink(c.Request().Context(), req.Email, requestMeta(c)); err != nil {
		return fail(c, err)
	}
	return ok(c, MessageResponse{Message: services.MagicLinkSentMessage})
}

// Verify handles GET /api/auth/verify and always answers with a redirect
//
//	@Summary	Exchange a magic link for a session
//	@Tags		auth
//	@Param		token	query	string	true	"Magic link token"
//	@Success	302
//	@Router		/api/auth/verify [get]
func (h *AuthHandlers) Verify(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return c.Redirect(http.StatusFound, loginPath+"?error=missing_token")
	}

	session, err := h.authService.VerifyMagicLink(c.Request().Context(), token, requestMeta(c))
	if err != nil {
		code := services.ErrCodeInvalidToken
		if appErr := common.AsAppError(err); appErr.Kind == common.KindAuth {
			code = appErr.Message
		} else {
			log.Printf("Magic link verification failed: %v", err)
		}
		return c.Redirect(http.StatusFound, loginPath+"?error="+url.QueryEscape(code))
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		ttl = h.cookie.TTL
	}
	c.SetCookie(middleware.SessionCookie(h.cookie.Name, session.Token, ttl, h.cookie.Secure))
	return c.Redirect(http.StatusFound, dashboardPath)
}

// Logout handles POST /api/auth/logout
//
//	@Summary	End the current session
//	@Tags		auth
//	@Produce	json
//	@Success	200	{object}	SuccessResponse
//	@Router		/api/auth/logout [post]
func (h *AuthHandlers) Logout(c echo.Context) error {
	token, _ := common.GetSessionTokenFromContext(c.Request().Context())
	if token == "" {
		token = middleware.SessionToken(c, h.cookie.Name)
	}
	if err := h.authService.Logout(c.Request().Context(), token); err != nil {
		return fail(c, err)
	}
	c.SetCookie(middleware.ClearSessionCookie(h.cookie.Name, h.cookie.Secure))
	return ok(c, SuccessResponse{Success: true})
}
