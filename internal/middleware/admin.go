package middleware

import (
	"errors"
	"log"

	"billingportal/internal/common"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// AdminClaims are the claims expected on admin bearer tokens
type AdminClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// AdminAuthConfig selects how admin tokens are verified. When JWKSURL is set
// tokens are checked against the remote key set, otherwise against Secret.
type AdminAuthConfig struct {
	Secret  string
	JWKSURL string
}

// AdminAuth protects admin routes with a bearer JWT. The returned cleanup
// stops the JWKS refresh goroutine, if one was started.
func AdminAuth(cfg AdminAuthConfig) (echo.MiddlewareFunc, func(), error) {
	jwtConfig := echojwt.Config{
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(AdminClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return common.Render(c, common.Failure(common.NewAuthError("Invalid token")))
		},
	}
	cleanup := func() {}

	switch {
	case cfg.JWKSURL != "":
		jwks, err := keyfunc.Get(cfg.JWKSURL, keyfunc.Options{
			RefreshUnknownKID: true,
			RefreshErrorHandler: func(err error) {
				log.Printf("WARN: admin JWKS refresh failed: %v", err)
			},
		})
		if err != nil {
			return nil, nil, err
		}
		jwtConfig.KeyFunc = jwks.Keyfunc
		cleanup = jwks.EndBackground
	case cfg.Secret != "":
		jwtConfig.SigningKey = []byte(cfg.Secret)
	default:
		return nil, nil, errors.New("admin auth requires a JWT secret or JWKS URL")
	}

	return echojwt.WithConfig(jwtConfig), cleanup, nil
}

// AdminFromContext returns the verified admin claims, if any
func AdminFromContext(c echo.Context) (*AdminClaims, bool) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil, false
	}
	claims, ok := token.Claims.(*AdminClaims)
	return claims, ok
}
