package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Context keys set by Auth.
const (
	CtxSubject = "subject"
	CtxRole    = "role"
)

// Claims are the token fields the viewer relies on. Tokens are issued
// elsewhere; the viewer only verifies them.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Auth validates the HS256 bearer token and injects subject and role into
// the context. An empty secret disables the check and grants operator, for
// local development only.
func Auth(jwtSecret string, devRole string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if jwtSecret == "" {
				c.Set(CtxSubject, "anonymous")
				c.Set(CtxRole, devRole)
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			var claims Claims
			tkn, err := jwt.ParseWithClaims(parts[1], &claims, func(*jwt.Token) (any, error) {
				return []byte(jwtSecret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			if claims.Role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token missing role")
			}

			c.Set(CtxSubject, claims.Subject)
			c.Set(CtxRole, claims.Role)

			return next(c)
		}
	}
}
