package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cipherWizard31/pulse-care/internal/tokens"
)

const (
	CtxUserID = "user_id"
	CtxRole   = "role"
	CtxEmail  = "email"
)

// RequireAuth extracts and verifies the bearer token from the
// Authorization header and attaches the decoded identity to the request.
// It never touches the store; 401 covers every unauthenticated condition.
func RequireAuth(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "no or malformed token provided")
			}

			raw := strings.TrimPrefix(header, "Bearer ")
			claims, err := tokens.Parse(raw, secret)
			if err != nil {
				if tokens.Expired(err) {
					return echo.NewHTTPError(http.StatusUnauthorized, "token expired")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			id, err := claims.PrincipalID()
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(CtxUserID, id)
			c.Set(CtxRole, claims.Role)
			c.Set(CtxEmail, claims.Email)

			return next(c)
		}
	}
}

// UserID returns the authenticated principal id set by RequireAuth.
func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get(CtxUserID).(uint)
	return id, ok
}

// Role returns the role resolved from the token claims.
func Role(c echo.Context) string {
	role, _ := c.Get(CtxRole).(string)
	return role
}
