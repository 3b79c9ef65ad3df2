package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRole gates a route on the role carried in the token claims.
// The mismatch body names both roles to keep access denials debuggable.
func RequireRole(expected string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actual := Role(c)
			if actual == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing role")
			}
			if actual != expected {
				return c.JSON(http.StatusForbidden, echo.Map{
					"message":  "access denied: role mismatch",
					"expected": expected,
					"actual":   actual,
				})
			}
			return next(c)
		}
	}
}
