package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cipherWizard31/pulse-care/internal/logging"
)

func errorResponse(c echo.Context, code int, message string) error {
	return c.JSON(code, echo.Map{"message": message})
}

// serverError hides store/crypto failure detail from the client and
// keeps it in the log.
func serverError(c echo.Context, err error) error {
	logging.FromContext(c.Request().Context()).Error("internal error",
		"method", c.Request().Method,
		"path", c.Path(),
		"error", err,
	)
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": "server error"})
}
