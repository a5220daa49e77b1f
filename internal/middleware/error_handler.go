package middleware

import (
	"errors"
	"net/http"

	"pricewise/domain"
	"pricewise/pkg/logger"

	jsonres "pricewise/pkg/response"

	"github.com/labstack/echo/v4"
)

// ErrorHandler maps errors that escape handlers onto the shared JSON
// envelope. Handlers translate domain errors themselves; this is the
// fallback for everything that slips through.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"
	message := "Internal server error"

	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		status = httpErr.Code
		code = http.StatusText(status)
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}
	case errors.Is(err, domain.ErrPlanNotFound),
		errors.Is(err, domain.ErrTestNotFound),
		errors.Is(err, domain.ErrVariantNotFound):
		status = http.StatusNotFound
		code = "NOT_FOUND"
		message = err.Error()
	}

	if status >= http.StatusInternalServerError {
		logger.Error("unhandled request error",
			"method", c.Request().Method,
			"path", c.Path(),
			"error", err,
		)
	}

	if jsonErr := c.JSON(status, jsonres.Error(code, message, nil)); jsonErr != nil {
		logger.Error("failed to write error response", "error", jsonErr)
	}
}
