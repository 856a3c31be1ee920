package middleware

import (
	"errors"
	"net/http"
	"time"

	"coordination-api/coordination/types"
	"coordination-api/logging"

	sdkerrors "cosmossdk.io/errors"
	"github.com/labstack/echo/v4"
)

// LoggingMiddleware logs one line per request with method, path, status and
// latency.
func LoggingMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}

		logging.Info("request", types.Server,
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"status", c.Response().Status,
			"latencyMs", time.Since(start).Milliseconds(),
		)
		return nil
	}
}

// TransparentErrorHandler translates coordination errors into HTTP statuses
// so clients can distinguish capability, correlation and transition failures
// without parsing messages.
func TransparentErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		c.JSON(httpErr.Code, map[string]any{"error": httpErr.Message})
		return
	}

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logging.Error("unhandled request error", types.Server, "error", err)
	}
	c.JSON(status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, types.ErrUnknownQuery), errors.Is(err, types.ErrNoDeployment):
		return http.StatusNotFound
	case errors.Is(err, types.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, types.ErrRejectedQueryType),
		errors.Is(err, types.ErrInsufficientPayment),
		errors.Is(err, types.ErrMalformedConfig),
		errors.Is(err, types.ErrInvalidPeriod),
		errors.Is(err, types.ErrInvalidResult):
		return http.StatusBadRequest
	}

	// Any other registered coordination error is a client-side failure.
	if _, ok := err.(*sdkerrors.Error); ok {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
