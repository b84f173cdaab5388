package http

import (
	"errors"
	"net/http"

	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Response is the JSON envelope of every REST reply.
type Response struct {
	Success    bool                `json:"success"`
	Data       any                 `json:"data,omitempty"`
	Pagination *queries.Pagination `json:"pagination,omitempty"`
	Message    string              `json:"message,omitempty"`
}

func ok(c echo.Context, status int, data any) error {
	return c.JSON(status, Response{Success: true, Data: data})
}

func okMessage(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, Response{Success: true, Message: message})
}

// StatusOf maps an error to its HTTP status by kind.
func StatusOf(err error) int {
	switch errs.KindOf(err) {
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindConflict:
		return http.StatusConflict
	case errs.KindValidation:
		return http.StatusBadRequest
	case errs.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler renders every error returned by a route as a failed envelope. Internal errors
// are logged and their text withheld from the client.
func ErrorHandler(log logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, message := describe(err)
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				logger.String("method", c.Request().Method),
				logger.String("route", c.Path()),
				logger.Int("status", status),
				logger.Error(err))
		}
		if status == http.StatusServiceUnavailable {
			c.Response().Header().Set("Retry-After", "1")
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, Response{Success: false, Message: message})
		}
		if writeErr != nil {
			log.Warn("failed to write error response", logger.Error(writeErr))
		}
	}
}

func describe(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, isString := he.Message.(string); isString {
			return he.Code, msg
		}
		return he.Code, http.StatusText(he.Code)
	}

	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		return status, "Internal server error"
	}
	return status, err.Error()
}
