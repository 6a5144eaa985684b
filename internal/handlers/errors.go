package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/anonto42/odin-book/backend/internal/apperr"
	"github.com/anonto42/odin-book/backend/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

var kindStatus = map[apperr.Kind]int{
	apperr.KindValidation:  http.StatusBadRequest,
	apperr.KindNotFound:    http.StatusNotFound,
	apperr.KindDuplicate:   http.StatusConflict,
	apperr.KindAuth:        http.StatusUnauthorized,
	apperr.KindForbidden:   http.StatusForbidden,
	apperr.KindUpstream:    http.StatusBadGateway,
	apperr.KindUnavailable: http.StatusServiceUnavailable,
}

// ErrorHandler renders every error returned by a handler or middleware as JSON.
func ErrorHandler(logger *logrus.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, body := errorResponse(err)
		if status >= http.StatusInternalServerError {
			logger.WithError(err).WithFields(logrus.Fields{
				"method": c.Request().Method,
				"uri":    c.Request().RequestURI,
				"status": status,
			}).Error("request failed")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.WithError(err).Error("failed to write error response")
		}
	}
}

func errorResponse(err error) (int, echo.Map) {
	body := echo.Map{"success": false}

	var partial *services.PartialFailure
	if errors.As(err, &partial) {
		body["error"] = partial.Error()
		body["report"] = partial.Report
		return http.StatusInternalServerError, body
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		status, ok := kindStatus[appErr.Kind]
		if !ok {
			body["error"] = err.Error()
			return http.StatusInternalServerError, body
		}
		body["error"] = appErr.Message
		if appErr.Kind == apperr.KindValidation {
			body["fields"] = appErr.Fields
		}
		return status, body
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if m, ok := httpErr.Message.(string); ok {
			body["error"] = m
		} else {
			body["error"] = fmt.Sprint(httpErr.Message)
		}
		return httpErr.Code, body
	}

	body["error"] = err.Error()
	return http.StatusInternalServerError, body
}
