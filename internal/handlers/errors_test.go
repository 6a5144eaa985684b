package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/anonto42/odin-book/backend/internal/apperr"
	"github.com/anonto42/odin-book/backend/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestErrorResponseStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"validation", apperr.InvalidField("username", "too short"), http.StatusBadRequest, "validation failed"},
		{"wrapped not found", fmt.Errorf("lookup: %w", apperr.NotFound("post not found")), http.StatusNotFound, "post not found"},
		{"duplicate", apperr.Duplicate("username already in use"), http.StatusConflict, "username already in use"},
		{"auth", apperr.Auth("invalid token"), http.StatusUnauthorized, "invalid token"},
		{"forbidden", apperr.Forbidden("nope"), http.StatusForbidden, "nope"},
		{"upstream", apperr.Upstream(errors.New("bucket gone")), http.StatusBadGateway, "bucket gone"},
		{"unavailable", apperr.New(apperr.KindUnavailable, "off"), http.StatusServiceUnavailable, "off"},
		{"echo", echo.NewHTTPError(http.StatusUnauthorized, "missing token"), http.StatusUnauthorized, "missing token"},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError, "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := errorResponse(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.msg, body["error"])
		})
	}
}

func TestErrorResponseFields(t *testing.T) {
	_, body := errorResponse(apperr.InvalidField("username", "too short"))
	assert.Equal(t, []apperr.FieldError{{Field: "username", Message: "too short"}}, body["fields"])

	_, body = errorResponse(apperr.NotFound("user not found"))
	assert.NotContains(t, body, "fields")
}

func TestErrorResponsePartialFailure(t *testing.T) {
	report := &services.Report{Operation: "delete user", Completed: []string{"a"}, Failed: "b", Skipped: []string{"c"}}
	status, body := errorResponse(&services.PartialFailure{Report: report, Err: errors.New("db down")})
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, report, body["report"])
}
