package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("dial tcp: connection refused") }

	cases := []struct {
		name   string
		checks map[string]Checker
		status int
		body   string
	}{
		{"all healthy", map[string]Checker{"database": ok, "cache": ok}, http.StatusOK, `{"status":"ok","checks":{"database":"ok","cache":"ok"}}`},
		{"cache down", map[string]Checker{"database": ok, "cache": down}, http.StatusServiceUnavailable, `{"status":"unavailable","checks":{"database":"ok","cache":"dial tcp: connection refused"}}`},
		{"no checks", nil, http.StatusOK, `{"status":"ok","checks":{}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/health", NewHealthHandler(tc.checks).Health)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tc.status, w.Code)
			assert.JSONEq(t, tc.body, w.Body.String())
		})
	}
}
