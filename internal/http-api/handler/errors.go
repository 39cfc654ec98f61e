package handler

import (
	"errors"
	"net/http"
	"strconv"

	"quantumflux/internal/http-api/dto"
	"quantumflux/internal/http-api/middleware"
	"quantumflux/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

// respondError maps a service error to its HTTP status and body.
// Server errors are attached to the context so the logging middleware records the cause.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrConflict),
		errors.Is(err, service.ErrWrongPassword):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	default:
		_ = c.Error(err)
		detail := err.Error()
		var serverErr *service.ServerError
		if errors.As(err, &serverErr) {
			detail = serverErr.Detail()
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "server error", Details: detail})
	}
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request", Details: err.Error()})
}

// pathID parses a positive integer path parameter, answering 400 otherwise.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid " + name})
		return 0, false
	}
	return id, true
}

// currentUser returns the authenticated user id, answering 401 when absent.
func currentUser(c *gin.Context) (string, bool) {
	userID := middleware.UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "user not authenticated"})
		return "", false
	}
	return userID, true
}
