package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/orderdesk/internal/domain/errors"
	"github.com/polkiloo/orderdesk/internal/server/http/middleware"
)

// CurrentAdminID extracts the authenticated administrator id from context.
func CurrentAdminID(c *gin.Context) int64 {
	val, ok := c.Get(middleware.AdminIDContextKey)
	if !ok {
		return 0
	}
	id, _ := val.(int64)
	return id
}

// statusFromError maps domain errors onto HTTP status codes.
func statusFromError(err error) int {
	switch {
	case domainErrors.IsValidation(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domainErrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainErrors.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, domainErrors.ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, domainErrors.ErrQuotaExceeded):
		return http.StatusConflict
	case errors.Is(err, domainErrors.ErrBudgetTooLow):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domainErrors.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domainErrors.ErrFileTypeNotAllowed):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, domainErrors.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusFromError(err), gin.H{"error": err.Error()})
}
