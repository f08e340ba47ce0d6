package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/travel-ease/internal/domain"
	"github.com/gin-gonic/gin"
)

const (
	errInternalServer     = "Internal server error"
	errInvalidBody        = "Invalid request body"
	errUserExists         = "User already exist"
	errUserNotFound       = "User Not Found"
	errInvalidCredentials = "Invalid Credentials"
	errUserGone           = "User no longer exists"
	errUnauthorized       = "Unauthorized"
	errPlanNotFound       = "Travel Plan not found"
	errImageNotFound      = "Image not found"
	errImageTooLarge      = "Image is too large"
)

func abortWithMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": true, "message": message})
}

// respondError maps a usecase error to its HTTP status and client message.
// Anything unrecognised is logged and reported as a 500.
func respondError(c *gin.Context, logger *slog.Logger, op string, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		abortWithMessage(c, http.StatusBadRequest, ve.Message)
	case errors.Is(err, domain.ErrEmailTaken):
		abortWithMessage(c, http.StatusConflict, errUserExists)
	case errors.Is(err, domain.ErrUnauthenticated):
		abortWithMessage(c, http.StatusUnauthorized, errUserGone)
	case errors.Is(err, domain.ErrUserNotFound):
		abortWithMessage(c, http.StatusNotFound, errUserNotFound)
	case errors.Is(err, domain.ErrInvalidCredentials):
		abortWithMessage(c, http.StatusUnauthorized, errInvalidCredentials)
	case errors.Is(err, domain.ErrPlanNotFound):
		abortWithMessage(c, http.StatusNotFound, errPlanNotFound)
	case errors.Is(err, domain.ErrImageNotFound):
		abortWithMessage(c, http.StatusNotFound, errImageNotFound)
	default:
		logger.ErrorContext(c.Request.Context(), op, "error", err)
		abortWithMessage(c, http.StatusInternalServerError, errInternalServer)
	}
}
