package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/notepid/roadwatch/internal/drive"
	"github.com/notepid/roadwatch/internal/rewards"
)

type errorResponse struct {
	Error string `json:"error"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, rewards.ErrDuplicateUsername),
		errors.Is(err, drive.ErrAlreadyDriving):
		return http.StatusConflict
	case errors.Is(err, rewards.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, rewards.ErrUserNotFound),
		errors.Is(err, rewards.ErrRewardNotFound):
		return http.StatusNotFound
	case errors.Is(err, rewards.ErrInsufficientPoints):
		return http.StatusBadRequest
	case errors.Is(err, drive.ErrNoCapacity):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with its mapped status. Internal failures are
// logged and reported generically.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.log.Error("request failed",
			"path", c.FullPath(), "request_id", c.GetString(requestIDHeader), "err", err)
		msg = "internal error"
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: msg})
}

func respondMessage(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: msg})
}
