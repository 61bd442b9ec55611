package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) handleStartDrive(c *gin.Context) {
	id := currentIdentity(c)
	// The drive outlives this request; it ends on DELETE /drive, logout or shutdown.
	if err := h.drives.Start(context.WithoutCancel(c.Request.Context()), id); err != nil {
		h.respondError(c, err)
		return
	}
	info, _ := h.drives.Get(id.UserID)
	c.JSON(http.StatusCreated, info)
}

func (h *Handler) handleDriveStatus(c *gin.Context) {
	info, ok := h.drives.Get(currentIdentity(c).UserID)
	if !ok {
		respondMessage(c, http.StatusNotFound, "no drive in progress")
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *Handler) handleStopDrive(c *gin.Context) {
	if !h.drives.Stop(currentIdentity(c).UserID) {
		respondMessage(c, http.StatusNotFound, "no drive in progress")
		return
	}
	c.Status(http.StatusNoContent)
}
