package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// defaultLocation is used when the client sends no location.
const defaultLocation = "Current Location"

type hazardRequest struct {
	HazardType string `json:"hazardType" binding:"required"`
	Location   string `json:"location"`
}

type speedRequest struct {
	Speed *float64 `json:"speed" binding:"required"`
}

func (h *Handler) handleReportHazard(c *gin.Context) {
	var req hazardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "hazardType is required")
		return
	}
	if req.Location == "" {
		req.Location = defaultLocation
	}
	if err := validateFields(
		fieldLimit{"hazardType", req.HazardType, MaxHazardTypeLen},
		fieldLimit{"location", req.Location, MaxLocationLen},
	); err != nil {
		respondMessage(c, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.store.ReportHazard(c.Request.Context(), currentIdentity(c).UserID, req.HazardType, req.Location)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

func (h *Handler) handleRecentHazards(c *gin.Context) {
	hazards, err := h.store.RecentHazards(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, hazards)
}

// handleHazardStream pushes each new report as a server-sent event until the
// client disconnects.
func (h *Handler) handleHazardStream(c *gin.Context) {
	sub := h.hazards.Subscribe()
	defer h.hazards.Unsubscribe(sub.ID)

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case report := <-sub.Ch:
			c.SSEvent("hazard", report)
			return true
		}
	})
}

func (h *Handler) handleRecordSpeed(c *gin.Context) {
	var req speedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "speed is required")
		return
	}

	rec, err := h.store.RecordSpeed(c.Request.Context(), currentIdentity(c).UserID, *req.Speed)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}
