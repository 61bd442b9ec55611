package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/notepid/roadwatch/internal/rewards"
)

// progressScale is the point total that fills the rewards progress bar.
const progressScale = 3000

type rewardsResponse struct {
	rewards.Summary
	Progress float64 `json:"progress"`
}

func (h *Handler) handleGetRewards(c *gin.Context) {
	sum, err := h.store.GetRewards(c.Request.Context(), currentIdentity(c).UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rewardsResponse{
		Summary:  sum,
		Progress: float64(sum.UserPoints) / progressScale * 100,
	})
}

func (h *Handler) handleRedeem(c *gin.Context) {
	rewardID, err := strconv.Atoi(c.Param("rewardId"))
	if err != nil {
		h.respondError(c, rewards.ErrRewardNotFound)
		return
	}

	receipt, err := h.store.RedeemReward(c.Request.Context(), currentIdentity(c).UserID, rewardID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}

func (h *Handler) handleRedemptions(c *gin.Context) {
	history, err := h.store.Redemptions(c.Request.Context(), currentIdentity(c).UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}
