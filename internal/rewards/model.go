package rewards

import (
	"time"

	"github.com/notepid/roadwatch/internal/user"
)

// StatusActive is the status of every newly reported hazard.
const StatusActive = "active"

// HazardReport is a road hazard submitted by a driver.
type HazardReport struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	HazardType string    `json:"hazardType"`
	Location   string    `json:"location"`
	Timestamp  time.Time `json:"timestamp"`
	Status     string    `json:"status"`
}

// SpeedRecord is one speed sample taken while a user drives.
type SpeedRecord struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Speed     float64   `json:"speed"`
	Timestamp time.Time `json:"timestamp"`
}

// Redemption records a reward a user spent points on.
type Redemption struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	RewardID    int       `json:"rewardId"`
	Description string    `json:"description"`
	PointsCost  int       `json:"pointsCost"`
	RedeemedAt  time.Time `json:"redeemedAt"`
}

// Summary is a user's balance, tier and the rewards on offer.
type Summary struct {
	UserPoints       int        `json:"userPoints"`
	UserLevel        user.Level `json:"userLevel"`
	AvailableRewards []Reward   `json:"availableRewards"`
}

// Receipt confirms a successful redemption.
type Receipt struct {
	Message         string `json:"message"`
	RemainingPoints int    `json:"remainingPoints"`
}
