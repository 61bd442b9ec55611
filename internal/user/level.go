package user

// Level is a tier label derived from a user's point balance.
type Level string

const (
	LevelBronze   Level = "Bronze"
	LevelSilver   Level = "Silver"
	LevelGold     Level = "Gold"
	LevelPlatinum Level = "Platinum"
)

// Tier thresholds in points.
const (
	SilverThreshold   = 500
	GoldThreshold     = 1000
	PlatinumThreshold = 2000
)

// UpdateLevel sets Level to the highest tier Points reaches. Below the
// Silver threshold the level is left as is, so a user never drops back to
// Bronze once promoted.
func (u *User) UpdateLevel() {
	switch {
	case u.Points >= PlatinumThreshold:
		u.Level = LevelPlatinum
	case u.Points >= GoldThreshold:
		u.Level = LevelGold
	case u.Points >= SilverThreshold:
		u.Level = LevelSilver
	}
}
