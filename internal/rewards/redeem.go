package rewards

import (
	"context"
	"fmt"
	"slices"

	"github.com/notepid/roadwatch/internal/user"
)

// GetRewards returns the user's balance and level with the reward catalog.
func (s *Store) GetRewards(ctx context.Context, userID int64) (Summary, error) {
	users, err := loadList[user.User](ctx, s.kv, KeyUsers)
	if err != nil {
		return Summary{}, err
	}
	i := findUser(users, userID)
	if i < 0 {
		return Summary{}, ErrUserNotFound
	}
	return Summary{
		UserPoints:       users[i].Points,
		UserLevel:        users[i].Level,
		AvailableRewards: Catalog(),
	}, nil
}

// RedeemReward spends the reward's cost from the user's balance. The user is
// checked first, then the reward, then the balance. The balance check and the
// debit happen in one backend transaction.
func (s *Store) RedeemReward(ctx context.Context, userID int64, rewardID int) (Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		reward  Reward
		updated user.User
	)
	err := updateList(ctx, s.kv, KeyUsers, func(users []user.User) ([]user.User, error) {
		i := findUser(users, userID)
		if i < 0 {
			return nil, ErrUserNotFound
		}

		r, ok := LookupReward(rewardID)
		if !ok {
			return nil, ErrRewardNotFound
		}
		reward = r

		u := &users[i]
		if u.Points < reward.Points {
			return nil, ErrInsufficientPoints
		}
		u.Points -= reward.Points
		u.UpdateLevel()
		updated = *u
		return users, nil
	})
	if err != nil {
		return Receipt{}, err
	}

	// History is written after the balance: a failure here loses the
	// record, never the points accounting.
	err = updateList(ctx, s.kv, KeyRedemptions, func(redemptions []Redemption) ([]Redemption, error) {
		now := s.timestamp()
		return append(redemptions, Redemption{
			ID:          nextAfter(&s.ids, now, redemptions, idOfRedemption),
			UserID:      userID,
			RewardID:    reward.ID,
			Description: reward.Description,
			PointsCost:  reward.Points,
			RedeemedAt:  now,
		}), nil
	})
	if err != nil {
		s.log.Error("save redemption history", "user_id", userID, "reward_id", reward.ID, "err", err)
	}

	s.log.Info("reward redeemed",
		"user_id", userID, "reward_id", reward.ID, "remaining", updated.Points, "level", updated.Level)
	return Receipt{
		Message:         fmt.Sprintf("Successfully redeemed %s", reward.Description),
		RemainingPoints: updated.Points,
	}, nil
}

// Redemptions returns a user's redemption history, newest first.
func (s *Store) Redemptions(ctx context.Context, userID int64) ([]Redemption, error) {
	all, err := loadList[Redemption](ctx, s.kv, KeyRedemptions)
	if err != nil {
		return nil, err
	}
	out := make([]Redemption, 0)
	for _, r := range all {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	slices.Reverse(out)
	return out, nil
}
