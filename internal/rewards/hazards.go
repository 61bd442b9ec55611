package rewards

import (
	"cmp"
	"context"
	"slices"

	"github.com/notepid/roadwatch/internal/user"
)

// RecentHazardLimit caps RecentHazards.
const RecentHazardLimit = 5

// ReportHazard stores a new active report and awards HazardPoints to the
// reporter. The report is kept even when no user has userID; in that case
// nobody is awarded points.
//
// Once the report is stored it is published and returned even if the award
// fails; that failure is logged. An error means nothing was stored.
func (s *Store) ReportHazard(ctx context.Context, userID int64, hazardType, location string) (HazardReport, error) {
	report, err := s.storeHazard(ctx, userID, hazardType, location)
	if err != nil {
		return HazardReport{}, err
	}
	if s.publisher != nil {
		s.publisher.PublishHazard(report)
	}
	return report, nil
}

func (s *Store) storeHazard(ctx context.Context, userID int64, hazardType, location string) (HazardReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var report HazardReport
	err := updateList(ctx, s.kv, KeyHazards, func(hazards []HazardReport) ([]HazardReport, error) {
		now := s.timestamp()
		report = HazardReport{
			ID:         nextAfter(&s.ids, now, hazards, idOfHazard),
			UserID:     userID,
			HazardType: hazardType,
			Location:   location,
			Timestamp:  now,
			Status:     StatusActive,
		}
		return append(hazards, report), nil
	})
	if err != nil {
		return HazardReport{}, err
	}

	s.awardHazardPoints(ctx, report)
	return report, nil
}

func (s *Store) awardHazardPoints(ctx context.Context, report HazardReport) {
	var awarded user.User
	found := false
	err := updateList(ctx, s.kv, KeyUsers, func(users []user.User) ([]user.User, error) {
		i := findUser(users, report.UserID)
		if i < 0 {
			found = false
			return nil, errNoChange
		}
		found = true
		users[i].Points += HazardPoints
		users[i].UpdateLevel()
		awarded = users[i]
		return users, nil
	})
	switch {
	case err != nil:
		s.log.Error("award hazard points", "hazard_id", report.ID, "user_id", report.UserID, "err", err)
	case !found:
		// TODO: decide with product whether an unknown reporter should be
		// rejected with ErrUserNotFound instead of silently skipped.
		s.log.Warn("hazard reported for unknown user; no points awarded", "user_id", report.UserID, "hazard_id", report.ID)
	default:
		s.log.Info("hazard reported",
			"hazard_id", report.ID, "user_id", report.UserID, "type", report.HazardType,
			"points", awarded.Points, "level", awarded.Level)
	}
}

// RecentHazards returns the newest reports first, at most RecentHazardLimit.
func (s *Store) RecentHazards(ctx context.Context) ([]HazardReport, error) {
	hazards, err := s.Hazards(ctx)
	if err != nil {
		return nil, err
	}
	if len(hazards) > RecentHazardLimit {
		hazards = hazards[:RecentHazardLimit]
	}
	return hazards, nil
}

// Hazards returns every stored report, newest first.
func (s *Store) Hazards(ctx context.Context) ([]HazardReport, error) {
	hazards, err := loadList[HazardReport](ctx, s.kv, KeyHazards)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(hazards, func(a, b HazardReport) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return hazards, nil
}
