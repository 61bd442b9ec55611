package rewards

import (
	"context"
)

// RecordSpeed appends a speed sample. The value is stored as given.
func (s *Store) RecordSpeed(ctx context.Context, userID int64, speed float64) (SpeedRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec SpeedRecord
	err := updateList(ctx, s.kv, KeySpeedRecords, func(records []SpeedRecord) ([]SpeedRecord, error) {
		now := s.timestamp()
		rec = SpeedRecord{
			ID:        nextAfter(&s.ids, now, records, idOfSpeed),
			UserID:    userID,
			Speed:     speed,
			Timestamp: now,
		}
		return append(records, rec), nil
	})
	if err != nil {
		return SpeedRecord{}, err
	}
	return rec, nil
}

// SpeedRecords returns a user's samples in recording order.
func (s *Store) SpeedRecords(ctx context.Context, userID int64) ([]SpeedRecord, error) {
	records, err := loadList[SpeedRecord](ctx, s.kv, KeySpeedRecords)
	if err != nil {
		return nil, err
	}
	out := records[:0]
	for _, r := range records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}
