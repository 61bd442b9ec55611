package rewards

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notepid/roadwatch/internal/user"
)

func TestReportHazardAwardsPoints(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	s, _ := newTestStore(t, WithPublisher(pub))
	id := signup(t, s, "ana")

	report, err := s.ReportHazard(ctx, id.UserID, "pothole", "Main St")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, report.Status)
	assert.Equal(t, "pothole", report.HazardType)
	assert.Equal(t, "Main St", report.Location)
	assert.Equal(t, id.UserID, report.UserID)

	p, err := s.Profile(ctx, id.UserID)
	require.NoError(t, err)
	assert.Equal(t, HazardPoints, p.Points)

	all, err := s.Hazards(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, report.ID, all[0].ID)
	assert.True(t, report.Timestamp.Equal(all[0].Timestamp))

	require.Len(t, pub.reports, 1)
	assert.Equal(t, report.ID, pub.reports[0].ID)
}

func TestReportHazardUnknownUserStillStoresReport(t *testing.T) {
	ctx := context.Background()
	s, backend := newTestStore(t)
	id := signup(t, s, "ana")

	usersBefore, _, err := backend.Get(ctx, KeyUsers)
	require.NoError(t, err)

	report, err := s.ReportHazard(ctx, id.UserID+999, "debris", "I-5")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, report.Status)

	usersAfter, _, err := backend.Get(ctx, KeyUsers)
	require.NoError(t, err)
	assert.Equal(t, usersBefore, usersAfter)

	all, err := s.Hazards(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestReportHazardPromotesToSilver(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	id := signup(t, s, "ana")
	setPoints(t, s, id.UserID, 450)

	_, err := s.ReportHazard(ctx, id.UserID, "pothole", "here")
	require.NoError(t, err)

	sum, err := s.GetRewards(ctx, id.UserID)
	require.NoError(t, err)
	assert.Equal(t, 500, sum.UserPoints)
	assert.Equal(t, user.LevelSilver, sum.UserLevel)
}

func TestRecentHazardsNewestFirstCappedAtFive(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	id := signup(t, s, "ana")

	for i := 0; i < 7; i++ {
		_, err := s.ReportHazard(ctx, id.UserID, fmt.Sprintf("hazard-%d", i), "here")
		require.NoError(t, err)
	}

	recent, err := s.RecentHazards(ctx)
	require.NoError(t, err)
	require.Len(t, recent, RecentHazardLimit)
	assert.Equal(t, "hazard-6", recent[0].HazardType)
	for i := 1; i < len(recent); i++ {
		assert.True(t, recent[i-1].Timestamp.After(recent[i].Timestamp),
			"reports %d and %d out of order", i-1, i)
	}

	all, err := s.Hazards(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 7, "reading recent hazards must not drop stored ones")
}

func TestHazardsBreakTimestampTiesByID(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	require.NoError(t, saveList(ctx, s.kv, KeyHazards, []HazardReport{
		{ID: 1, HazardType: "a"},
		{ID: 3, HazardType: "c"},
		{ID: 2, HazardType: "b"},
	}))

	all, err := s.Hazards(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2, 1}, []int64{all[0].ID, all[1].ID, all[2].ID})
}

func TestRecordSpeed(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	ana := signup(t, s, "ana")
	bob := signup(t, s, "bob")

	r1, err := s.RecordSpeed(ctx, ana.UserID, 44.7)
	require.NoError(t, err)
	_, err = s.RecordSpeed(ctx, bob.UserID, 41)
	require.NoError(t, err)
	r3, err := s.RecordSpeed(ctx, ana.UserID, 45.2)
	require.NoError(t, err)
	assert.Greater(t, r3.ID, r1.ID)

	records, err := s.SpeedRecords(ctx, ana.UserID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.InDelta(t, 44.7, records[0].Speed, 1e-9)
	assert.InDelta(t, 45.2, records[1].Speed, 1e-9)

	// Recording does not check the user exists.
	_, err = s.RecordSpeed(ctx, 777, 50)
	require.NoError(t, err)
}
