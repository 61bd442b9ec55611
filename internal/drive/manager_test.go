package drive

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notepid/roadwatch/internal/logger"
	"github.com/notepid/roadwatch/internal/rewards"
	"github.com/notepid/roadwatch/internal/user"
)

type fakeRecorder struct {
	mu      sync.Mutex
	samples map[int64][]float64
	fail    bool
}

func (f *fakeRecorder) RecordSpeed(_ context.Context, userID int64, v float64) (rewards.SpeedRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return rewards.SpeedRecord{}, errors.New("backend down")
	}
	if f.samples == nil {
		f.samples = make(map[int64][]float64)
	}
	f.samples[userID] = append(f.samples[userID], v)
	return rewards.SpeedRecord{UserID: userID, Speed: v}, nil
}

func (f *fakeRecorder) count(userID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.samples[userID])
}

var testSettings = Settings{
	Interval:   5 * time.Millisecond,
	StartSpeed: 45,
	MinSpeed:   40,
	MaxSpeed:   50,
}

func TestDriveRecordsSamplesUntilStopped(t *testing.T) {
	rec := &fakeRecorder{}
	mgr := NewManager(2, testSettings, rec, logger.Discard())
	ana := user.Identity{UserID: 1, Username: "ana"}

	require.NoError(t, mgr.Start(context.Background(), ana))
	require.Eventually(t, func() bool { return rec.count(1) >= 3 }, time.Second, 5*time.Millisecond)

	info, ok := mgr.Get(1)
	require.True(t, ok)
	assert.Equal(t, "ana", info.Username)
	assert.GreaterOrEqual(t, info.Speed, 40)
	assert.LessOrEqual(t, info.Speed, 50)

	assert.True(t, mgr.Stop(1))
	stopped := rec.count(1)
	time.Sleep(25 * time.Millisecond)
	assert.Equal(t, stopped, rec.count(1), "no samples after Stop returns")

	assert.False(t, mgr.Stop(1))
	_, ok = mgr.Get(1)
	assert.False(t, ok)

	for _, v := range rec.samples[1] {
		assert.GreaterOrEqual(t, v, 40.0)
		assert.LessOrEqual(t, v, 50.0)
	}
}

func TestStartRejectsDuplicateAndFull(t *testing.T) {
	mgr := NewManager(2, testSettings, &fakeRecorder{}, logger.Discard())
	defer mgr.StopAll()
	ctx := context.Background()

	require.NoError(t, mgr.Start(ctx, user.Identity{UserID: 1}))
	assert.ErrorIs(t, mgr.Start(ctx, user.Identity{UserID: 1}), ErrAlreadyDriving)

	require.NoError(t, mgr.Start(ctx, user.Identity{UserID: 2}))
	assert.ErrorIs(t, mgr.Start(ctx, user.Identity{UserID: 3}), ErrNoCapacity)

	mgr.Stop(1)
	require.NoError(t, mgr.Start(ctx, user.Identity{UserID: 3}))
	assert.Equal(t, 2, mgr.Count())
	assert.Len(t, mgr.ListInfo(), 2)
}

func TestStopAll(t *testing.T) {
	mgr := NewManager(4, testSettings, &fakeRecorder{}, logger.Discard())
	ctx := context.Background()
	for i := int64(1); i <= 3; i++ {
		require.NoError(t, mgr.Start(ctx, user.Identity{UserID: i}))
	}

	mgr.StopAll()
	assert.Equal(t, 0, mgr.Count())
}

func TestDriveEndsWithContext(t *testing.T) {
	rec := &fakeRecorder{}
	mgr := NewManager(1, testSettings, rec, logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, mgr.Start(ctx, user.Identity{UserID: 9}))
	cancel()

	// The drive stays registered until stopped, but Stop must not hang.
	done := make(chan struct{})
	go func() {
		mgr.Stop(9)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Stop did not return after context cancellation")
	}
}

func TestDriveKeepsRunningWhenRecordingFails(t *testing.T) {
	rec := &fakeRecorder{fail: true}
	mgr := NewManager(1, testSettings, rec, logger.Discard())
	defer mgr.StopAll()

	require.NoError(t, mgr.Start(context.Background(), user.Identity{UserID: 5}))
	time.Sleep(20 * time.Millisecond)

	info, ok := mgr.Get(5)
	require.True(t, ok)
	assert.Equal(t, 0, info.Samples)
}

func TestListInfoOrderedByUser(t *testing.T) {
	mgr := NewManager(4, testSettings, &fakeRecorder{}, logger.Discard())
	t.Cleanup(mgr.StopAll)
	ctx := context.Background()
	for _, id := range []int64{3, 1, 2} {
		require.NoError(t, mgr.Start(ctx, user.Identity{UserID: id, Username: fmt.Sprintf("user%d", id)}))
	}

	info := mgr.ListInfo()
	require.Len(t, info, 3)
	for i, want := range []int64{1, 2, 3} {
		assert.Equal(t, want, info[i].UserID)
		assert.Equal(t, fmt.Sprintf("user%d", want), info[i].Username)
	}

	mgr.Stop(2)
	info = mgr.ListInfo()
	require.Len(t, info, 2)
	assert.Equal(t, []int64{1, 3}, []int64{info[0].UserID, info[1].UserID})
}
