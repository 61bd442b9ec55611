package rewards

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/notepid/roadwatch/internal/db"
	"github.com/notepid/roadwatch/internal/kv"
	"github.com/notepid/roadwatch/internal/logger"
	"github.com/notepid/roadwatch/internal/user"
)

// pausingKV stops the first update of key after the current value has been
// read, until resume is closed.
type pausingKV struct {
	kv.Store
	key    string
	once   sync.Once
	paused chan struct{}
	resume chan struct{}
}

func newPausingKV(inner kv.Store, key string) *pausingKV {
	return &pausingKV{Store: inner, key: key, paused: make(chan struct{}), resume: make(chan struct{})}
}

func (p *pausingKV) Update(ctx context.Context, key string, fn kv.UpdateFunc) error {
	return p.Store.Update(ctx, key, func(old string, ok bool) (string, error) {
		if key == p.key {
			p.once.Do(func() {
				close(p.paused)
				<-p.resume
			})
		}
		return fn(old, ok)
	})
}

// failingKV fails every update of key.
type failingKV struct {
	kv.Store
	key string
}

var errBackendDown = errors.New("backend down")

func (f *failingKV) Update(ctx context.Context, key string, fn kv.UpdateFunc) error {
	if key == f.key {
		return errBackendDown
	}
	return f.Store.Update(ctx, key, fn)
}

// sharedBackends returns two independent handles onto one persistent
// backend, the way the server and the admin TUI each open their own.
func sharedBackends(t *testing.T) map[string][2]kv.Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "shared.db")
	first, err := db.Open(path, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { first.Close() })
	second, err := db.Open(path, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { second.Close() })

	mr := miniredis.RunT(t)
	clientA := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { clientA.Close() })
	clientB := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { clientB.Close() })

	return map[string][2]kv.Store{
		"sqlite": {kv.NewSQLite(first), kv.NewSQLite(second)},
		"redis":  {kv.NewRedis(clientA, "roadwatch:"), kv.NewRedis(clientB, "roadwatch:")},
	}
}

func TestConcurrentRedeemAcrossStoresCannotOverspend(t *testing.T) {
	for name, pair := range sharedBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			hasher := WithHasher(user.NewBcryptHasher(bcrypt.MinCost))

			server := NewStore(pair[0], hasher)
			require.NoError(t, server.Init(ctx))
			gate := newPausingKV(pair[1], KeyUsers)
			admin := NewStore(gate, hasher)

			id := signup(t, server, "ana")
			setPoints(t, server, id.UserID, 1000)

			var adminErr, serverErr error
			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, adminErr = admin.RedeemReward(ctx, id.UserID, 2)
			}()

			<-gate.paused
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, serverErr = server.RedeemReward(ctx, id.UserID, 2)
			}()
			// Give the server a chance to race the paused admin.
			time.Sleep(50 * time.Millisecond)
			close(gate.resume)
			wg.Wait()

			errs := []error{adminErr, serverErr}
			succeeded := 0
			for _, err := range errs {
				if err == nil {
					succeeded++
					continue
				}
				assert.ErrorIs(t, err, ErrInsufficientPoints)
			}
			assert.Equal(t, 1, succeeded, "exactly one redemption may succeed: admin=%v server=%v", adminErr, serverErr)

			p, err := server.Profile(ctx, id.UserID)
			require.NoError(t, err)
			assert.Equal(t, 0, p.Points)

			history, err := server.Redemptions(ctx, id.UserID)
			require.NoError(t, err)
			assert.Len(t, history, 1)
		})
	}
}

func TestSignupAcrossStoresIssuesDistinctIDs(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemory()
	fixed := func() time.Time { return time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC) }

	var stores []*Store
	for range 2 {
		s := NewStore(backend, WithHasher(user.NewBcryptHasher(bcrypt.MinCost)), WithClock(fixed))
		require.NoError(t, s.Init(ctx))
		stores = append(stores, s)
	}

	ana := signup(t, stores[0], "ana")
	ben := signup(t, stores[1], "ben")
	assert.NotEqual(t, ana.UserID, ben.UserID)

	_, err := stores[1].Signup(ctx, "ana", "ana@example.com", "pw")
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	users, err := stores[0].Users(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestReportHazardKeepsStoredReportWhenAwardFails(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	backend := kv.NewMemory()
	s := NewStore(&failingKV{Store: backend, key: KeyUsers},
		WithHasher(user.NewBcryptHasher(bcrypt.MinCost)), WithPublisher(pub))

	// Seed the collections and a user directly; user updates will fail.
	require.NoError(t, saveList(ctx, backend, KeyHazards, []HazardReport{}))
	require.NoError(t, saveList(ctx, backend, KeyUsers, []user.User{{ID: 1, Username: "ana", Level: user.LevelBronze}}))

	report, err := s.ReportHazard(ctx, 1, "pothole", "Main St")
	require.NoError(t, err)
	assert.NotZero(t, report.ID)

	require.Len(t, pub.reports, 1)
	assert.Equal(t, report.ID, pub.reports[0].ID)

	hazards, err := s.Hazards(ctx)
	require.NoError(t, err)
	require.Len(t, hazards, 1)
	assert.Equal(t, report.ID, hazards[0].ID)

	p, err := s.Profile(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Points)
}

func TestReportHazardStoresNothingWhenHazardWriteFails(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	backend := kv.NewMemory()
	s := NewStore(&failingKV{Store: backend, key: KeyHazards}, WithPublisher(pub))
	require.NoError(t, saveList(ctx, backend, KeyUsers, []user.User{{ID: 1, Username: "ana", Level: user.LevelBronze}}))

	_, err := s.ReportHazard(ctx, 1, "pothole", "Main St")
	require.ErrorIs(t, err, errBackendDown)
	assert.Empty(t, pub.reports)

	p, err := s.Profile(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Points, "no points without a stored report")
}
