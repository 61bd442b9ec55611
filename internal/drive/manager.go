// Package drive runs the periodic speed simulation for logged-in users.
package drive

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"

	"github.com/notepid/roadwatch/internal/rewards"
	"github.com/notepid/roadwatch/internal/speed"
	"github.com/notepid/roadwatch/internal/user"
)

var (
	ErrAlreadyDriving = errors.New("drive already in progress")
	ErrNoCapacity     = errors.New("too many active drives")
)

// Recorder persists speed samples.
type Recorder interface {
	RecordSpeed(ctx context.Context, userID int64, speed float64) (rewards.SpeedRecord, error)
}

// Settings configures every drive the manager starts.
type Settings struct {
	Interval   time.Duration
	StartSpeed float64
	MinSpeed   float64
	MaxSpeed   float64
}

// Manager tracks active drives and enforces the max-drives limit.
type Manager struct {
	mu        sync.RWMutex
	drives    map[int64]*Drive
	maxDrives int
	settings  Settings
	recorder  Recorder
	log       *charmlog.Logger
}

// NewManager creates a new drive manager.
func NewManager(maxDrives int, settings Settings, recorder Recorder, log *charmlog.Logger) *Manager {
	return &Manager{
		drives:    make(map[int64]*Drive),
		maxDrives: maxDrives,
		settings:  settings,
		recorder:  recorder,
		log:       log,
	}
}

// Start launches a drive for id. ctx bounds the drive's lifetime in addition
// to Stop.
func (m *Manager) Start(ctx context.Context, id user.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.drives[id.UserID]; ok {
		return ErrAlreadyDriving
	}
	if len(m.drives) >= m.maxDrives {
		return ErrNoCapacity
	}

	ctx, cancel := context.WithCancel(ctx)
	d := &Drive{
		UserID:    id.UserID,
		Username:  id.Username,
		StartedAt: time.Now(),
		sim:       speed.NewSimulator(m.settings.StartSpeed, m.settings.MinSpeed, m.settings.MaxSpeed, nil),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	m.drives[id.UserID] = d

	go d.run(ctx, m.settings.Interval, m.recorder, m.log.With("user_id", id.UserID))

	m.log.Info("drive started", "user_id", id.UserID, "username", id.Username, "active", len(m.drives))
	return nil
}

// Stop ends a user's drive and waits for it to finish. It reports whether a
// drive was running.
func (m *Manager) Stop(userID int64) bool {
	m.mu.Lock()
	d, ok := m.drives[userID]
	delete(m.drives, userID)
	m.mu.Unlock()

	if !ok {
		return false
	}
	d.stop()
	m.log.Info("drive stopped", "user_id", userID, "samples", d.Info().Samples)
	return true
}

// StopAll ends every drive.
func (m *Manager) StopAll() {
	m.mu.Lock()
	drives := m.drives
	m.drives = make(map[int64]*Drive)
	m.mu.Unlock()

	for _, d := range drives {
		d.stop()
	}
}

// Get returns the status of a user's drive.
func (m *Manager) Get(userID int64) (Info, bool) {
	m.mu.RLock()
	d, ok := m.drives[userID]
	m.mu.RUnlock()
	if !ok {
		return Info{}, false
	}
	return d.Info(), true
}

// Count returns the number of active drives.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.drives)
}

// ListInfo returns summary info for all active drives, ordered by user ID.
// The server logs it on shutdown.
func (m *Manager) ListInfo() []Info {
	m.mu.RLock()
	info := make([]Info, 0, len(m.drives))
	for _, d := range m.drives {
		info = append(info, d.Info())
	}
	m.mu.RUnlock()

	slices.SortFunc(info, func(a, b Info) int { return cmp.Compare(a.UserID, b.UserID) })
	return info
}
