// Package rewards owns the persisted driver accounts, hazard reports, speed
// samples and redemptions, and enforces the point economy over them.
package rewards

import (
	"context"
	"fmt"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"

	"github.com/notepid/roadwatch/internal/kv"
	"github.com/notepid/roadwatch/internal/logger"
	"github.com/notepid/roadwatch/internal/user"
)

// HazardPoints is the flat award for reporting a hazard.
const HazardPoints = 50

// HazardPublisher is notified of every newly stored hazard report.
type HazardPublisher interface {
	PublishHazard(h HazardReport)
}

// Store persists rewards state through a kv.Store.
//
// Every collection is a single JSON document, so each mutation reads the
// whole document, changes it and writes it back. The rewrite runs inside
// kv.Store.Update, which keeps it atomic against other processes sharing the
// backend (the admin TUI next to the server). mu serializes mutations within
// the process and guards ids.
type Store struct {
	kv        kv.Store
	hasher    user.PasswordHasher
	publisher HazardPublisher
	log       *charmlog.Logger
	now       func() time.Time

	mu  sync.Mutex
	ids idGenerator
}

// Option configures a Store.
type Option func(*Store)

// WithHasher sets the password hasher. Defaults to bcrypt at the default cost.
func WithHasher(h user.PasswordHasher) Option {
	return func(s *Store) { s.hasher = h }
}

// WithPublisher registers a hazard publisher.
func WithPublisher(p HazardPublisher) Option {
	return func(s *Store) { s.publisher = p }
}

// WithLogger sets the logger.
func WithLogger(l *charmlog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a store over the given backend.
func NewStore(backend kv.Store, opts ...Option) *Store {
	s := &Store{
		kv:     backend,
		hasher: user.NewBcryptHasher(user.DefaultBcryptCost),
		log:    logger.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init makes sure every collection exists, defaulting to an empty list, and
// seeds the ID generator from stored records. Existing data is kept, so Init
// is safe to call repeatedly.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range collectionKeys {
		err := s.kv.Update(ctx, key, func(old string, ok bool) (string, error) {
			if ok {
				return old, nil
			}
			return "[]", nil
		})
		if err != nil {
			return fmt.Errorf("init %s: %w", key, err)
		}
	}

	return s.seedIDs(ctx)
}

func (s *Store) seedIDs(ctx context.Context) error {
	users, err := loadList[user.User](ctx, s.kv, KeyUsers)
	if err != nil {
		return err
	}
	for _, u := range users {
		s.ids.observe(u.ID)
	}

	hazards, err := loadList[HazardReport](ctx, s.kv, KeyHazards)
	if err != nil {
		return err
	}
	for _, h := range hazards {
		s.ids.observe(h.ID)
	}

	records, err := loadList[SpeedRecord](ctx, s.kv, KeySpeedRecords)
	if err != nil {
		return err
	}
	for _, r := range records {
		s.ids.observe(r.ID)
	}

	redemptions, err := loadList[Redemption](ctx, s.kv, KeyRedemptions)
	if err != nil {
		return err
	}
	for _, r := range redemptions {
		s.ids.observe(r.ID)
	}

	s.log.Debug("rewards store initialized",
		"users", len(users), "hazards", len(hazards),
		"speed_records", len(records), "redemptions", len(redemptions))
	return nil
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

func findUser(users []user.User, id int64) int {
	for i := range users {
		if users[i].ID == id {
			return i
		}
	}
	return -1
}
