package rewards

import (
	"time"

	"github.com/notepid/roadwatch/internal/user"
)

// idGenerator hands out creation-time IDs in milliseconds, bumped past the
// last issued value so two records created in the same millisecond still
// get distinct, increasing IDs. Callers hold Store.mu.
type idGenerator struct {
	last int64
}

func (g *idGenerator) next(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

// observe raises the floor to an ID already persisted.
func (g *idGenerator) observe(id int64) {
	if id > g.last {
		g.last = id
	}
}

// nextAfter issues an ID above every ID in items. Another process may have
// appended records since this one last looked.
func nextAfter[T any](g *idGenerator, now time.Time, items []T, id func(T) int64) int64 {
	for _, it := range items {
		g.observe(id(it))
	}
	return g.next(now)
}

func idOfUser(u user.User) int64        { return u.ID }
func idOfHazard(h HazardReport) int64   { return h.ID }
func idOfSpeed(r SpeedRecord) int64     { return r.ID }
func idOfRedemption(r Redemption) int64 { return r.ID }
