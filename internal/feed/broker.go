package feed

import (
	"sync"

	charmlog "github.com/charmbracelet/log"

	"github.com/notepid/roadwatch/internal/rewards"
)

const subscriberBuffer = 32

// Subscriber receives newly reported hazards.
type Subscriber struct {
	ID int
	Ch chan rewards.HazardReport
}

// Broker fans hazard reports out to live subscribers.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[int]*Subscriber
	nextID      int
	log         *charmlog.Logger
}

// NewBroker creates a new hazard broker.
func NewBroker(log *charmlog.Logger) *Broker {
	return &Broker{
		subscribers: make(map[int]*Subscriber),
		nextID:      1,
		log:         log,
	}
}

// Subscribe registers a new subscriber.
func (b *Broker) Subscribe() *Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &Subscriber{
		ID: b.nextID,
		Ch: make(chan rewards.HazardReport, subscriberBuffer),
	}
	b.nextID++
	b.subscribers[sub.ID] = sub
	return sub
}

// Unsubscribe removes a subscriber.
func (b *Broker) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// The channel stays open: a concurrent Publish may hold a snapshot.
	delete(b.subscribers, id)
}

// Count returns the number of live subscribers.
func (b *Broker) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// PublishHazard delivers a report to every subscriber without blocking.
// Subscribers with a full buffer miss the report.
func (b *Broker) PublishHazard(h rewards.HazardReport) {
	b.mu.RLock()
	subs := make([]*Subscriber, 0, len(b.subscribers))
	for _, sub := range b.subscribers {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	dropped := 0
	for _, sub := range subs {
		select {
		case sub.Ch <- h:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		b.log.Warn("dropped hazard broadcasts (slow subscribers)", "dropped", dropped, "hazard_id", h.ID)
	}
}
