package drive

import (
	"context"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"

	"github.com/notepid/roadwatch/internal/speed"
)

// Drive is one user's running speed simulation.
type Drive struct {
	UserID    int64
	Username  string
	StartedAt time.Time

	mu      sync.Mutex
	sim     *speed.Simulator
	samples int

	cancel context.CancelFunc
	done   chan struct{}
}

// Info holds summary information about a drive.
type Info struct {
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	Speed     int       `json:"speed"`
	Samples   int       `json:"samples"`
	StartedAt time.Time `json:"startedAt"`
}

// Info returns the drive's current readout.
func (d *Drive) Info() Info {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Info{
		UserID:    d.UserID,
		Username:  d.Username,
		Speed:     speed.Display(d.sim.Current()),
		Samples:   d.samples,
		StartedAt: d.StartedAt,
	}
}

func (d *Drive) run(ctx context.Context, interval time.Duration, rec Recorder, log *charmlog.Logger) {
	defer close(d.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		d.mu.Lock()
		v := d.sim.Next()
		d.mu.Unlock()

		if _, err := rec.RecordSpeed(ctx, d.UserID, v); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn("record speed failed", "err", err)
			continue
		}

		d.mu.Lock()
		d.samples++
		d.mu.Unlock()
	}
}

func (d *Drive) stop() {
	d.cancel()
	<-d.done
}
