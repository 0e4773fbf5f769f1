package registry

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ktfth/roleta-online/internal/metrics"
)

// Reaper periodically evicts abandoned rooms: anything older than the
// staleness threshold or left with no participants. Abrupt network-level
// disconnects that never fire a close event are the primary target; a room
// with an orderly departure history never survives long enough to be reaped.
type Reaper struct {
	registry *Registry
	interval time.Duration
	ttl      time.Duration
	logger   zerolog.Logger
}

// NewReaper creates a reaper sweeping the registry every interval, removing
// rooms older than ttl or empty.
func NewReaper(reg *Registry, interval, ttl time.Duration, logger zerolog.Logger) *Reaper {
	return &Reaper{
		registry: reg,
		interval: interval,
		ttl:      ttl,
		logger:   logger,
	}
}

// Run sweeps until ctx is cancelled. It never surfaces errors; it only
// deletes.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info().
		Dur("interval", r.interval).
		Dur("ttl", r.ttl).
		Msg("reaper started")

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("reaper stopped")
			return
		case <-ticker.C:
			removed := r.registry.Sweep(time.Now(), r.ttl)
			metrics.ReaperSweeps.Inc()
			if removed > 0 {
				metrics.RoomsReaped.Add(float64(removed))
				r.logger.Info().Int("removed", removed).Msg("reaped idle rooms")
			}
		}
	}
}
