package retention

import (
	"context"
	"log"
	"time"

	"github.com/ginxFromYt/ARDUINO-API/config"
	"github.com/ginxFromYt/ARDUINO-API/internal/store"
)

// Sweeper periodically prunes telemetry readings older than the configured
// retention age. The reading table is append-only, so without a sweeper it
// grows without bound on small deployments.
type Sweeper struct {
	cfg   *config.RetentionConfig
	store store.Store
}

// NewSweeper creates a retention sweeper.
func NewSweeper(cfg *config.RetentionConfig, s store.Store) *Sweeper {
	return &Sweeper{cfg: cfg, store: s}
}

// Run executes sweeps on the configured interval until the context is
// cancelled. The first sweep runs immediately.
func (s *Sweeper) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		log.Println("retention sweeper disabled")
		return
	}

	log.Printf("retention sweeper started: interval=%s max_age_days=%d",
		s.cfg.Interval, s.cfg.MaxAgeDays)

	s.SweepOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.SweepOnce(ctx)
		case <-ctx.Done():
			log.Println("retention sweeper shutting down")
			return
		}
	}
}

// SweepOnce deletes readings older than the retention cutoff.
func (s *Sweeper) SweepOnce(ctx context.Context) {
	cutoff := time.Now().AddDate(0, 0, -s.cfg.MaxAgeDays)
	removed, err := s.store.PruneReadingsBefore(ctx, cutoff)
	if err != nil {
		log.Printf("retention sweep failed: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("retention sweep removed %d readings older than %s", removed, cutoff.Format(time.RFC3339))
	}
}
