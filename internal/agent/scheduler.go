package agent

import (
	"context"
	"log"
	"time"

	"github.com/rahul/finbot/internal/observability"
)

// MediaStore holds rendered images until they expire.
type MediaStore interface {
	PurgeMedia(before time.Time) (int64, error)
}

// Scheduler runs housekeeping: it drops expired media and emits the
// heartbeat.
type Scheduler struct {
	Store    MediaStore
	TTL      time.Duration
	Interval time.Duration
	Logger   *observability.Logger

	now func() time.Time
}

func NewScheduler(st MediaStore, ttl time.Duration, logger *observability.Logger) *Scheduler {
	return &Scheduler{
		Store:    st,
		TTL:      ttl,
		Interval: 30 * time.Second,
		Logger:   logger,
		now:      time.Now,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	log.Println("Housekeeping scheduler started...")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Scheduler) tick() {
	observability.Heartbeat()
	s.Logger.LogHeartbeat()

	if s.Store == nil || s.TTL <= 0 {
		return
	}
	n, err := s.Store.PurgeMedia(s.now().Add(-s.TTL))
	if err != nil {
		log.Printf("Error purging media: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Purged %d expired images", n)
	}
}
