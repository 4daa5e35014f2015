package stats

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// LogTotals supplies the all-time sales count and earnings from the
// purchase log collection.
type LogTotals interface {
	Totals() (int, int64, error)
}

type Publisher interface {
	PublishStatsUpdated(sales int, earnings int64) error
}

// Snapshot is the displayed pair of shop counters.
type Snapshot struct {
	Sales    int   `json:"sales"`
	Earnings int64 `json:"earnings"`
}

// Service keeps the public shop counters fresh. Sales is the log
// count plus a configured baseline, carried over from before the
// ledger existed. Counters recompute on purchase events and on a
// ticker, never incrementally.
type Service struct {
	Logs      LogTotals
	Publisher Publisher
	Baseline  int

	mu      sync.RWMutex
	current Snapshot
}

func NewService(logs LogTotals, publisher Publisher, baseline int) *Service {
	return &Service{
		Logs:      logs,
		Publisher: publisher,
		Baseline:  baseline,
	}
}

// Refresh recomputes the counters from the log collection and
// publishes the new snapshot.
func (s *Service) Refresh() (Snapshot, error) {
	count, earnings, err := s.Logs.Totals()
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to recompute stats: %w", err)
	}

	snapshot := Snapshot{
		Sales:    s.Baseline + count,
		Earnings: earnings,
	}

	s.mu.Lock()
	s.current = snapshot
	s.mu.Unlock()

	if s.Publisher != nil {
		if err := s.Publisher.PublishStatsUpdated(snapshot.Sales, snapshot.Earnings); err != nil {
			fmt.Printf("Kafka publish error (stats updated): %v\n", err)
		}
	}

	return snapshot, nil
}

// Current returns the last computed snapshot without touching the
// database.
func (s *Service) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Run refreshes immediately and then every interval until the context
// is cancelled. Purchase events trigger extra refreshes through
// OnPurchaseEvent.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	if _, err := s.Refresh(); err != nil {
		fmt.Printf("Stats refresh error: %v\n", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Refresh(); err != nil {
				fmt.Printf("Stats refresh error: %v\n", err)
			}
		}
	}
}

// OnPurchaseEvent is the consumer hook for purchase-logged events.
// The payload is ignored; the counters always recompute from the
// collection.
func (s *Service) OnPurchaseEvent(_ []byte) {
	if _, err := s.Refresh(); err != nil {
		fmt.Printf("Stats refresh error: %v\n", err)
	}
}
