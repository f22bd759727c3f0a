package application

import (
	"context"
	"errors"
	"sync"
	"time"

	analytics "gasbalance-cloud/internal/analytics/domain"
	"gasbalance-cloud/internal/observability/metrics"
)

// ResourceValves is the sequencing key for valve status fetches.
const ResourceValves = "valves"

// ErrNoSource is returned when no valve source is configured.
var ErrNoSource = errors.New("analytics: no valve source")

// ValveSource loads valve status records.
type ValveSource interface {
	ValveStatuses(ctx context.Context) ([]analytics.ValveStatusRecord, error)
}

// Sequencer orders concurrent fetches of the same resource.
type Sequencer interface {
	Begin(resource string) uint64
	Resolve(resource string, seq uint64) bool
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

// Snapshot is the last applied valve population and its health.
type Snapshot struct {
	Records   []analytics.ValveStatusRecord `json:"valvulas"`
	Health    analytics.NetworkHealth       `json:"health"`
	FetchedAt time.Time                     `json:"fetched_at"`
}

// HealthService scores the network from a valve source and keeps the
// latest resolved result.
type HealthService struct {
	source     ValveSource
	sequencer  Sequencer
	calculator analytics.HealthCalculator
	clock      Clock

	mu       sync.RWMutex
	snapshot *Snapshot
}

// Option configures the service.
type Option func(*HealthService)

// WithSource sets the valve source.
func WithSource(source ValveSource) Option {
	return func(s *HealthService) {
		s.source = source
	}
}

// WithClock overrides the default clock.
func WithClock(clock Clock) Option {
	return func(s *HealthService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewHealthService constructs a health service.
func NewHealthService(calculator analytics.HealthCalculator, sequencer Sequencer, opts ...Option) (*HealthService, error) {
	if sequencer == nil {
		return nil, errors.New("health service: nil sequencer")
	}
	s := &HealthService{
		calculator: calculator,
		sequencer:  sequencer,
		clock:      systemClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Evaluate scores an explicit valve population without touching the snapshot.
func (s *HealthService) Evaluate(records []analytics.ValveStatusRecord) analytics.NetworkHealth {
	return s.calculator.Evaluate(records)
}

// Classify buckets each record with the configured thresholds.
func (s *HealthService) Classify(records []analytics.ValveStatusRecord) []ClassifiedValve {
	out := make([]ClassifiedValve, 0, len(records))
	for _, rec := range records {
		out = append(out, ClassifiedValve{
			ValveStatusRecord: rec,
			Status:            s.calculator.Thresholds.Bucket(rec.LossIndex),
		})
	}
	return out
}

// ClassifiedValve is a valve record with its status bucket.
type ClassifiedValve struct {
	analytics.ValveStatusRecord
	Status analytics.ValveStatus `json:"estado"`
}

// Refresh fetches the valve population and scores it. When a later fetch has
// already been applied the stale result is dropped and the applied snapshot
// is returned instead.
func (s *HealthService) Refresh(ctx context.Context) (Snapshot, error) {
	if s.source == nil {
		return Snapshot{}, ErrNoSource
	}
	seq := s.sequencer.Begin(ResourceValves)
	records, err := s.source.ValveStatuses(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{
		Records:   records,
		Health:    s.calculator.Evaluate(records),
		FetchedAt: s.clock.Now().UTC(),
	}
	s.mu.Lock()
	applied := s.sequencer.Resolve(ResourceValves, seq)
	if applied {
		s.snapshot = &snap
	} else if s.snapshot != nil {
		snap = *s.snapshot
	}
	s.mu.Unlock()
	if applied {
		metrics.SetHealthScore(snap.Health.Score)
	}
	return snap, nil
}

// Current returns the last applied snapshot.
func (s *HealthService) Current() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return Snapshot{}, false
	}
	return *s.snapshot, true
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
