package application

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	alerts "gasbalance-cloud/internal/alerts/domain"
	"gasbalance-cloud/internal/auth"
	"gasbalance-cloud/internal/observability/metrics"
)

const (
	// DefaultRecentLimit is used when no limit is requested.
	DefaultRecentLimit = 10
	// MaxRecentLimit caps the recent listing.
	MaxRecentLimit = 100
)

// EventTransition is the event type emitted for accepted transitions.
const EventTransition = "transition"

// AlertNotifier publishes alert lifecycle events.
type AlertNotifier interface {
	Notify(ctx context.Context, event AlertEvent)
}

// AlertEvent represents a lifecycle update.
type AlertEvent struct {
	Type  string       `json:"type"`
	From  alerts.State `json:"from"`
	Alert alerts.Alert `json:"alert"`
	Role  auth.Role    `json:"role,omitempty"`
	At    time.Time    `json:"at"`
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

// Service serves alert queries and guarded state transitions.
type Service struct {
	repo     alerts.Repository
	notifier AlertNotifier
	clock    Clock
}

// ServiceOption customizes the alert service.
type ServiceOption func(*Service)

// WithNotifier assigns a notifier.
func WithNotifier(notifier AlertNotifier) ServiceOption {
	return func(s *Service) {
		s.notifier = notifier
	}
}

// WithClock assigns a clock.
func WithClock(clock Clock) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewService constructs an alert service.
func NewService(repo alerts.Repository, opts ...ServiceOption) (*Service, error) {
	if repo == nil {
		return nil, errors.New("alerts: nil repository")
	}
	service := &Service{
		repo:  repo,
		clock: systemClock{},
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// List returns the alerts matching filter in repository order.
func (s *Service) List(ctx context.Context, filter alerts.Filter) ([]alerts.Alert, error) {
	if s == nil {
		return nil, errors.New("alerts: nil service")
	}
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if filter.IsEmpty() {
		return list, nil
	}
	return filter.Apply(list), nil
}

// Stats tallies the alerts matching filter.
func (s *Service) Stats(ctx context.Context, filter alerts.Filter) (alerts.Stats, error) {
	list, err := s.List(ctx, filter)
	if err != nil {
		return alerts.Stats{}, err
	}
	return alerts.Aggregate(list), nil
}

// Recent returns the newest alerts by date, more severe first on equal
// dates. limit is clamped to [1, MaxRecentLimit]; non-positive values use
// DefaultRecentLimit.
func (s *Service) Recent(ctx context.Context, limit int) ([]alerts.Alert, error) {
	list, err := s.List(ctx, alerts.Filter{})
	if err != nil {
		return nil, err
	}
	limit = ClampRecentLimit(limit)
	sort.SliceStable(list, func(i, j int) bool {
		ti, tj := list[i].Timestamp(), list[j].Timestamp()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return list[i].Severity.Rank() > list[j].Severity.Rank()
	})
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// ClampRecentLimit normalizes a requested recent limit.
func ClampRecentLimit(limit int) int {
	if limit <= 0 {
		return DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		return MaxRecentLimit
	}
	return limit
}

// Critical returns the critical alerts.
func (s *Service) Critical(ctx context.Context) ([]alerts.Alert, error) {
	return s.List(ctx, alerts.Filter{Severity: string(alerts.SeverityCritical)})
}

// ByValve returns the alerts of one valve. The id must match exactly,
// ignoring case.
func (s *Service) ByValve(ctx context.Context, valve string) ([]alerts.Alert, error) {
	list, err := s.List(ctx, alerts.Filter{})
	if err != nil {
		return nil, err
	}
	valve = strings.TrimSpace(valve)
	out := make([]alerts.Alert, 0)
	for _, alert := range list {
		if strings.EqualFold(alert.Valve, valve) {
			out = append(out, alert)
		}
	}
	return out, nil
}

// Get returns one alert.
func (s *Service) Get(ctx context.Context, id int64) (*alerts.Alert, error) {
	if s == nil {
		return nil, errors.New("alerts: nil service")
	}
	alert, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if alert == nil {
		return nil, alerts.ErrNotFound
	}
	return alert, nil
}

// UpdateState applies a state transition requested by the context session.
// The guard runs before anything is written; rejected requests leave the
// stored alert unchanged.
func (s *Service) UpdateState(ctx context.Context, id int64, requested string) (*alerts.Alert, error) {
	if s == nil {
		return nil, errors.New("alerts: nil service")
	}
	target, ok := alerts.NormalizeState(requested)
	if !auth.PermissionsFromContext(ctx).Has(auth.PermManageAlerts) {
		metrics.IncAlertTransition("", string(target), metrics.ResultDenied)
		return nil, auth.ErrForbidden
	}
	if !ok {
		metrics.IncAlertTransition("", requested, metrics.ResultRejected)
		return nil, alerts.ErrInvalidState
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	from := current.State
	next, err := alerts.Transition(*current, target)
	if err != nil {
		metrics.IncAlertTransition(string(from), string(target), metrics.ResultRejected)
		return nil, err
	}
	if err := s.repo.UpdateState(ctx, id, from, target); err != nil {
		result := metrics.ResultError
		if errors.Is(err, alerts.ErrInvalidTransition) {
			result = metrics.ResultRejected
		}
		metrics.IncAlertTransition(string(from), string(target), result)
		return nil, err
	}
	metrics.IncAlertTransition(string(from), string(target), metrics.ResultSuccess)
	s.notify(ctx, from, next)
	return &next, nil
}

func (s *Service) notify(ctx context.Context, from alerts.State, alert alerts.Alert) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, AlertEvent{
		Type:  EventTransition,
		From:  from,
		Alert: alert,
		Role:  auth.RoleFromContext(ctx),
		At:    s.clock.Now().UTC(),
	})
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
