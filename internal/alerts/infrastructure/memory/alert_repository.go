package memory

import (
	"context"
	"sync"

	alerts "gasbalance-cloud/internal/alerts/domain"
)

// AlertRepository is an in-memory alert store for demos and tests.
// Insertion order is preserved.
type AlertRepository struct {
	mu    sync.RWMutex
	order []int64
	data  map[int64]alerts.Alert
}

// NewAlertRepository constructs a repository holding seed.
func NewAlertRepository(seed []alerts.Alert) *AlertRepository {
	repo := &AlertRepository{data: make(map[int64]alerts.Alert, len(seed))}
	for _, alert := range seed {
		repo.put(alert)
	}
	return repo
}

func (r *AlertRepository) put(alert alerts.Alert) {
	if _, ok := r.data[alert.ID]; !ok {
		r.order = append(r.order, alert.ID)
	}
	r.data[alert.ID] = cloneAlert(alert)
}

// List returns every alert in insertion order.
func (r *AlertRepository) List(ctx context.Context) ([]alerts.Alert, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]alerts.Alert, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, cloneAlert(r.data[id]))
	}
	return out, nil
}

// Get loads one alert.
func (r *AlertRepository) Get(ctx context.Context, id int64) (*alerts.Alert, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	alert, ok := r.data[id]
	if !ok {
		return nil, alerts.ErrNotFound
	}
	out := cloneAlert(alert)
	return &out, nil
}

// UpdateState applies the transition under the write lock.
func (r *AlertRepository) UpdateState(ctx context.Context, id int64, from, to alerts.State) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	alert, ok := r.data[id]
	if !ok {
		return alerts.ErrNotFound
	}
	if alert.State != from {
		return alerts.ErrInvalidTransition
	}
	next, err := alerts.Transition(alert, to)
	if err != nil {
		return err
	}
	r.data[id] = next
	return nil
}

func cloneAlert(alert alerts.Alert) alerts.Alert {
	if alert.Metrics == nil {
		return alert
	}
	metrics := make(map[string]any, len(alert.Metrics))
	for k, v := range alert.Metrics {
		metrics[k] = v
	}
	alert.Metrics = metrics
	return alert
}
