package backend

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	alerts "gasbalance-cloud/internal/alerts/domain"
)

type alertListResponse struct {
	Alerts []alerts.Alert `json:"alertas"`
	Total  int            `json:"total"`
}

type alertUpdateRequest struct {
	State alerts.State `json:"estado"`
}

type alertUpdateResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Alert   *alerts.Alert `json:"alert"`
}

// ListAlerts loads every alert known to the backend.
func (c *Client) ListAlerts(ctx context.Context) ([]alerts.Alert, error) {
	var resp alertListResponse
	if err := c.fetch(ctx, ResourceAlerts, http.MethodGet, "/api/alerts/", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Alerts, nil
}

// PatchAlertState asks the backend to store a new alert state.
func (c *Client) PatchAlertState(ctx context.Context, id int64, state alerts.State) (*alerts.Alert, error) {
	var resp alertUpdateResponse
	path := "/api/alerts/" + strconv.FormatInt(id, 10)
	if err := c.fetch(ctx, ResourceAlerts, http.MethodPatch, path, alertUpdateRequest{State: state}, &resp); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, alerts.ErrNotFound
		}
		return nil, err
	}
	if !resp.Success {
		if resp.Message == "" {
			resp.Message = "update rejected"
		}
		return nil, errors.New("backend: " + resp.Message)
	}
	return resp.Alert, nil
}

// AlertRepository exposes the backend alert list as an alerts.Repository.
type AlertRepository struct {
	client *Client
}

// NewAlertRepository constructs the adapter.
func NewAlertRepository(client *Client) (*AlertRepository, error) {
	if client == nil {
		return nil, errors.New("backend alert repository: nil client")
	}
	return &AlertRepository{client: client}, nil
}

// List returns the backend alerts in backend order.
func (r *AlertRepository) List(ctx context.Context) ([]alerts.Alert, error) {
	return r.client.ListAlerts(ctx)
}

// Get finds one alert in the backend list.
func (r *AlertRepository) Get(ctx context.Context, id int64) (*alerts.Alert, error) {
	list, err := r.client.ListAlerts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			alert := list[i]
			return &alert, nil
		}
	}
	return nil, alerts.ErrNotFound
}

// UpdateState re-reads the alert and patches it only while it is still in
// state from. The backend has no conditional update, so two writers racing
// between the read and the patch are not detected.
func (r *AlertRepository) UpdateState(ctx context.Context, id int64, from, to alerts.State) error {
	current, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if current.State != from {
		return alerts.ErrInvalidTransition
	}
	_, err = r.client.PatchAlertState(ctx, id, to)
	return err
}
