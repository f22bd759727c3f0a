package backend

import (
	"context"
	"net/http"
	"strconv"

	analytics "gasbalance-cloud/internal/analytics/domain"
)

// MaxTopValves is the largest ranking the backend serves.
const MaxTopValves = 20

type valveStatusResponse struct {
	Valve         string  `json:"valvula"`
	StartDate     string  `json:"fecha_inicio"`
	EndDate       string  `json:"fecha_fin"`
	InputTotal    float64 `json:"volumen_entrada_total"`
	OutputTotal   float64 `json:"volumen_salida_total"`
	AverageIndex  float64 `json:"indice_promedio"`
	AlertLevel    string  `json:"nivel_alerta"`
	HasMacrometer bool    `json:"tiene_macromedidor"`
}

// ValveStatuses loads the status summary of every monitored valve.
func (c *Client) ValveStatuses(ctx context.Context) ([]analytics.ValveStatusRecord, error) {
	var resp []valveStatusResponse
	if err := c.fetch(ctx, ResourceValves, http.MethodGet, "/api/dashboard/valves-status", nil, &resp); err != nil {
		return nil, err
	}
	records := make([]analytics.ValveStatusRecord, 0, len(resp))
	for _, item := range resp {
		records = append(records, analytics.ValveStatusRecord{
			Valve:     item.Valve,
			LossIndex: item.AverageIndex,
		})
	}
	return records, nil
}

// TopValves loads the ranking of valves with the largest losses.
// limit is clamped to 1..MaxTopValves.
func (c *Client) TopValves(ctx context.Context, limit int) ([]analytics.ValveStatusRecord, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > MaxTopValves {
		limit = MaxTopValves
	}
	var resp []analytics.ValveStatusRecord
	path := "/api/dashboard/top-valves?limit=" + strconv.Itoa(limit)
	if err := c.fetch(ctx, ResourceTopValves, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}
