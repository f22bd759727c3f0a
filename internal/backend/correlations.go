package backend

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	analytics "gasbalance-cloud/internal/analytics/domain"
)

// Scatter is the paired series of two system variables.
type Scatter struct {
	VarX        string               `json:"var_x"`
	VarY        string               `json:"var_y"`
	Points      []analytics.Sample2D `json:"data"`
	Correlation float64              `json:"correlation"`
	Total       int                  `json:"total_puntos"`
}

// ScatterQuery selects the variable pair and an optional valve.
type ScatterQuery struct {
	VarX    string
	VarY    string
	ValveID string
}

// CorrelationScatter loads the paired samples of two variables.
func (c *Client) CorrelationScatter(ctx context.Context, query ScatterQuery) (Scatter, error) {
	if query.VarX == "" || query.VarY == "" {
		return Scatter{}, errors.New("backend: scatter variables required")
	}
	params := url.Values{}
	params.Set("var_x", query.VarX)
	params.Set("var_y", query.VarY)
	if query.ValveID != "" {
		params.Set("valvula_id", query.ValveID)
	}
	var resp Scatter
	if err := c.fetch(ctx, ResourceCorrelations, http.MethodGet, "/api/correlations/scatter?"+params.Encode(), nil, &resp); err != nil {
		return Scatter{}, err
	}
	return resp, nil
}
