package backend

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

// BalanceRow is one monthly balance of a valve. Measurements may be absent.
type BalanceRow struct {
	Period   string   `json:"periodo"`
	Date     string   `json:"fecha,omitempty"`
	Input    *float64 `json:"entrada"`
	Output   *float64 `json:"salida"`
	Losses   *float64 `json:"perdidas"`
	Index    *float64 `json:"indice"`
	Forecast bool     `json:"es_pronostico"`
}

// BalanceKPIs aggregates a valve balance series.
type BalanceKPIs struct {
	AverageIndex   float64 `json:"indice_promedio"`
	TotalLosses    float64 `json:"total_perdidas"`
	MonthsAnalyzed int     `json:"meses_analizados"`
}

// BalanceReport is the monthly balance history of one valve.
type BalanceReport struct {
	ValveID  string       `json:"valvula_id"`
	KPIs     BalanceKPIs  `json:"kpis"`
	Balances []BalanceRow `json:"balances"`
}

// BalanceQuery narrows a balance report to a period range, inclusive.
type BalanceQuery struct {
	ValveID string
	From    string
	To      string
}

// Balances loads the monthly balances of one valve.
func (c *Client) Balances(ctx context.Context, query BalanceQuery) (BalanceReport, error) {
	if query.ValveID == "" {
		return BalanceReport{}, errors.New("backend: empty valve id")
	}
	path := "/api/balances/" + url.PathEscape(query.ValveID)
	params := url.Values{}
	if query.From != "" {
		params.Set("periodo_inicio", query.From)
	}
	if query.To != "" {
		params.Set("periodo_fin", query.To)
	}
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var resp BalanceReport
	if err := c.fetch(ctx, ResourceBalances, http.MethodGet, path, nil, &resp); err != nil {
		return BalanceReport{}, err
	}
	return resp, nil
}
