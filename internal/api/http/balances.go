package apihttp

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"gasbalance-cloud/internal/backend"
	"gasbalance-cloud/internal/period"
)

// BalanceSource loads valve balances.
type BalanceSource interface {
	Balances(ctx context.Context, query backend.BalanceQuery) (backend.BalanceReport, error)
}

type labeledBalance struct {
	backend.BalanceRow
	ShortLabel string `json:"periodo_corto"`
	LongLabel  string `json:"periodo_largo"`
}

type balancesResponse struct {
	ValveID  string              `json:"valvula_id"`
	KPIs     backend.BalanceKPIs `json:"kpis"`
	Balances []labeledBalance    `json:"balances"`
}

// BalancesHandler proxies valve balances and labels their periods.
type BalancesHandler struct {
	source BalanceSource
	logger *log.Logger
}

// NewBalancesHandler constructs a BalancesHandler.
func NewBalancesHandler(source BalanceSource, logger *log.Logger) (*BalancesHandler, error) {
	if source == nil {
		return nil, errors.New("balances handler: nil source")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &BalancesHandler{source: source, logger: logger}, nil
}

// ServeHTTP handles GET /api/v1/balances/{valve}.
func (h *BalancesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	valve := strings.TrimPrefix(strings.TrimSuffix(r.URL.Path, "/"), "/api/v1/balances/")
	if valve == "" || strings.Contains(valve, "/") || valve == r.URL.Path {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	query := backend.BalanceQuery{
		ValveID: valve,
		From:    r.URL.Query().Get("periodo_inicio"),
		To:      r.URL.Query().Get("periodo_fin"),
	}
	for _, bound := range []string{query.From, query.To} {
		if bound == "" {
			continue
		}
		if _, err := period.Parse(bound); err != nil {
			http.Error(w, "periods must be YYYYMM", http.StatusBadRequest)
			return
		}
	}
	report, err := h.source.Balances(r.Context(), query)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			http.Error(w, "valve not found", http.StatusNotFound)
			return
		}
		h.logger.Printf("balances: %s: %v", valve, err)
		http.Error(w, "backend unavailable", http.StatusBadGateway)
		return
	}
	rows := make([]labeledBalance, 0, len(report.Balances))
	for _, row := range report.Balances {
		rows = append(rows, labeledBalance{
			BalanceRow: row,
			ShortLabel: period.Label(row.Period, period.Short),
			LongLabel:  period.Label(row.Period, period.Long),
		})
	}
	writeJSON(w, http.StatusOK, balancesResponse{
		ValveID:  report.ValveID,
		KPIs:     report.KPIs,
		Balances: rows,
	})
}
