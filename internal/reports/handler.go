package reports

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	alerts "gasbalance-cloud/internal/alerts/domain"
	"gasbalance-cloud/internal/backend"
	"gasbalance-cloud/internal/observability/metrics"
)

// Export formats.
const (
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AlertLister loads filtered alerts.
type AlertLister interface {
	List(ctx context.Context, filter alerts.Filter) ([]alerts.Alert, error)
}

// BalanceSource loads valve balances.
type BalanceSource interface {
	Balances(ctx context.Context, query backend.BalanceQuery) (backend.BalanceReport, error)
}

// FilterFunc extracts an alert filter from a request.
type FilterFunc func(r *http.Request) alerts.Filter

// Handler serves report exports.
type Handler struct {
	alerts   AlertLister
	balances BalanceSource
	filter   FilterFunc
	logger   *log.Logger
	now      func() time.Time
}

// NewHandler constructs a report handler. balances may be nil, in which case
// balance exports answer 503.
func NewHandler(lister AlertLister, balances BalanceSource, filter FilterFunc, logger *log.Logger) (*Handler, error) {
	if lister == nil {
		return nil, errors.New("reports handler: nil alert lister")
	}
	if filter == nil {
		return nil, errors.New("reports handler: nil filter func")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		alerts:   lister,
		balances: balances,
		filter:   filter,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// ServeHTTP handles /api/v1/reports/alerts and /api/v1/reports/balances/{valve}.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	format, ok := parseFormat(r.URL.Query().Get("format"))
	if !ok {
		http.Error(w, "format must be pdf or xlsx", http.StatusBadRequest)
		return
	}
	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case path == "/api/v1/reports/alerts":
		h.exportAlerts(w, r, format)
	case strings.HasPrefix(path, "/api/v1/reports/balances/"):
		valve := strings.TrimPrefix(path, "/api/v1/reports/balances/")
		if valve == "" || strings.Contains(valve, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.exportBalances(w, r, format, valve)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func parseFormat(value string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", FormatPDF:
		return FormatPDF, true
	case FormatXLSX:
		return FormatXLSX, true
	default:
		return "", false
	}
}

func (h *Handler) exportAlerts(w http.ResponseWriter, r *http.Request, format string) {
	start := time.Now()
	filter := h.filter(r)
	list, err := h.alerts.List(r.Context(), filter)
	if err != nil {
		metrics.ObserveReportExport(format, metrics.ResultError, time.Since(start))
		h.logger.Printf("reports: list alerts: %v", err)
		http.Error(w, "failed to load alerts", http.StatusInternalServerError)
		return
	}
	report := NewAlertReport(filter, list, h.now())
	var data []byte
	if format == FormatXLSX {
		data, err = BuildAlertReportXLSX(report)
	} else {
		data, err = BuildAlertReportPDF(report)
	}
	h.write(w, format, "alertas-"+report.GeneratedAt.Format("20060102"), data, err, start)
}

func (h *Handler) exportBalances(w http.ResponseWriter, r *http.Request, format, valve string) {
	if h.balances == nil {
		http.Error(w, "balance source not configured", http.StatusServiceUnavailable)
		return
	}
	start := time.Now()
	src, err := h.balances.Balances(r.Context(), backend.BalanceQuery{
		ValveID: valve,
		From:    r.URL.Query().Get("periodo_inicio"),
		To:      r.URL.Query().Get("periodo_fin"),
	})
	if err != nil {
		metrics.ObserveReportExport(format, metrics.ResultError, time.Since(start))
		if errors.Is(err, backend.ErrNotFound) {
			http.Error(w, "valve not found", http.StatusNotFound)
			return
		}
		h.logger.Printf("reports: load balances %s: %v", valve, err)
		http.Error(w, "backend unavailable", http.StatusBadGateway)
		return
	}
	report := NewBalanceReport(src, h.now())
	var data []byte
	if format == FormatXLSX {
		data, err = BuildBalanceReportXLSX(report)
	} else {
		data, err = BuildBalanceReportPDF(report)
	}
	h.write(w, format, "balance-"+valve, data, err, start)
}

func (h *Handler) write(w http.ResponseWriter, format, name string, data []byte, err error, start time.Time) {
	if err != nil {
		metrics.ObserveReportExport(format, metrics.ResultError, time.Since(start))
		h.logger.Printf("reports: render %s: %v", format, err)
		http.Error(w, "failed to render report", http.StatusInternalServerError)
		return
	}
	contentType := "application/pdf"
	if format == FormatXLSX {
		contentType = xlsxContentType
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+"."+format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	metrics.ObserveReportExport(format, metrics.ResultSuccess, time.Since(start))
}
