package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"gasbalance-cloud/internal/analytics/application"
	analytics "gasbalance-cloud/internal/analytics/domain"
	"gasbalance-cloud/internal/backend"
)

const (
	maxBodyBytes     = 1 << 20
	defaultTopValves = 5
)

// ScatterSource loads paired variable samples.
type ScatterSource interface {
	CorrelationScatter(ctx context.Context, query backend.ScatterQuery) (backend.Scatter, error)
}

// RankingSource loads the valves with the largest losses.
type RankingSource interface {
	TopValves(ctx context.Context, limit int) ([]analytics.ValveStatusRecord, error)
}

type correlationRequest struct {
	Samples     []analytics.Sample2D `json:"samples"`
	Coefficient *float64             `json:"coefficient"`
	N           int                  `json:"n"`
}

type scatterResponse struct {
	VarX               string                `json:"var_x"`
	VarY               string                `json:"var_y"`
	Correlation        analytics.Correlation `json:"correlation"`
	BackendCorrelation float64               `json:"backend_correlation"`
	Total              int                   `json:"total_puntos"`
	Data               []analytics.Sample2D  `json:"data"`
}

type healthRequest struct {
	Valvulas []analytics.ValveStatusRecord `json:"valvulas"`
}

type healthResponse struct {
	Health   analytics.NetworkHealth       `json:"health"`
	Valvulas []application.ClassifiedValve `json:"valvulas"`
	Stale    bool                          `json:"stale,omitempty"`
}

// Handler serves derived metrics.
type Handler struct {
	health  *application.HealthService
	scatter ScatterSource
	ranking RankingSource
	logger  *log.Logger
}

// HandlerOption configures the handler.
type HandlerOption func(*Handler)

// WithScatterSource enables backend-backed correlation queries.
func WithScatterSource(source ScatterSource) HandlerOption {
	return func(h *Handler) {
		h.scatter = source
	}
}

// WithRankingSource enables the top valves query.
func WithRankingSource(source RankingSource) HandlerOption {
	return func(h *Handler) {
		h.ranking = source
	}
}

// NewHandler constructs a handler.
func NewHandler(health *application.HealthService, logger *log.Logger, opts ...HandlerOption) (*Handler, error) {
	if health == nil {
		return nil, errors.New("analytics handler: nil health service")
	}
	if logger == nil {
		logger = log.Default()
	}
	h := &Handler{health: health, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// ServeHTTP handles /api/v1/analytics routes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch strings.TrimSuffix(r.URL.Path, "/") {
	case "/api/v1/analytics/correlation":
		switch r.Method {
		case http.MethodGet:
			h.handleScatter(w, r)
		case http.MethodPost:
			h.handleCorrelation(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case "/api/v1/analytics/health":
		switch r.Method {
		case http.MethodGet:
			h.handleHealth(w, r)
		case http.MethodPost:
			h.handleEvaluate(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case "/api/v1/analytics/valves":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleValves(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleCorrelation(w http.ResponseWriter, r *http.Request) {
	var req correlationRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Coefficient != nil {
		coefficient := *req.Coefficient
		if coefficient < -1 || coefficient > 1 {
			http.Error(w, "coefficient must be within [-1, 1]", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, analytics.Describe(coefficient, req.N))
		return
	}
	writeJSON(w, http.StatusOK, analytics.Correlate(req.Samples))
}

func (h *Handler) handleScatter(w http.ResponseWriter, r *http.Request) {
	if h.scatter == nil {
		http.Error(w, "correlation source not configured", http.StatusServiceUnavailable)
		return
	}
	query := backend.ScatterQuery{
		VarX:    strings.TrimSpace(r.URL.Query().Get("var_x")),
		VarY:    strings.TrimSpace(r.URL.Query().Get("var_y")),
		ValveID: strings.TrimSpace(r.URL.Query().Get("valvula_id")),
	}
	if query.VarX == "" || query.VarY == "" {
		http.Error(w, "var_x and var_y required", http.StatusBadRequest)
		return
	}
	scatter, err := h.scatter.CorrelationScatter(r.Context(), query)
	if err != nil {
		h.respondBackendError(w, "correlation scatter", err)
		return
	}
	data := scatter.Points
	if data == nil {
		data = []analytics.Sample2D{}
	}
	writeJSON(w, http.StatusOK, scatterResponse{
		VarX:               scatter.VarX,
		VarY:               scatter.VarY,
		Correlation:        analytics.Correlate(data),
		BackendCorrelation: scatter.Correlation,
		Total:              len(data),
		Data:               data,
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap, err := h.health.Refresh(r.Context())
	if err != nil {
		cached, ok := h.health.Current()
		if !ok {
			if errors.Is(err, application.ErrNoSource) {
				http.Error(w, "valve source not configured", http.StatusServiceUnavailable)
				return
			}
			h.respondBackendError(w, "valve statuses", err)
			return
		}
		h.logger.Printf("analytics: refresh failed, serving cached health: %v", err)
		writeJSON(w, http.StatusOK, healthResponse{
			Health:   cached.Health,
			Valvulas: h.health.Classify(cached.Records),
			Stale:    true,
		})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Health:   snap.Health,
		Valvulas: h.health.Classify(snap.Records),
	})
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req healthRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Health:   h.health.Evaluate(req.Valvulas),
		Valvulas: h.health.Classify(req.Valvulas),
	})
}

func (h *Handler) handleValves(w http.ResponseWriter, r *http.Request) {
	if h.ranking == nil {
		http.Error(w, "valve ranking not configured", http.StatusServiceUnavailable)
		return
	}
	limit := defaultTopValves
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > backend.MaxTopValves {
			http.Error(w, "limit must be between 1 and 20", http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	records, err := h.ranking.TopValves(r.Context(), limit)
	if err != nil {
		h.respondBackendError(w, "top valves", err)
		return
	}
	writeJSON(w, http.StatusOK, h.health.Classify(records))
}

func (h *Handler) respondBackendError(w http.ResponseWriter, what string, err error) {
	if errors.Is(err, backend.ErrNotFound) {
		http.Error(w, what+" not found", http.StatusNotFound)
		return
	}
	h.logger.Printf("analytics: %s: %v", what, err)
	http.Error(w, "backend unavailable", http.StatusBadGateway)
}

func decodeBody(r *http.Request, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
