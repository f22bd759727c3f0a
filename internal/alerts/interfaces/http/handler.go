package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	alertapp "gasbalance-cloud/internal/alerts/application"
	alerts "gasbalance-cloud/internal/alerts/domain"
	"gasbalance-cloud/internal/audit"
	"gasbalance-cloud/internal/auth"
)

const maxBodyBytes = 1 << 16

type listResponse struct {
	Alertas []alerts.Alert `json:"alertas"`
	Total   int            `json:"total"`
}

type criticalResponse struct {
	Alertas                 []alerts.Alert `json:"alertas"`
	Total                   int            `json:"total"`
	RequiresImmediateAction bool           `json:"requires_immediate_action"`
}

type valveResponse struct {
	Valvula string         `json:"valvula"`
	Alertas []alerts.Alert `json:"alertas"`
	Total   int            `json:"total"`
}

type updateRequest struct {
	Estado string `json:"estado"`
}

type updateResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Alert   *alerts.Alert `json:"alert"`
}

type filterOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type filterOptionsResponse struct {
	Estados     []filterOption `json:"estados"`
	Severidades []filterOption `json:"severidades"`
	Tipos       []filterOption `json:"tipos"`
}

// Handler provides alert HTTP endpoints.
type Handler struct {
	service     *alertapp.Service
	auditLogger audit.Logger
}

// NewHandler constructs a handler.
func NewHandler(service *alertapp.Service, auditLogger audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("alerts handler: nil service")
	}
	return &Handler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP handles /api/v1/alerts and subroutes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case path == "/api/v1/alerts":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleList(w, r)
	case path == "/api/v1/alerts/stats":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleStats(w, r)
	case path == "/api/v1/alerts/recent":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleRecent(w, r)
	case path == "/api/v1/alerts/critical":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleCritical(w, r)
	case path == "/api/v1/alerts/filters":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, filterOptions())
	case strings.HasPrefix(path, "/api/v1/alerts/valvula/"):
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleValve(w, r, strings.TrimPrefix(path, "/api/v1/alerts/valvula/"))
	case strings.HasPrefix(path, "/api/v1/alerts/"):
		h.handleAlert(w, r, strings.TrimPrefix(path, "/api/v1/alerts/"))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// FilterFromQuery reads estado, severidad, tipo and valvula. The backend's
// legacy nivel parameter is accepted as an alias of severidad.
func FilterFromQuery(r *http.Request) alerts.Filter {
	query := r.URL.Query()
	severity := query.Get("severidad")
	if severity == "" {
		severity = query.Get("nivel")
	}
	return alerts.Filter{
		State:    query.Get("estado"),
		Severity: severity,
		Type:     query.Get("tipo"),
		Valve:    query.Get("valvula"),
	}
}

// filterOptions lists the filter choices in display order, each led by its
// no-constraint sentinel.
func filterOptions() filterOptionsResponse {
	resp := filterOptionsResponse{
		Estados:     []filterOption{{Value: "todos", Label: "Todos los estados"}},
		Severidades: []filterOption{{Value: "todas", Label: "Todas las severidades"}},
		Tipos:       []filterOption{{Value: "todos", Label: "Todos los tipos"}},
	}
	for _, state := range alerts.States() {
		resp.Estados = append(resp.Estados, filterOption{Value: string(state), Label: state.Label()})
	}
	for _, severity := range alerts.Severities() {
		resp.Severidades = append(resp.Severidades, filterOption{Value: string(severity), Label: severity.Label()})
	}
	for _, kind := range alerts.Types() {
		resp.Tipos = append(resp.Tipos, filterOption{Value: string(kind), Label: string(kind)})
	}
	return resp
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), FilterFromQuery(r))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Alertas: nonNil(list), Total: len(list)})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context(), FilterFromQuery(r))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > alertapp.MaxRecentLimit {
			http.Error(w, "limit must be between 1 and 100", http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	list, err := h.service.Recent(r.Context(), limit)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Alertas: nonNil(list), Total: len(list)})
}

func (h *Handler) handleCritical(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Critical(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, criticalResponse{
		Alertas:                 nonNil(list),
		Total:                   len(list),
		RequiresImmediateAction: len(list) > 0,
	})
}

func (h *Handler) handleValve(w http.ResponseWriter, r *http.Request, valve string) {
	if valve == "" || strings.Contains(valve, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	list, err := h.service.ByValve(r.Context(), valve)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, valveResponse{Valvula: valve, Alertas: nonNil(list), Total: len(list)})
}

func (h *Handler) handleAlert(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodGet:
		alert, err := h.service.Get(r.Context(), id)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, alert)
	case http.MethodPatch:
		h.handleUpdate(w, r, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request, id int64) {
	var req updateRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	alert, err := h.service.UpdateState(r.Context(), id, req.Estado)
	if err != nil {
		respondError(w, err)
		return
	}
	h.logAudit(r, alert)
	writeJSON(w, http.StatusOK, updateResponse{
		Success: true,
		Message: "Alerta actualizada a " + alert.State.Label(),
		Alert:   alert,
	})
}

func (h *Handler) logAudit(r *http.Request, alert *alerts.Alert) {
	if h.auditLogger == nil || alert == nil {
		return
	}
	session, _ := auth.SessionFromContext(r.Context())
	meta := map[string]any{"estado": alert.State, "valvula": alert.Valve}
	if subject := auth.SubjectFromContext(r.Context()); subject != "" {
		meta["subject"] = subject
	}
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		SessionID:    session.ID,
		Role:         string(session.Role),
		Action:       audit.ActionAlertTransition,
		ResourceType: "alert",
		ResourceID:   strconv.FormatInt(alert.ID, 10),
		Metadata:     audit.Metadata(meta),
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, alerts.ErrNotFound):
		http.Error(w, "alert not found", http.StatusNotFound)
	case errors.Is(err, auth.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, alerts.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, alerts.ErrInvalidState):
		http.Error(w, err.Error()+": estado must be one of "+stateNames(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func stateNames() string {
	states := alerts.States()
	names := make([]string, 0, len(states))
	for _, state := range states {
		names = append(names, string(state))
	}
	return strings.Join(names, ", ")
}

func nonNil(list []alerts.Alert) []alerts.Alert {
	if list == nil {
		return []alerts.Alert{}
	}
	return list
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
