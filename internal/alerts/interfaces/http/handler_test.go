package http

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	alertapp "gasbalance-cloud/internal/alerts/application"
	alerts "gasbalance-cloud/internal/alerts/domain"
	"gasbalance-cloud/internal/alerts/infrastructure/memory"
	"gasbalance-cloud/internal/audit"
	"gasbalance-cloud/internal/auth"
)

type recordingAudit struct {
	entries []audit.Entry
}

func (r *recordingAudit) Log(_ context.Context, entry audit.Entry) error {
	r.entries = append(r.entries, entry)
	return nil
}

func newTestHandler(t *testing.T, broker *SSEBroker) (*Handler, *recordingAudit) {
	t.Helper()
	repo := memory.NewAlertRepository(memory.DefaultAlerts())
	opts := []alertapp.ServiceOption{}
	if broker != nil {
		opts = append(opts, alertapp.WithNotifier(broker))
	}
	service, err := alertapp.NewService(repo, opts...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	recorder := &recordingAudit{}
	handler, err := NewHandler(service, recorder)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return handler, recorder
}

func withRole(req *http.Request, role auth.Role) *http.Request {
	ctx := auth.WithSession(req.Context(), auth.NewSession("sess-"+string(role), role, time.Time{}), "")
	return req.WithContext(ctx)
}

func TestListWithFilters(t *testing.T) {
	handler, _ := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts?estado=pendiente&severidad=todas&valvula=v-4", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body listResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Total != 1 || body.Alertas[0].ID != 1 {
		t.Fatalf("unexpected list %+v", body)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/alerts?nivel=CRITICO", nil)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	body = listResponse{}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if body.Total != 2 {
		t.Fatalf("expected nivel alias to filter critical alerts, got %d", body.Total)
	}
}

func TestStatsAndShortcuts(t *testing.T) {
	handler, _ := newTestHandler(t, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/alerts/stats", nil))
	var stats alerts.Stats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Total != 8 || stats.Pendientes != 3 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/alerts/recent?limit=2", nil))
	var recent listResponse
	_ = json.NewDecoder(resp.Body).Decode(&recent)
	if recent.Total != 2 {
		t.Fatalf("expected 2 recent alerts, got %d", recent.Total)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/alerts/recent?limit=500", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out of range limit, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/alerts/critical", nil))
	var critical criticalResponse
	_ = json.NewDecoder(resp.Body).Decode(&critical)
	if critical.Total != 2 || !critical.RequiresImmediateAction {
		t.Fatalf("unexpected critical response %+v", critical)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/alerts/valvula/V-125", nil))
	var valve valveResponse
	_ = json.NewDecoder(resp.Body).Decode(&valve)
	if valve.Valvula != "V-125" || valve.Total != 2 {
		t.Fatalf("unexpected valve response %+v", valve)
	}
}

func TestPatchTransition(t *testing.T) {
	handler, recorder := newTestHandler(t, nil)

	req := withRole(httptest.NewRequest(http.MethodPatch, "/api/v1/alerts/4", strings.NewReader(`{"estado":"resuelta"}`)), auth.RoleOperator)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var body updateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Alert.State != alerts.StateResolved || body.Message != "Alerta actualizada a Resuelta" {
		t.Fatalf("unexpected body %+v", body)
	}
	if len(recorder.entries) != 1 || recorder.entries[0].Action != audit.ActionAlertTransition || recorder.entries[0].ResourceID != "4" {
		t.Fatalf("expected one audit entry, got %+v", recorder.entries)
	}

	cases := []struct {
		name   string
		role   auth.Role
		path   string
		body   string
		status int
	}{
		{"terminal", auth.RoleOperator, "/api/v1/alerts/4", `{"estado":"pendiente"}`, http.StatusConflict},
		{"unknown state", auth.RoleOperator, "/api/v1/alerts/1", `{"estado":"archivada"}`, http.StatusBadRequest},
		{"bad json", auth.RoleOperator, "/api/v1/alerts/1", `{`, http.StatusBadRequest},
		{"missing", auth.RoleOperator, "/api/v1/alerts/404", `{"estado":"revisada"}`, http.StatusNotFound},
		{"admin", auth.RoleAdmin, "/api/v1/alerts/1", `{"estado":"revisada"}`, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := withRole(httptest.NewRequest(http.MethodPatch, tc.path, strings.NewReader(tc.body)), tc.role)
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, req)
			if resp.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, resp.Code)
			}
		})
	}
	if len(recorder.entries) != 1 {
		t.Fatalf("rejected requests must not be audited, got %d entries", len(recorder.entries))
	}
}

func TestStreamReceivesTransition(t *testing.T) {
	broker := NewSSEBroker()
	handler, _ := newTestHandler(t, broker)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/alerts/stream", NewStreamHandler(broker))
	server := httptest.NewServer(mux)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/v1/alerts/stream")
	if err != nil {
		t.Fatalf("connect stream: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %s", ct)
	}

	reader := bufio.NewReader(resp.Body)
	readEvent := func() (string, string) {
		var event, data string
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("read stream: %v", err)
			}
			line = strings.TrimRight(line, "\n")
			switch {
			case line == "":
				return event, data
			case strings.HasPrefix(line, "event: "):
				event = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			}
		}
	}
	if event, _ := readEvent(); event != "ready" {
		t.Fatalf("expected ready event, got %s", event)
	}
	if n := broker.Clients(); n != 1 {
		t.Fatalf("expected 1 subscriber, got %d", n)
	}

	req := withRole(httptest.NewRequest(http.MethodPatch, "/api/v1/alerts/1", strings.NewReader(`{"estado":"revisada"}`)), auth.RoleOperator)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	event, data := readEvent()
	if event != "alert" {
		t.Fatalf("expected alert event, got %s", event)
	}
	var payload alertapp.AlertEvent
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if payload.Alert.ID != 1 || payload.Alert.State != alerts.StateReviewed || payload.From != alerts.StatePending {
		t.Fatalf("unexpected event %+v", payload)
	}
}

func TestBrokerClientsTracksSubscriptions(t *testing.T) {
	broker := NewSSEBroker()
	first := broker.Subscribe()
	second := broker.Subscribe()
	if n := broker.Clients(); n != 2 {
		t.Fatalf("expected 2 subscribers, got %d", n)
	}
	broker.Unsubscribe(first)
	broker.Unsubscribe(first)
	if n := broker.Clients(); n != 1 {
		t.Fatalf("expected 1 subscriber, got %d", n)
	}
	broker.Unsubscribe(second)
	if _, ok := <-second; ok {
		t.Fatalf("expected closed channel")
	}
	if n := broker.Clients(); n != 0 {
		t.Fatalf("expected no subscribers, got %d", n)
	}
}

func TestFilterOptions(t *testing.T) {
	handler, _ := newTestHandler(t, nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/alerts/filters", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body filterOptionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Estados) != 4 || body.Estados[0].Value != "todos" || body.Estados[1] != (filterOption{Value: "pendiente", Label: "Pendiente"}) {
		t.Fatalf("unexpected estados %+v", body.Estados)
	}
	if len(body.Severidades) != 5 || body.Severidades[0].Value != "todas" || body.Severidades[1] != (filterOption{Value: "critica", Label: "Crítica"}) {
		t.Fatalf("unexpected severidades %+v", body.Severidades)
	}
	if len(body.Tipos) != 3 || body.Tipos[2].Value != "Anomalía" {
		t.Fatalf("unexpected tipos %+v", body.Tipos)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/alerts/filters", nil))
	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.Code)
	}
}

func TestInvalidStateListsLifecycle(t *testing.T) {
	handler, _ := newTestHandler(t, nil)
	req := withRole(httptest.NewRequest(http.MethodPatch, "/api/v1/alerts/1", strings.NewReader(`{"estado":"archivada"}`)), auth.RoleOperator)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "pendiente, revisada, resuelta") {
		t.Fatalf("expected valid states in message, got %q", resp.Body.String())
	}
}

func TestTransitionAuditCarriesSubject(t *testing.T) {
	handler, recorder := newTestHandler(t, nil)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/alerts/1", strings.NewReader(`{"estado":"revisada"}`))
	session := auth.NewSession("sess-7", auth.RoleOperator, time.Time{})
	req = req.WithContext(auth.WithSession(req.Context(), session, "operador-7"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if len(recorder.entries) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(recorder.entries))
	}
	var meta map[string]any
	if err := json.Unmarshal(recorder.entries[0].Metadata, &meta); err != nil {
		t.Fatalf("decode metadata: %v", err)
	}
	if meta["subject"] != "operador-7" || meta["estado"] != "revisada" {
		t.Fatalf("unexpected metadata %v", meta)
	}
}
