package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"gasbalance-cloud/internal/analytics/application"
	analytics "gasbalance-cloud/internal/analytics/domain"
	"gasbalance-cloud/internal/backend"
)

type stubValves struct {
	records []analytics.ValveStatusRecord
	err     error
}

func (s *stubValves) ValveStatuses(context.Context) ([]analytics.ValveStatusRecord, error) {
	return s.records, s.err
}

func (s *stubValves) TopValves(_ context.Context, limit int) ([]analytics.ValveStatusRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	if limit < len(s.records) {
		return s.records[:limit], nil
	}
	return s.records, nil
}

type stubScatter struct {
	scatter backend.Scatter
	err     error
	query   backend.ScatterQuery
}

func (s *stubScatter) CorrelationScatter(_ context.Context, query backend.ScatterQuery) (backend.Scatter, error) {
	s.query = query
	return s.scatter, s.err
}

func newTestHandler(t *testing.T, valves *stubValves, opts ...HandlerOption) *Handler {
	t.Helper()
	calc, err := analytics.NewHealthCalculator(analytics.DefaultThresholds(), analytics.DefaultWeights(), analytics.DefaultHealthScore)
	if err != nil {
		t.Fatalf("calculator: %v", err)
	}
	var svcOpts []application.Option
	if valves != nil {
		svcOpts = append(svcOpts, application.WithSource(valves))
	}
	svc, err := application.NewHealthService(calc, backend.NewTracker(), svcOpts...)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	handler, err := NewHandler(svc, log.New(io.Discard, "", 0), opts...)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	return handler
}

func TestCorrelationFromSamples(t *testing.T) {
	handler := newTestHandler(t, nil)
	body := `{"samples":[{"x":1,"y":10},{"x":2,"y":8},{"x":3,"y":6},{"x":4,"y":4}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analytics/correlation", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got analytics.Correlation
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Coefficient > -0.999 || got.Strength != analytics.StrengthStrong || got.Direction != analytics.DirectionNegative {
		t.Fatalf("unexpected correlation: %+v", got)
	}
	if got.SampleCount != 4 {
		t.Fatalf("expected 4 samples, got %d", got.SampleCount)
	}
}

func TestCorrelationOverflowFallsBackToZero(t *testing.T) {
	handler := newTestHandler(t, nil)
	body := `{"samples":[{"x":1e200,"y":1e200},{"x":-1e200,"y":-1e200}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analytics/correlation", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got analytics.Correlation
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	if got.Coefficient != 0 || got.Direction != analytics.DirectionNegative || got.SampleCount != 2 {
		t.Fatalf("unexpected correlation: %+v", got)
	}
}

func TestCorrelationFromCoefficient(t *testing.T) {
	handler := newTestHandler(t, nil)
	cases := []struct {
		body   string
		status int
		want   analytics.Strength
	}{
		{body: `{"coefficient":0.55,"n":30}`, status: http.StatusOK, want: analytics.StrengthModerate},
		{body: `{"coefficient":0,"n":2}`, status: http.StatusOK, want: analytics.StrengthWeak},
		{body: `{"coefficient":1.2}`, status: http.StatusBadRequest},
		{body: `{`, status: http.StatusBadRequest},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/analytics/correlation", bytes.NewBufferString(tc.body))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d", tc.body, tc.status, rec.Code)
		}
		if tc.status != http.StatusOK {
			continue
		}
		var got analytics.Correlation
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Strength != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.body, tc.want, got.Strength)
		}
	}
}

func TestScatterCorrelation(t *testing.T) {
	scatter := &stubScatter{scatter: backend.Scatter{
		VarX: "VOLUMEN_ENTRADA_FINAL",
		VarY: "INDICE_PERDIDAS_FINAL",
		Points: []analytics.Sample2D{
			{X: 1, Y: 2}, {X: 2, Y: 4}, {X: 3, Y: 6},
		},
		Correlation: 0.99,
	}}
	handler := newTestHandler(t, nil, WithScatterSource(scatter))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/correlation?var_x=VOLUMEN_ENTRADA_FINAL&var_y=INDICE_PERDIDAS_FINAL&valvula_id=VALVULA_1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got scatterResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Total != 3 || got.Correlation.Direction != analytics.DirectionPositive || got.BackendCorrelation != 0.99 {
		t.Fatalf("unexpected response: %+v", got)
	}
	if scatter.query.ValveID != "VALVULA_1" {
		t.Fatalf("expected valve filter forwarded, got %+v", scatter.query)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/analytics/correlation?var_x=A", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	scatter.err = backend.ErrNotFound
	req = httptest.NewRequest(http.MethodGet, "/api/v1/analytics/correlation?var_x=A&var_y=B", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHealthFromSourceAndCache(t *testing.T) {
	valves := &stubValves{records: []analytics.ValveStatusRecord{
		{Valve: "V-1", LossIndex: 4},
		{Valve: "V-2", LossIndex: 8},
		{Valve: "V-3", LossIndex: 25},
		{Valve: "V-4", LossIndex: 16},
	}}
	handler := newTestHandler(t, valves)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// (100+100+30+70)/4 = 75
	if got.Health.Score != 75 || got.Health.Band != analytics.BandGood || got.Stale {
		t.Fatalf("unexpected health: %+v", got)
	}
	if got.Valvulas[2].Status != analytics.StatusCritical {
		t.Fatalf("expected V-3 critical, got %+v", got.Valvulas[2])
	}

	valves.err = errors.New("connection refused")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected cached 200, got %d", rec.Code)
	}
	got = healthResponse{}
	_ = json.Unmarshal(rec.Body.Bytes(), &got)
	if !got.Stale || got.Health.Score != 75 {
		t.Fatalf("expected stale cached health, got %+v", got)
	}
}

func TestHealthWithoutSource(t *testing.T) {
	handler := newTestHandler(t, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	body := `{"valvulas":[]}`
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/analytics/health", bytes.NewBufferString(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got healthResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Health.Score != analytics.DefaultHealthScore || !got.Health.UsedFallback {
		t.Fatalf("expected default score for empty population, got %+v", got.Health)
	}
}

func TestTopValves(t *testing.T) {
	valves := &stubValves{records: []analytics.ValveStatusRecord{
		{Valve: "V-9", LossIndex: 31.2},
		{Valve: "V-4", LossIndex: 18},
		{Valve: "V-1", LossIndex: 3},
	}}
	handler := newTestHandler(t, valves, WithRankingSource(valves))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/valves?limit=2", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got []application.ClassifiedValve
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[0].Status != analytics.StatusCritical || got[1].Status != analytics.StatusWarning {
		t.Fatalf("unexpected ranking: %+v", got)
	}

	for _, limit := range []string{"0", "21", "x"} {
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/valves?limit="+limit, nil))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("limit %s: expected 400, got %d", limit, rec.Code)
		}
	}
}
