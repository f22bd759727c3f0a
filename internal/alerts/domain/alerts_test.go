package alerts

import (
	"errors"
	"testing"
)

func sampleAlerts() []Alert {
	return []Alert{
		{ID: 1, Date: "2025-08-15 14:30", Valve: "V-402", Type: TypeImbalance, Severity: SeverityCritical, State: StatePending},
		{ID: 2, Date: "2025-08-14 09:15", Valve: "V-318", Type: TypeAnomaly, Severity: SeverityHigh, State: StateReviewed},
		{ID: 3, Date: "2025-08-14 07:45", Valve: "V-125", Type: TypeImbalance, Severity: SeverityHigh, State: StateResolved},
		{ID: 4, Date: "2025-08-13 16:20", Valve: "V-567", Type: TypeAnomaly, Severity: SeverityMedium, State: StatePending},
		{ID: 5, Date: "2025-08-12 14:15", Valve: "v-318", Type: TypeImbalance, Severity: SeverityCritical, State: StatePending},
		{ID: 6, Date: "2025-08-11 10:45", Valve: "V-089", Type: TypeAnomaly, Severity: SeverityLow, State: StateResolved},
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to State
		want     bool
	}{
		{StatePending, StateReviewed, true},
		{StatePending, StateResolved, true},
		{StateReviewed, StateResolved, true},
		{StateReviewed, StatePending, false},
		{StateResolved, StatePending, false},
		{StateResolved, StateReviewed, false},
		{StatePending, StatePending, false},
		{"archivada", StateResolved, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Fatalf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
	if len(AllowedNext(StateResolved)) != 0 {
		t.Fatalf("resuelta must be terminal")
	}
}

func TestTransitionDoesNotMutate(t *testing.T) {
	alert := Alert{ID: 9, State: StateResolved}
	got, err := Transition(alert, StatePending)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if got.State != StateResolved || alert.State != StateResolved {
		t.Fatalf("rejected transition changed state")
	}

	if _, err := Transition(Alert{State: StatePending}, "cerrada"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}

	next, err := Transition(Alert{ID: 1, State: StatePending}, StateReviewed)
	if err != nil || next.State != StateReviewed {
		t.Fatalf("expected revisada, got %s err=%v", next.State, err)
	}
}

func TestFilter(t *testing.T) {
	list := sampleAlerts()

	if got := (Filter{}).Apply(list); len(got) != len(list) {
		t.Fatalf("empty filter should keep everything, got %d", len(got))
	}
	if got := (Filter{State: "todos", Severity: "todas", Type: "todos"}).Apply(list); len(got) != len(list) {
		t.Fatalf("sentinel filter should keep everything, got %d", len(got))
	}

	critical := (Filter{Severity: "critica"}).Apply(list)
	if len(critical) != 2 {
		t.Fatalf("expected 2 critical alerts, got %d", len(critical))
	}
	for _, alert := range critical {
		if alert.Severity != SeverityCritical {
			t.Fatalf("filter leaked severity %s", alert.Severity)
		}
	}

	byValve := (Filter{Valve: "v-31"}).Apply(list)
	if len(byValve) != 2 || byValve[0].ID != 2 || byValve[1].ID != 5 {
		t.Fatalf("expected case-insensitive valve match in order, got %+v", byValve)
	}

	combined := (Filter{State: "pendiente", Severity: "CRITICO", Type: "Desbalance"}).Apply(list)
	if len(combined) != 2 || combined[0].ID != 1 || combined[1].ID != 5 {
		t.Fatalf("unexpected combined result %+v", combined)
	}

	if got := (Filter{Type: "anomalia"}).Apply(list); len(got) != 3 {
		t.Fatalf("expected accent-free type match, got %d", len(got))
	}
	if got := (Filter{Severity: "extrema"}).Apply(list); len(got) != 0 {
		t.Fatalf("unknown severity should match nothing, got %d", len(got))
	}

	if !(Filter{State: "todos", Severity: " Todas ", Type: "all"}).IsEmpty() {
		t.Fatalf("sentinel filter should be empty")
	}
	if (Filter{Valve: "v-1"}).IsEmpty() || (Filter{State: "pendiente"}).IsEmpty() {
		t.Fatalf("constrained filter reported empty")
	}
}

func TestSeverityRank(t *testing.T) {
	severities := Severities()
	for i := 1; i < len(severities); i++ {
		if severities[i-1].Rank() <= severities[i].Rank() {
			t.Fatalf("%s should outrank %s", severities[i-1], severities[i])
		}
	}
	if Severity("extrema").Rank() >= SeverityLow.Rank() {
		t.Fatalf("unknown severity should rank lowest")
	}
}

func TestAggregate(t *testing.T) {
	list := append(sampleAlerts(), Alert{ID: 7, State: "archivada", Severity: "extrema"})
	stats := Aggregate(list)
	if stats.Total != len(list) {
		t.Fatalf("expected total %d, got %d", len(list), stats.Total)
	}
	if stats.Pendientes != 3 || stats.Revisadas != 1 || stats.Resueltas != 2 {
		t.Fatalf("unexpected state counts %+v", stats)
	}
	if stats.Criticas != 2 || stats.Altas != 2 || stats.Medias != 1 || stats.Bajas != 1 {
		t.Fatalf("unexpected severity counts %+v", stats)
	}
	if stats.Open() != 4 {
		t.Fatalf("expected 4 open alerts, got %d", stats.Open())
	}

	known := Aggregate(sampleAlerts())
	if known.Pendientes+known.Revisadas+known.Resueltas != known.Total {
		t.Fatalf("state partition must cover every alert: %+v", known)
	}
	if empty := Aggregate(nil); empty != (Stats{}) {
		t.Fatalf("expected zero stats, got %+v", empty)
	}
}

func TestLabelsAndNormalize(t *testing.T) {
	if SeverityCritical.Label() != "Crítica" || StateReviewed.Label() != "Revisada" {
		t.Fatalf("unexpected labels")
	}
	if Severity("extrema").Label() != "extrema" {
		t.Fatalf("unknown severity should render as itself")
	}
	if s, ok := NormalizeSeverity("ALTO"); !ok || s != SeverityHigh {
		t.Fatalf("expected backend level to normalize, got %s", s)
	}
	if _, ok := NormalizeState("cerrada"); ok {
		t.Fatalf("cerrada is not a state")
	}
	if ts := (Alert{Date: "2025-08-15 14:30"}).Timestamp(); ts.Hour() != 14 || ts.Minute() != 30 {
		t.Fatalf("unexpected timestamp %s", ts)
	}
	if !(Alert{Date: "ayer"}).Timestamp().IsZero() {
		t.Fatalf("malformed date should give zero time")
	}
}
