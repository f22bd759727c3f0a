package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	alerts "gasbalance-cloud/internal/alerts/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func TestAlertRepository_Postgres(t *testing.T) {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	repo, err := NewAlertRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	_, _ = db.ExecContext(ctx, "DELETE FROM alerts WHERE id IN (9001, 9002)")

	seed := []alerts.Alert{
		{ID: 9001, Date: "2025-08-15 14:30", Valve: "V-402", Type: alerts.TypeImbalance, Severity: alerts.SeverityCritical, State: alerts.StatePending, Metrics: map[string]any{"umbral": 12.0}},
		{ID: 9002, Date: "2025-08-16 08:00", Valve: "V-125", Type: alerts.TypeAnomaly, Severity: alerts.SeverityLow, State: alerts.StateResolved},
	}
	for _, alert := range seed {
		if err := repo.Insert(ctx, alert); err != nil {
			t.Fatalf("insert %d: %v", alert.ID, err)
		}
	}

	got, err := repo.Get(ctx, 9001)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Date != "2025-08-15 14:30" || got.Metrics["umbral"] != 12.0 {
		t.Fatalf("unexpected alert %+v", got)
	}

	if err := repo.UpdateState(ctx, 9001, alerts.StatePending, alerts.StateReviewed); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := repo.UpdateState(ctx, 9001, alerts.StatePending, alerts.StateResolved); !errors.Is(err, alerts.ErrInvalidTransition) {
		t.Fatalf("expected stale transition rejection, got %v", err)
	}
	if err := repo.UpdateState(ctx, 9002, alerts.StateResolved, alerts.StatePending); !errors.Is(err, alerts.ErrInvalidTransition) {
		t.Fatalf("expected terminal rejection, got %v", err)
	}
	if _, err := repo.Get(ctx, 424242); !errors.Is(err, alerts.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	_, _ = db.ExecContext(ctx, "DELETE FROM alerts WHERE id IN (9001, 9002)")
}
