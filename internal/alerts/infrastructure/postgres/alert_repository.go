package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	alerts "gasbalance-cloud/internal/alerts/domain"
)

// Schema creates the alerts table when missing.
const Schema = `
CREATE TABLE IF NOT EXISTS alerts (
	id          BIGINT PRIMARY KEY,
	occurred_at TIMESTAMP NOT NULL,
	valve       TEXT NOT NULL,
	location    TEXT NOT NULL DEFAULT '',
	alert_type  TEXT NOT NULL,
	severity    TEXT NOT NULL,
	state       TEXT NOT NULL DEFAULT 'pendiente',
	description TEXT NOT NULL DEFAULT '',
	metrics     JSONB,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// AlertRepository is a Postgres repository for alerts.
type AlertRepository struct {
	db *sql.DB
}

// NewAlertRepository constructs a repository.
func NewAlertRepository(db *sql.DB) (*AlertRepository, error) {
	if db == nil {
		return nil, errors.New("alert repo: nil db")
	}
	return &AlertRepository{db: db}, nil
}

// EnsureSchema creates the alerts table.
func (r *AlertRepository) EnsureSchema(ctx context.Context) error {
	if r == nil || r.db == nil {
		return errors.New("alert repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, Schema)
	return err
}

// Insert stores an alert, replacing any row with the same id.
func (r *AlertRepository) Insert(ctx context.Context, alert alerts.Alert) error {
	if r == nil || r.db == nil {
		return errors.New("alert repo: nil db")
	}
	occurredAt := alert.Timestamp()
	if occurredAt.IsZero() {
		return errors.New("alert repo: invalid fecha")
	}
	var metrics []byte
	if len(alert.Metrics) > 0 {
		data, err := json.Marshal(alert.Metrics)
		if err != nil {
			return err
		}
		metrics = data
	}
	state := alert.State
	if state == "" {
		state = alerts.StatePending
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO alerts (
	id, occurred_at, valve, location, alert_type, severity, state, description, metrics, updated_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
)
ON CONFLICT (id) DO UPDATE SET
	occurred_at = EXCLUDED.occurred_at,
	valve = EXCLUDED.valve,
	location = EXCLUDED.location,
	alert_type = EXCLUDED.alert_type,
	severity = EXCLUDED.severity,
	state = EXCLUDED.state,
	description = EXCLUDED.description,
	metrics = EXCLUDED.metrics,
	updated_at = EXCLUDED.updated_at`,
		alert.ID, occurredAt, alert.Valve, alert.Location, string(alert.Type), string(alert.Severity),
		string(state), alert.Description, metrics, time.Now().UTC())
	return err
}

// List returns alerts newest first.
func (r *AlertRepository) List(ctx context.Context) ([]alerts.Alert, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("alert repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, occurred_at, valve, location, alert_type, severity, state, description, metrics
FROM alerts
ORDER BY occurred_at DESC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []alerts.Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, alert)
	}
	return out, rows.Err()
}

// Get loads one alert.
func (r *AlertRepository) Get(ctx context.Context, id int64) (*alerts.Alert, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("alert repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, occurred_at, valve, location, alert_type, severity, state, description, metrics
FROM alerts
WHERE id = $1`, id)
	alert, err := scanAlert(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, alerts.ErrNotFound
		}
		return nil, err
	}
	return &alert, nil
}

// UpdateState moves the alert only if it is still in from.
func (r *AlertRepository) UpdateState(ctx context.Context, id int64, from, to alerts.State) error {
	if r == nil || r.db == nil {
		return errors.New("alert repo: nil db")
	}
	if !alerts.CanTransition(from, to) {
		return alerts.ErrInvalidTransition
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE alerts
SET state = $3, updated_at = $4
WHERE id = $1 AND state = $2`, id, string(from), string(to), time.Now().UTC())
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 1 {
		return nil
	}
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM alerts WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return alerts.ErrNotFound
	}
	return alerts.ErrInvalidTransition
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAlert(row scanner) (alerts.Alert, error) {
	var (
		alert      alerts.Alert
		occurredAt time.Time
		alertType  string
		severity   string
		state      string
		metrics    []byte
	)
	if err := row.Scan(
		&alert.ID,
		&occurredAt,
		&alert.Valve,
		&alert.Location,
		&alertType,
		&severity,
		&state,
		&alert.Description,
		&metrics,
	); err != nil {
		return alerts.Alert{}, err
	}
	alert.Date = occurredAt.Format(alerts.DateLayout)
	alert.Type = alerts.Type(alertType)
	alert.Severity = alerts.Severity(severity)
	alert.State = alerts.State(state)
	if len(metrics) > 0 {
		if err := json.Unmarshal(metrics, &alert.Metrics); err != nil {
			return alerts.Alert{}, err
		}
	}
	return alert, nil
}
