package alerts

import (
	"strings"
	"time"
)

// DateLayout is the layout of Alert.Date.
const DateLayout = "2006-01-02 15:04"

// Type classifies how an alert was detected.
type Type string

const (
	TypeImbalance Type = "Desbalance"
	TypeAnomaly   Type = "Anomalía"
)

// Severity ranks an alert.
type Severity string

const (
	SeverityCritical Severity = "critica"
	SeverityHigh     Severity = "alta"
	SeverityMedium   Severity = "media"
	SeverityLow      Severity = "baja"
)

// State is the review state of an alert.
type State string

const (
	StatePending  State = "pendiente"
	StateReviewed State = "revisada"
	StateResolved State = "resuelta"
)

// Alert is an anomaly or imbalance raised for a valve. It is created by the
// backend; the only local mutation is a guarded state transition.
type Alert struct {
	ID          int64          `json:"id"`
	Date        string         `json:"fecha"`
	Valve       string         `json:"valvula"`
	Location    string         `json:"ubicacion,omitempty"`
	Type        Type           `json:"tipo"`
	Severity    Severity       `json:"severidad"`
	State       State          `json:"estado"`
	Description string         `json:"descripcion"`
	Metrics     map[string]any `json:"metricas,omitempty"`
}

// Timestamp parses Date. The zero time is returned when Date is malformed.
func (a Alert) Timestamp() time.Time {
	parsed, err := time.Parse(DateLayout, strings.TrimSpace(a.Date))
	if err != nil {
		return time.Time{}
	}
	return parsed
}

// Severities lists severities from most to least severe.
func Severities() []Severity {
	return []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}
}

// States lists states in lifecycle order.
func States() []State {
	return []State{StatePending, StateReviewed, StateResolved}
}

// Types lists the alert types.
func Types() []Type {
	return []Type{TypeImbalance, TypeAnomaly}
}

// NormalizeSeverity accepts the dashboard names as well as the backend's
// upper-case levels (CRITICO, ALTO, MEDIO, BAJO).
func NormalizeSeverity(value string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "critica", "crítica", "critico", "crítico", "critical":
		return SeverityCritical, true
	case "alta", "alto", "high":
		return SeverityHigh, true
	case "media", "medio", "medium":
		return SeverityMedium, true
	case "baja", "bajo", "low":
		return SeverityLow, true
	default:
		return "", false
	}
}

// NormalizeState validates a state name.
func NormalizeState(value string) (State, bool) {
	switch State(strings.ToLower(strings.TrimSpace(value))) {
	case StatePending:
		return StatePending, true
	case StateReviewed:
		return StateReviewed, true
	case StateResolved:
		return StateResolved, true
	default:
		return "", false
	}
}

// NormalizeType validates an alert type. The accent is optional.
func NormalizeType(value string) (Type, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "desbalance":
		return TypeImbalance, true
	case "anomalía", "anomalia":
		return TypeAnomaly, true
	default:
		return "", false
	}
}

// Label returns the display label. Unknown values render as themselves.
func (s Severity) Label() string {
	switch s {
	case SeverityCritical:
		return "Crítica"
	case SeverityHigh:
		return "Alta"
	case SeverityMedium:
		return "Media"
	case SeverityLow:
		return "Baja"
	default:
		return string(s)
	}
}

// Rank orders severities; unknown values rank lowest.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Label returns the display label. Unknown values render as themselves.
func (s State) Label() string {
	switch s {
	case StatePending:
		return "Pendiente"
	case StateReviewed:
		return "Revisada"
	case StateResolved:
		return "Resuelta"
	default:
		return string(s)
	}
}
