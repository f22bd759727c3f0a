package alerts

import "strings"

// Filter selects alerts. Empty fields and the "todos"/"todas" sentinels
// impose no constraint.
type Filter struct {
	State    string `json:"estado,omitempty"`
	Severity string `json:"severidad,omitempty"`
	Type     string `json:"tipo,omitempty"`
	Valve    string `json:"valvula,omitempty"`
}

func isAll(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "todos", "todas", "all":
		return true
	default:
		return false
	}
}

// IsEmpty reports whether the filter constrains nothing.
func (f Filter) IsEmpty() bool {
	return isAll(f.State) && isAll(f.Severity) && isAll(f.Type) && strings.TrimSpace(f.Valve) == ""
}

// Matches reports whether alert satisfies every specified criterion.
func (f Filter) Matches(alert Alert) bool {
	if !isAll(f.State) {
		want, ok := NormalizeState(f.State)
		if !ok || alert.State != want {
			return false
		}
	}
	if !isAll(f.Severity) {
		want, ok := NormalizeSeverity(f.Severity)
		if !ok || alert.Severity != want {
			return false
		}
	}
	if !isAll(f.Type) {
		want, ok := NormalizeType(f.Type)
		if !ok || alert.Type != want {
			return false
		}
	}
	if needle := strings.TrimSpace(f.Valve); needle != "" {
		if !strings.Contains(strings.ToLower(alert.Valve), strings.ToLower(needle)) {
			return false
		}
	}
	return true
}

// Apply returns the matching alerts in their original order.
func (f Filter) Apply(list []Alert) []Alert {
	out := make([]Alert, 0, len(list))
	for _, alert := range list {
		if f.Matches(alert) {
			out = append(out, alert)
		}
	}
	return out
}
