package auth

import (
	"net/http"
	"strings"
)

// Policy determines the permission a request requires.
type Policy struct {
	ExemptPaths    map[string]struct{}
	ExemptPrefixes []string
}

// NewDefaultPolicy builds a default policy with exemptions.
func NewDefaultPolicy(exemptPaths []string, exemptPrefixes []string) Policy {
	set := make(map[string]struct{}, len(exemptPaths))
	for _, path := range exemptPaths {
		set[path] = struct{}{}
	}
	return Policy{ExemptPaths: set, ExemptPrefixes: exemptPrefixes}
}

// IsExempt returns true when a request should skip auth/RBAC.
func (p Policy) IsExempt(r *http.Request) bool {
	if r == nil {
		return true
	}
	if _, ok := p.ExemptPaths[r.URL.Path]; ok {
		return true
	}
	for _, prefix := range p.ExemptPrefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return true
		}
	}
	return false
}

// RequiredPermission resolves the permission a request needs. protected is
// false for routes outside the API; an empty permission on a protected route
// means any logged-in session may call it.
func (p Policy) RequiredPermission(r *http.Request) (permission Permission, protected bool) {
	if r == nil {
		return "", false
	}
	path := r.URL.Path
	method := r.Method

	switch {
	case path == "/api/v1/alerts" || path == "/api/v1/alerts/stats" ||
		path == "/api/v1/alerts/recent" || path == "/api/v1/alerts/critical" ||
		path == "/api/v1/alerts/stream" || path == "/api/v1/alerts/filters":
		return PermViewAlerts, true
	case strings.HasPrefix(path, "/api/v1/alerts/"):
		if method == http.MethodGet {
			return PermViewAlerts, true
		}
		return PermManageAlerts, true
	case path == "/api/v1/analytics/health" || path == "/api/v1/analytics/valves":
		return PermAccessDashboard, true
	case path == "/api/v1/analytics/correlation":
		return PermViewCorrelations, true
	case strings.HasPrefix(path, "/api/v1/reports/"):
		return PermExportReports, true
	case strings.HasPrefix(path, "/api/v1/balances"):
		return PermViewBalances, true
	}

	if strings.HasPrefix(path, "/api/") {
		return "", true
	}
	return "", false
}
