package apihttp

import (
	"net/http"

	"gasbalance-cloud/internal/auth"
)

type roleView struct {
	Role  auth.Role `json:"role"`
	Label string    `json:"label"`
}

type permissionsResponse struct {
	Role        auth.Role          `json:"role"`
	Label       string             `json:"label"`
	Permissions auth.PermissionSet `json:"permissions"`
	Granted     []auth.Permission  `json:"granted"`
}

type navigationResponse struct {
	Role  auth.Role      `json:"role"`
	Items []auth.NavItem `json:"items"`
}

type navigationCheckResponse struct {
	Path    string `json:"path"`
	Allowed bool   `json:"allowed"`
}

// AccessHandler serves the role catalogue and the caller's permissions and
// navigation menu.
type AccessHandler struct{}

// NewAccessHandler constructs an AccessHandler.
func NewAccessHandler() *AccessHandler {
	return &AccessHandler{}
}

// ServeHTTP handles /api/v1/roles, /api/v1/permissions and /api/v1/navigation.
func (h *AccessHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch r.URL.Path {
	case "/api/v1/roles":
		roles := auth.Roles()
		out := make([]roleView, 0, len(roles))
		for _, role := range roles {
			out = append(out, roleView{Role: role, Label: role.Label()})
		}
		writeJSON(w, http.StatusOK, out)
	case "/api/v1/permissions":
		role := callerRole(r)
		perms := auth.PermissionsFor(role)
		writeJSON(w, http.StatusOK, permissionsResponse{
			Role:        role,
			Label:       perms.Label,
			Permissions: perms,
			Granted:     perms.Granted(),
		})
	case "/api/v1/navigation":
		role := callerRole(r)
		if path := r.URL.Query().Get("path"); path != "" {
			writeJSON(w, http.StatusOK, navigationCheckResponse{Path: path, Allowed: auth.CanNavigate(role, path)})
			return
		}
		writeJSON(w, http.StatusOK, navigationResponse{Role: role, Items: auth.NavigationFor(role)})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// callerRole is the authenticated role. Requests that reach the handler
// without a session are treated as an unrecognized role, which resolves to
// the most restrictive set.
func callerRole(r *http.Request) auth.Role {
	return auth.RoleFromContext(r.Context())
}
