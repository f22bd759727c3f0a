package auth

// Permission names a gated dashboard capability.
type Permission string

const (
	PermUploadFiles      Permission = "upload-files"
	PermTriggerRetrain   Permission = "trigger-retrain"
	PermViewLogs         Permission = "view-logs"
	PermAccessDashboard  Permission = "access-dashboard"
	PermViewModels       Permission = "view-models"
	PermViewCorrelations Permission = "view-correlations"
	PermViewAlerts       Permission = "view-alerts"
	PermViewBalances     Permission = "view-balances"
	PermExportReports    Permission = "export-reports"
	PermManageAlerts     Permission = "manage-alerts"
)

// Permissions lists the closed set of permission names.
func Permissions() []Permission {
	return []Permission{
		PermUploadFiles,
		PermTriggerRetrain,
		PermViewLogs,
		PermAccessDashboard,
		PermViewModels,
		PermViewCorrelations,
		PermViewAlerts,
		PermViewBalances,
		PermExportReports,
		PermManageAlerts,
	}
}

// NormalizePermission validates a permission name.
func NormalizePermission(value string) (Permission, bool) {
	p := Permission(value)
	for _, known := range Permissions() {
		if p == known {
			return p, true
		}
	}
	return "", false
}

// PermissionSet is the capability matrix row of one role.
type PermissionSet struct {
	Label               string `json:"label"`
	CanUploadFiles      bool   `json:"canUploadFiles"`
	CanTriggerRetrain   bool   `json:"canTriggerRetrain"`
	CanViewLogs         bool   `json:"canViewLogs"`
	CanAccessDashboard  bool   `json:"canAccessDashboard"`
	CanViewModels       bool   `json:"canViewModels"`
	CanViewCorrelations bool   `json:"canViewCorrelations"`
	CanViewAlerts       bool   `json:"canViewAlerts"`
	CanViewBalances     bool   `json:"canViewBalances"`
	CanExportReports    bool   `json:"canExportReports"`
	CanManageAlerts     bool   `json:"canManageAlerts"`
}

// Has reports whether the permission is granted. Unknown names are denied.
func (p PermissionSet) Has(permission Permission) bool {
	switch permission {
	case PermUploadFiles:
		return p.CanUploadFiles
	case PermTriggerRetrain:
		return p.CanTriggerRetrain
	case PermViewLogs:
		return p.CanViewLogs
	case PermAccessDashboard:
		return p.CanAccessDashboard
	case PermViewModels:
		return p.CanViewModels
	case PermViewCorrelations:
		return p.CanViewCorrelations
	case PermViewAlerts:
		return p.CanViewAlerts
	case PermViewBalances:
		return p.CanViewBalances
	case PermExportReports:
		return p.CanExportReports
	case PermManageAlerts:
		return p.CanManageAlerts
	default:
		return false
	}
}

// Granted returns the granted permission names in canonical order.
func (p PermissionSet) Granted() []Permission {
	out := make([]Permission, 0, len(Permissions()))
	for _, perm := range Permissions() {
		if p.Has(perm) {
			out = append(out, perm)
		}
	}
	return out
}

var permissionMatrix = map[Role]PermissionSet{
	RoleAdmin: {
		Label:               "Administrador",
		CanUploadFiles:      true,
		CanTriggerRetrain:   true,
		CanViewLogs:         true,
		CanAccessDashboard:  true,
		CanViewModels:       true,
		CanViewCorrelations: true,
		CanViewAlerts:       true,
		CanViewBalances:     true,
		CanExportReports:    true,
		CanManageAlerts:     false,
	},
	RoleDecisionMaker: {
		Label:               "Tomador de Decisiones",
		CanAccessDashboard:  true,
		CanViewModels:       true,
		CanViewCorrelations: true,
		CanViewAlerts:       true,
		CanViewBalances:     true,
		CanExportReports:    true,
	},
	RoleOperator: {
		Label:           "Usuario Operativo",
		CanViewAlerts:   true,
		CanViewBalances: true,
		CanManageAlerts: true,
	},
}

// PermissionsFor returns the permission set of a role. Unrecognized roles get
// the operator set, the most restrictive one.
func PermissionsFor(role Role) PermissionSet {
	if set, ok := permissionMatrix[role]; ok {
		return set
	}
	return permissionMatrix[RoleOperator]
}
