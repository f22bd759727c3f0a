package auth

// Icon identifies a navigation icon. The set is closed; the rendering layer
// maps each value to its glyph.
type Icon string

const (
	IconUpload          Icon = "Upload"
	IconLayoutDashboard Icon = "LayoutDashboard"
	IconBrain           Icon = "Brain"
	IconNetwork         Icon = "Network"
	IconScale           Icon = "Scale"
	IconAlertTriangle   Icon = "AlertTriangle"
)

// Valid reports whether the icon belongs to the known set.
func (i Icon) Valid() bool {
	switch i {
	case IconUpload, IconLayoutDashboard, IconBrain, IconNetwork, IconScale, IconAlertTriangle:
		return true
	default:
		return false
	}
}

// NavItem is one entry of a navigation menu.
type NavItem struct {
	Path  string `json:"path"`
	Label string `json:"label"`
	Icon  Icon   `json:"icon"`
}

var (
	navAdminData    = NavItem{Path: "/admin", Label: "Gestión de Datos", Icon: IconUpload}
	navDashboard    = NavItem{Path: "/", Label: "Dashboard", Icon: IconLayoutDashboard}
	navModels       = NavItem{Path: "/modelos", Label: "Modelos", Icon: IconBrain}
	navCorrelations = NavItem{Path: "/correlaciones", Label: "Correlaciones", Icon: IconNetwork}
	navBalances     = NavItem{Path: "/balances", Label: "Balances", Icon: IconScale}
	navAlerts       = NavItem{Path: "/alertas", Label: "Alertas", Icon: IconAlertTriangle}
)

var navigationMenus = map[Role][]NavItem{
	RoleAdmin:         {navAdminData, navDashboard, navModels, navCorrelations, navBalances, navAlerts},
	RoleDecisionMaker: {navDashboard, navModels, navCorrelations, navBalances, navAlerts},
	RoleOperator:      {navAlerts, navBalances},
}

// NavigationFor returns the ordered menu of a role. Unrecognized roles get the
// operator menu. The returned slice is a copy.
func NavigationFor(role Role) []NavItem {
	menu, ok := navigationMenus[role]
	if !ok {
		menu = navigationMenus[RoleOperator]
	}
	out := make([]NavItem, len(menu))
	copy(out, menu)
	return out
}

// CanNavigate reports whether path is in the role's menu.
func CanNavigate(role Role, path string) bool {
	for _, item := range NavigationFor(role) {
		if item.Path == path {
			return true
		}
	}
	return false
}
