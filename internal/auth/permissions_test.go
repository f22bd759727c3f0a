package auth

import "testing"

func TestPermissionsFor(t *testing.T) {
	if PermissionsFor(RoleOperator).CanAccessDashboard {
		t.Fatalf("operativo must not access the dashboard")
	}
	if !PermissionsFor(RoleAdmin).CanUploadFiles {
		t.Fatalf("admin must upload files")
	}
	if PermissionsFor(RoleAdmin).CanManageAlerts {
		t.Fatalf("admin does not manage alerts")
	}
	if !PermissionsFor(RoleOperator).CanManageAlerts {
		t.Fatalf("operativo manages alerts")
	}
	if got := PermissionsFor("unknown-role"); got != PermissionsFor(RoleOperator) {
		t.Fatalf("unknown role should fall back to operator set, got %+v", got)
	}
}

func TestPermissionSetHas(t *testing.T) {
	set := PermissionsFor(RoleDecisionMaker)
	granted := map[Permission]bool{
		PermAccessDashboard:  true,
		PermViewModels:       true,
		PermViewCorrelations: true,
		PermViewAlerts:       true,
		PermViewBalances:     true,
		PermExportReports:    true,
	}
	for _, perm := range Permissions() {
		if set.Has(perm) != granted[perm] {
			t.Fatalf("permission %s: expected %v", perm, granted[perm])
		}
	}
	if set.Has("delete-everything") {
		t.Fatalf("unknown permission must be denied")
	}
	if len(set.Granted()) != len(granted) {
		t.Fatalf("expected %d granted permissions, got %v", len(granted), set.Granted())
	}
}

func TestNormalize(t *testing.T) {
	if _, ok := NormalizeRole("tomador_decisiones"); !ok {
		t.Fatalf("expected decision maker to be valid")
	}
	if _, ok := NormalizeRole("Admin"); ok {
		t.Fatalf("role names are case sensitive")
	}
	if _, ok := NormalizePermission("manage-alerts"); !ok {
		t.Fatalf("expected manage-alerts to be valid")
	}
	if _, ok := NormalizePermission("manage-users"); ok {
		t.Fatalf("manage-users is not a permission")
	}
	if RoleOperator.Label() != "Usuario Operativo" {
		t.Fatalf("unexpected label %s", RoleOperator.Label())
	}
}

func TestNavigationFor(t *testing.T) {
	admin := NavigationFor(RoleAdmin)
	if len(admin) != 6 || admin[0].Path != "/admin" || admin[0].Icon != IconUpload {
		t.Fatalf("unexpected admin menu: %+v", admin)
	}
	operator := NavigationFor(RoleOperator)
	if len(operator) != 2 || operator[0].Path != "/alertas" || operator[1].Path != "/balances" {
		t.Fatalf("unexpected operator menu: %+v", operator)
	}
	fallback := NavigationFor("ghost")
	if len(fallback) != len(operator) {
		t.Fatalf("unknown role should get operator menu")
	}
	for _, role := range Roles() {
		for _, item := range NavigationFor(role) {
			if !item.Icon.Valid() {
				t.Fatalf("role %s has unknown icon %s", role, item.Icon)
			}
		}
	}

	admin[0].Path = "/mutated"
	if NavigationFor(RoleAdmin)[0].Path != "/admin" {
		t.Fatalf("menus must not be mutable through returned slices")
	}
	if CanNavigate(RoleOperator, "/") {
		t.Fatalf("operator cannot open the dashboard")
	}
}
