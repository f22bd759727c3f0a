package auth

// Role represents a dashboard user role.
type Role string

const (
	RoleAdmin         Role = "admin"
	RoleDecisionMaker Role = "tomador_decisiones"
	RoleOperator      Role = "operativo"
)

// DefaultRole is the role of a session that has never logged in.
const DefaultRole = RoleAdmin

// Roles lists every role in display order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleDecisionMaker, RoleOperator}
}

// NormalizeRole validates a role string.
func NormalizeRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleAdmin, RoleDecisionMaker, RoleOperator:
		return Role(value), true
	default:
		return "", false
	}
}

// Label returns the display name of the role.
func (r Role) Label() string {
	return PermissionsFor(r).Label
}
