package rbac

// Role classifies a logged-in employee's permission level. The set is closed:
// the backend only ever issues one of these status tags.
type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser1 Role = "User1"
	RoleUser2 Role = "User2"
)

// ParseRole maps a raw status string onto a known role. The zero Role is
// returned for anything outside the closed set; every check treats it as
// "no access".
func ParseRole(status string) Role {
	switch Role(status) {
	case RoleAdmin, RoleUser1, RoleUser2:
		return Role(status)
	default:
		return ""
	}
}

// Capability bundles everything a role may reach: the full-page route paths
// and the sub-menu keys visible inside the management screen. Keeping both
// in one structure means a role cannot end up registered in one table but
// missing from the other.
type Capability struct {
	Routes   map[string]struct{}
	Submenus map[string]struct{}
}

func paths(items ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

// Canonical route paths used as capability keys. Matching is exact and
// case-sensitive; handlers guard themselves with the same constants.
const (
	PathDashboard    = "/dashboard"
	PathProducts     = "/products"
	PathSuppliers    = "/suppliers"
	PathZones        = "/zones"
	PathCustomers    = "/customers"
	PathSales        = "/sales"
	PathOrders       = "/orders"
	PathImports      = "/imports"
	PathExports      = "/exports"
	PathExportDetail = "/export-detail"
	PathEmployees    = "/employees"
	PathReports      = "/reports"
)

// Sub-menu keys inside the management screen.
const (
	SubmenuProducts   = "products"
	SubmenuBrands     = "brands"
	SubmenuCategories = "categories"
	SubmenuZones      = "zones"
	SubmenuSuppliers  = "suppliers"
	SubmenuEmployees  = "employees"
)

// capabilities is the static role table, compiled in. No runtime mutation.
var capabilities = map[Role]Capability{
	RoleAdmin: {
		Routes: paths(
			PathDashboard, PathProducts, PathSuppliers, PathZones,
			PathCustomers, PathSales, PathOrders, PathImports,
			PathExports, PathExportDetail, PathEmployees, PathReports,
		),
		Submenus: paths(
			SubmenuProducts, SubmenuBrands, SubmenuCategories,
			SubmenuZones, SubmenuSuppliers, SubmenuEmployees,
		),
	},
	RoleUser1: {
		Routes: paths(
			PathDashboard, PathProducts, PathCustomers, PathSales,
		),
		Submenus: paths(
			SubmenuProducts, SubmenuBrands, SubmenuCategories,
		),
	},
	RoleUser2: {
		Routes: paths(
			PathDashboard, PathOrders, PathImports, PathExports,
			PathExportDetail, PathZones, PathReports,
		),
		Submenus: paths(
			SubmenuZones,
		),
	},
}
