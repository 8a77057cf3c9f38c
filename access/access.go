// Package access maps back-office roles to the modules they may use.
//
// Capabilities are a closed set of boolean flags, one per module. A role's
// capabilities come from a fixed table; there is no free-form permission map.
package access

import "fmt"

// Role is the job a user holds in the restaurant.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleCashier Role = "cashier"
	RoleCook    Role = "cook"
	RolePartner Role = "partner"
)

// Module is a gated area of the back office.
type Module string

const (
	ModuleHR        Module = "hr"
	ModuleOps       Module = "ops"
	ModuleFinance   Module = "finance"
	ModuleInventory Module = "inventory"
	ModuleAdmin     Module = "admin"
)

// Capabilities lists which modules a role may use.
type Capabilities struct {
	HR         bool `json:"hr"`
	Ops        bool `json:"ops"`
	Finance    bool `json:"finance"`
	Inventory  bool `json:"inventory"`
	SuperAdmin bool `json:"super_admin"`
}

var roleCapabilities = map[Role]Capabilities{
	RoleAdmin:   {HR: true, Ops: true, Finance: true, Inventory: true, SuperAdmin: true},
	RoleManager: {HR: true, Ops: true, Inventory: true},
	RoleCashier: {Ops: true},
	RoleCook:    {Inventory: true},
	RolePartner: {Finance: true},
}

// ParseRole validates a role name.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := roleCapabilities[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// For returns the capabilities of a role. Unknown roles get none.
func For(r Role) Capabilities {
	return roleCapabilities[r]
}

// Allows reports whether the capabilities include the module.
// SuperAdmin allows everything.
func (c Capabilities) Allows(m Module) bool {
	if c.SuperAdmin {
		return true
	}
	switch m {
	case ModuleHR:
		return c.HR
	case ModuleOps:
		return c.Ops
	case ModuleFinance:
		return c.Finance
	case ModuleInventory:
		return c.Inventory
	default:
		return false
	}
}

// Modules lists the modules the capabilities allow, in a stable order.
func (c Capabilities) Modules() []Module {
	var out []Module
	for _, m := range []Module{ModuleHR, ModuleOps, ModuleFinance, ModuleInventory, ModuleAdmin} {
		if c.Allows(m) {
			out = append(out, m)
		}
	}
	return out
}
