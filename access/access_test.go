package access_test

import (
	"testing"

	"github.com/parrilla/backoffice/access"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFor_RoleTable(t *testing.T) {
	cashier := access.For(access.RoleCashier)
	assert.True(t, cashier.Allows(access.ModuleOps))
	assert.False(t, cashier.Allows(access.ModuleFinance))
	assert.False(t, cashier.Allows(access.ModuleHR))

	partner := access.For(access.RolePartner)
	assert.Equal(t, []access.Module{access.ModuleFinance}, partner.Modules())

	manager := access.For(access.RoleManager)
	assert.True(t, manager.Allows(access.ModuleHR))
	assert.False(t, manager.Allows(access.ModuleAdmin))
}

func TestSuperAdminAllowsEverything(t *testing.T) {
	admin := access.For(access.RoleAdmin)
	for _, m := range []access.Module{access.ModuleHR, access.ModuleOps, access.ModuleFinance, access.ModuleInventory, access.ModuleAdmin} {
		assert.True(t, admin.Allows(m), m)
	}
}

func TestParseRole(t *testing.T) {
	r, err := access.ParseRole("cook")
	require.NoError(t, err)
	assert.Equal(t, access.RoleCook, r)

	_, err = access.ParseRole("owner")
	assert.Error(t, err)
	assert.Equal(t, access.Capabilities{}, access.For("owner"))
}
