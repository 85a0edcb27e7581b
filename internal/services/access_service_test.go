package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/astracore/crm-backend/internal/constants"
)

func TestAccessService_Predicates(t *testing.T) {
	env := setupTestEnv(t)

	super := env.createUser(t, "super@crm.test", constants.RoleSuper, nil)
	admin := env.createUser(t, "admin@crm.test", constants.RoleAdmin, nil)
	manager := env.createUser(t, "manager@crm.test", constants.RoleManager, nil)
	sales := env.createDepartment(t, "Sales", &manager.ID)
	support := env.createDepartment(t, "Support", nil)
	employee := env.createUser(t, "employee@crm.test", constants.RoleEmployee, &sales.ID)
	outsider := env.createUser(t, "outsider@crm.test", constants.RoleEmployee, &support.ID)

	cases := []struct {
		name    string
		user    uint64
		canView bool
		manage  bool
	}{
		{"super", super.ID, true, true},
		{"admin", admin.ID, true, false},
		{"manager", manager.ID, true, true},
		{"member employee", employee.ID, true, false},
		{"other department employee", outsider.ID, false, false},
	}
	for _, tc := range cases {
		user, err := env.userRepo.FindByID(tc.user)
		require.NoError(t, err)

		view, err := env.access.CanViewDepartment(sales.ID, user)
		require.NoError(t, err)
		require.Equal(t, tc.canView, view, "%s view", tc.name)

		manage, err := env.access.CanManageDepartment(sales.ID, user)
		require.NoError(t, err)
		require.Equal(t, tc.manage, manage, "%s manage", tc.name)

		// Create access mirrors view access exactly.
		create, err := env.access.CanCreateInDepartment(sales.ID, user)
		require.NoError(t, err)
		require.Equal(t, view, create, "%s create", tc.name)
	}
}

func TestAccessService_AllowedAssignees(t *testing.T) {
	env := setupTestEnv(t)

	manager := env.createUser(t, "manager@crm.test", constants.RoleManager, nil)
	sales := env.createDepartment(t, "Sales", &manager.ID)
	employee := env.createUser(t, "employee@crm.test", constants.RoleEmployee, &sales.ID)
	env.createUser(t, "elsewhere@crm.test", constants.RoleEmployee, nil)

	allowed, err := env.access.AllowedAssignees(sales.ID)
	require.NoError(t, err)
	require.Len(t, allowed, 2)
	require.True(t, allowed[manager.ID])
	require.True(t, allowed[employee.ID])

	// Membership changes are visible immediately; nothing is cached.
	employee.DepartmentID = nil
	require.NoError(t, env.userRepo.Update(employee))

	allowed, err = env.access.AllowedAssignees(sales.ID)
	require.NoError(t, err)
	require.Len(t, allowed, 1)
	require.True(t, allowed[manager.ID])
}

func TestAccessService_AllowedDepartmentIDs(t *testing.T) {
	env := setupTestEnv(t)

	super := env.createUser(t, "super@crm.test", constants.RoleSuper, nil)
	manager := env.createUser(t, "manager@crm.test", constants.RoleManager, nil)
	sales := env.createDepartment(t, "Sales", &manager.ID)
	support := env.createDepartment(t, "Support", nil)
	employee := env.createUser(t, "employee@crm.test", constants.RoleEmployee, &support.ID)
	homeless := env.createUser(t, "nodept@crm.test", constants.RoleEmployee, nil)

	ids, err := env.access.AllowedDepartmentIDs(super)
	require.NoError(t, err)
	require.ElementsMatch(t, []uint64{sales.ID, support.ID}, ids)

	manager, err = env.userRepo.FindByID(manager.ID)
	require.NoError(t, err)
	ids, err = env.access.AllowedDepartmentIDs(manager)
	require.NoError(t, err)
	require.Equal(t, []uint64{sales.ID}, ids)

	ids, err = env.access.AllowedDepartmentIDs(employee)
	require.NoError(t, err)
	require.Equal(t, []uint64{support.ID}, ids)

	ids, err = env.access.AllowedDepartmentIDs(homeless)
	require.NoError(t, err)
	require.Empty(t, ids)
}
