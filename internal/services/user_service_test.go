package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/astracore/crm-backend/internal/constants"
)

func TestUserService_CreateUserRoleGates(t *testing.T) {
	env := setupTestEnv(t)

	super := env.createUser(t, "super@crm.test", constants.RoleSuper, nil)
	admin := env.createUser(t, "admin@crm.test", constants.RoleAdmin, nil)
	manager := env.createUser(t, "manager@crm.test", constants.RoleManager, nil)
	env.createDepartment(t, "Sales", &manager.ID)
	manager, err := env.userRepo.FindByID(manager.ID)
	require.NoError(t, err)

	// Admins may not mint super accounts.
	_, err = env.users.CreateUser(admin, CreateUserInput{
		Email: "a@crm.test", Password: "password123", Role: constants.RoleSuper,
	})
	require.ErrorIs(t, err, ErrRoleNotAllowed)

	// Managers may only create employees.
	_, err = env.users.CreateUser(manager, CreateUserInput{
		Email: "b@crm.test", Password: "password123", Role: constants.RoleManager,
	})
	require.ErrorIs(t, err, ErrRoleNotAllowed)

	// A manager-created employee lands in the manager's department no matter
	// what the request says.
	other := env.createDepartment(t, "Support", nil)
	created, err := env.users.CreateUser(manager, CreateUserInput{
		Email: "c@crm.test", Password: "password123", DepartmentID: &other.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, created.DepartmentID)
	require.Equal(t, *manager.DepartmentID, *created.DepartmentID)

	// Omitted role defaults to employee.
	created, err = env.users.CreateUser(super, CreateUserInput{
		Email: "D@crm.test ", Password: "password123",
	})
	require.NoError(t, err)
	require.Equal(t, constants.RoleEmployee, created.Role)
	require.Equal(t, "d@crm.test", created.Email)

	_, err = env.users.CreateUser(super, CreateUserInput{
		Email: "d@crm.test", Password: "password123",
	})
	require.ErrorIs(t, err, ErrEmailTaken)

	_, err = env.users.CreateUser(super, CreateUserInput{
		Email: "e@crm.test", Password: "short",
	})
	require.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestUserService_CreateUserManagerWithoutDepartment(t *testing.T) {
	env := setupTestEnv(t)
	manager := env.createUser(t, "manager@crm.test", constants.RoleManager, nil)

	_, err := env.users.CreateUser(manager, CreateUserInput{
		Email: "x@crm.test", Password: "password123",
	})
	require.ErrorIs(t, err, ErrManagerNoDepartment)
}

func TestUserService_UpdateUserHierarchy(t *testing.T) {
	env := setupTestEnv(t)

	super := env.createUser(t, "super@crm.test", constants.RoleSuper, nil)
	admin := env.createUser(t, "admin@crm.test", constants.RoleAdmin, nil)
	otherAdmin := env.createUser(t, "admin2@crm.test", constants.RoleAdmin, nil)
	employee := env.createUser(t, "employee@crm.test", constants.RoleEmployee, nil)

	// Own role is immutable even for super.
	role := constants.RoleAdmin
	_, err := env.users.UpdateUser(super, super.ID, UpdateUserInput{Role: &role})
	require.ErrorIs(t, err, ErrOwnRoleChange)

	// Admins may not edit super or peer admin accounts.
	name := "Renamed"
	_, err = env.users.UpdateUser(admin, super.ID, UpdateUserInput{FirstName: &name})
	require.ErrorIs(t, err, ErrAccessDenied)
	_, err = env.users.UpdateUser(admin, otherAdmin.ID, UpdateUserInput{FirstName: &name})
	require.ErrorIs(t, err, ErrAccessDenied)

	// Employees may edit only their own profile.
	_, err = env.users.UpdateUser(employee, admin.ID, UpdateUserInput{FirstName: &name})
	require.ErrorIs(t, err, ErrAccessDenied)
	updated, err := env.users.UpdateUser(employee, employee.ID, UpdateUserInput{FirstName: &name})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.FirstName)

	// Role promotion goes through the hierarchy table.
	promote := constants.RoleManager
	updated, err = env.users.UpdateUser(admin, employee.ID, UpdateUserInput{Role: &promote})
	require.NoError(t, err)
	require.Equal(t, constants.RoleManager, updated.Role)

	toSuper := constants.RoleSuper
	_, err = env.users.UpdateUser(admin, employee.ID, UpdateUserInput{Role: &toSuper})
	require.ErrorIs(t, err, ErrRoleNotAllowed)

	// A user cannot deactivate themselves.
	inactive := false
	updated, err = env.users.UpdateUser(employee, employee.ID, UpdateUserInput{IsActive: &inactive})
	require.NoError(t, err)
	require.True(t, updated.IsActive)
}

func TestUserService_DeleteUserRules(t *testing.T) {
	env := setupTestEnv(t)

	super := env.createUser(t, "super@crm.test", constants.RoleSuper, nil)
	admin := env.createUser(t, "admin@crm.test", constants.RoleAdmin, nil)
	employee := env.createUser(t, "employee@crm.test", constants.RoleEmployee, nil)

	require.ErrorIs(t, env.users.DeleteUser(super, super.ID), ErrSelfDelete)
	require.ErrorIs(t, env.users.DeleteUser(employee, admin.ID), ErrAccessDenied)
	require.ErrorIs(t, env.users.DeleteUser(admin, super.ID), ErrAccessDenied)

	require.NoError(t, env.users.DeleteUser(admin, employee.ID))
	_, err := env.userRepo.FindByID(employee.ID)
	require.Error(t, err)
}

func TestUserService_ListUsersGate(t *testing.T) {
	env := setupTestEnv(t)

	super := env.createUser(t, "super@crm.test", constants.RoleSuper, nil)
	admin := env.createUser(t, "admin@crm.test", constants.RoleAdmin, nil)
	manager := env.createUser(t, "manager@crm.test", constants.RoleManager, nil)
	sales := env.createDepartment(t, "Sales", &manager.ID)
	employee := env.createUser(t, "employee@crm.test", constants.RoleEmployee, &sales.ID)
	manager, err := env.userRepo.FindByID(manager.ID)
	require.NoError(t, err)

	// The directory is off limits below admin, department membership or not.
	_, err = env.users.ListUsers(employee)
	require.ErrorIs(t, err, ErrAccessDenied)
	_, err = env.users.ListUsers(manager)
	require.ErrorIs(t, err, ErrAccessDenied)

	all, err := env.users.ListUsers(super)
	require.NoError(t, err)
	require.Len(t, all, 4)
	all, err = env.users.ListUsers(admin)
	require.NoError(t, err)
	require.Len(t, all, 4)
}

func TestUserService_UserLeadStats(t *testing.T) {
	env := setupTestEnv(t)

	manager := env.createUser(t, "manager@crm.test", constants.RoleManager, nil)
	sales := env.createDepartment(t, "Sales", &manager.ID)
	employee := env.createUser(t, "employee@crm.test", constants.RoleEmployee, &sales.ID)
	manager, err := env.userRepo.FindByID(manager.ID)
	require.NoError(t, err)

	status := env.createStatus(t, "New", sales.ID)
	env.createLead(t, manager, CreateLeadInput{
		Name: "Lead A", Phone: "111", DepartmentID: sales.ID,
		StatusID: &status.ID, AssignedTo: []uint64{employee.ID},
	})
	env.createLead(t, manager, CreateLeadInput{
		Name: "Lead B", Phone: "222", DepartmentID: sales.ID,
		AssignedTo: []uint64{employee.ID},
	})

	super := env.createUser(t, "super@crm.test", constants.RoleSuper, nil)
	stats, err := env.users.GetUserLeadStats(super, employee.ID, 0)
	require.NoError(t, err)
	require.Equal(t, int64(2), stats.Total)
	require.Len(t, stats.OverTime, 14)
	require.Equal(t, int64(2), stats.OverTime[len(stats.OverTime)-1].Count)
}
