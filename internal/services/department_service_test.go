package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/astracore/crm-backend/internal/constants"
)

func TestDepartmentService_CreatePlacesManager(t *testing.T) {
	env := setupTestEnv(t)

	manager := env.createUser(t, "manager@crm.test", constants.RoleManager, nil)
	dept, err := env.depts.CreateDepartment(CreateDepartmentInput{
		Name:      "Sales",
		ManagerID: &manager.ID,
	})
	require.NoError(t, err)

	manager, err = env.userRepo.FindByID(manager.ID)
	require.NoError(t, err)
	require.NotNil(t, manager.DepartmentID)
	require.Equal(t, dept.ID, *manager.DepartmentID)

	_, err = env.depts.CreateDepartment(CreateDepartmentInput{Name: " Sales "})
	require.ErrorIs(t, err, ErrDepartmentNameTaken)

	_, err = env.depts.CreateDepartment(CreateDepartmentInput{Name: "  "})
	require.ErrorIs(t, err, ErrNameRequired)
}

func TestDepartmentService_ManagerReassignment(t *testing.T) {
	env := setupTestEnv(t)

	super := env.createUser(t, "super@crm.test", constants.RoleSuper, nil)
	first := env.createUser(t, "first@crm.test", constants.RoleManager, nil)
	second := env.createUser(t, "second@crm.test", constants.RoleManager, nil)
	dept := env.createDepartment(t, "Sales", &first.ID)

	updated, err := env.depts.UpdateDepartment(super, dept.ID, UpdateDepartmentInput{
		ManagerID: &second.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.ManagerID)
	require.Equal(t, second.ID, *updated.ManagerID)

	// The previous manager is released, the new one placed.
	first, err = env.userRepo.FindByID(first.ID)
	require.NoError(t, err)
	require.Nil(t, first.DepartmentID)

	second, err = env.userRepo.FindByID(second.ID)
	require.NoError(t, err)
	require.NotNil(t, second.DepartmentID)
	require.Equal(t, dept.ID, *second.DepartmentID)
}

func TestDepartmentService_ReleaseSkipsMovedManager(t *testing.T) {
	env := setupTestEnv(t)

	super := env.createUser(t, "super@crm.test", constants.RoleSuper, nil)
	manager := env.createUser(t, "manager@crm.test", constants.RoleManager, nil)
	dept := env.createDepartment(t, "Sales", &manager.ID)
	other := env.createDepartment(t, "Support", nil)

	// The manager already moved on; clearing them must not clobber the new
	// membership.
	manager, err := env.userRepo.FindByID(manager.ID)
	require.NoError(t, err)
	manager.DepartmentID = &other.ID
	require.NoError(t, env.userRepo.Update(manager))

	_, err = env.depts.UpdateDepartment(super, dept.ID, UpdateDepartmentInput{ClearManager: true})
	require.NoError(t, err)

	manager, err = env.userRepo.FindByID(manager.ID)
	require.NoError(t, err)
	require.NotNil(t, manager.DepartmentID)
	require.Equal(t, other.ID, *manager.DepartmentID)
}

func TestDepartmentService_UpdateGate(t *testing.T) {
	env := setupTestEnv(t)

	admin := env.createUser(t, "admin@crm.test", constants.RoleAdmin, nil)
	manager := env.createUser(t, "manager@crm.test", constants.RoleManager, nil)
	dept := env.createDepartment(t, "Sales", &manager.ID)

	name := "Renamed"

	// Admin is read-only on departments it does not manage.
	_, err := env.depts.UpdateDepartment(admin, dept.ID, UpdateDepartmentInput{Name: &name})
	require.ErrorIs(t, err, ErrAccessDenied)

	manager, err = env.userRepo.FindByID(manager.ID)
	require.NoError(t, err)
	updated, err := env.depts.UpdateDepartment(manager, dept.ID, UpdateDepartmentInput{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Name)
}

func TestDepartmentService_DetailRepairsManagerMembership(t *testing.T) {
	env := setupTestEnv(t)

	super := env.createUser(t, "super@crm.test", constants.RoleSuper, nil)
	manager := env.createUser(t, "manager@crm.test", constants.RoleManager, nil)
	dept := env.createDepartment(t, "Sales", &manager.ID)

	// Simulate drift: the manager record lost its department.
	manager, err := env.userRepo.FindByID(manager.ID)
	require.NoError(t, err)
	manager.DepartmentID = nil
	require.NoError(t, env.userRepo.Update(manager))

	detail, err := env.depts.GetDepartmentDetail(super, dept.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Manager)
	require.NotNil(t, detail.Manager.DepartmentID)
	require.Equal(t, dept.ID, *detail.Manager.DepartmentID)

	manager, err = env.userRepo.FindByID(manager.ID)
	require.NoError(t, err)
	require.NotNil(t, manager.DepartmentID)
	require.Equal(t, dept.ID, *manager.DepartmentID)
}

func TestDepartmentService_DeleteOrphansResources(t *testing.T) {
	env := setupTestEnv(t)

	manager := env.createUser(t, "manager@crm.test", constants.RoleManager, nil)
	dept := env.createDepartment(t, "Sales", &manager.ID)
	employee := env.createUser(t, "employee@crm.test", constants.RoleEmployee, &dept.ID)
	status := env.createStatus(t, "New", dept.ID)

	manager, err := env.userRepo.FindByID(manager.ID)
	require.NoError(t, err)
	lead := env.createLead(t, manager, CreateLeadInput{
		Name: "Orphan", Phone: "111", DepartmentID: dept.ID, StatusID: &status.ID,
	})

	require.NoError(t, env.depts.DeleteDepartment(dept.ID))

	// Members are detached, the lead and status survive pointing at the dead
	// department.
	employee, err = env.userRepo.FindByID(employee.ID)
	require.NoError(t, err)
	require.Nil(t, employee.DepartmentID)

	survived, err := env.leadRepo.FindByID(lead.ID)
	require.NoError(t, err)
	require.Equal(t, dept.ID, survived.DepartmentID)
}

func TestDepartmentService_ListScope(t *testing.T) {
	env := setupTestEnv(t)

	super := env.createUser(t, "super@crm.test", constants.RoleSuper, nil)
	manager := env.createUser(t, "manager@crm.test", constants.RoleManager, nil)
	sales := env.createDepartment(t, "Sales", &manager.ID)
	env.createDepartment(t, "Support", nil)
	employee := env.createUser(t, "employee@crm.test", constants.RoleEmployee, &sales.ID)

	all, err := env.depts.ListDepartments(super)
	require.NoError(t, err)
	require.Len(t, all, 2)

	manager, err = env.userRepo.FindByID(manager.ID)
	require.NoError(t, err)
	managed, err := env.depts.ListDepartments(manager)
	require.NoError(t, err)
	require.Len(t, managed, 1)
	require.Equal(t, sales.ID, managed[0].ID)

	_, err = env.depts.ListDepartments(employee)
	require.ErrorIs(t, err, ErrAccessDenied)
}
