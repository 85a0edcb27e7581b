package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/astracore/crm-backend/internal/constants"
)

func TestStatusService_CreateGateAndOrder(t *testing.T) {
	env := setupTestEnv(t)

	admin := env.createUser(t, "admin@crm.test", constants.RoleAdmin, nil)
	manager := env.createUser(t, "manager@crm.test", constants.RoleManager, nil)
	sales := env.createDepartment(t, "Sales", &manager.ID)
	employee := env.createUser(t, "employee@crm.test", constants.RoleEmployee, &sales.ID)

	// Pipeline shape is the manager's call; admins only observe.
	_, err := env.statuses.CreateStatus(admin, CreateStatusInput{Name: "New", DepartmentID: sales.ID})
	require.ErrorIs(t, err, ErrAccessDenied)
	_, err = env.statuses.CreateStatus(employee, CreateStatusInput{Name: "New", DepartmentID: sales.ID})
	require.ErrorIs(t, err, ErrAccessDenied)

	first, err := env.statuses.CreateStatus(manager, CreateStatusInput{Name: "  New  ", DepartmentID: sales.ID})
	require.NoError(t, err)
	second, err := env.statuses.CreateStatus(manager, CreateStatusInput{Name: "Won", Color: "#22c55e", DepartmentID: sales.ID})
	require.NoError(t, err)

	require.Equal(t, "New", first.Name)
	require.Equal(t, "#9ca3af", first.Color)
	require.Equal(t, 1, first.Order)
	require.Equal(t, 2, second.Order)

	_, err = env.statuses.CreateStatus(manager, CreateStatusInput{Name: "  ", DepartmentID: sales.ID})
	require.ErrorIs(t, err, ErrNameRequired)

	listed, err := env.statuses.ListStatuses(admin, sales.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
}

func TestStatusService_MoveRequiresBothSides(t *testing.T) {
	env := setupTestEnv(t)

	manager := env.createUser(t, "manager@crm.test", constants.RoleManager, nil)
	sales := env.createDepartment(t, "Sales", &manager.ID)
	support := env.createDepartment(t, "Support", nil)
	status := env.createStatus(t, "New", sales.ID)

	_, err := env.statuses.UpdateStatus(manager, status.ID, UpdateStatusInput{DepartmentID: &support.ID})
	require.ErrorIs(t, err, ErrAccessDenied)

	name := "Fresh"
	updated, err := env.statuses.UpdateStatus(manager, status.ID, UpdateStatusInput{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Fresh", updated.Name)
}

func TestStatusService_DeleteDetachesLeads(t *testing.T) {
	env := setupTestEnv(t)

	super := env.createUser(t, "super@crm.test", constants.RoleSuper, nil)
	sales := env.createDepartment(t, "Sales", nil)
	status := env.createStatus(t, "New", sales.ID)
	lead := env.createLead(t, super, CreateLeadInput{Name: "Lead", DepartmentID: sales.ID, StatusID: &status.ID})

	require.NoError(t, env.statuses.DeleteStatus(super, status.ID))

	got, err := env.leads.GetLead(super, lead.ID)
	require.NoError(t, err)
	require.Nil(t, got.StatusID)

	_, err = env.statuses.GetStatus(super, status.ID)
	require.ErrorIs(t, err, ErrStatusNotFound)
}

func TestSiteService_TokenLifecycle(t *testing.T) {
	env := setupTestEnv(t)

	manager := env.createUser(t, "manager@crm.test", constants.RoleManager, nil)
	sales := env.createDepartment(t, "Sales", &manager.ID)
	support := env.createDepartment(t, "Support", nil)
	outsider := env.createUser(t, "outsider@crm.test", constants.RoleEmployee, &support.ID)

	site, err := env.sites.CreateSite(manager, CreateSiteInput{
		URL: "https://example.com", Description: "landing page", DepartmentID: sales.ID,
	})
	require.NoError(t, err)
	require.NotEmpty(t, site.Token)

	// The token survives updates.
	url := "https://example.com/promo"
	updated, err := env.sites.UpdateSite(manager, site.ID, UpdateSiteInput{URL: &url})
	require.NoError(t, err)
	require.Equal(t, site.Token, updated.Token)

	_, err = env.sites.GetSite(outsider, site.ID)
	require.ErrorIs(t, err, ErrAccessDenied)

	_, err = env.sites.CreateSite(outsider, CreateSiteInput{URL: "https://x.test", DepartmentID: support.ID})
	require.ErrorIs(t, err, ErrAccessDenied)

	require.NoError(t, env.sites.DeleteSite(manager, site.ID))
	_, err = env.sites.FindByID(site.ID)
	require.ErrorIs(t, err, ErrSiteNotFound)
}

func TestSiteService_ListScope(t *testing.T) {
	env := setupTestEnv(t)

	super := env.createUser(t, "super@crm.test", constants.RoleSuper, nil)
	manager := env.createUser(t, "manager@crm.test", constants.RoleManager, nil)
	sales := env.createDepartment(t, "Sales", &manager.ID)
	other := env.createUser(t, "other@crm.test", constants.RoleManager, nil)
	support := env.createDepartment(t, "Support", &other.ID)

	_, err := env.sites.CreateSite(manager, CreateSiteInput{URL: "https://a.test", DepartmentID: sales.ID})
	require.NoError(t, err)
	other, err = env.userRepo.FindByID(other.ID)
	require.NoError(t, err)
	_, err = env.sites.CreateSite(other, CreateSiteInput{URL: "https://b.test", DepartmentID: support.ID})
	require.NoError(t, err)

	all, err := env.sites.ListSites(super, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)

	mine, err := env.sites.ListSites(manager, nil)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, sales.ID, mine[0].DepartmentID)

	scoped, err := env.sites.ListSites(super, &support.ID)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
}
