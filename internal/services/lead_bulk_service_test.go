package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/astracore/crm-backend/internal/constants"
	"github.com/astracore/crm-backend/internal/models"
	"github.com/astracore/crm-backend/internal/repository"
)

func TestLeadService_BulkCreateLeads(t *testing.T) {
	env := setupTestEnv(t)

	super := env.createUser(t, "super@crm.test", constants.RoleSuper, nil)
	sales := env.createDepartment(t, "Sales", nil)
	env.createLead(t, super, CreateLeadInput{Name: "Existing", Phone: "555-0001", DepartmentID: sales.ID})

	result, err := env.leads.BulkCreateLeads(super, sales.ID, []BulkLeadItem{
		{Name: "Dup of existing", Phone: "555-0001"},
		{Name: "Fresh", Phone: "555-0002"},
		{Name: "Dup in batch", Phone: "555-0002"},
		{Name: "No phone", Phone: "  "},
		{Name: "", Phone: "555-0003"},
	})
	require.NoError(t, err)

	// Invalid rows are dropped before counting; only Fresh lands.
	require.Equal(t, 1, result.Added)
	require.Equal(t, 2, result.Duplicates)

	leads, total, err := env.leads.ListLeads(super, ListLeadsInput{DepartmentID: sales.ID, Limit: 50})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)

	var imported *models.Lead
	for i := range leads {
		if leads[i].Phone == "555-0002" {
			imported = &leads[i]
		}
	}
	require.NotNil(t, imported)
	require.Equal(t, models.LeadSourceImport, imported.Source)
}

func TestLeadService_BulkUpdateSkipsFailures(t *testing.T) {
	env := setupTestEnv(t)

	super := env.createUser(t, "super@crm.test", constants.RoleSuper, nil)
	sales := env.createDepartment(t, "Sales", nil)
	lead := env.createLead(t, super, CreateLeadInput{Name: "Lead", DepartmentID: sales.ID})

	name := "Renamed"
	updated, err := env.leads.BulkUpdateLeads(super, []BulkUpdateItem{
		{ID: lead.ID, Patch: UpdateLeadInput{Name: &name}},
		{ID: 9999, Patch: UpdateLeadInput{Name: &name}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, updated)

	got, err := env.leads.GetLead(super, lead.ID)
	require.NoError(t, err)
	require.Equal(t, "Renamed", got.Name)
}

func TestLeadService_BulkDeleteScope(t *testing.T) {
	env := setupTestEnv(t)

	super := env.createUser(t, "super@crm.test", constants.RoleSuper, nil)
	manager := env.createUser(t, "manager@crm.test", constants.RoleManager, nil)
	sales := env.createDepartment(t, "Sales", &manager.ID)
	support := env.createDepartment(t, "Support", nil)

	own := env.createLead(t, super, CreateLeadInput{Name: "Own", DepartmentID: sales.ID})
	foreign := env.createLead(t, super, CreateLeadInput{Name: "Foreign", DepartmentID: support.ID})

	deleted, err := env.leads.BulkDeleteLeads(manager, []uint64{own.ID, foreign.ID, 9999})
	require.NoError(t, err)
	require.Equal(t, 1, deleted)

	// The foreign lead is untouched.
	_, err = env.leads.GetLead(super, foreign.ID)
	require.NoError(t, err)
	_, err = env.leads.GetLead(super, own.ID)
	require.ErrorIs(t, err, ErrLeadNotFound)
}

func TestLeadService_GetLeadStats(t *testing.T) {
	env := setupTestEnv(t)

	super := env.createUser(t, "super@crm.test", constants.RoleSuper, nil)
	manager := env.createUser(t, "manager@crm.test", constants.RoleManager, nil)
	sales := env.createDepartment(t, "Sales", &manager.ID)
	employee := env.createUser(t, "employee@crm.test", constants.RoleEmployee, &sales.ID)
	status := env.createStatus(t, "New", sales.ID)

	env.createLead(t, super, CreateLeadInput{
		Name: "A", Phone: "1", DepartmentID: sales.ID,
		StatusID: &status.ID, AssignedTo: []uint64{employee.ID},
	})
	env.createLead(t, super, CreateLeadInput{
		Name: "B", Phone: "2", DepartmentID: sales.ID,
		AssignedTo: []uint64{employee.ID},
	})
	env.createLead(t, super, CreateLeadInput{
		Name: "C", Phone: "3", DepartmentID: sales.ID,
		AssignedTo: []uint64{manager.ID},
	})

	stats, err := env.leads.GetLeadStats(super, sales.ID, repository.StatsFilter{})
	require.NoError(t, err)
	require.Len(t, stats.Statuses, 1)
	require.Len(t, stats.Rows, 2)

	// Manager row comes first.
	require.Equal(t, manager.ID, stats.Rows[0].UserID)
	require.EqualValues(t, 1, stats.Rows[0].Total)
	require.EqualValues(t, 1, stats.Rows[0].NoStatus)

	require.Equal(t, employee.ID, stats.Rows[1].UserID)
	require.EqualValues(t, 2, stats.Rows[1].Total)
	require.EqualValues(t, 1, stats.Rows[1].ByStatus[status.ID])
	require.EqualValues(t, 1, stats.Rows[1].NoStatus)
}

func TestLeadService_StatsRequireManageRights(t *testing.T) {
	env := setupTestEnv(t)

	admin := env.createUser(t, "admin@crm.test", constants.RoleAdmin, nil)
	other := env.createUser(t, "other@crm.test", constants.RoleManager, nil)
	sales := env.createDepartment(t, "Sales", nil)
	env.createDepartment(t, "Support", &other.ID)
	other, err := env.userRepo.FindByID(other.ID)
	require.NoError(t, err)

	// Admins see everything; a manager of another department does not,
	// even though managers can view any department they belong to.
	_, err = env.leads.GetLeadStats(admin, sales.ID, repository.StatsFilter{})
	require.NoError(t, err)
	_, err = env.leads.GetLeadStats(other, sales.ID, repository.StatsFilter{})
	require.ErrorIs(t, err, ErrAccessDenied)

	_, err = env.leads.ExportLeads(other, ExportLeadsInput{DepartmentID: sales.ID})
	require.ErrorIs(t, err, ErrAccessDenied)

	// An employee cannot export their own department either.
	employee := env.createUser(t, "employee@crm.test", constants.RoleEmployee, &sales.ID)
	_, err = env.leads.ExportLeads(employee, ExportLeadsInput{DepartmentID: sales.ID})
	require.ErrorIs(t, err, ErrAccessDenied)
}

func TestLeadService_ExportLeads(t *testing.T) {
	env := setupTestEnv(t)

	super := env.createUser(t, "super@crm.test", constants.RoleSuper, nil)
	sales := env.createDepartment(t, "Sales", nil)
	status := env.createStatus(t, "Won", sales.ID)

	env.createLead(t, super, CreateLeadInput{Name: "Plain", Phone: "1", DepartmentID: sales.ID})
	env.createLead(t, super, CreateLeadInput{Name: "Won", Phone: "2", DepartmentID: sales.ID, StatusID: &status.ID})

	all, err := env.leads.ExportLeads(super, ExportLeadsInput{DepartmentID: sales.ID})
	require.NoError(t, err)
	require.Len(t, all, 2)

	won, err := env.leads.ExportLeads(super, ExportLeadsInput{DepartmentID: sales.ID, StatusID: &status.ID})
	require.NoError(t, err)
	require.Len(t, won, 1)
	require.Equal(t, "Won", won[0].Name)
}

func TestLeadService_UpcomingReminders(t *testing.T) {
	env := setupTestEnv(t)

	super := env.createUser(t, "super@crm.test", constants.RoleSuper, nil)
	sales := env.createDepartment(t, "Sales", nil)
	support := env.createDepartment(t, "Support", nil)
	employee := env.createUser(t, "employee@crm.test", constants.RoleEmployee, &sales.ID)

	lead := env.createLead(t, super, CreateLeadInput{Name: "Mine", Phone: "1", DepartmentID: sales.ID})
	foreign := env.createLead(t, super, CreateLeadInput{Name: "Foreign", Phone: "2", DepartmentID: support.ID})

	now := time.Now()
	for _, reminder := range []*models.LeadReminder{
		{LeadID: lead.ID, CreatedBy: super.ID, Title: "due soon", RemindAt: now.Add(time.Hour)},
		{LeadID: lead.ID, CreatedBy: super.ID, Title: "overdue", RemindAt: now.Add(-time.Hour)},
		{LeadID: lead.ID, CreatedBy: super.ID, Title: "far out", RemindAt: now.Add(48 * time.Hour)},
		{LeadID: lead.ID, CreatedBy: super.ID, Title: "done", RemindAt: now.Add(time.Hour), Done: true},
		{LeadID: foreign.ID, CreatedBy: super.ID, Title: "elsewhere", RemindAt: now.Add(time.Hour)},
	} {
		require.NoError(t, env.itemRepo.CreateReminder(reminder))
	}

	upcoming, err := env.leads.UpcomingReminders(employee)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	for _, reminder := range upcoming {
		require.Equal(t, "Mine", reminder.LeadName)
		require.False(t, reminder.Done)
	}

	all, err := env.leads.UpcomingReminders(super)
	require.NoError(t, err)
	require.Len(t, all, 3)
}
