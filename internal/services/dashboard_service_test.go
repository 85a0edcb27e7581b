package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/astracore/crm-backend/internal/constants"
)

func TestDashboardService_SummaryScope(t *testing.T) {
	env := setupTestEnv(t)

	super := env.createUser(t, "super@crm.test", constants.RoleSuper, nil)
	manager := env.createUser(t, "manager@crm.test", constants.RoleManager, nil)
	sales := env.createDepartment(t, "Sales", &manager.ID)
	support := env.createDepartment(t, "Support", nil)
	env.createUser(t, "employee@crm.test", constants.RoleEmployee, &sales.ID)

	env.createLead(t, super, CreateLeadInput{Name: "A", Phone: "1", DepartmentID: sales.ID})
	env.createLead(t, super, CreateLeadInput{Name: "B", Phone: "2", DepartmentID: support.ID})

	all, err := env.dashboard.GetSummary(super)
	require.NoError(t, err)
	require.EqualValues(t, 3, all.UsersCount)
	require.Equal(t, 2, all.DepartmentsCount)
	require.EqualValues(t, 2, all.LeadsCount)

	manager, err = env.userRepo.FindByID(manager.ID)
	require.NoError(t, err)
	mine, err := env.dashboard.GetSummary(manager)
	require.NoError(t, err)
	require.Equal(t, 1, mine.DepartmentsCount)
	require.EqualValues(t, 1, mine.LeadsCount)
	require.EqualValues(t, 2, mine.UsersCount)
}

func TestDashboardService_LeadsByStatus(t *testing.T) {
	env := setupTestEnv(t)

	super := env.createUser(t, "super@crm.test", constants.RoleSuper, nil)
	sales := env.createDepartment(t, "Sales", nil)
	status := env.createStatus(t, "New", sales.ID)

	env.createLead(t, super, CreateLeadInput{Name: "A", Phone: "1", DepartmentID: sales.ID, StatusID: &status.ID})
	env.createLead(t, super, CreateLeadInput{Name: "B", Phone: "2", DepartmentID: sales.ID, StatusID: &status.ID})
	env.createLead(t, super, CreateLeadInput{Name: "C", Phone: "3", DepartmentID: sales.ID})

	counts, err := env.dashboard.LeadsByStatus(super)
	require.NoError(t, err)
	require.Len(t, counts, 2)

	// Sorted by count, largest first.
	require.Equal(t, "New", counts[0].StatusName)
	require.EqualValues(t, 2, counts[0].Count)
	require.Equal(t, "No status", counts[1].StatusName)
	require.Nil(t, counts[1].StatusID)
}

func TestDashboardService_Attention(t *testing.T) {
	env := setupTestEnv(t)

	super := env.createUser(t, "super@crm.test", constants.RoleSuper, nil)
	sales := env.createDepartment(t, "Sales", nil)
	employee := env.createUser(t, "employee@crm.test", constants.RoleEmployee, &sales.ID)
	status := env.createStatus(t, "New", sales.ID)

	env.createLead(t, super, CreateLeadInput{Name: "A", Phone: "1", DepartmentID: sales.ID})
	env.createLead(t, super, CreateLeadInput{
		Name: "B", Phone: "2", DepartmentID: sales.ID,
		StatusID: &status.ID, AssignedTo: []uint64{employee.ID},
	})

	attention, err := env.dashboard.GetAttention(super)
	require.NoError(t, err)
	require.EqualValues(t, 1, attention.LeadsWithoutStatus)
	require.EqualValues(t, 1, attention.LeadsUnassigned)
}

func TestDashboardService_WeekEvents(t *testing.T) {
	env := setupTestEnv(t)

	super := env.createUser(t, "super@crm.test", constants.RoleSuper, nil)
	sales := env.createDepartment(t, "Sales", nil)
	lead := env.createLead(t, super, CreateLeadInput{Name: "Lead", DepartmentID: sales.ID})

	now := time.Now().UTC()
	reminder, err := env.leads.AddReminder(super, lead.ID, "call", now)
	require.NoError(t, err)
	_, err = env.leads.AddLeadTask(super, lead.ID, "proposal", &now)
	require.NoError(t, err)
	// A task with no due date never shows up.
	_, err = env.leads.AddLeadTask(super, lead.ID, "undated", nil)
	require.NoError(t, err)
	// Neither does one due far outside the week.
	nextMonth := now.AddDate(0, 1, 0)
	_, err = env.leads.AddLeadTask(super, lead.ID, "next month", &nextMonth)
	require.NoError(t, err)
	// Done reminders are excluded.
	done, err := env.leads.AddReminder(super, lead.ID, "handled", now)
	require.NoError(t, err)
	_, err = env.leads.MarkReminderDone(super, lead.ID, done.ID)
	require.NoError(t, err)

	events, err := env.dashboard.WeekEvents(super)
	require.NoError(t, err)
	require.Len(t, events, 2)
	for _, event := range events {
		require.Equal(t, "Lead", event.LeadName)
	}

	types := []string{events[0].Type, events[1].Type}
	require.Contains(t, types, "reminder")
	require.Contains(t, types, "task")
	require.Equal(t, reminder.ID, eventIDOfType(events, "reminder"))
}

func eventIDOfType(events []WeekEvent, eventType string) uint64 {
	for _, event := range events {
		if event.Type == eventType {
			return event.ID
		}
	}
	return 0
}

func TestDashboardService_LeadsOverTime(t *testing.T) {
	env := setupTestEnv(t)

	super := env.createUser(t, "super@crm.test", constants.RoleSuper, nil)
	sales := env.createDepartment(t, "Sales", nil)
	env.createLead(t, super, CreateLeadInput{Name: "A", Phone: "1", DepartmentID: sales.ID})
	env.createLead(t, super, CreateLeadInput{Name: "B", Phone: "2", DepartmentID: sales.ID})

	series, err := env.dashboard.LeadsOverTime(super, 0)
	require.NoError(t, err)
	require.Len(t, series, 30)
	require.EqualValues(t, 2, series[len(series)-1].Count)

	clamped, err := env.dashboard.LeadsOverTime(super, 3)
	require.NoError(t, err)
	require.Len(t, clamped, 7)
	wide, err := env.dashboard.LeadsOverTime(super, 365)
	require.NoError(t, err)
	require.Len(t, wide, 90)
}

func TestDashboardService_TopAssignees(t *testing.T) {
	env := setupTestEnv(t)

	super := env.createUser(t, "super@crm.test", constants.RoleSuper, nil)
	sales := env.createDepartment(t, "Sales", nil)
	busy := env.createUser(t, "busy@crm.test", constants.RoleEmployee, &sales.ID)
	idle := env.createUser(t, "idle@crm.test", constants.RoleEmployee, &sales.ID)

	for i, phone := range []string{"1", "2", "3"} {
		assignees := []uint64{busy.ID}
		if i == 2 {
			assignees = []uint64{idle.ID}
		}
		env.createLead(t, super, CreateLeadInput{
			Name: "Lead", Phone: phone, DepartmentID: sales.ID, AssignedTo: assignees,
		})
	}

	top, err := env.dashboard.TopAssignees(super, 0)
	require.NoError(t, err)
	require.Len(t, top, 2)
	require.Equal(t, busy.ID, top[0].UserID)
	require.EqualValues(t, 2, top[0].Count)
	require.NotEmpty(t, top[0].UserName)
}
