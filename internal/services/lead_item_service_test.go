package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/astracore/crm-backend/internal/constants"
	"github.com/astracore/crm-backend/internal/models"
)

func TestLeadService_NoteModeration(t *testing.T) {
	env := setupTestEnv(t)

	super := env.createUser(t, "super@crm.test", constants.RoleSuper, nil)
	manager := env.createUser(t, "manager@crm.test", constants.RoleManager, nil)
	sales := env.createDepartment(t, "Sales", &manager.ID)
	author := env.createUser(t, "author@crm.test", constants.RoleEmployee, &sales.ID)
	peer := env.createUser(t, "peer@crm.test", constants.RoleEmployee, &sales.ID)

	lead := env.createLead(t, super, CreateLeadInput{Name: "Lead", DepartmentID: sales.ID})

	note, err := env.leads.AddNote(author, lead.ID, "  first contact made  ")
	require.NoError(t, err)
	require.Equal(t, "first contact made", note.Content)

	// A peer may read but not touch someone else's note.
	_, err = env.leads.UpdateNote(peer, lead.ID, note.ID, "hijacked")
	require.ErrorIs(t, err, ErrNotNoteAuthor)
	require.ErrorIs(t, env.leads.DeleteNote(peer, lead.ID, note.ID), ErrNotNoteAuthor)

	// The author and the department manager both may.
	_, err = env.leads.UpdateNote(author, lead.ID, note.ID, "first contact made, call back Monday")
	require.NoError(t, err)
	_, err = env.leads.UpdateNote(manager, lead.ID, note.ID, "escalated")
	require.NoError(t, err)

	require.NoError(t, env.leads.DeleteNote(manager, lead.ID, note.ID))
	_, err = env.leads.UpdateNote(author, lead.ID, note.ID, "gone")
	require.ErrorIs(t, err, ErrNoteNotFound)

	_, err = env.leads.AddNote(author, lead.ID, "   ")
	require.ErrorIs(t, err, ErrEmptyContent)
}

func TestLeadService_LeadTasks(t *testing.T) {
	env := setupTestEnv(t)

	super := env.createUser(t, "super@crm.test", constants.RoleSuper, nil)
	sales := env.createDepartment(t, "Sales", nil)
	lead := env.createLead(t, super, CreateLeadInput{Name: "Lead", DepartmentID: sales.ID})
	other := env.createLead(t, super, CreateLeadInput{Name: "Other", Phone: "9", DepartmentID: sales.ID})

	_, err := env.leads.AddLeadTask(super, lead.ID, "  ", nil)
	require.ErrorIs(t, err, ErrEmptyTitle)

	due := time.Now().Add(24 * time.Hour)
	task, err := env.leads.AddLeadTask(super, lead.ID, "send proposal", &due)
	require.NoError(t, err)
	require.NotNil(t, task.DueAt)

	// The task belongs to its lead, not to any lead the actor can see.
	_, err = env.leads.UpdateLeadTask(super, other.ID, task.ID, UpdateLeadTaskInput{})
	require.ErrorIs(t, err, ErrLeadTaskNotFound)

	completed := true
	task, err = env.leads.UpdateLeadTask(super, lead.ID, task.ID, UpdateLeadTaskInput{
		Completed:  &completed,
		ClearDueAt: true,
	})
	require.NoError(t, err)
	require.True(t, task.Completed)
	require.Nil(t, task.DueAt)

	require.NoError(t, env.leads.DeleteLeadTask(super, lead.ID, task.ID))
	tasks, err := env.leads.ListLeadTasks(super, lead.ID)
	require.NoError(t, err)
	require.Empty(t, tasks)
}

func TestLeadService_Reminders(t *testing.T) {
	env := setupTestEnv(t)

	super := env.createUser(t, "super@crm.test", constants.RoleSuper, nil)
	sales := env.createDepartment(t, "Sales", nil)
	lead := env.createLead(t, super, CreateLeadInput{Name: "Lead", DepartmentID: sales.ID})

	_, err := env.leads.AddReminder(super, lead.ID, "call", time.Time{})
	require.ErrorIs(t, err, ErrInvalidRemindAt)

	reminder, err := env.leads.AddReminder(super, lead.ID, "call back", time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.False(t, reminder.Done)

	reminder, err = env.leads.MarkReminderDone(super, lead.ID, reminder.ID)
	require.NoError(t, err)
	require.True(t, reminder.Done)

	require.NoError(t, env.leads.DeleteReminder(super, lead.ID, reminder.ID))
	_, err = env.leads.MarkReminderDone(super, lead.ID, reminder.ID)
	require.ErrorIs(t, err, ErrReminderNotFound)
}

func TestLeadService_ItemsFollowLeadVisibility(t *testing.T) {
	env := setupTestEnv(t)

	super := env.createUser(t, "super@crm.test", constants.RoleSuper, nil)
	sales := env.createDepartment(t, "Sales", nil)
	support := env.createDepartment(t, "Support", nil)
	outsider := env.createUser(t, "outsider@crm.test", constants.RoleEmployee, &support.ID)

	lead := env.createLead(t, super, CreateLeadInput{Name: "Hidden", DepartmentID: sales.ID})

	_, err := env.leads.AddNote(outsider, lead.ID, "sneaky")
	require.ErrorIs(t, err, ErrLeadNotFound)
	_, err = env.leads.ListHistory(outsider, lead.ID)
	require.ErrorIs(t, err, ErrLeadNotFound)
	_, err = env.leads.ListReminders(outsider, lead.ID)
	require.ErrorIs(t, err, ErrLeadNotFound)
}

func TestLeadService_ItemHistoryTrail(t *testing.T) {
	env := setupTestEnv(t)

	super := env.createUser(t, "super@crm.test", constants.RoleSuper, nil)
	sales := env.createDepartment(t, "Sales", nil)
	lead := env.createLead(t, super, CreateLeadInput{Name: "Lead", DepartmentID: sales.ID})

	note, err := env.leads.AddNote(super, lead.ID, "note")
	require.NoError(t, err)
	_, err = env.leads.AddLeadTask(super, lead.ID, "task", nil)
	require.NoError(t, err)
	reminder, err := env.leads.AddReminder(super, lead.ID, "reminder", time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = env.leads.MarkReminderDone(super, lead.ID, reminder.ID)
	require.NoError(t, err)
	require.NoError(t, env.leads.DeleteNote(super, lead.ID, note.ID))

	require.ElementsMatch(t, []string{
		models.HistoryActionCreated,
		models.HistoryActionNoteAdded,
		models.HistoryActionTaskAdded,
		models.HistoryActionReminderAdded,
		models.HistoryActionReminderDone,
		models.HistoryActionNoteDeleted,
	}, env.historyActions(t, lead.ID))
}
