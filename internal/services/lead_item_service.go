package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/astracore/crm-backend/internal/constants"
	"github.com/astracore/crm-backend/internal/models"
	"gorm.io/gorm"
)

// Notes

// ListNotes lists a lead's notes, newest first.
func (s *LeadService) ListNotes(actor *models.User, leadID uint64) ([]models.LeadNote, error) {
	if _, err := s.GetLead(actor, leadID); err != nil {
		return nil, err
	}
	return s.itemRepo.NotesByLead(leadID)
}

// AddNote attaches a note authored by the actor.
func (s *LeadService) AddNote(actor *models.User, leadID uint64, content string) (*models.LeadNote, error) {
	if _, err := s.GetLead(actor, leadID); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	note := &models.LeadNote{
		LeadID:   leadID,
		AuthorID: actor.ID,
		Content:  content,
	}
	if err := s.itemRepo.CreateNote(note); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	s.addHistory(leadID, actor.ID, models.HistoryActionNoteAdded, models.JSONMap{"noteId": note.ID})
	return note, nil
}

// UpdateNote edits a note. Only the author, a manager of the lead's
// department, an admin or super may edit.
func (s *LeadService) UpdateNote(actor *models.User, leadID, noteID uint64, content string) (*models.LeadNote, error) {
	lead, err := s.GetLead(actor, leadID)
	if err != nil {
		return nil, err
	}
	note, err := s.findNote(leadID, noteID)
	if err != nil {
		return nil, err
	}
	if ok, err := s.canModerateNote(actor, lead, note); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrNotNoteAuthor
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	note.Content = content
	if err := s.itemRepo.UpdateNote(note); err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	s.addHistory(leadID, actor.ID, models.HistoryActionNoteEdited, models.JSONMap{"noteId": note.ID})
	return note, nil
}

// DeleteNote removes a note under the same rule as editing.
func (s *LeadService) DeleteNote(actor *models.User, leadID, noteID uint64) error {
	lead, err := s.GetLead(actor, leadID)
	if err != nil {
		return err
	}
	note, err := s.findNote(leadID, noteID)
	if err != nil {
		return err
	}
	if ok, err := s.canModerateNote(actor, lead, note); err != nil {
		return err
	} else if !ok {
		return ErrNotNoteAuthor
	}
	if err := s.itemRepo.DeleteNote(noteID); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	s.addHistory(leadID, actor.ID, models.HistoryActionNoteDeleted, models.JSONMap{"noteId": noteID})
	return nil
}

func (s *LeadService) findNote(leadID, noteID uint64) (*models.LeadNote, error) {
	note, err := s.itemRepo.FindNoteByID(noteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to find note: %w", err)
	}
	if note.LeadID != leadID {
		return nil, ErrNoteNotFound
	}
	return note, nil
}

func (s *LeadService) canModerateNote(actor *models.User, lead *models.Lead, note *models.LeadNote) (bool, error) {
	if note.AuthorID == actor.ID {
		return true, nil
	}
	if actor.Role == constants.RoleSuper || actor.Role == constants.RoleAdmin {
		return true, nil
	}
	return s.access.CanManageDepartment(lead.DepartmentID, actor)
}

// Lead tasks — edit authorization follows the parent lead, with no
// author-only restriction, unlike notes.

// ListLeadTasks lists a lead's follow-up tasks.
func (s *LeadService) ListLeadTasks(actor *models.User, leadID uint64) ([]models.LeadTask, error) {
	if _, err := s.GetLead(actor, leadID); err != nil {
		return nil, err
	}
	return s.itemRepo.TasksByLead(leadID)
}

// AddLeadTask creates a follow-up task on a lead.
func (s *LeadService) AddLeadTask(actor *models.User, leadID uint64, title string, dueAt *time.Time) (*models.LeadTask, error) {
	if _, err := s.GetLead(actor, leadID); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	task := &models.LeadTask{
		LeadID:    leadID,
		CreatedBy: actor.ID,
		Title:     title,
		DueAt:     dueAt,
	}
	if err := s.itemRepo.CreateTask(task); err != nil {
		return nil, fmt.Errorf("failed to create lead task: %w", err)
	}
	s.addHistory(leadID, actor.ID, models.HistoryActionTaskAdded, models.JSONMap{"taskId": task.ID, "title": task.Title})
	return task, nil
}

// UpdateLeadTaskInput represents a partial update of a lead task
type UpdateLeadTaskInput struct {
	Title      *string
	DueAt      *time.Time
	ClearDueAt bool
	Completed  *bool
}

// UpdateLeadTask applies a partial update to a lead task.
func (s *LeadService) UpdateLeadTask(actor *models.User, leadID, taskID uint64, input UpdateLeadTaskInput) (*models.LeadTask, error) {
	if _, err := s.GetLead(actor, leadID); err != nil {
		return nil, err
	}
	task, err := s.findLeadTask(leadID, taskID)
	if err != nil {
		return nil, err
	}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrEmptyTitle
		}
		task.Title = title
	}
	if input.ClearDueAt {
		task.DueAt = nil
	} else if input.DueAt != nil {
		task.DueAt = input.DueAt
	}
	if input.Completed != nil {
		task.Completed = *input.Completed
	}
	if err := s.itemRepo.UpdateTask(task); err != nil {
		return nil, fmt.Errorf("failed to update lead task: %w", err)
	}
	s.addHistory(leadID, actor.ID, models.HistoryActionTaskUpdated, models.JSONMap{"taskId": task.ID})
	return task, nil
}

// DeleteLeadTask removes a lead task.
func (s *LeadService) DeleteLeadTask(actor *models.User, leadID, taskID uint64) error {
	if _, err := s.GetLead(actor, leadID); err != nil {
		return err
	}
	if _, err := s.findLeadTask(leadID, taskID); err != nil {
		return err
	}
	if err := s.itemRepo.DeleteTask(taskID); err != nil {
		return fmt.Errorf("failed to delete lead task: %w", err)
	}
	s.addHistory(leadID, actor.ID, models.HistoryActionTaskDeleted, models.JSONMap{"taskId": taskID})
	return nil
}

func (s *LeadService) findLeadTask(leadID, taskID uint64) (*models.LeadTask, error) {
	task, err := s.itemRepo.FindTaskByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadTaskNotFound
		}
		return nil, fmt.Errorf("failed to find lead task: %w", err)
	}
	if task.LeadID != leadID {
		return nil, ErrLeadTaskNotFound
	}
	return task, nil
}

// Reminders

// ListReminders lists a lead's reminders.
func (s *LeadService) ListReminders(actor *models.User, leadID uint64) ([]models.LeadReminder, error) {
	if _, err := s.GetLead(actor, leadID); err != nil {
		return nil, err
	}
	return s.itemRepo.RemindersByLead(leadID)
}

// AddReminder creates a reminder on a lead.
func (s *LeadService) AddReminder(actor *models.User, leadID uint64, title string, remindAt time.Time) (*models.LeadReminder, error) {
	if _, err := s.GetLead(actor, leadID); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if remindAt.IsZero() {
		return nil, ErrInvalidRemindAt
	}
	reminder := &models.LeadReminder{
		LeadID:    leadID,
		CreatedBy: actor.ID,
		Title:     title,
		RemindAt:  remindAt,
	}
	if err := s.itemRepo.CreateReminder(reminder); err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}
	s.addHistory(leadID, actor.ID, models.HistoryActionReminderAdded, models.JSONMap{"reminderId": reminder.ID, "title": reminder.Title})
	return reminder, nil
}

// MarkReminderDone completes a reminder.
func (s *LeadService) MarkReminderDone(actor *models.User, leadID, reminderID uint64) (*models.LeadReminder, error) {
	if _, err := s.GetLead(actor, leadID); err != nil {
		return nil, err
	}
	reminder, err := s.findReminder(leadID, reminderID)
	if err != nil {
		return nil, err
	}
	reminder.Done = true
	if err := s.itemRepo.UpdateReminder(reminder); err != nil {
		return nil, fmt.Errorf("failed to update reminder: %w", err)
	}
	s.addHistory(leadID, actor.ID, models.HistoryActionReminderDone, models.JSONMap{"reminderId": reminder.ID})
	return reminder, nil
}

// DeleteReminder removes a reminder.
func (s *LeadService) DeleteReminder(actor *models.User, leadID, reminderID uint64) error {
	if _, err := s.GetLead(actor, leadID); err != nil {
		return err
	}
	if _, err := s.findReminder(leadID, reminderID); err != nil {
		return err
	}
	if err := s.itemRepo.DeleteReminder(reminderID); err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	s.addHistory(leadID, actor.ID, models.HistoryActionReminderDeleted, models.JSONMap{"reminderId": reminderID})
	return nil
}

func (s *LeadService) findReminder(leadID, reminderID uint64) (*models.LeadReminder, error) {
	reminder, err := s.itemRepo.FindReminderByID(reminderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReminderNotFound
		}
		return nil, fmt.Errorf("failed to find reminder: %w", err)
	}
	if reminder.LeadID != leadID {
		return nil, ErrReminderNotFound
	}
	return reminder, nil
}

// History

// ListHistory returns the lead's append-only audit trail.
func (s *LeadService) ListHistory(actor *models.User, leadID uint64) ([]models.LeadHistory, error) {
	if _, err := s.GetLead(actor, leadID); err != nil {
		return nil, err
	}
	return s.itemRepo.HistoryByLead(leadID)
}
