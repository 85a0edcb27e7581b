package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/astracore/crm-backend/internal/dto"
	apierrors "github.com/astracore/crm-backend/internal/errors"
	"github.com/astracore/crm-backend/internal/middleware"
	"github.com/astracore/crm-backend/internal/services"
)

// LeadItemHandler coordinates the lead sub-entity HTTP handlers: notes,
// tasks, reminders and the history feed.
type LeadItemHandler struct {
	leadService *services.LeadService
}

// NewLeadItemHandler creates a new LeadItemHandler.
func NewLeadItemHandler(leadService *services.LeadService) *LeadItemHandler {
	return &LeadItemHandler{
		leadService: leadService,
	}
}

// ListNotes lists a lead's notes, newest first.
func (h *LeadItemHandler) ListNotes(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	leadID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	notes, err := h.leadService.ListNotes(actor, leadID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, dto.ToLeadNoteDTOs(notes))
}

// AddNote appends a note to a lead.
func (h *LeadItemHandler) AddNote(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	leadID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type NoteRequest struct {
		Content string `json:"content" binding:"required"`
	}
	var req NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	note, err := h.leadService.AddNote(actor, leadID, req.Content)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, dto.ToLeadNoteDTO(*note))
}

// UpdateNote edits a note's content.
func (h *LeadItemHandler) UpdateNote(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	leadID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	noteID, ok := parseIDParam(c, "noteId")
	if !ok {
		return
	}

	type NoteRequest struct {
		Content string `json:"content" binding:"required"`
	}
	var req NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	note, err := h.leadService.UpdateNote(actor, leadID, noteID, req.Content)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, dto.ToLeadNoteDTO(*note))
}

// DeleteNote removes a note.
func (h *LeadItemHandler) DeleteNote(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	leadID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	noteID, ok := parseIDParam(c, "noteId")
	if !ok {
		return
	}

	if err := h.leadService.DeleteNote(actor, leadID, noteID); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": true})
}

// ListLeadTasks lists a lead's tasks ordered by due date.
func (h *LeadItemHandler) ListLeadTasks(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	leadID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	tasks, err := h.leadService.ListLeadTasks(actor, leadID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, dto.ToLeadTaskDTOs(tasks))
}

// AddLeadTask appends a task to a lead.
func (h *LeadItemHandler) AddLeadTask(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	leadID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type TaskRequest struct {
		Title string     `json:"title" binding:"required"`
		DueAt *time.Time `json:"dueAt"`
	}
	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.leadService.AddLeadTask(actor, leadID, req.Title, req.DueAt)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, dto.ToLeadTaskDTO(*task))
}

// UpdateLeadTask applies a partial update to a lead task.
func (h *LeadItemHandler) UpdateLeadTask(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	leadID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	taskID, ok := parseIDParam(c, "taskId")
	if !ok {
		return
	}

	type TaskRequest struct {
		Title      *string    `json:"title"`
		DueAt      *time.Time `json:"dueAt"`
		ClearDueAt bool       `json:"clearDueAt"`
		Completed  *bool      `json:"completed"`
	}
	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.leadService.UpdateLeadTask(actor, leadID, taskID, services.UpdateLeadTaskInput{
		Title:      req.Title,
		DueAt:      req.DueAt,
		ClearDueAt: req.ClearDueAt,
		Completed:  req.Completed,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, dto.ToLeadTaskDTO(*task))
}

// DeleteLeadTask removes a lead task.
func (h *LeadItemHandler) DeleteLeadTask(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	leadID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	taskID, ok := parseIDParam(c, "taskId")
	if !ok {
		return
	}

	if err := h.leadService.DeleteLeadTask(actor, leadID, taskID); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": true})
}

// ListReminders lists a lead's reminders.
func (h *LeadItemHandler) ListReminders(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	leadID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	reminders, err := h.leadService.ListReminders(actor, leadID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, dto.ToLeadReminderDTOs(reminders))
}

// AddReminder appends a reminder to a lead.
func (h *LeadItemHandler) AddReminder(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	leadID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type ReminderRequest struct {
		Title    string    `json:"title" binding:"required"`
		RemindAt time.Time `json:"remindAt" binding:"required"`
	}
	var req ReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	reminder, err := h.leadService.AddReminder(actor, leadID, req.Title, req.RemindAt)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, dto.ToLeadReminderDTO(*reminder))
}

// MarkReminderDone marks a reminder as done.
func (h *LeadItemHandler) MarkReminderDone(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	leadID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	reminderID, ok := parseIDParam(c, "reminderId")
	if !ok {
		return
	}

	reminder, err := h.leadService.MarkReminderDone(actor, leadID, reminderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, dto.ToLeadReminderDTO(*reminder))
}

// DeleteReminder removes a reminder.
func (h *LeadItemHandler) DeleteReminder(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	leadID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	reminderID, ok := parseIDParam(c, "reminderId")
	if !ok {
		return
	}

	if err := h.leadService.DeleteReminder(actor, leadID, reminderID); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": true})
}

// ListHistory returns a lead's audit feed, newest first.
func (h *LeadItemHandler) ListHistory(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	leadID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	entries, err := h.leadService.ListHistory(actor, leadID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, dto.ToLeadHistoryDTOs(entries))
}
