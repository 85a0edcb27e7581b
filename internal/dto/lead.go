package dto

import (
	"time"

	"github.com/astracore/crm-backend/internal/models"
)

// LeadDTO represents a lead in API responses. Status and department names
// come from preloaded relations; assignedTo is the flat list of assignee IDs.
type LeadDTO struct {
	ID             uint64         `json:"id"`
	Name           string         `json:"name"`
	LastName       string         `json:"lastName"`
	Phone          string         `json:"phone"`
	Phone2         string         `json:"phone2"`
	Email          string         `json:"email"`
	Email2         string         `json:"email2"`
	Comment        string         `json:"comment"`
	StatusID       *uint64        `json:"statusId"`
	StatusName     string         `json:"statusName,omitempty"`
	StatusColor    string         `json:"statusColor,omitempty"`
	DepartmentID   uint64         `json:"departmentId"`
	DepartmentName string         `json:"departmentName,omitempty"`
	AssignedTo     []uint64       `json:"assignedTo"`
	CreatedBy      uint64         `json:"createdBy"`
	Source         string         `json:"source"`
	SiteID         *uint64        `json:"siteId"`
	SourceMeta     models.JSONMap `json:"sourceMeta,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// LeadListResponse represents a paginated list of leads
type LeadListResponse struct {
	Items []LeadDTO `json:"items"`
	Total int64     `json:"total"`
	Skip  int       `json:"skip"`
	Limit int       `json:"limit"`
}

// ToLeadDTO converts a Lead model to LeadDTO
func ToLeadDTO(lead models.Lead) LeadDTO {
	assignedTo := make([]uint64, 0, len(lead.Assignments))
	for _, assignment := range lead.Assignments {
		assignedTo = append(assignedTo, assignment.UserID)
	}

	out := LeadDTO{
		ID:           lead.ID,
		Name:         lead.Name,
		LastName:     lead.LastName,
		Phone:        lead.Phone,
		Phone2:       lead.Phone2,
		Email:        lead.Email,
		Email2:       lead.Email2,
		Comment:      lead.Comment,
		StatusID:     lead.StatusID,
		DepartmentID: lead.DepartmentID,
		AssignedTo:   assignedTo,
		CreatedBy:    lead.CreatedBy,
		Source:       lead.Source,
		SiteID:       lead.SiteID,
		SourceMeta:   lead.SourceMeta,
		CreatedAt:    lead.CreatedAt,
		UpdatedAt:    lead.UpdatedAt,
	}
	if lead.Status != nil {
		out.StatusName = lead.Status.Name
		out.StatusColor = lead.Status.Color
	}
	if lead.Department.ID != 0 {
		out.DepartmentName = lead.Department.Name
	}
	return out
}

// ToLeadDTOs converts a slice of leads
func ToLeadDTOs(leads []models.Lead) []LeadDTO {
	out := make([]LeadDTO, len(leads))
	for i, lead := range leads {
		out[i] = ToLeadDTO(lead)
	}
	return out
}

// LeadNoteDTO represents a lead note in API responses
type LeadNoteDTO struct {
	ID         uint64    `json:"id"`
	LeadID     uint64    `json:"leadId"`
	AuthorID   uint64    `json:"authorId"`
	AuthorName string    `json:"authorName,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ToLeadNoteDTO converts a LeadNote model to LeadNoteDTO
func ToLeadNoteDTO(note models.LeadNote) LeadNoteDTO {
	out := LeadNoteDTO{
		ID:        note.ID,
		LeadID:    note.LeadID,
		AuthorID:  note.AuthorID,
		Content:   note.Content,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
	if note.Author.ID != 0 {
		out.AuthorName = note.Author.DisplayName()
	}
	return out
}

// ToLeadNoteDTOs converts a slice of notes
func ToLeadNoteDTOs(notes []models.LeadNote) []LeadNoteDTO {
	out := make([]LeadNoteDTO, len(notes))
	for i, note := range notes {
		out[i] = ToLeadNoteDTO(note)
	}
	return out
}

// LeadTaskDTO represents a lead task in API responses
type LeadTaskDTO struct {
	ID        uint64     `json:"id"`
	LeadID    uint64     `json:"leadId"`
	CreatedBy uint64     `json:"createdBy"`
	Title     string     `json:"title"`
	DueAt     *time.Time `json:"dueAt"`
	Completed bool       `json:"completed"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// ToLeadTaskDTO converts a LeadTask model to LeadTaskDTO
func ToLeadTaskDTO(task models.LeadTask) LeadTaskDTO {
	return LeadTaskDTO{
		ID:        task.ID,
		LeadID:    task.LeadID,
		CreatedBy: task.CreatedBy,
		Title:     task.Title,
		DueAt:     task.DueAt,
		Completed: task.Completed,
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
	}
}

// ToLeadTaskDTOs converts a slice of lead tasks
func ToLeadTaskDTOs(tasks []models.LeadTask) []LeadTaskDTO {
	out := make([]LeadTaskDTO, len(tasks))
	for i, task := range tasks {
		out[i] = ToLeadTaskDTO(task)
	}
	return out
}

// LeadReminderDTO represents a lead reminder in API responses
type LeadReminderDTO struct {
	ID        uint64    `json:"id"`
	LeadID    uint64    `json:"leadId"`
	CreatedBy uint64    `json:"createdBy"`
	Title     string    `json:"title"`
	RemindAt  time.Time `json:"remindAt"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ToLeadReminderDTO converts a LeadReminder model to LeadReminderDTO
func ToLeadReminderDTO(reminder models.LeadReminder) LeadReminderDTO {
	return LeadReminderDTO{
		ID:        reminder.ID,
		LeadID:    reminder.LeadID,
		CreatedBy: reminder.CreatedBy,
		Title:     reminder.Title,
		RemindAt:  reminder.RemindAt,
		Done:      reminder.Done,
		CreatedAt: reminder.CreatedAt,
		UpdatedAt: reminder.UpdatedAt,
	}
}

// ToLeadReminderDTOs converts a slice of reminders
func ToLeadReminderDTOs(reminders []models.LeadReminder) []LeadReminderDTO {
	out := make([]LeadReminderDTO, len(reminders))
	for i, reminder := range reminders {
		out[i] = ToLeadReminderDTO(reminder)
	}
	return out
}

// LeadHistoryDTO represents one history entry in API responses. Entries
// recorded by the public capture endpoint carry userID 0 and display as
// "site".
type LeadHistoryDTO struct {
	ID        uint64         `json:"id"`
	LeadID    uint64         `json:"leadId"`
	UserID    uint64         `json:"userId"`
	UserName  string         `json:"userName"`
	Action    string         `json:"action"`
	Meta      models.JSONMap `json:"meta,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// ToLeadHistoryDTO converts a LeadHistory model to LeadHistoryDTO
func ToLeadHistoryDTO(entry models.LeadHistory) LeadHistoryDTO {
	out := LeadHistoryDTO{
		ID:        entry.ID,
		LeadID:    entry.LeadID,
		UserID:    entry.UserID,
		Action:    entry.Action,
		Meta:      entry.Meta,
		CreatedAt: entry.CreatedAt,
	}
	switch {
	case entry.UserID == 0:
		out.UserName = "site"
	case entry.User.ID != 0:
		out.UserName = entry.User.DisplayName()
	}
	return out
}

// ToLeadHistoryDTOs converts a slice of history entries
func ToLeadHistoryDTOs(entries []models.LeadHistory) []LeadHistoryDTO {
	out := make([]LeadHistoryDTO, len(entries))
	for i, entry := range entries {
		out[i] = ToLeadHistoryDTO(entry)
	}
	return out
}
