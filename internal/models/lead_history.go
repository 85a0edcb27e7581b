package models

import "time"

// History actions recorded for a lead. The log is append-only.
const (
	HistoryActionCreated       = "created"
	HistoryActionUpdated       = "updated"
	HistoryActionStatusChanged = "status_changed"
	HistoryActionAssigned      = "assigned"
	HistoryActionNoteAdded       = "note_added"
	HistoryActionNoteEdited      = "note_edited"
	HistoryActionNoteDeleted     = "note_deleted"
	HistoryActionTaskAdded       = "task_added"
	HistoryActionTaskUpdated     = "task_updated"
	HistoryActionTaskDeleted     = "task_deleted"
	HistoryActionReminderAdded   = "reminder_added"
	HistoryActionReminderDone    = "reminder_done"
	HistoryActionReminderDeleted = "reminder_deleted"
)

type LeadHistory struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	LeadID    uint64    `gorm:"index;not null" json:"lead_id"`
	UserID    uint64    `gorm:"not null" json:"user_id"`
	Action    string    `gorm:"type:varchar(50);not null" json:"action"`
	Meta      JSONMap   `gorm:"type:text" json:"meta"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
