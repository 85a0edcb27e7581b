package models

import "time"

// LeadNote is a free-form note attached to a lead. Only the author, a
// department manager, an admin or super may edit or remove a note.
type LeadNote struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	LeadID    uint64    `gorm:"index;not null" json:"lead_id"`
	AuthorID  uint64    `gorm:"not null" json:"author_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Author User `gorm:"foreignKey:AuthorID" json:"-"`
}

// LeadTask is a follow-up action item on a lead.
type LeadTask struct {
	ID        uint64     `gorm:"primarykey" json:"id"`
	LeadID    uint64     `gorm:"index;not null" json:"lead_id"`
	CreatedBy uint64     `gorm:"not null" json:"created_by"`
	Title     string     `gorm:"type:varchar(255);not null" json:"title"`
	DueAt     *time.Time `gorm:"index" json:"due_at"`
	Completed bool       `gorm:"not null;default:false" json:"completed"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	Lead Lead `gorm:"foreignKey:LeadID" json:"-"`
}

// LeadReminder is a dated reminder on a lead.
type LeadReminder struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	LeadID    uint64    `gorm:"index;not null" json:"lead_id"`
	CreatedBy uint64    `gorm:"not null" json:"created_by"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	RemindAt  time.Time `gorm:"index;not null" json:"remind_at"`
	Done      bool      `gorm:"not null;default:false" json:"done"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Lead Lead `gorm:"foreignKey:LeadID" json:"-"`
}
