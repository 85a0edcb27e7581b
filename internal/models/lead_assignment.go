package models

import "time"

// LeadAssignment links a lead to an assigned user.
type LeadAssignment struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	LeadID    uint64    `gorm:"uniqueIndex:idx_lead_assignments_lead_user;not null" json:"lead_id"`
	UserID    uint64    `gorm:"uniqueIndex:idx_lead_assignments_lead_user;index;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	Lead Lead `gorm:"foreignKey:LeadID" json:"-"`
	User User `gorm:"foreignKey:UserID" json:"-"`
}
