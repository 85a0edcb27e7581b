package models

import (
	"time"

	"github.com/astracore/crm-backend/internal/constants"
)

type User struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	Email        string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	FirstName    string         `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName     string         `gorm:"type:varchar(100);not null" json:"last_name"`
	Role         constants.Role `gorm:"type:varchar(20);not null;default:'employee'" json:"role"`
	DepartmentID *uint64        `gorm:"index" json:"department_id"`
	IsActive     bool           `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt  *time.Time     `json:"last_login_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`

	// Relations
	Department  *Department      `gorm:"foreignKey:DepartmentID" json:"-"`
	Assignments []LeadAssignment `gorm:"foreignKey:UserID" json:"-"`
}

// DisplayName is used in audit entries and dashboard summaries.
func (u *User) DisplayName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Email
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
