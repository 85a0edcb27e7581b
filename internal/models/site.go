package models

import "time"

// Site is a registered external web site that may submit leads through the
// embeddable widget. The token authenticates widget submissions.
type Site struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	URL          string    `gorm:"type:varchar(255);not null" json:"url"`
	Description  string    `gorm:"type:text" json:"description"`
	Token        string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"token"`
	DepartmentID uint64    `gorm:"index;not null" json:"department_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Department Department `gorm:"foreignKey:DepartmentID" json:"-"`
}
