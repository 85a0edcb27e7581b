package models

import "time"

type Department struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	ManagerID   *uint64   `gorm:"index" json:"manager_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Manager *User  `gorm:"foreignKey:ManagerID" json:"-"`
	Members []User `gorm:"foreignKey:DepartmentID" json:"-"`
}
