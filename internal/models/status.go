package models

import "time"

// Status is a department-scoped lead pipeline stage.
type Status struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Name         string    `gorm:"type:varchar(100);not null" json:"name"`
	Description  string    `gorm:"type:text" json:"description"`
	Color        string    `gorm:"type:varchar(20);not null;default:'#9ca3af'" json:"color"`
	Order        int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	DepartmentID uint64    `gorm:"index;not null" json:"department_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Department Department `gorm:"foreignKey:DepartmentID" json:"-"`
}
