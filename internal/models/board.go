package models

import "time"

// TaskStatus is a department-scoped kanban column for the internal task board.
type TaskStatus struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Name         string    `gorm:"type:varchar(100);not null" json:"name"`
	Color        string    `gorm:"type:varchar(20);not null;default:'#cccccc'" json:"color"`
	Order        int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	IsCompleted  bool      `gorm:"not null;default:false" json:"is_completed"`
	DepartmentID uint64    `gorm:"index;not null" json:"department_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TaskPriority is a department-scoped priority label for board tasks.
type TaskPriority struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Name         string    `gorm:"type:varchar(100);not null" json:"name"`
	Color        string    `gorm:"type:varchar(20);not null;default:'#cccccc'" json:"color"`
	Order        int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	DepartmentID uint64    `gorm:"index;not null" json:"department_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BoardTask is a card on the internal task board.
type BoardTask struct {
	ID           uint64     `gorm:"primarykey" json:"id"`
	Title        string     `gorm:"type:varchar(255);not null" json:"title"`
	Description  string     `gorm:"type:text" json:"description"`
	StatusID     *uint64    `gorm:"index" json:"status_id"`
	PriorityID   *uint64    `json:"priority_id"`
	AssigneeID   *uint64    `gorm:"index" json:"assignee_id"`
	DepartmentID uint64     `gorm:"index;not null" json:"department_id"`
	CreatedBy    uint64     `gorm:"not null" json:"created_by"`
	DueDate      *time.Time `json:"due_date"`
	Order        int        `gorm:"column:sort_order;not null;default:0" json:"order"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Status   *TaskStatus   `gorm:"foreignKey:StatusID" json:"-"`
	Priority *TaskPriority `gorm:"foreignKey:PriorityID" json:"-"`
	Assignee *User         `gorm:"foreignKey:AssigneeID" json:"-"`
}
