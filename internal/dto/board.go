package dto

import (
	"time"

	"github.com/astracore/crm-backend/internal/models"
)

// TaskStatusDTO represents a board column in API responses
type TaskStatusDTO struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Color        string    `json:"color"`
	Order        int       `json:"order"`
	IsCompleted  bool      `json:"isCompleted"`
	DepartmentID uint64    `json:"departmentId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TaskPriorityDTO represents a board priority label in API responses
type TaskPriorityDTO struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Color        string    `json:"color"`
	Order        int       `json:"order"`
	DepartmentID uint64    `json:"departmentId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// BoardTaskDTO represents a board task in API responses
type BoardTaskDTO struct {
	ID           uint64     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	StatusID     *uint64    `json:"statusId"`
	StatusName   string     `json:"statusName,omitempty"`
	PriorityID   *uint64    `json:"priorityId"`
	PriorityName string     `json:"priorityName,omitempty"`
	AssigneeID   *uint64    `json:"assigneeId"`
	AssigneeName string     `json:"assigneeName,omitempty"`
	DepartmentID uint64     `json:"departmentId"`
	CreatedBy    uint64     `json:"createdBy"`
	DueDate      *time.Time `json:"dueDate"`
	Order        int        `json:"order"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// ToTaskStatusDTO converts a TaskStatus model to TaskStatusDTO
func ToTaskStatusDTO(status models.TaskStatus) TaskStatusDTO {
	return TaskStatusDTO{
		ID:           status.ID,
		Name:         status.Name,
		Color:        status.Color,
		Order:        status.Order,
		IsCompleted:  status.IsCompleted,
		DepartmentID: status.DepartmentID,
		CreatedAt:    status.CreatedAt,
		UpdatedAt:    status.UpdatedAt,
	}
}

// ToTaskStatusDTOs converts a slice of board columns
func ToTaskStatusDTOs(statuses []models.TaskStatus) []TaskStatusDTO {
	out := make([]TaskStatusDTO, len(statuses))
	for i, status := range statuses {
		out[i] = ToTaskStatusDTO(status)
	}
	return out
}

// ToTaskPriorityDTO converts a TaskPriority model to TaskPriorityDTO
func ToTaskPriorityDTO(priority models.TaskPriority) TaskPriorityDTO {
	return TaskPriorityDTO{
		ID:           priority.ID,
		Name:         priority.Name,
		Color:        priority.Color,
		Order:        priority.Order,
		DepartmentID: priority.DepartmentID,
		CreatedAt:    priority.CreatedAt,
		UpdatedAt:    priority.UpdatedAt,
	}
}

// ToTaskPriorityDTOs converts a slice of priorities
func ToTaskPriorityDTOs(priorities []models.TaskPriority) []TaskPriorityDTO {
	out := make([]TaskPriorityDTO, len(priorities))
	for i, priority := range priorities {
		out[i] = ToTaskPriorityDTO(priority)
	}
	return out
}

// ToBoardTaskDTO converts a BoardTask model to BoardTaskDTO
func ToBoardTaskDTO(task models.BoardTask) BoardTaskDTO {
	out := BoardTaskDTO{
		ID:           task.ID,
		Title:        task.Title,
		Description:  task.Description,
		StatusID:     task.StatusID,
		PriorityID:   task.PriorityID,
		AssigneeID:   task.AssigneeID,
		DepartmentID: task.DepartmentID,
		CreatedBy:    task.CreatedBy,
		DueDate:      task.DueDate,
		Order:        task.Order,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}
	if task.Status != nil {
		out.StatusName = task.Status.Name
	}
	if task.Priority != nil {
		out.PriorityName = task.Priority.Name
	}
	if task.Assignee != nil {
		out.AssigneeName = task.Assignee.DisplayName()
	}
	return out
}

// ToBoardTaskDTOs converts a slice of board tasks
func ToBoardTaskDTOs(tasks []models.BoardTask) []BoardTaskDTO {
	out := make([]BoardTaskDTO, len(tasks))
	for i, task := range tasks {
		out[i] = ToBoardTaskDTO(task)
	}
	return out
}
