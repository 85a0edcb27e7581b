package dto

import (
	"time"

	"github.com/astracore/crm-backend/internal/models"
	"github.com/astracore/crm-backend/internal/services"
)

// DepartmentDTO represents a department in API responses
type DepartmentDTO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ManagerID   *uint64   `json:"managerId"`
	Manager     *UserDTO  `json:"manager,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// DepartmentDetailDTO represents a department with its members and resource
// counts
type DepartmentDetailDTO struct {
	DepartmentDTO
	Employees      []UserDTO `json:"employees"`
	EmployeesCount int       `json:"employeesCount"`
	StatusesCount  int64     `json:"statusesCount"`
	SitesCount     int64     `json:"sitesCount"`
}

// ToDepartmentDTO converts a Department model to DepartmentDTO
func ToDepartmentDTO(dept models.Department) DepartmentDTO {
	out := DepartmentDTO{
		ID:          dept.ID,
		Name:        dept.Name,
		Description: dept.Description,
		ManagerID:   dept.ManagerID,
		CreatedAt:   dept.CreatedAt,
		UpdatedAt:   dept.UpdatedAt,
	}
	if dept.Manager != nil {
		manager := ToUserDTO(*dept.Manager)
		out.Manager = &manager
	}
	return out
}

// ToDepartmentDTOs converts a slice of departments
func ToDepartmentDTOs(departments []models.Department) []DepartmentDTO {
	out := make([]DepartmentDTO, len(departments))
	for i, dept := range departments {
		out[i] = ToDepartmentDTO(dept)
	}
	return out
}

// ToDepartmentDetailDTO converts a department detail view to DTO
func ToDepartmentDetailDTO(detail *services.DepartmentDetail) DepartmentDetailDTO {
	out := DepartmentDetailDTO{
		DepartmentDTO:  ToDepartmentDTO(*detail.Department),
		Employees:      ToUserDTOs(detail.Employees),
		EmployeesCount: detail.EmployeesCount,
		StatusesCount:  detail.StatusesCount,
		SitesCount:     detail.SitesCount,
	}
	if detail.Manager != nil {
		manager := ToUserDTO(*detail.Manager)
		out.Manager = &manager
	}
	return out
}
