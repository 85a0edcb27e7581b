package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/astracore/crm-backend/internal/models"
	"github.com/astracore/crm-backend/internal/repository"
	"gorm.io/gorm"
)

// StatusService handles department-scoped lead pipeline stages.
type StatusService struct {
	statusRepo repository.StatusRepository
	leadRepo   repository.LeadRepository
	access     *AccessService
}

// NewStatusService creates a new StatusService
func NewStatusService(statusRepo repository.StatusRepository, leadRepo repository.LeadRepository, access *AccessService) *StatusService {
	return &StatusService{
		statusRepo: statusRepo,
		leadRepo:   leadRepo,
		access:     access,
	}
}

// CreateStatusInput represents input for creating a status
type CreateStatusInput struct {
	Name         string
	Description  string
	Color        string
	DepartmentID uint64
}

// UpdateStatusInput represents a partial update of a status
type UpdateStatusInput struct {
	Name         *string
	Description  *string
	Color        *string
	Order        *int
	DepartmentID *uint64
}

// CreateStatus creates a pipeline stage, appended past the department's
// current maximum order.
func (s *StatusService) CreateStatus(actor *models.User, input CreateStatusInput) (*models.Status, error) {
	manages, err := s.access.CanManageDepartment(input.DepartmentID, actor)
	if err != nil {
		return nil, err
	}
	if !manages {
		return nil, ErrAccessDenied
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	maxOrder, err := s.statusRepo.MaxOrder(input.DepartmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve status order: %w", err)
	}

	color := input.Color
	if color == "" {
		color = "#9ca3af"
	}

	status := &models.Status{
		Name:         name,
		Description:  strings.TrimSpace(input.Description),
		Color:        color,
		Order:        maxOrder + 1,
		DepartmentID: input.DepartmentID,
	}
	if err := s.statusRepo.Create(status); err != nil {
		return nil, fmt.Errorf("failed to create status: %w", err)
	}
	return status, nil
}

// ListStatuses lists a department's statuses in pipeline order.
func (s *StatusService) ListStatuses(actor *models.User, departmentID uint64) ([]models.Status, error) {
	visible, err := s.access.CanViewDepartment(departmentID, actor)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, ErrAccessDenied
	}
	return s.statusRepo.FindByDepartment(departmentID)
}

// GetStatus returns a single status visible to the actor.
func (s *StatusService) GetStatus(actor *models.User, id uint64) (*models.Status, error) {
	status, err := s.statusRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStatusNotFound
		}
		return nil, fmt.Errorf("failed to find status: %w", err)
	}
	visible, err := s.access.CanViewDepartment(status.DepartmentID, actor)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, ErrAccessDenied
	}
	return status, nil
}

// UpdateStatus applies a partial update. Moving a status to another
// department requires manage rights on both sides.
func (s *StatusService) UpdateStatus(actor *models.User, id uint64, input UpdateStatusInput) (*models.Status, error) {
	status, err := s.statusRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStatusNotFound
		}
		return nil, fmt.Errorf("failed to find status: %w", err)
	}

	manages, err := s.access.CanManageDepartment(status.DepartmentID, actor)
	if err != nil {
		return nil, err
	}
	if !manages {
		return nil, ErrAccessDenied
	}

	if input.DepartmentID != nil && *input.DepartmentID != status.DepartmentID {
		managesTarget, err := s.access.CanManageDepartment(*input.DepartmentID, actor)
		if err != nil {
			return nil, err
		}
		if !managesTarget {
			return nil, ErrAccessDenied
		}
		status.DepartmentID = *input.DepartmentID
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		status.Name = name
	}
	if input.Description != nil {
		status.Description = strings.TrimSpace(*input.Description)
	}
	if input.Color != nil && *input.Color != "" {
		status.Color = *input.Color
	}
	if input.Order != nil {
		status.Order = *input.Order
	}

	if err := s.statusRepo.Update(status); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}
	return status, nil
}

// DeleteStatus removes a status and detaches it from any leads still
// referencing it.
func (s *StatusService) DeleteStatus(actor *models.User, id uint64) error {
	status, err := s.statusRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStatusNotFound
		}
		return fmt.Errorf("failed to find status: %w", err)
	}

	manages, err := s.access.CanManageDepartment(status.DepartmentID, actor)
	if err != nil {
		return err
	}
	if !manages {
		return ErrAccessDenied
	}

	if err := s.leadRepo.ClearStatus(id); err != nil {
		return fmt.Errorf("failed to detach status from leads: %w", err)
	}
	if err := s.statusRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete status: %w", err)
	}
	return nil
}
