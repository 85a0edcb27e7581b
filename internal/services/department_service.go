package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/astracore/crm-backend/internal/constants"
	"github.com/astracore/crm-backend/internal/models"
	"github.com/astracore/crm-backend/internal/repository"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DepartmentService handles the department registry and the manager link
// reconciliation. The manager assignment is stored on both
// Department.ManagerID and User.DepartmentID with no transaction, so every
// cross-entity write here is best-effort and reads repair the link
// opportunistically.
type DepartmentService struct {
	deptRepo   repository.DepartmentRepository
	userRepo   repository.UserRepository
	statusRepo repository.StatusRepository
	siteRepo   repository.SiteRepository
}

// NewDepartmentService creates a new DepartmentService
func NewDepartmentService(
	deptRepo repository.DepartmentRepository,
	userRepo repository.UserRepository,
	statusRepo repository.StatusRepository,
	siteRepo repository.SiteRepository,
) *DepartmentService {
	return &DepartmentService{
		deptRepo:   deptRepo,
		userRepo:   userRepo,
		statusRepo: statusRepo,
		siteRepo:   siteRepo,
	}
}

// CreateDepartmentInput represents input for creating a department
type CreateDepartmentInput struct {
	Name        string
	Description string
	ManagerID   *uint64
}

// UpdateDepartmentInput represents a partial update of a department
type UpdateDepartmentInput struct {
	Name         *string
	Description  *string
	ManagerID    *uint64
	ClearManager bool
}

// DepartmentDetail is the denormalized read model of a department
type DepartmentDetail struct {
	Department     *models.Department
	Manager        *models.User
	Employees      []models.User
	EmployeesCount int
	StatusesCount  int64
	SitesCount     int64
}

// CreateDepartment creates a department and best-effort places the manager
// into it. A failure to update the manager never rolls back the creation.
func (s *DepartmentService) CreateDepartment(input CreateDepartmentInput) (*models.Department, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	if _, err := s.deptRepo.FindByName(name, 0); err == nil {
		return nil, ErrDepartmentNameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check department name: %w", err)
	}

	dept := &models.Department{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		ManagerID:   input.ManagerID,
	}
	if err := s.deptRepo.Create(dept); err != nil {
		return nil, fmt.Errorf("failed to create department: %w", err)
	}

	if input.ManagerID != nil {
		s.placeManager(*input.ManagerID, dept.ID)
	}
	return dept, nil
}

// ListDepartments returns the departments visible to the actor: super/admin
// see all, a manager sees only the departments they manage, employees none.
func (s *DepartmentService) ListDepartments(actor *models.User) ([]models.Department, error) {
	departments, err := s.deptRepo.FindAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	switch actor.Role {
	case constants.RoleSuper, constants.RoleAdmin:
		return departments, nil
	case constants.RoleManager:
		managed := make([]models.Department, 0)
		for _, dept := range departments {
			if dept.ManagerID != nil && *dept.ManagerID == actor.ID {
				managed = append(managed, dept)
			}
		}
		return managed, nil
	default:
		return nil, ErrAccessDenied
	}
}

// GetDepartmentDetail returns the denormalized department view and performs
// the manager repair-on-read: if the stored manager's own DepartmentID
// disagrees, it is silently fixed before the detail is assembled.
func (s *DepartmentService) GetDepartmentDetail(actor *models.User, id uint64) (*DepartmentDetail, error) {
	dept, err := s.deptRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("failed to find department: %w", err)
	}

	if !s.canSeeDetail(actor, dept) {
		return nil, ErrAccessDenied
	}

	detail := &DepartmentDetail{Department: dept}

	if dept.ManagerID != nil {
		manager, err := s.userRepo.FindByID(*dept.ManagerID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("failed to resolve manager: %w", err)
			}
		} else {
			if manager.DepartmentID == nil || *manager.DepartmentID != dept.ID {
				manager.DepartmentID = &dept.ID
				if err := s.userRepo.Update(manager); err != nil {
					logrus.WithError(err).WithFields(logrus.Fields{
						"department_id": dept.ID,
						"manager_id":    manager.ID,
					}).Warn("manager department repair failed")
				}
			}
			detail.Manager = manager
		}
	}

	employees, err := s.userRepo.FindByDepartment(dept.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	detail.Employees = employees
	detail.EmployeesCount = len(employees)

	if detail.StatusesCount, err = s.statusRepo.CountByDepartment(dept.ID); err != nil {
		return nil, fmt.Errorf("failed to count statuses: %w", err)
	}
	if detail.SitesCount, err = s.siteRepo.CountByDepartment(dept.ID); err != nil {
		return nil, fmt.Errorf("failed to count sites: %w", err)
	}
	return detail, nil
}

// UpdateDepartment applies a partial update. Changing the manager runs a
// three-step best-effort reconciliation; a failure of any step never blocks
// the others or the department update itself.
func (s *DepartmentService) UpdateDepartment(actor *models.User, id uint64, input UpdateDepartmentInput) (*models.Department, error) {
	dept, err := s.deptRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("failed to find department: %w", err)
	}

	if actor.Role != constants.RoleSuper &&
		!(dept.ManagerID != nil && *dept.ManagerID == actor.ID) {
		return nil, ErrAccessDenied
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		if name != dept.Name {
			if _, err := s.deptRepo.FindByName(name, dept.ID); err == nil {
				return nil, ErrDepartmentNameTaken
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("failed to check department name: %w", err)
			}
			dept.Name = name
		}
	}
	if input.Description != nil {
		dept.Description = strings.TrimSpace(*input.Description)
	}

	managerChanged := input.ClearManager || input.ManagerID != nil
	if managerChanged {
		previousManagerID := dept.ManagerID

		var newManagerID *uint64
		if !input.ClearManager {
			newManagerID = input.ManagerID
		}

		// Step (a): release the previous manager if they still point here.
		if previousManagerID != nil &&
			(newManagerID == nil || *previousManagerID != *newManagerID) {
			s.releaseManager(*previousManagerID, dept.ID)
		}

		// Step (b): place the new manager.
		if newManagerID != nil {
			s.placeManager(*newManagerID, dept.ID)
		}

		dept.ManagerID = newManagerID
	}

	if err := s.deptRepo.Update(dept); err != nil {
		return nil, fmt.Errorf("failed to update department: %w", err)
	}
	return dept, nil
}

// DeleteDepartment clears the membership of the department's users, then
// deletes. Leads, statuses and sites of the department are left orphaned.
func (s *DepartmentService) DeleteDepartment(id uint64) error {
	if _, err := s.deptRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDepartmentNotFound
		}
		return fmt.Errorf("failed to find department: %w", err)
	}
	if err := s.userRepo.ClearDepartment(id); err != nil {
		return fmt.Errorf("failed to detach department members: %w", err)
	}
	if err := s.deptRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete department: %w", err)
	}
	return nil
}

func (s *DepartmentService) canSeeDetail(actor *models.User, dept *models.Department) bool {
	switch actor.Role {
	case constants.RoleSuper, constants.RoleAdmin:
		return true
	case constants.RoleManager:
		return dept.ManagerID != nil && *dept.ManagerID == actor.ID
	default:
		return actor.DepartmentID != nil && *actor.DepartmentID == dept.ID
	}
}

// placeManager best-effort sets a user's DepartmentID to the department.
func (s *DepartmentService) placeManager(managerID, departmentID uint64) {
	manager, err := s.userRepo.FindByID(managerID)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"department_id": departmentID,
			"manager_id":    managerID,
		}).Warn("failed to resolve manager for placement")
		return
	}
	manager.DepartmentID = &departmentID
	if err := s.userRepo.Update(manager); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"department_id": departmentID,
			"manager_id":    managerID,
		}).Warn("failed to place manager into department")
	}
}

// releaseManager best-effort clears a user's DepartmentID if it still points
// at the department.
func (s *DepartmentService) releaseManager(managerID, departmentID uint64) {
	manager, err := s.userRepo.FindByID(managerID)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"department_id": departmentID,
			"manager_id":    managerID,
		}).Warn("failed to resolve previous manager")
		return
	}
	if manager.DepartmentID == nil || *manager.DepartmentID != departmentID {
		return
	}
	manager.DepartmentID = nil
	if err := s.userRepo.Update(manager); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"department_id": departmentID,
			"manager_id":    managerID,
		}).Warn("failed to release previous manager")
	}
}
