package services

import (
	"errors"
	"fmt"

	"github.com/astracore/crm-backend/internal/constants"
	"github.com/astracore/crm-backend/internal/models"
	"github.com/astracore/crm-backend/internal/repository"
	"gorm.io/gorm"
)

// AccessService evaluates the department-scoped capability predicates used by
// the lead, status and site services. The three predicates are graduated:
// manage implies view, view and create share the employee membership rule.
type AccessService struct {
	userRepo repository.UserRepository
	deptRepo repository.DepartmentRepository
}

// NewAccessService creates a new AccessService
func NewAccessService(userRepo repository.UserRepository, deptRepo repository.DepartmentRepository) *AccessService {
	return &AccessService{
		userRepo: userRepo,
		deptRepo: deptRepo,
	}
}

// CanManageDepartment is true for super, or for the department's resolved
// manager. Admins do NOT manage departments they are not the manager of.
func (s *AccessService) CanManageDepartment(departmentID uint64, user *models.User) (bool, error) {
	if user.Role == constants.RoleSuper {
		return true, nil
	}
	dept, err := s.deptRepo.FindByID(departmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to resolve department: %w", err)
	}
	return dept.ManagerID != nil && *dept.ManagerID == user.ID, nil
}

// CanViewDepartment is true for super and admin, for the department's
// manager, and for an employee whose own department matches.
func (s *AccessService) CanViewDepartment(departmentID uint64, user *models.User) (bool, error) {
	if user.Role == constants.RoleSuper || user.Role == constants.RoleAdmin {
		return true, nil
	}
	manages, err := s.CanManageDepartment(departmentID, user)
	if err != nil {
		return false, err
	}
	if manages {
		return true, nil
	}
	if user.Role == constants.RoleEmployee && user.DepartmentID != nil && *user.DepartmentID == departmentID {
		return true, nil
	}
	return false, nil
}

// CanCreateInDepartment shares the view rule exactly: employees qualify by
// department membership, managers by managing, super/admin globally.
func (s *AccessService) CanCreateInDepartment(departmentID uint64, user *models.User) (bool, error) {
	return s.CanViewDepartment(departmentID, user)
}

// AllowedAssignees returns the set of user IDs a lead in the department may
// be assigned to: the department's manager plus its current members. The set
// is recomputed fresh on every call, never cached.
func (s *AccessService) AllowedAssignees(departmentID uint64) (map[uint64]bool, error) {
	allowed := make(map[uint64]bool)

	dept, err := s.deptRepo.FindByID(departmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return allowed, nil
		}
		return nil, fmt.Errorf("failed to resolve department: %w", err)
	}
	if dept.ManagerID != nil {
		allowed[*dept.ManagerID] = true
	}

	members, err := s.userRepo.FindByDepartment(departmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list department members: %w", err)
	}
	for _, member := range members {
		allowed[member.ID] = true
	}
	return allowed, nil
}

// AllowedDepartmentIDs resolves the departments whose data the user may see:
// super/admin see all, a manager sees the departments they manage, an
// employee sees their own department.
func (s *AccessService) AllowedDepartmentIDs(user *models.User) ([]uint64, error) {
	switch user.Role {
	case constants.RoleSuper, constants.RoleAdmin:
		departments, err := s.deptRepo.FindAll()
		if err != nil {
			return nil, fmt.Errorf("failed to list departments: %w", err)
		}
		ids := make([]uint64, 0, len(departments))
		for _, dept := range departments {
			ids = append(ids, dept.ID)
		}
		return ids, nil
	case constants.RoleManager:
		departments, err := s.deptRepo.FindAll()
		if err != nil {
			return nil, fmt.Errorf("failed to list departments: %w", err)
		}
		var ids []uint64
		for _, dept := range departments {
			if dept.ManagerID != nil && *dept.ManagerID == user.ID {
				ids = append(ids, dept.ID)
			}
		}
		return ids, nil
	default:
		if user.DepartmentID != nil {
			return []uint64{*user.DepartmentID}, nil
		}
		return []uint64{}, nil
	}
}
