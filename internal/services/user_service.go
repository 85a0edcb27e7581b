package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/astracore/crm-backend/internal/constants"
	"github.com/astracore/crm-backend/internal/models"
	"github.com/astracore/crm-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService handles the user directory business logic.
type UserService struct {
	userRepo repository.UserRepository
	leadRepo repository.LeadRepository
	access   *AccessService
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository, leadRepo repository.LeadRepository, access *AccessService) *UserService {
	return &UserService{
		userRepo: userRepo,
		leadRepo: leadRepo,
		access:   access,
	}
}

// CreateUserInput represents input for creating a user
type CreateUserInput struct {
	Email        string
	Password     string
	FirstName    string
	LastName     string
	Role         constants.Role
	DepartmentID *uint64
}

// UpdateUserInput represents a partial update of a user
type UpdateUserInput struct {
	Email           *string
	Password        *string
	FirstName       *string
	LastName        *string
	Role            *constants.Role
	DepartmentID    *uint64
	ClearDepartment bool
	IsActive        *bool
}

// CreateUser creates a user subject to the role-hierarchy table. A manager
// creator always places the new user into their own department.
func (s *UserService) CreateUser(actor *models.User, input CreateUserInput) (*models.User, error) {
	role := input.Role
	if role == "" {
		role = constants.DefaultRole
	}
	if !constants.ValidRole(role) {
		return nil, ErrInvalidRole
	}
	if !constants.CanCreateRole(actor.Role, role) {
		return nil, ErrRoleNotAllowed
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	departmentID := input.DepartmentID
	if actor.Role == constants.RoleManager {
		if actor.DepartmentID == nil {
			return nil, ErrManagerNoDepartment
		}
		departmentID = actor.DepartmentID
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, ErrNameRequired
	}
	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Role:         role,
		DepartmentID: departmentID,
		IsActive:     true,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// ListUsers lists all users. The directory is restricted to super/admin.
func (s *UserService) ListUsers(actor *models.User) ([]models.User, error) {
	if actor.Role != constants.RoleSuper && actor.Role != constants.RoleAdmin {
		return nil, ErrAccessDenied
	}
	return s.userRepo.FindAll()
}

// GetUser returns a user visible to the actor: super/admin, or own profile.
func (s *UserService) GetUser(actor *models.User, id uint64) (*models.User, error) {
	if actor.Role != constants.RoleSuper && actor.Role != constants.RoleAdmin && actor.ID != id {
		return nil, ErrAccessDenied
	}
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// UpdateUser applies a partial update under the hierarchy rules: users may
// edit their own profile but not their own role; admins may not touch super
// or other admin accounts; role changes are re-gated by the hierarchy table.
func (s *UserService) UpdateUser(actor *models.User, id uint64, input UpdateUserInput) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	self := actor.ID == id
	if self {
		if input.Role != nil && *input.Role != user.Role {
			return nil, ErrOwnRoleChange
		}
	} else {
		if actor.Role != constants.RoleSuper && actor.Role != constants.RoleAdmin {
			return nil, ErrAccessDenied
		}
		if actor.Role == constants.RoleAdmin &&
			(user.Role == constants.RoleSuper || user.Role == constants.RoleAdmin) {
			return nil, ErrAccessDenied
		}
	}

	if input.Role != nil && *input.Role != user.Role {
		if !constants.ValidRole(*input.Role) {
			return nil, ErrInvalidRole
		}
		if !constants.CanCreateRole(actor.Role, *input.Role) {
			return nil, ErrRoleNotAllowed
		}
		user.Role = *input.Role
	}

	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email != "" && email != user.Email {
			if existing, err := s.userRepo.FindByEmail(email); err == nil && existing.ID != user.ID {
				return nil, ErrEmailTaken
			} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
			user.Email = email
		}
	}

	if input.Password != nil && *input.Password != "" {
		if len(*input.Password) < constants.MinPasswordLength {
			return nil, ErrPasswordTooShort
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.ClearDepartment {
		user.DepartmentID = nil
	} else if input.DepartmentID != nil {
		user.DepartmentID = input.DepartmentID
	}
	if input.IsActive != nil && !self {
		user.IsActive = *input.IsActive
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// DeleteUser removes a user. Self-deletion is never allowed; admins may only
// delete lower-ranked accounts.
func (s *UserService) DeleteUser(actor *models.User, id uint64) error {
	if actor.ID == id {
		return ErrSelfDelete
	}
	if actor.Role != constants.RoleSuper && actor.Role != constants.RoleAdmin {
		return ErrAccessDenied
	}
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}
	if actor.Role == constants.RoleAdmin &&
		(user.Role == constants.RoleSuper || user.Role == constants.RoleAdmin) {
		return ErrAccessDenied
	}
	if err := s.userRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// UserLeadsInput represents filters for a user's assigned leads
type UserLeadsInput struct {
	Name         string
	Phone        string
	Email        string
	StatusID     *uint64
	DepartmentID *uint64
	SortBy       string
	SortDesc     bool
	Skip         int
	Limit        int
}

// UserLeads lists leads assigned to the target user, restricted to
// departments the actor may view.
func (s *UserService) UserLeads(actor *models.User, targetID uint64, input UserLeadsInput) ([]models.Lead, int64, error) {
	if _, err := s.GetUser(actor, targetID); err != nil {
		return nil, 0, err
	}

	allowed, err := s.access.AllowedDepartmentIDs(actor)
	if err != nil {
		return nil, 0, err
	}
	if input.DepartmentID != nil {
		var scoped []uint64
		for _, id := range allowed {
			if id == *input.DepartmentID {
				scoped = append(scoped, id)
			}
		}
		allowed = scoped
	}

	filter := repository.LeadFilter{
		DepartmentIDs: allowed,
		Name:          input.Name,
		Phone:         input.Phone,
		Email:         input.Email,
		StatusID:      input.StatusID,
		AssignedTo:    &targetID,
		SortBy:        leadSortColumn(input.SortBy),
		SortDesc:      input.SortDesc,
		Skip:          input.Skip,
		Limit:         input.Limit,
	}
	return s.leadRepo.List(filter)
}

// UserLeadStats summarizes leads assigned to a user: total, per-status counts
// and a per-day series over a clamped window.
type UserLeadStats struct {
	Total    int64              `json:"total"`
	ByStatus []StatusCountEntry `json:"byStatus"`
	OverTime []DayCount         `json:"overTime"`
}

// StatusCountEntry is a per-status slice of an aggregate
type StatusCountEntry struct {
	StatusID *uint64 `json:"statusId"`
	Count    int64   `json:"count"`
}

// DayCount is one point of a zero-filled daily series
type DayCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// GetUserLeadStats computes assignment statistics for a user. Days is
// clamped to [7, 90], defaulting to 14.
func (s *UserService) GetUserLeadStats(actor *models.User, targetID uint64, days int) (*UserLeadStats, error) {
	if _, err := s.GetUser(actor, targetID); err != nil {
		return nil, err
	}

	if days == 0 {
		days = 14
	}
	if days < 7 {
		days = 7
	}
	if days > 90 {
		days = 90
	}

	total, err := s.leadRepo.CountForUser(targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}

	byStatus, err := s.leadRepo.CountForUserByStatus(targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to count leads by status: %w", err)
	}

	since := startOfDayUTC(time.Now().UTC().AddDate(0, 0, -(days - 1)))
	timestamps, err := s.leadRepo.AssignedCreatedSince(targetID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load lead timestamps: %w", err)
	}

	stats := &UserLeadStats{
		Total:    total,
		ByStatus: make([]StatusCountEntry, 0, len(byStatus)),
		OverTime: bucketByDay(timestamps, since, days),
	}
	for _, row := range byStatus {
		stats.ByStatus = append(stats.ByStatus, StatusCountEntry{StatusID: row.StatusID, Count: row.Count})
	}
	return stats, nil
}

// leadSortColumn maps an external sort key onto a whitelisted column name,
// falling back to created_at.
func leadSortColumn(key string) string {
	switch key {
	case "name":
		return "name"
	case "phone":
		return "phone"
	case "email":
		return "email"
	case "statusId", "status_id":
		return "status_id"
	case "createdAt", "created_at", "":
		return "created_at"
	default:
		return "created_at"
	}
}

func startOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// bucketByDay builds a zero-filled continuous daily series from raw
// timestamps. Bucketing happens here to stay portable across SQL dialects.
func bucketByDay(timestamps []time.Time, since time.Time, days int) []DayCount {
	counts := make(map[string]int64, days)
	for _, ts := range timestamps {
		counts[ts.UTC().Format("2006-01-02")]++
	}
	series := make([]DayCount, 0, days)
	for i := 0; i < days; i++ {
		date := since.AddDate(0, 0, i).Format("2006-01-02")
		series = append(series, DayCount{Date: date, Count: counts[date]})
	}
	return series
}
