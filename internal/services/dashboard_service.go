package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/astracore/crm-backend/internal/constants"
	"github.com/astracore/crm-backend/internal/models"
	"github.com/astracore/crm-backend/internal/repository"
)

// DashboardService computes read-only cross-cutting views. Every view is
// scoped to the departments the actor may see.
type DashboardService struct {
	leadRepo   repository.LeadRepository
	itemRepo   repository.LeadItemRepository
	userRepo   repository.UserRepository
	deptRepo   repository.DepartmentRepository
	statusRepo repository.StatusRepository
	access     *AccessService
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	leadRepo repository.LeadRepository,
	itemRepo repository.LeadItemRepository,
	userRepo repository.UserRepository,
	deptRepo repository.DepartmentRepository,
	statusRepo repository.StatusRepository,
	access *AccessService,
) *DashboardService {
	return &DashboardService{
		leadRepo:   leadRepo,
		itemRepo:   itemRepo,
		userRepo:   userRepo,
		deptRepo:   deptRepo,
		statusRepo: statusRepo,
		access:     access,
	}
}

// Summary is the headline dashboard card
type Summary struct {
	UsersCount       int64 `json:"usersCount"`
	DepartmentsCount int   `json:"departmentsCount"`
	LeadsCount       int64 `json:"leadsCount"`
}

// GetSummary counts users, departments and leads within scope.
func (s *DashboardService) GetSummary(actor *models.User) (*Summary, error) {
	allowed, err := s.access.AllowedDepartmentIDs(actor)
	if err != nil {
		return nil, err
	}

	var usersCount int64
	if actor.Role == constants.RoleSuper || actor.Role == constants.RoleAdmin {
		users, err := s.userRepo.FindAll()
		if err != nil {
			return nil, fmt.Errorf("failed to count users: %w", err)
		}
		usersCount = int64(len(users))
	} else {
		for _, deptID := range allowed {
			members, err := s.userRepo.FindByDepartment(deptID)
			if err != nil {
				return nil, fmt.Errorf("failed to count users: %w", err)
			}
			usersCount += int64(len(members))
		}
	}

	leadsCount, err := s.leadRepo.Count(allowed)
	if err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}

	return &Summary{
		UsersCount:       usersCount,
		DepartmentsCount: len(allowed),
		LeadsCount:       leadsCount,
	}, nil
}

// NamedStatusCount is a per-status count with its display name
type NamedStatusCount struct {
	StatusID   *uint64 `json:"statusId"`
	StatusName string  `json:"statusName"`
	Count      int64   `json:"count"`
}

// LeadsByStatus groups leads within scope by status.
func (s *DashboardService) LeadsByStatus(actor *models.User) ([]NamedStatusCount, error) {
	allowed, err := s.access.AllowedDepartmentIDs(actor)
	if err != nil {
		return nil, err
	}
	counts, err := s.leadRepo.CountByStatus(allowed)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate leads: %w", err)
	}

	statusIDs := make([]uint64, 0, len(counts))
	for _, row := range counts {
		if row.StatusID != nil {
			statusIDs = append(statusIDs, *row.StatusID)
		}
	}
	statuses, err := s.statusRepo.FindByIDs(statusIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve statuses: %w", err)
	}
	names := make(map[uint64]string, len(statuses))
	for _, status := range statuses {
		names[status.ID] = status.Name
	}

	out := make([]NamedStatusCount, 0, len(counts))
	for _, row := range counts {
		name := "No status"
		if row.StatusID != nil {
			if resolved, ok := names[*row.StatusID]; ok {
				name = resolved
			} else {
				name = "Unknown"
			}
		}
		out = append(out, NamedStatusCount{StatusID: row.StatusID, StatusName: name, Count: row.Count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out, nil
}

// LeadsOverTime returns a zero-filled per-day creation series. Days is
// clamped to [7, 90], defaulting to 30.
func (s *DashboardService) LeadsOverTime(actor *models.User, days int) ([]DayCount, error) {
	if days == 0 {
		days = 30
	}
	if days < 7 {
		days = 7
	}
	if days > 90 {
		days = 90
	}
	allowed, err := s.access.AllowedDepartmentIDs(actor)
	if err != nil {
		return nil, err
	}
	since := startOfDayUTC(time.Now().UTC().AddDate(0, 0, -(days - 1)))
	timestamps, err := s.leadRepo.CreatedSince(allowed, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load lead timestamps: %w", err)
	}
	return bucketByDay(timestamps, since, days), nil
}

// RecentLeads returns the newest leads within scope. Limit is clamped to
// [1, 50], defaulting to 10.
func (s *DashboardService) RecentLeads(actor *models.User, limit int) ([]models.Lead, error) {
	if limit < 1 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}
	allowed, err := s.access.AllowedDepartmentIDs(actor)
	if err != nil {
		return nil, err
	}
	return s.leadRepo.Recent(allowed, limit)
}

// DepartmentSummary is one department's lead count
type DepartmentSummary struct {
	DepartmentID   uint64 `json:"departmentId"`
	DepartmentName string `json:"departmentName"`
	LeadsCount     int64  `json:"leadsCount"`
}

// DepartmentsSummary counts leads per department within scope.
func (s *DashboardService) DepartmentsSummary(actor *models.User) ([]DepartmentSummary, error) {
	allowed, err := s.access.AllowedDepartmentIDs(actor)
	if err != nil {
		return nil, err
	}
	counts, err := s.leadRepo.CountByDepartment(allowed)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate leads: %w", err)
	}
	perDept := make(map[uint64]int64, len(counts))
	for _, row := range counts {
		perDept[row.DepartmentID] = row.Count
	}

	departments, err := s.deptRepo.FindAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	allowedSet := make(map[uint64]bool, len(allowed))
	for _, id := range allowed {
		allowedSet[id] = true
	}

	out := make([]DepartmentSummary, 0, len(allowed))
	for _, dept := range departments {
		if !allowedSet[dept.ID] {
			continue
		}
		out = append(out, DepartmentSummary{
			DepartmentID:   dept.ID,
			DepartmentName: dept.Name,
			LeadsCount:     perDept[dept.ID],
		})
	}
	return out, nil
}

// TopAssignee is one entry of the assignment leaderboard
type TopAssignee struct {
	UserID   uint64 `json:"userId"`
	UserName string `json:"userName"`
	Count    int64  `json:"count"`
}

// TopAssignees returns the users with the most assigned leads within scope.
// Limit is clamped to [1, 20], defaulting to 5.
func (s *DashboardService) TopAssignees(actor *models.User, limit int) ([]TopAssignee, error) {
	if limit < 1 {
		limit = 5
	}
	if limit > 20 {
		limit = 20
	}
	allowed, err := s.access.AllowedDepartmentIDs(actor)
	if err != nil {
		return nil, err
	}
	counts, err := s.leadRepo.CountByAssignee(allowed, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate assignments: %w", err)
	}

	userIDs := make([]uint64, 0, len(counts))
	for _, row := range counts {
		userIDs = append(userIDs, row.UserID)
	}
	users, err := s.userRepo.FindByIDs(userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve users: %w", err)
	}
	names := make(map[uint64]string, len(users))
	for i := range users {
		names[users[i].ID] = users[i].DisplayName()
	}

	out := make([]TopAssignee, 0, len(counts))
	for _, row := range counts {
		out = append(out, TopAssignee{UserID: row.UserID, UserName: names[row.UserID], Count: row.Count})
	}
	return out, nil
}

// Attention flags leads needing follow-up
type Attention struct {
	LeadsWithoutStatus int64 `json:"leadsWithoutStatus"`
	LeadsUnassigned    int64 `json:"leadsUnassigned"`
}

// GetAttention counts leads without a status and without assignees.
func (s *DashboardService) GetAttention(actor *models.User) (*Attention, error) {
	allowed, err := s.access.AllowedDepartmentIDs(actor)
	if err != nil {
		return nil, err
	}
	counts, err := s.leadRepo.CountByStatus(allowed)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate leads: %w", err)
	}
	var withoutStatus int64
	for _, row := range counts {
		if row.StatusID == nil {
			withoutStatus += row.Count
		}
	}
	unassigned, err := s.leadRepo.CountUnassigned(allowed)
	if err != nil {
		return nil, fmt.Errorf("failed to count unassigned leads: %w", err)
	}
	return &Attention{LeadsWithoutStatus: withoutStatus, LeadsUnassigned: unassigned}, nil
}

// WeekEvent is one reminder or lead task due in the current ISO week
type WeekEvent struct {
	Type     string    `json:"type"` // "reminder" or "task"
	ID       uint64    `json:"id"`
	LeadID   uint64    `json:"leadId"`
	LeadName string    `json:"leadName"`
	Title    string    `json:"title"`
	DueAt    time.Time `json:"dueAt"`
}

// WeekEvents merges undone reminders and uncompleted lead tasks due this ISO
// week, sorted by datetime.
func (s *DashboardService) WeekEvents(actor *models.User) ([]WeekEvent, error) {
	allowed, err := s.access.AllowedDepartmentIDs(actor)
	if err != nil {
		return nil, err
	}

	from, to := isoWeekBounds(time.Now().UTC())

	reminders, err := s.itemRepo.RemindersDueBetween(allowed, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	tasks, err := s.itemRepo.TasksDueBetween(allowed, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list lead tasks: %w", err)
	}

	events := make([]WeekEvent, 0, len(reminders)+len(tasks))
	for _, reminder := range reminders {
		events = append(events, WeekEvent{
			Type:     "reminder",
			ID:       reminder.ID,
			LeadID:   reminder.LeadID,
			LeadName: reminder.Lead.Name,
			Title:    reminder.Title,
			DueAt:    reminder.RemindAt,
		})
	}
	for _, task := range tasks {
		if task.DueAt == nil {
			continue
		}
		events = append(events, WeekEvent{
			Type:     "task",
			ID:       task.ID,
			LeadID:   task.LeadID,
			LeadName: task.Lead.Name,
			Title:    task.Title,
			DueAt:    *task.DueAt,
		})
	}
	sort.Slice(events, func(i, j int) bool { return events[i].DueAt.Before(events[j].DueAt) })
	return events, nil
}

// isoWeekBounds returns Monday 00:00 UTC and Sunday 23:59:59 UTC of the week
// containing t.
func isoWeekBounds(t time.Time) (time.Time, time.Time) {
	t = startOfDayUTC(t)
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	monday := t.AddDate(0, 0, -(weekday - 1))
	sunday := monday.AddDate(0, 0, 7).Add(-time.Second)
	return monday, sunday
}
