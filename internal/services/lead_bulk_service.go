package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/astracore/crm-backend/internal/constants"
	"github.com/astracore/crm-backend/internal/models"
	"github.com/astracore/crm-backend/internal/repository"
	"github.com/sirupsen/logrus"
)

// BulkLeadItem is one row of a bulk import
type BulkLeadItem struct {
	Name     string
	LastName string
	Phone    string
	Email    string
}

// BulkCreateResult reports a bulk import outcome. Items dropped during
// normalization (empty name or phone) count as neither added nor duplicate.
type BulkCreateResult struct {
	Added      int `json:"added"`
	Duplicates int `json:"duplicates"`
}

// BulkCreateLeads imports a batch of leads into one department. The batch is
// deduplicated by phone, first within itself (keeping the first occurrence)
// and then against the department's existing phones.
func (s *LeadService) BulkCreateLeads(actor *models.User, departmentID uint64, items []BulkLeadItem) (*BulkCreateResult, error) {
	allowed, err := s.access.CanCreateInDepartment(departmentID, actor)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrAccessDenied
	}

	// Normalization drops invalid rows entirely.
	normalized := make([]BulkLeadItem, 0, len(items))
	for _, item := range items {
		item.Name = strings.TrimSpace(item.Name)
		item.Phone = strings.TrimSpace(item.Phone)
		if item.Name == "" || item.Phone == "" {
			continue
		}
		item.LastName = strings.TrimSpace(item.LastName)
		item.Email = strings.ToLower(strings.TrimSpace(item.Email))
		normalized = append(normalized, item)
	}

	// In-batch dedupe by phone, keeping the first occurrence.
	seen := make(map[string]bool, len(normalized))
	deduped := make([]BulkLeadItem, 0, len(normalized))
	phones := make([]string, 0, len(normalized))
	for _, item := range normalized {
		if seen[item.Phone] {
			continue
		}
		seen[item.Phone] = true
		deduped = append(deduped, item)
		phones = append(phones, item.Phone)
	}

	existing, err := s.leadRepo.ExistingPhones(departmentID, phones)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing phones: %w", err)
	}

	added := 0
	for _, item := range deduped {
		if existing[item.Phone] {
			continue
		}
		lead := &models.Lead{
			Name:         item.Name,
			LastName:     item.LastName,
			Phone:        item.Phone,
			Email:        item.Email,
			DepartmentID: departmentID,
			CreatedBy:    actor.ID,
			Source:       models.LeadSourceImport,
		}
		if err := s.leadRepo.Create(lead); err != nil {
			logrus.WithError(err).WithField("phone", item.Phone).Warn("bulk create item failed")
			continue
		}
		added++
		s.addHistory(lead.ID, actor.ID, models.HistoryActionCreated, models.JSONMap{
			"name":  lead.Name,
			"phone": lead.Phone,
		})
	}

	return &BulkCreateResult{
		Added:      added,
		Duplicates: len(normalized) - added,
	}, nil
}

// BulkUpdateItem is one row of a bulk update
type BulkUpdateItem struct {
	ID    uint64
	Patch UpdateLeadInput
}

// BulkUpdateLeads applies per-item full updates, silently skipping items that
// fail lookup, authorization or validation.
func (s *LeadService) BulkUpdateLeads(actor *models.User, items []BulkUpdateItem) (int, error) {
	updated := 0
	for _, item := range items {
		if _, err := s.UpdateLead(actor, item.ID, item.Patch); err != nil {
			continue
		}
		updated++
	}
	return updated, nil
}

// BulkDeleteLeads deletes per item, silently skipping leads the actor cannot
// edit. Already-applied deletions are never rolled back.
func (s *LeadService) BulkDeleteLeads(actor *models.User, ids []uint64) (int, error) {
	deleted := 0
	for _, id := range ids {
		if err := s.DeleteLead(actor, id); err != nil {
			continue
		}
		deleted++
	}
	return deleted, nil
}

// LeadStats is the per-assignee × per-status count matrix of a department
type LeadStats struct {
	Statuses []models.Status `json:"statuses"`
	Rows     []LeadStatsRow  `json:"rows"`
}

// LeadStatsRow is one assignee's slice of the stats matrix
type LeadStatsRow struct {
	UserID   uint64           `json:"userId"`
	UserName string           `json:"userName"`
	ByStatus map[uint64]int64 `json:"byStatus"`
	NoStatus int64            `json:"noStatus"`
	Total    int64            `json:"total"`
}

// GetLeadStats builds the assignment matrix for a department. Beyond view
// access, a manager must specifically manage the queried department.
func (s *LeadService) GetLeadStats(actor *models.User, departmentID uint64, filter repository.StatsFilter) (*LeadStats, error) {
	if err := s.checkStatsAccess(actor, departmentID); err != nil {
		return nil, err
	}

	statuses, err := s.statusRepo.FindByDepartment(departmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list statuses: %w", err)
	}

	counts, err := s.leadRepo.CountByUserAndStatus(departmentID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate leads: %w", err)
	}
	perUser := make(map[uint64][]repository.UserStatusCount)
	for _, row := range counts {
		perUser[row.UserID] = append(perUser[row.UserID], row)
	}

	// Manager row first, then employees, each exactly once.
	var ordered []models.User
	seen := make(map[uint64]bool)
	dept, err := s.deptRepo.FindByID(departmentID)
	if err != nil {
		return nil, ErrDepartmentNotFound
	}
	if dept.ManagerID != nil {
		if manager, err := s.userRepo.FindByID(*dept.ManagerID); err == nil {
			ordered = append(ordered, *manager)
			seen[manager.ID] = true
		}
	}
	employees, err := s.userRepo.FindByDepartment(departmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	for _, employee := range employees {
		if !seen[employee.ID] {
			ordered = append(ordered, employee)
			seen[employee.ID] = true
		}
	}

	stats := &LeadStats{Statuses: statuses, Rows: make([]LeadStatsRow, 0, len(ordered))}
	for _, user := range ordered {
		row := LeadStatsRow{
			UserID:   user.ID,
			UserName: user.DisplayName(),
			ByStatus: make(map[uint64]int64),
		}
		for _, count := range perUser[user.ID] {
			if count.StatusID == nil {
				row.NoStatus += count.Count
			} else {
				row.ByStatus[*count.StatusID] += count.Count
			}
			row.Total += count.Count
		}
		stats.Rows = append(stats.Rows, row)
	}
	return stats, nil
}

// ExportLeadsInput narrows an export
type ExportLeadsInput struct {
	DepartmentID uint64
	StatusID     *uint64
	AssignedTo   *uint64
	DateFrom     *time.Time
	DateTo       *time.Time
}

// ExportLeads returns a department's leads for export, newest first, capped.
// Only super, admin and managers may export; the manager check mirrors
// GetLeadStats.
func (s *LeadService) ExportLeads(actor *models.User, input ExportLeadsInput) ([]models.Lead, error) {
	switch actor.Role {
	case constants.RoleSuper, constants.RoleAdmin, constants.RoleManager:
	default:
		return nil, ErrAccessDenied
	}
	if err := s.checkStatsAccess(actor, input.DepartmentID); err != nil {
		return nil, err
	}
	filter := repository.LeadFilter{
		DepartmentIDs: []uint64{input.DepartmentID},
		StatusID:      input.StatusID,
		AssignedTo:    input.AssignedTo,
		DateFrom:      input.DateFrom,
		DateTo:        input.DateTo,
		SortBy:        "created_at",
		SortDesc:      true,
		Limit:         constants.MaxExportLeads,
	}
	leads, _, err := s.leadRepo.List(filter)
	return leads, err
}

// UpcomingReminder is a pending reminder enriched with its lead's name
type UpcomingReminder struct {
	models.LeadReminder
	LeadName string `json:"lead_name"`
}

// UpcomingReminders lists undone reminders overdue or due within 24 hours,
// scoped to leads the actor can view.
func (s *LeadService) UpcomingReminders(actor *models.User) ([]UpcomingReminder, error) {
	allowed, err := s.access.AllowedDepartmentIDs(actor)
	if err != nil {
		return nil, err
	}
	reminders, err := s.itemRepo.UpcomingReminders(allowed, time.Now().Add(24*time.Hour), 50)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	out := make([]UpcomingReminder, 0, len(reminders))
	for _, reminder := range reminders {
		out = append(out, UpcomingReminder{
			LeadReminder: reminder,
			LeadName:     reminder.Lead.Name,
		})
	}
	return out, nil
}

// checkStatsAccess requires view access, plus specific manage rights when
// the actor is a manager — tighter than generic view access.
func (s *LeadService) checkStatsAccess(actor *models.User, departmentID uint64) error {
	visible, err := s.access.CanViewDepartment(departmentID, actor)
	if err != nil {
		return err
	}
	if !visible {
		return ErrAccessDenied
	}
	if actor.Role == constants.RoleManager {
		manages, err := s.access.CanManageDepartment(departmentID, actor)
		if err != nil {
			return err
		}
		if !manages {
			return ErrAccessDenied
		}
	}
	return nil
}
