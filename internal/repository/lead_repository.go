package repository

import (
	"strings"
	"time"

	"github.com/astracore/crm-backend/internal/models"
	"gorm.io/gorm"
)

// GormLeadRepository is a GORM implementation of LeadRepository
type GormLeadRepository struct {
	db *gorm.DB
}

// NewLeadRepository creates a new LeadRepository
func NewLeadRepository(db *gorm.DB) LeadRepository {
	return &GormLeadRepository{db: db}
}

func (r *GormLeadRepository) Create(lead *models.Lead) error {
	return r.db.Create(lead).Error
}

// FindByID finds a lead by ID with optional preloading
func (r *GormLeadRepository) FindByID(id uint64, preload ...string) (*models.Lead, error) {
	var lead models.Lead
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&lead, id).Error; err != nil {
		return nil, err
	}
	return &lead, nil
}

// escapeLike escapes LIKE wildcards in user-supplied substrings
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

func substringMatch(query *gorm.DB, column, value string) *gorm.DB {
	return query.Where("LOWER("+column+") LIKE ?", "%"+strings.ToLower(escapeLike(value))+"%")
}

// List retrieves leads with filtering and pagination
func (r *GormLeadRepository) List(filter LeadFilter) ([]models.Lead, int64, error) {
	var leads []models.Lead

	if len(filter.DepartmentIDs) == 0 {
		return []models.Lead{}, 0, nil
	}

	query := r.db.Model(&models.Lead{}).Where("leads.department_id IN ?", filter.DepartmentIDs)

	if filter.Name != "" {
		query = substringMatch(query, "leads.name", filter.Name)
	}
	if filter.Phone != "" {
		query = substringMatch(query, "leads.phone", filter.Phone)
	}
	if filter.Email != "" {
		query = substringMatch(query, "leads.email", filter.Email)
	}
	if filter.Source != "" {
		query = query.Where("leads.source = ?", filter.Source)
	}
	if filter.StatusID != nil {
		query = query.Where("leads.status_id = ?", *filter.StatusID)
	}
	if filter.AssignedTo != nil {
		assignmentSubQuery := r.db.Model(&models.LeadAssignment{}).
			Select("1").
			Where("lead_assignments.lead_id = leads.id").
			Where("lead_assignments.user_id = ?", *filter.AssignedTo)
		query = query.Where("EXISTS (?)", assignmentSubQuery)
	}
	if filter.DateFrom != nil {
		query = query.Where("leads.created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("leads.created_at <= ?", *filter.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}

	listQuery := query.Order("leads." + sortBy + " " + direction)
	if filter.Limit > 0 {
		listQuery = listQuery.Offset(filter.Skip).Limit(filter.Limit)
	}

	if err := listQuery.Preload("Assignments").Preload("Status").Preload("Department").Find(&leads).Error; err != nil {
		return nil, 0, err
	}

	return leads, total, nil
}

func (r *GormLeadRepository) Update(lead *models.Lead) error {
	return r.db.Save(lead).Error
}

// Delete removes a lead and all dependent rows
func (r *GormLeadRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lead_id = ?", id).Delete(&models.LeadAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("lead_id = ?", id).Delete(&models.LeadNote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("lead_id = ?", id).Delete(&models.LeadTask{}).Error; err != nil {
			return err
		}
		if err := tx.Where("lead_id = ?", id).Delete(&models.LeadReminder{}).Error; err != nil {
			return err
		}
		if err := tx.Where("lead_id = ?", id).Delete(&models.LeadHistory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Lead{}, id).Error
	})
}

// ReplaceAssignments replaces the full assignee set of a lead
func (r *GormLeadRepository) ReplaceAssignments(leadID uint64, userIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lead_id = ?", leadID).Delete(&models.LeadAssignment{}).Error; err != nil {
			return err
		}
		if len(userIDs) == 0 {
			return nil
		}
		assignments := make([]models.LeadAssignment, len(userIDs))
		for i, userID := range userIDs {
			assignments[i] = models.LeadAssignment{LeadID: leadID, UserID: userID}
		}
		return tx.Create(&assignments).Error
	})
}

// AssignedUserIDs returns the assignee IDs of a lead
func (r *GormLeadRepository) AssignedUserIDs(leadID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.Model(&models.LeadAssignment{}).
		Where("lead_id = ?", leadID).
		Order("id ASC").
		Pluck("user_id", &ids).Error
	return ids, err
}

// FindByPhone finds a lead in a department by exact phone, ignoring excludeID
func (r *GormLeadRepository) FindByPhone(departmentID uint64, phone string, excludeID uint64) (*models.Lead, error) {
	return r.findDuplicate(departmentID, "phone", phone, excludeID)
}

// FindByEmail finds a lead in a department by exact email, ignoring excludeID
func (r *GormLeadRepository) FindByEmail(departmentID uint64, email string, excludeID uint64) (*models.Lead, error) {
	return r.findDuplicate(departmentID, "email", email, excludeID)
}

func (r *GormLeadRepository) findDuplicate(departmentID uint64, column, value string, excludeID uint64) (*models.Lead, error) {
	var lead models.Lead
	query := r.db.Where("department_id = ?", departmentID).Where(column+" = ?", value)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.First(&lead).Error; err != nil {
		return nil, err
	}
	return &lead, nil
}

// ExistingPhones returns which of the given phones already exist in a department
func (r *GormLeadRepository) ExistingPhones(departmentID uint64, phones []string) (map[string]bool, error) {
	return r.existingValues(departmentID, "phone", phones)
}

// ExistingEmails returns which of the given emails already exist in a department
func (r *GormLeadRepository) ExistingEmails(departmentID uint64, emails []string) (map[string]bool, error) {
	return r.existingValues(departmentID, "email", emails)
}

func (r *GormLeadRepository) existingValues(departmentID uint64, column string, values []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	if len(values) == 0 {
		return existing, nil
	}
	var found []string
	err := r.db.Model(&models.Lead{}).
		Where("department_id = ?", departmentID).
		Where(column+" IN ?", values).
		Pluck(column, &found).Error
	if err != nil {
		return nil, err
	}
	for _, v := range found {
		existing[v] = true
	}
	return existing, nil
}

// ClearStatus detaches a deleted status from all leads referencing it
func (r *GormLeadRepository) ClearStatus(statusID uint64) error {
	return r.db.Model(&models.Lead{}).Where("status_id = ?", statusID).
		Update("status_id", nil).Error
}

func (r *GormLeadRepository) scoped(departmentIDs []uint64) *gorm.DB {
	return r.db.Model(&models.Lead{}).Where("department_id IN ?", departmentIDs)
}

func (r *GormLeadRepository) Count(departmentIDs []uint64) (int64, error) {
	if len(departmentIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.scoped(departmentIDs).Count(&count).Error
	return count, err
}

func (r *GormLeadRepository) CountSince(departmentIDs []uint64, since time.Time) (int64, error) {
	if len(departmentIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.scoped(departmentIDs).Where("created_at >= ?", since).Count(&count).Error
	return count, err
}

func (r *GormLeadRepository) CountUnassigned(departmentIDs []uint64) (int64, error) {
	if len(departmentIDs) == 0 {
		return 0, nil
	}
	var count int64
	assignmentSubQuery := r.db.Model(&models.LeadAssignment{}).
		Select("1").
		Where("lead_assignments.lead_id = leads.id")
	err := r.scoped(departmentIDs).
		Where("NOT EXISTS (?)", assignmentSubQuery).
		Count(&count).Error
	return count, err
}

func (r *GormLeadRepository) CountByStatus(departmentIDs []uint64) ([]StatusCount, error) {
	if len(departmentIDs) == 0 {
		return []StatusCount{}, nil
	}
	var rows []StatusCount
	err := r.scoped(departmentIDs).
		Select("status_id, COUNT(*) AS count").
		Group("status_id").
		Scan(&rows).Error
	return rows, err
}

func (r *GormLeadRepository) CountByUserAndStatus(departmentID uint64, filter StatsFilter) ([]UserStatusCount, error) {
	var rows []UserStatusCount
	query := r.db.Model(&models.LeadAssignment{}).
		Select("lead_assignments.user_id, leads.status_id, COUNT(*) AS count").
		Joins("JOIN leads ON leads.id = lead_assignments.lead_id").
		Where("leads.department_id = ?", departmentID)
	if filter.DateFrom != nil {
		query = query.Where("leads.created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("leads.created_at <= ?", *filter.DateTo)
	}
	if filter.StatusID != nil {
		query = query.Where("leads.status_id = ?", *filter.StatusID)
	}
	err := query.Group("lead_assignments.user_id, leads.status_id").
		Scan(&rows).Error
	return rows, err
}

func (r *GormLeadRepository) CountByDepartment(departmentIDs []uint64) ([]DepartmentCount, error) {
	if len(departmentIDs) == 0 {
		return []DepartmentCount{}, nil
	}
	var rows []DepartmentCount
	err := r.scoped(departmentIDs).
		Select("department_id, COUNT(*) AS count").
		Group("department_id").
		Scan(&rows).Error
	return rows, err
}

func (r *GormLeadRepository) CountByAssignee(departmentIDs []uint64, limit int) ([]UserCount, error) {
	if len(departmentIDs) == 0 {
		return []UserCount{}, nil
	}
	var rows []UserCount
	query := r.db.Model(&models.LeadAssignment{}).
		Select("lead_assignments.user_id, COUNT(*) AS count").
		Joins("JOIN leads ON leads.id = lead_assignments.lead_id").
		Where("leads.department_id IN ?", departmentIDs).
		Group("lead_assignments.user_id").
		Order("count DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Scan(&rows).Error
	return rows, err
}

// CreatedSince returns creation timestamps of leads since the given time.
// Bucketing by day happens in the service to stay dialect-neutral.
func (r *GormLeadRepository) CreatedSince(departmentIDs []uint64, since time.Time) ([]time.Time, error) {
	if len(departmentIDs) == 0 {
		return []time.Time{}, nil
	}
	var timestamps []time.Time
	err := r.scoped(departmentIDs).
		Where("created_at >= ?", since).
		Order("created_at ASC").
		Pluck("created_at", &timestamps).Error
	return timestamps, err
}

func (r *GormLeadRepository) Recent(departmentIDs []uint64, limit int) ([]models.Lead, error) {
	if len(departmentIDs) == 0 {
		return []models.Lead{}, nil
	}
	var leads []models.Lead
	err := r.db.Where("department_id IN ?", departmentIDs).
		Order("created_at DESC").
		Limit(limit).
		Preload("Assignments").
		Preload("Status").
		Preload("Department").
		Find(&leads).Error
	return leads, err
}

func (r *GormLeadRepository) CountForUser(userID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.LeadAssignment{}).
		Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *GormLeadRepository) CountForUserByStatus(userID uint64) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.db.Model(&models.LeadAssignment{}).
		Select("leads.status_id, COUNT(*) AS count").
		Joins("JOIN leads ON leads.id = lead_assignments.lead_id").
		Where("lead_assignments.user_id = ?", userID).
		Group("leads.status_id").
		Scan(&rows).Error
	return rows, err
}

// AssignedCreatedSince returns creation timestamps of leads assigned to a
// user since the given time
func (r *GormLeadRepository) AssignedCreatedSince(userID uint64, since time.Time) ([]time.Time, error) {
	var timestamps []time.Time
	err := r.db.Model(&models.LeadAssignment{}).
		Joins("JOIN leads ON leads.id = lead_assignments.lead_id").
		Where("lead_assignments.user_id = ?", userID).
		Where("leads.created_at >= ?", since).
		Order("leads.created_at ASC").
		Pluck("leads.created_at", &timestamps).Error
	return timestamps, err
}
