package repository

import (
	"time"

	"github.com/astracore/crm-backend/internal/models"
	"gorm.io/gorm"
)

// GormLeadItemRepository is a GORM implementation of LeadItemRepository
type GormLeadItemRepository struct {
	db *gorm.DB
}

// NewLeadItemRepository creates a new LeadItemRepository
func NewLeadItemRepository(db *gorm.DB) LeadItemRepository {
	return &GormLeadItemRepository{db: db}
}

func (r *GormLeadItemRepository) CreateNote(note *models.LeadNote) error {
	return r.db.Create(note).Error
}

func (r *GormLeadItemRepository) FindNoteByID(id uint64) (*models.LeadNote, error) {
	var note models.LeadNote
	if err := r.db.First(&note, id).Error; err != nil {
		return nil, err
	}
	return &note, nil
}

func (r *GormLeadItemRepository) NotesByLead(leadID uint64) ([]models.LeadNote, error) {
	var notes []models.LeadNote
	if err := r.db.Where("lead_id = ?", leadID).
		Order("created_at DESC").Preload("Author").Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *GormLeadItemRepository) UpdateNote(note *models.LeadNote) error {
	return r.db.Save(note).Error
}

func (r *GormLeadItemRepository) DeleteNote(id uint64) error {
	return r.db.Delete(&models.LeadNote{}, id).Error
}

func (r *GormLeadItemRepository) CreateTask(task *models.LeadTask) error {
	return r.db.Create(task).Error
}

func (r *GormLeadItemRepository) FindTaskByID(id uint64) (*models.LeadTask, error) {
	var task models.LeadTask
	if err := r.db.First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *GormLeadItemRepository) TasksByLead(leadID uint64) ([]models.LeadTask, error) {
	var tasks []models.LeadTask
	if err := r.db.Where("lead_id = ?", leadID).
		Order("CASE WHEN due_at IS NULL THEN 1 ELSE 0 END, due_at ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *GormLeadItemRepository) UpdateTask(task *models.LeadTask) error {
	return r.db.Save(task).Error
}

func (r *GormLeadItemRepository) DeleteTask(id uint64) error {
	return r.db.Delete(&models.LeadTask{}, id).Error
}

func (r *GormLeadItemRepository) CreateReminder(reminder *models.LeadReminder) error {
	return r.db.Create(reminder).Error
}

func (r *GormLeadItemRepository) FindReminderByID(id uint64) (*models.LeadReminder, error) {
	var reminder models.LeadReminder
	if err := r.db.First(&reminder, id).Error; err != nil {
		return nil, err
	}
	return &reminder, nil
}

func (r *GormLeadItemRepository) RemindersByLead(leadID uint64) ([]models.LeadReminder, error) {
	var reminders []models.LeadReminder
	if err := r.db.Where("lead_id = ?", leadID).
		Order("remind_at ASC").Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

func (r *GormLeadItemRepository) UpdateReminder(reminder *models.LeadReminder) error {
	return r.db.Save(reminder).Error
}

func (r *GormLeadItemRepository) DeleteReminder(id uint64) error {
	return r.db.Delete(&models.LeadReminder{}, id).Error
}

// UpcomingReminders lists pending reminders due before the given time, scoped
// to leads of the given departments
func (r *GormLeadItemRepository) UpcomingReminders(departmentIDs []uint64, before time.Time, limit int) ([]models.LeadReminder, error) {
	if len(departmentIDs) == 0 {
		return []models.LeadReminder{}, nil
	}
	var reminders []models.LeadReminder
	query := r.db.Model(&models.LeadReminder{}).
		Joins("JOIN leads ON leads.id = lead_reminders.lead_id").
		Where("leads.department_id IN ?", departmentIDs).
		Where("lead_reminders.done = ?", false).
		Where("lead_reminders.remind_at <= ?", before).
		Order("lead_reminders.remind_at ASC").
		Preload("Lead")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

// RemindersDueBetween lists pending reminders inside a time window
func (r *GormLeadItemRepository) RemindersDueBetween(departmentIDs []uint64, from, to time.Time) ([]models.LeadReminder, error) {
	if len(departmentIDs) == 0 {
		return []models.LeadReminder{}, nil
	}
	var reminders []models.LeadReminder
	err := r.db.Model(&models.LeadReminder{}).
		Joins("JOIN leads ON leads.id = lead_reminders.lead_id").
		Where("leads.department_id IN ?", departmentIDs).
		Where("lead_reminders.done = ?", false).
		Where("lead_reminders.remind_at >= ? AND lead_reminders.remind_at <= ?", from, to).
		Order("lead_reminders.remind_at ASC").
		Preload("Lead").
		Find(&reminders).Error
	return reminders, err
}

// TasksDueBetween lists uncompleted lead tasks inside a time window
func (r *GormLeadItemRepository) TasksDueBetween(departmentIDs []uint64, from, to time.Time) ([]models.LeadTask, error) {
	if len(departmentIDs) == 0 {
		return []models.LeadTask{}, nil
	}
	var tasks []models.LeadTask
	err := r.db.Model(&models.LeadTask{}).
		Joins("JOIN leads ON leads.id = lead_tasks.lead_id").
		Where("leads.department_id IN ?", departmentIDs).
		Where("lead_tasks.completed = ?", false).
		Where("lead_tasks.due_at >= ? AND lead_tasks.due_at <= ?", from, to).
		Order("lead_tasks.due_at ASC").
		Preload("Lead").
		Find(&tasks).Error
	return tasks, err
}

func (r *GormLeadItemRepository) CreateHistory(entry *models.LeadHistory) error {
	return r.db.Create(entry).Error
}

// HistoryByLead returns the append-only audit trail, newest first
func (r *GormLeadItemRepository) HistoryByLead(leadID uint64) ([]models.LeadHistory, error) {
	var entries []models.LeadHistory
	if err := r.db.Where("lead_id = ?", leadID).
		Order("created_at DESC").Order("id DESC").
		Preload("User").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
