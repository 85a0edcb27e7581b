package repository

import (
	"github.com/astracore/crm-backend/internal/models"
	"gorm.io/gorm"
)

// GormStatusRepository is a GORM implementation of StatusRepository
type GormStatusRepository struct {
	db *gorm.DB
}

// NewStatusRepository creates a new StatusRepository
func NewStatusRepository(db *gorm.DB) StatusRepository {
	return &GormStatusRepository{db: db}
}

func (r *GormStatusRepository) Create(status *models.Status) error {
	return r.db.Create(status).Error
}

func (r *GormStatusRepository) FindByID(id uint64) (*models.Status, error) {
	var status models.Status
	if err := r.db.First(&status, id).Error; err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *GormStatusRepository) FindByDepartment(departmentID uint64) ([]models.Status, error) {
	var statuses []models.Status
	if err := r.db.Where("department_id = ?", departmentID).
		Order("sort_order ASC").Find(&statuses).Error; err != nil {
		return nil, err
	}
	return statuses, nil
}

func (r *GormStatusRepository) FindByIDs(ids []uint64) ([]models.Status, error) {
	if len(ids) == 0 {
		return []models.Status{}, nil
	}
	var statuses []models.Status
	if err := r.db.Where("id IN ?", ids).Find(&statuses).Error; err != nil {
		return nil, err
	}
	return statuses, nil
}

func (r *GormStatusRepository) Update(status *models.Status) error {
	return r.db.Save(status).Error
}

func (r *GormStatusRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Status{}, id).Error
}

// MaxOrder returns the highest order value within a department, 0 if none
func (r *GormStatusRepository) MaxOrder(departmentID uint64) (int, error) {
	var max int
	err := r.db.Model(&models.Status{}).
		Where("department_id = ?", departmentID).
		Select("COALESCE(MAX(sort_order), 0)").
		Scan(&max).Error
	return max, err
}

func (r *GormStatusRepository) CountByDepartment(departmentID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Status{}).
		Where("department_id = ?", departmentID).Count(&count).Error
	return count, err
}
