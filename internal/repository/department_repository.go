package repository

import (
	"github.com/astracore/crm-backend/internal/models"
	"gorm.io/gorm"
)

// GormDepartmentRepository is a GORM implementation of DepartmentRepository
type GormDepartmentRepository struct {
	db *gorm.DB
}

// NewDepartmentRepository creates a new DepartmentRepository
func NewDepartmentRepository(db *gorm.DB) DepartmentRepository {
	return &GormDepartmentRepository{db: db}
}

func (r *GormDepartmentRepository) Create(department *models.Department) error {
	return r.db.Create(department).Error
}

func (r *GormDepartmentRepository) FindByID(id uint64) (*models.Department, error) {
	var department models.Department
	if err := r.db.First(&department, id).Error; err != nil {
		return nil, err
	}
	return &department, nil
}

func (r *GormDepartmentRepository) FindAll() ([]models.Department, error) {
	var departments []models.Department
	if err := r.db.Order("name ASC").Find(&departments).Error; err != nil {
		return nil, err
	}
	return departments, nil
}

// FindByName finds a department by exact name, ignoring excludeID
func (r *GormDepartmentRepository) FindByName(name string, excludeID uint64) (*models.Department, error) {
	var department models.Department
	query := r.db.Where("name = ?", name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.First(&department).Error; err != nil {
		return nil, err
	}
	return &department, nil
}

func (r *GormDepartmentRepository) Update(department *models.Department) error {
	return r.db.Save(department).Error
}

// UpdateManager sets or clears the manager pointer only
func (r *GormDepartmentRepository) UpdateManager(id uint64, managerID *uint64) error {
	return r.db.Model(&models.Department{}).Where("id = ?", id).
		Update("manager_id", managerID).Error
}

func (r *GormDepartmentRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Department{}, id).Error
}
