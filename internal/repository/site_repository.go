package repository

import (
	"github.com/astracore/crm-backend/internal/models"
	"gorm.io/gorm"
)

// GormSiteRepository is a GORM implementation of SiteRepository
type GormSiteRepository struct {
	db *gorm.DB
}

// NewSiteRepository creates a new SiteRepository
func NewSiteRepository(db *gorm.DB) SiteRepository {
	return &GormSiteRepository{db: db}
}

func (r *GormSiteRepository) Create(site *models.Site) error {
	return r.db.Create(site).Error
}

func (r *GormSiteRepository) FindByID(id uint64) (*models.Site, error) {
	var site models.Site
	if err := r.db.First(&site, id).Error; err != nil {
		return nil, err
	}
	return &site, nil
}

func (r *GormSiteRepository) FindByToken(token string) (*models.Site, error) {
	var site models.Site
	if err := r.db.Where("token = ?", token).First(&site).Error; err != nil {
		return nil, err
	}
	return &site, nil
}

func (r *GormSiteRepository) FindByDepartments(departmentIDs []uint64) ([]models.Site, error) {
	if len(departmentIDs) == 0 {
		return []models.Site{}, nil
	}
	var sites []models.Site
	if err := r.db.Where("department_id IN ?", departmentIDs).
		Order("created_at DESC").Find(&sites).Error; err != nil {
		return nil, err
	}
	return sites, nil
}

func (r *GormSiteRepository) FindAll() ([]models.Site, error) {
	var sites []models.Site
	if err := r.db.Order("created_at DESC").Find(&sites).Error; err != nil {
		return nil, err
	}
	return sites, nil
}

func (r *GormSiteRepository) Update(site *models.Site) error {
	return r.db.Save(site).Error
}

func (r *GormSiteRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Site{}, id).Error
}

func (r *GormSiteRepository) CountByDepartment(departmentID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Site{}).
		Where("department_id = ?", departmentID).Count(&count).Error
	return count, err
}
