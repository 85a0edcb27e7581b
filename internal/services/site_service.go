package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/astracore/crm-backend/internal/constants"
	"github.com/astracore/crm-backend/internal/models"
	"github.com/astracore/crm-backend/internal/repository"
	"github.com/astracore/crm-backend/internal/utils"
	"gorm.io/gorm"
)

// SiteService handles the per-department widget site registry.
type SiteService struct {
	siteRepo repository.SiteRepository
	access   *AccessService
}

// NewSiteService creates a new SiteService
func NewSiteService(siteRepo repository.SiteRepository, access *AccessService) *SiteService {
	return &SiteService{
		siteRepo: siteRepo,
		access:   access,
	}
}

// CreateSiteInput represents input for registering a site
type CreateSiteInput struct {
	URL          string
	Description  string
	DepartmentID uint64
}

// UpdateSiteInput represents a partial update of a site
type UpdateSiteInput struct {
	URL         *string
	Description *string
}

// CreateSite registers a site and mints its capability token. The token is
// regenerated until unique.
func (s *SiteService) CreateSite(actor *models.User, input CreateSiteInput) (*models.Site, error) {
	manages, err := s.access.CanManageDepartment(input.DepartmentID, actor)
	if err != nil {
		return nil, err
	}
	if !manages {
		return nil, ErrAccessDenied
	}

	url := strings.TrimSpace(input.URL)
	if url == "" {
		return nil, ErrNameRequired
	}

	token, err := s.uniqueToken()
	if err != nil {
		return nil, err
	}

	site := &models.Site{
		URL:          url,
		Description:  strings.TrimSpace(input.Description),
		Token:        token,
		DepartmentID: input.DepartmentID,
	}
	if err := s.siteRepo.Create(site); err != nil {
		return nil, fmt.Errorf("failed to create site: %w", err)
	}
	return site, nil
}

// ListSites lists sites scoped to the departments the actor may view, or to
// one department when requested.
func (s *SiteService) ListSites(actor *models.User, departmentID *uint64) ([]models.Site, error) {
	if departmentID != nil {
		visible, err := s.access.CanViewDepartment(*departmentID, actor)
		if err != nil {
			return nil, err
		}
		if !visible {
			return nil, ErrAccessDenied
		}
		return s.siteRepo.FindByDepartments([]uint64{*departmentID})
	}

	if actor.Role == constants.RoleSuper || actor.Role == constants.RoleAdmin {
		return s.siteRepo.FindAll()
	}
	allowed, err := s.access.AllowedDepartmentIDs(actor)
	if err != nil {
		return nil, err
	}
	return s.siteRepo.FindByDepartments(allowed)
}

// GetSite returns a single site visible to the actor.
func (s *SiteService) GetSite(actor *models.User, id uint64) (*models.Site, error) {
	site, err := s.siteRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSiteNotFound
		}
		return nil, fmt.Errorf("failed to find site: %w", err)
	}
	visible, err := s.access.CanViewDepartment(site.DepartmentID, actor)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, ErrAccessDenied
	}
	return site, nil
}

// UpdateSite applies a partial update to a site. The token never changes.
func (s *SiteService) UpdateSite(actor *models.User, id uint64, input UpdateSiteInput) (*models.Site, error) {
	site, err := s.siteRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSiteNotFound
		}
		return nil, fmt.Errorf("failed to find site: %w", err)
	}

	manages, err := s.access.CanManageDepartment(site.DepartmentID, actor)
	if err != nil {
		return nil, err
	}
	if !manages {
		return nil, ErrAccessDenied
	}

	if input.URL != nil {
		url := strings.TrimSpace(*input.URL)
		if url == "" {
			return nil, ErrNameRequired
		}
		site.URL = url
	}
	if input.Description != nil {
		site.Description = strings.TrimSpace(*input.Description)
	}

	if err := s.siteRepo.Update(site); err != nil {
		return nil, fmt.Errorf("failed to update site: %w", err)
	}
	return site, nil
}

// DeleteSite removes a site; leads submitted through it keep their SiteID.
func (s *SiteService) DeleteSite(actor *models.User, id uint64) error {
	site, err := s.siteRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSiteNotFound
		}
		return fmt.Errorf("failed to find site: %w", err)
	}

	manages, err := s.access.CanManageDepartment(site.DepartmentID, actor)
	if err != nil {
		return err
	}
	if !manages {
		return ErrAccessDenied
	}
	if err := s.siteRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete site: %w", err)
	}
	return nil
}

// FindByID resolves a site without an access check; used by the public
// widget script endpoint.
func (s *SiteService) FindByID(id uint64) (*models.Site, error) {
	site, err := s.siteRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSiteNotFound
		}
		return nil, fmt.Errorf("failed to find site: %w", err)
	}
	return site, nil
}

func (s *SiteService) uniqueToken() (string, error) {
	for {
		token, err := utils.GenerateSiteToken()
		if err != nil {
			return "", fmt.Errorf("failed to generate site token: %w", err)
		}
		if _, err := s.siteRepo.FindByToken(token); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return token, nil
			}
			return "", fmt.Errorf("failed to check token uniqueness: %w", err)
		}
	}
}
