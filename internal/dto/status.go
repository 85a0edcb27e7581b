package dto

import (
	"time"

	"github.com/astracore/crm-backend/internal/models"
)

// StatusDTO represents a lead status in API responses
type StatusDTO struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Color        string    `json:"color"`
	Order        int       `json:"order"`
	DepartmentID uint64    `json:"departmentId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// SiteDTO represents a lead-capture site in API responses
type SiteDTO struct {
	ID           uint64    `json:"id"`
	URL          string    `json:"url"`
	Description  string    `json:"description"`
	Token        string    `json:"token"`
	DepartmentID uint64    `json:"departmentId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ToStatusDTO converts a Status model to StatusDTO
func ToStatusDTO(status models.Status) StatusDTO {
	return StatusDTO{
		ID:           status.ID,
		Name:         status.Name,
		Description:  status.Description,
		Color:        status.Color,
		Order:        status.Order,
		DepartmentID: status.DepartmentID,
		CreatedAt:    status.CreatedAt,
		UpdatedAt:    status.UpdatedAt,
	}
}

// ToStatusDTOs converts a slice of statuses
func ToStatusDTOs(statuses []models.Status) []StatusDTO {
	out := make([]StatusDTO, len(statuses))
	for i, status := range statuses {
		out[i] = ToStatusDTO(status)
	}
	return out
}

// ToSiteDTO converts a Site model to SiteDTO
func ToSiteDTO(site models.Site) SiteDTO {
	return SiteDTO{
		ID:           site.ID,
		URL:          site.URL,
		Description:  site.Description,
		Token:        site.Token,
		DepartmentID: site.DepartmentID,
		CreatedAt:    site.CreatedAt,
		UpdatedAt:    site.UpdatedAt,
	}
}

// ToSiteDTOs converts a slice of sites
func ToSiteDTOs(sites []models.Site) []SiteDTO {
	out := make([]SiteDTO, len(sites))
	for i, site := range sites {
		out[i] = ToSiteDTO(site)
	}
	return out
}
