package models

import "time"

type Lead struct {
	ID           uint64  `gorm:"primarykey" json:"id"`
	Name         string  `gorm:"type:varchar(255);not null" json:"name"`
	LastName     string  `gorm:"type:varchar(255)" json:"last_name"`
	Phone        string  `gorm:"type:varchar(50);index:idx_leads_department_phone,priority:2" json:"phone"`
	Phone2       string  `gorm:"type:varchar(50)" json:"phone2"`
	Email        string  `gorm:"type:varchar(255);index:idx_leads_department_email,priority:2" json:"email"`
	Email2       string  `gorm:"type:varchar(255)" json:"email2"`
	Comment      string  `gorm:"type:text" json:"comment"`
	StatusID     *uint64 `gorm:"index" json:"status_id"`
	DepartmentID uint64  `gorm:"index:idx_leads_department_phone,priority:1;index:idx_leads_department_email,priority:1;not null" json:"department_id"`
	CreatedBy    uint64  `gorm:"not null" json:"created_by"`
	Source       string  `gorm:"type:varchar(50);not null;default:'manual'" json:"source"`
	SiteID       *uint64 `gorm:"index" json:"site_id"`
	SourceMeta   JSONMap `gorm:"type:text" json:"source_meta"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Status      *Status          `gorm:"foreignKey:StatusID" json:"-"`
	Department  Department       `gorm:"foreignKey:DepartmentID" json:"-"`
	Assignments []LeadAssignment `gorm:"foreignKey:LeadID" json:"-"`
}

// Lead source values.
const (
	LeadSourceManual = "manual"
	LeadSourceImport = "import"
	LeadSourceSite   = "site"
)
