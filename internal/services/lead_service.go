package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/astracore/crm-backend/internal/constants"
	"github.com/astracore/crm-backend/internal/models"
	"github.com/astracore/crm-backend/internal/repository"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// LeadService owns lead records, their sub-entities and the authorization
// policy around them.
type LeadService struct {
	leadRepo   repository.LeadRepository
	itemRepo   repository.LeadItemRepository
	userRepo   repository.UserRepository
	deptRepo   repository.DepartmentRepository
	statusRepo repository.StatusRepository
	siteRepo   repository.SiteRepository
	access     *AccessService
}

// NewLeadService creates a new LeadService
func NewLeadService(
	leadRepo repository.LeadRepository,
	itemRepo repository.LeadItemRepository,
	userRepo repository.UserRepository,
	deptRepo repository.DepartmentRepository,
	statusRepo repository.StatusRepository,
	siteRepo repository.SiteRepository,
	access *AccessService,
) *LeadService {
	return &LeadService{
		leadRepo:   leadRepo,
		itemRepo:   itemRepo,
		userRepo:   userRepo,
		deptRepo:   deptRepo,
		statusRepo: statusRepo,
		siteRepo:   siteRepo,
		access:     access,
	}
}

// CreateLeadInput represents input for creating a lead
type CreateLeadInput struct {
	Name         string
	LastName     string
	Phone        string
	Phone2       string
	Email        string
	Email2       string
	Comment      string
	DepartmentID uint64
	StatusID     *uint64
	AssignedTo   []uint64
	Source       string
	SourceMeta   map[string]interface{}
}

// UpdateLeadInput represents a partial update of a lead. DepartmentID is
// immutable and deliberately absent.
type UpdateLeadInput struct {
	Name        *string
	LastName    *string
	Phone       *string
	Phone2      *string
	Email       *string
	Email2      *string
	Comment     *string
	StatusID    *uint64
	ClearStatus bool
	AssignedTo  *[]uint64
	Source      *string
	SourceMeta  map[string]interface{}
}

// CreateLead creates a lead after the full validation chain: department
// create access, per-department duplicate checks, status ownership and
// assignment validation. A `created` history row follows the write.
func (s *LeadService) CreateLead(actor *models.User, input CreateLeadInput) (*models.Lead, error) {
	allowed, err := s.access.CanCreateInDepartment(input.DepartmentID, actor)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrAccessDenied
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	phone := strings.TrimSpace(input.Phone)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if err := s.checkDuplicates(input.DepartmentID, phone, email, 0); err != nil {
		return nil, err
	}
	if input.StatusID != nil {
		if err := s.checkStatusOwnership(*input.StatusID, input.DepartmentID); err != nil {
			return nil, err
		}
	}
	if len(input.AssignedTo) > 0 {
		if err := s.checkAssignees(input.DepartmentID, input.AssignedTo); err != nil {
			return nil, err
		}
	}

	source := strings.TrimSpace(input.Source)
	if source == "" {
		source = models.LeadSourceManual
	}

	lead := &models.Lead{
		Name:         name,
		LastName:     strings.TrimSpace(input.LastName),
		Phone:        phone,
		Phone2:       strings.TrimSpace(input.Phone2),
		Email:        email,
		Email2:       strings.ToLower(strings.TrimSpace(input.Email2)),
		Comment:      input.Comment,
		DepartmentID: input.DepartmentID,
		StatusID:     input.StatusID,
		CreatedBy:    actor.ID,
		Source:       source,
		SourceMeta:   stripEmptyMeta(input.SourceMeta),
	}
	if err := s.leadRepo.Create(lead); err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}
	if len(input.AssignedTo) > 0 {
		if err := s.leadRepo.ReplaceAssignments(lead.ID, uniqueUint64(input.AssignedTo)); err != nil {
			return nil, fmt.Errorf("failed to assign lead: %w", err)
		}
	}

	s.addHistory(lead.ID, actor.ID, models.HistoryActionCreated, models.JSONMap{
		"name":  lead.Name,
		"phone": lead.Phone,
	})
	return lead, nil
}

// FromSiteInput represents an unauthenticated widget submission
type FromSiteInput struct {
	Token          string
	Name           string
	LastName       string
	Phone          string
	Email          string
	AdditionalInfo string
	SourceMeta     map[string]interface{}

	// Server-observed request attributes, merged over the client meta.
	IP        string
	UserAgent string
	Referrer  string
}

// CreateFromSite creates a lead from a widget submission gated by the site
// capability token. An invalid token is a validation failure, not an auth
// failure, because the caller is anonymous by design.
func (s *LeadService) CreateFromSite(input FromSiteInput) (*models.Lead, error) {
	token := strings.TrimSpace(input.Token)
	if token == "" {
		return nil, ErrInvalidSiteToken
	}
	site, err := s.siteRepo.FindByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidSiteToken
		}
		return nil, fmt.Errorf("failed to resolve site token: %w", err)
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	phone := strings.TrimSpace(input.Phone)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if err := s.checkDuplicates(site.DepartmentID, phone, email, 0); err != nil {
		return nil, err
	}

	meta := make(map[string]interface{}, len(input.SourceMeta)+3)
	for k, v := range input.SourceMeta {
		meta[k] = v
	}
	meta["ip"] = input.IP
	meta["userAgent"] = input.UserAgent
	meta["referrer"] = input.Referrer

	lead := &models.Lead{
		Name:         name,
		LastName:     strings.TrimSpace(input.LastName),
		Phone:        phone,
		Email:        email,
		Comment:      input.AdditionalInfo,
		DepartmentID: site.DepartmentID,
		Source:       models.LeadSourceSite,
		SiteID:       &site.ID,
		SourceMeta:   stripEmptyMeta(meta),
	}
	if err := s.leadRepo.Create(lead); err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	// userID 0 marks the site origin in the audit trail.
	s.addHistory(lead.ID, 0, models.HistoryActionCreated, models.JSONMap{
		"name":   lead.Name,
		"phone":  lead.Phone,
		"siteId": site.ID,
	})
	return lead, nil
}

// ListLeadsInput represents filters for listing leads
type ListLeadsInput struct {
	DepartmentID uint64
	Name         string
	Phone        string
	Email        string
	Source       string
	StatusID     *uint64
	AssignedTo   *uint64
	DateFrom     *time.Time
	DateTo       *time.Time
	SortBy       string
	SortDesc     bool
	Skip         int
	Limit        int
}

// ListLeads lists a department's leads.
func (s *LeadService) ListLeads(actor *models.User, input ListLeadsInput) ([]models.Lead, int64, error) {
	visible, err := s.access.CanViewDepartment(input.DepartmentID, actor)
	if err != nil {
		return nil, 0, err
	}
	if !visible {
		return nil, 0, ErrAccessDenied
	}

	filter := repository.LeadFilter{
		DepartmentIDs: []uint64{input.DepartmentID},
		Name:          input.Name,
		Phone:         input.Phone,
		Email:         input.Email,
		Source:        input.Source,
		StatusID:      input.StatusID,
		AssignedTo:    input.AssignedTo,
		DateFrom:      input.DateFrom,
		DateTo:        input.DateTo,
		SortBy:        leadSortColumn(input.SortBy),
		SortDesc:      input.SortDesc,
		Skip:          input.Skip,
		Limit:         input.Limit,
	}
	return s.leadRepo.List(filter)
}

// GetLead returns a lead. Leads the actor cannot view read as not found.
func (s *LeadService) GetLead(actor *models.User, id uint64) (*models.Lead, error) {
	lead, err := s.leadRepo.FindByID(id, "Assignments", "Status", "Department")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to find lead: %w", err)
	}
	visible, err := s.access.CanViewDepartment(lead.DepartmentID, actor)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, ErrLeadNotFound
	}
	return lead, nil
}

// UpdateLead applies a partial update under the edit policy. Status changes,
// reassignments and other field changes each emit an independent history row.
func (s *LeadService) UpdateLead(actor *models.User, id uint64, input UpdateLeadInput) (*models.Lead, error) {
	lead, err := s.GetLead(actor, id)
	if err != nil {
		return nil, err
	}

	// Employees may only self-claim: the one permitted assignedTo value is
	// exactly [self].
	if input.AssignedTo != nil && actor.Role == constants.RoleEmployee {
		ids := *input.AssignedTo
		if len(ids) != 1 || ids[0] != actor.ID {
			return nil, ErrEmployeeSelfClaimOnly
		}
	}

	changedFields := models.JSONMap{}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		if name != lead.Name {
			changedFields["name"] = models.JSONMap{"from": lead.Name, "to": name}
			lead.Name = name
		}
	}
	if input.LastName != nil {
		lastName := strings.TrimSpace(*input.LastName)
		if lastName != lead.LastName {
			changedFields["lastName"] = models.JSONMap{"from": lead.LastName, "to": lastName}
			lead.LastName = lastName
		}
	}
	if input.Phone != nil {
		phone := strings.TrimSpace(*input.Phone)
		if phone != lead.Phone {
			if phone != "" {
				if _, err := s.leadRepo.FindByPhone(lead.DepartmentID, phone, lead.ID); err == nil {
					return nil, ErrDuplicatePhone
				} else if !errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, fmt.Errorf("failed to check phone: %w", err)
				}
			}
			changedFields["phone"] = models.JSONMap{"from": lead.Phone, "to": phone}
			lead.Phone = phone
		}
	}
	if input.Phone2 != nil {
		phone2 := strings.TrimSpace(*input.Phone2)
		if phone2 != lead.Phone2 {
			changedFields["phone2"] = models.JSONMap{"from": lead.Phone2, "to": phone2}
			lead.Phone2 = phone2
		}
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email != lead.Email {
			if email != "" {
				if _, err := s.leadRepo.FindByEmail(lead.DepartmentID, email, lead.ID); err == nil {
					return nil, ErrDuplicateEmail
				} else if !errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, fmt.Errorf("failed to check email: %w", err)
				}
			}
			changedFields["email"] = models.JSONMap{"from": lead.Email, "to": email}
			lead.Email = email
		}
	}
	if input.Email2 != nil {
		email2 := strings.ToLower(strings.TrimSpace(*input.Email2))
		if email2 != lead.Email2 {
			changedFields["email2"] = models.JSONMap{"from": lead.Email2, "to": email2}
			lead.Email2 = email2
		}
	}
	if input.Comment != nil && *input.Comment != lead.Comment {
		changedFields["comment"] = models.JSONMap{"from": lead.Comment, "to": *input.Comment}
		lead.Comment = *input.Comment
	}
	if input.Source != nil {
		source := strings.TrimSpace(*input.Source)
		if source != "" && source != lead.Source {
			changedFields["source"] = models.JSONMap{"from": lead.Source, "to": source}
			lead.Source = source
		}
	}
	if input.SourceMeta != nil {
		lead.SourceMeta = stripEmptyMeta(input.SourceMeta)
	}

	var statusChange models.JSONMap
	if input.ClearStatus {
		if lead.StatusID != nil {
			statusChange = models.JSONMap{"from": *lead.StatusID, "to": nil}
			lead.StatusID = nil
			lead.Status = nil
		}
	} else if input.StatusID != nil {
		if lead.StatusID == nil || *lead.StatusID != *input.StatusID {
			if err := s.checkStatusOwnership(*input.StatusID, lead.DepartmentID); err != nil {
				return nil, err
			}
			var from interface{}
			if lead.StatusID != nil {
				from = *lead.StatusID
			}
			statusChange = models.JSONMap{"from": from, "to": *input.StatusID}
			lead.StatusID = input.StatusID
			lead.Status = nil
		}
	}

	var assignmentChange models.JSONMap
	var newAssignees []uint64
	if input.AssignedTo != nil {
		newAssignees = uniqueUint64(*input.AssignedTo)
		if len(newAssignees) > 0 {
			if err := s.checkAssignees(lead.DepartmentID, newAssignees); err != nil {
				return nil, err
			}
		}
		current, err := s.leadRepo.AssignedUserIDs(lead.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load assignments: %w", err)
		}
		if !sameIDSet(current, newAssignees) {
			assignmentChange = models.JSONMap{"from": current, "to": newAssignees}
		}
	}

	lead.Assignments = nil
	if err := s.leadRepo.Update(lead); err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}
	if assignmentChange != nil {
		if err := s.leadRepo.ReplaceAssignments(lead.ID, newAssignees); err != nil {
			return nil, fmt.Errorf("failed to update assignments: %w", err)
		}
	}

	// History rows fire independently per change group, after the primary
	// write. A crash in between loses the history entry, never the data.
	if statusChange != nil {
		s.addHistory(lead.ID, actor.ID, models.HistoryActionStatusChanged, statusChange)
	}
	if assignmentChange != nil {
		s.addHistory(lead.ID, actor.ID, models.HistoryActionAssigned, assignmentChange)
	}
	if len(changedFields) > 0 {
		s.addHistory(lead.ID, actor.ID, models.HistoryActionUpdated, models.JSONMap{"fields": changedFields})
	}

	return s.GetLead(actor, lead.ID)
}

// DeleteLead removes a lead with all its notes, tasks, reminders and history.
func (s *LeadService) DeleteLead(actor *models.User, id uint64) error {
	lead, err := s.GetLead(actor, id)
	if err != nil {
		return err
	}
	if err := s.leadRepo.Delete(lead.ID); err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	return nil
}

func (s *LeadService) checkDuplicates(departmentID uint64, phone, email string, excludeID uint64) error {
	if phone != "" {
		if _, err := s.leadRepo.FindByPhone(departmentID, phone, excludeID); err == nil {
			return ErrDuplicatePhone
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check phone: %w", err)
		}
	}
	if email != "" {
		if _, err := s.leadRepo.FindByEmail(departmentID, email, excludeID); err == nil {
			return ErrDuplicateEmail
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check email: %w", err)
		}
	}
	return nil
}

func (s *LeadService) checkStatusOwnership(statusID, departmentID uint64) error {
	status, err := s.statusRepo.FindByID(statusID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStatusNotFound
		}
		return fmt.Errorf("failed to find status: %w", err)
	}
	if status.DepartmentID != departmentID {
		return ErrStatusWrongDepartment
	}
	return nil
}

// checkAssignees validates the whole assignee list against the department's
// allowed pool; any id outside fails the entire operation.
func (s *LeadService) checkAssignees(departmentID uint64, userIDs []uint64) error {
	allowed, err := s.access.AllowedAssignees(departmentID)
	if err != nil {
		return err
	}
	for _, id := range userIDs {
		if !allowed[id] {
			return ErrInvalidAssignee
		}
	}
	return nil
}

// addHistory appends an audit entry after a primary write. Failures are
// logged and swallowed.
func (s *LeadService) addHistory(leadID, userID uint64, action string, meta models.JSONMap) {
	entry := &models.LeadHistory{
		LeadID: leadID,
		UserID: userID,
		Action: action,
		Meta:   meta,
	}
	if err := s.itemRepo.CreateHistory(entry); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"lead_id": leadID,
			"action":  action,
		}).Error("failed to append lead history")
	}
}

// stripEmptyMeta removes empty-string and nil values; returns nil for an
// empty result so the column stays NULL.
func stripEmptyMeta(meta map[string]interface{}) models.JSONMap {
	if len(meta) == 0 {
		return nil
	}
	out := models.JSONMap{}
	for k, v := range meta {
		if v == nil {
			continue
		}
		if str, ok := v.(string); ok && strings.TrimSpace(str) == "" {
			continue
		}
		out[k] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func uniqueUint64(ids []uint64) []uint64 {
	seen := make(map[uint64]bool, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func sameIDSet(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[uint64]bool, len(a))
	for _, id := range a {
		set[id] = true
	}
	for _, id := range b {
		if !set[id] {
			return false
		}
	}
	return true
}
