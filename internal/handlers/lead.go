package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/astracore/crm-backend/internal/constants"
	"github.com/astracore/crm-backend/internal/dto"
	apierrors "github.com/astracore/crm-backend/internal/errors"
	"github.com/astracore/crm-backend/internal/middleware"
	"github.com/astracore/crm-backend/internal/repository"
	"github.com/astracore/crm-backend/internal/services"
	"github.com/astracore/crm-backend/internal/utils"
)

// LeadHandler coordinates lead HTTP handlers.
type LeadHandler struct {
	leadService *services.LeadService
}

// NewLeadHandler creates a new LeadHandler.
func NewLeadHandler(leadService *services.LeadService) *LeadHandler {
	return &LeadHandler{
		leadService: leadService,
	}
}

// parseDateQuery parses a yyyy-mm-dd query value as a whole-day UTC bound.
// endOfDay selects the last instant of the day instead of the first.
func parseDateQuery(c *gin.Context, name string, endOfDay bool) *time.Time {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return nil
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Second)
	}
	return &t
}

// CreateLead creates a lead.
func (h *LeadHandler) CreateLead(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateLeadRequest struct {
		Name         string                 `json:"name" binding:"required"`
		LastName     string                 `json:"lastName"`
		Phone        string                 `json:"phone"`
		Phone2       string                 `json:"phone2"`
		Email        string                 `json:"email"`
		Email2       string                 `json:"email2"`
		Comment      string                 `json:"comment"`
		DepartmentID uint64                 `json:"departmentId" binding:"required"`
		StatusID     *uint64                `json:"statusId"`
		AssignedTo   []uint64               `json:"assignedTo"`
		Source       string                 `json:"source"`
		SourceMeta   map[string]interface{} `json:"sourceMeta"`
	}

	var req CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	lead, err := h.leadService.CreateLead(actor, services.CreateLeadInput{
		Name:         req.Name,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Phone2:       req.Phone2,
		Email:        req.Email,
		Email2:       req.Email2,
		Comment:      req.Comment,
		DepartmentID: req.DepartmentID,
		StatusID:     req.StatusID,
		AssignedTo:   req.AssignedTo,
		Source:       req.Source,
		SourceMeta:   req.SourceMeta,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, dto.ToLeadDTO(*lead))
}

// CreateFromSite accepts a public widget submission authenticated by the
// site token alone.
func (h *LeadHandler) CreateFromSite(c *gin.Context) {
	type FromSiteRequest struct {
		Token          string                 `json:"token" binding:"required"`
		Name           string                 `json:"name"`
		LastName       string                 `json:"lastName"`
		Phone          string                 `json:"phone"`
		Email          string                 `json:"email"`
		AdditionalInfo string                 `json:"additionalInfo"`
		Meta           map[string]interface{} `json:"meta"`
	}

	var req FromSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	lead, err := h.leadService.CreateFromSite(services.FromSiteInput{
		Token:          req.Token,
		Name:           req.Name,
		LastName:       req.LastName,
		Phone:          req.Phone,
		Email:          req.Email,
		AdditionalInfo: req.AdditionalInfo,
		SourceMeta:     req.Meta,
		IP:             c.ClientIP(),
		UserAgent:      c.GetHeader("User-Agent"),
		Referrer:       c.GetHeader("Referer"),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, gin.H{"id": lead.ID})
}

// ListLeads lists a department's leads with filters and pagination.
func (h *LeadHandler) ListLeads(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	departmentID, err := strconv.ParseUint(c.Query("departmentId"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "departmentId is required")
		return
	}

	params := utils.GetPaginationParams(c)
	input := services.ListLeadsInput{
		DepartmentID: departmentID,
		Name:         c.Query("name"),
		Phone:        c.Query("phone"),
		Email:        c.Query("email"),
		Source:       c.Query("source"),
		DateFrom:     parseDateQuery(c, "dateFrom", false),
		DateTo:       parseDateQuery(c, "dateTo", true),
		SortBy:       c.Query("sortBy"),
		SortDesc:     c.Query("sortOrder") != "asc",
		Skip:         params.Skip,
		Limit:        params.Limit,
	}
	if statusID, err := strconv.ParseUint(c.Query("statusId"), 10, 64); err == nil {
		input.StatusID = &statusID
	}
	if assignedTo, err := strconv.ParseUint(c.Query("assignedTo"), 10, 64); err == nil {
		input.AssignedTo = &assignedTo
	}

	leads, total, err := h.leadService.ListLeads(actor, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, dto.LeadListResponse{
		Items: dto.ToLeadDTOs(leads),
		Total: total,
		Skip:  params.Skip,
		Limit: params.Limit,
	})
}

// GetLead returns one lead.
func (h *LeadHandler) GetLead(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	lead, err := h.leadService.GetLead(actor, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, dto.ToLeadDTO(*lead))
}

// leadPatchRequest is the shared partial-update shape for single and bulk
// lead updates.
type leadPatchRequest struct {
	Name        *string                `json:"name"`
	LastName    *string                `json:"lastName"`
	Phone       *string                `json:"phone"`
	Phone2      *string                `json:"phone2"`
	Email       *string                `json:"email"`
	Email2      *string                `json:"email2"`
	Comment     *string                `json:"comment"`
	StatusID    *uint64                `json:"statusId"`
	ClearStatus bool                   `json:"clearStatus"`
	AssignedTo  *[]uint64              `json:"assignedTo"`
	Source      *string                `json:"source"`
	SourceMeta  map[string]interface{} `json:"sourceMeta"`
}

func (r leadPatchRequest) toInput() services.UpdateLeadInput {
	return services.UpdateLeadInput{
		Name:        r.Name,
		LastName:    r.LastName,
		Phone:       r.Phone,
		Phone2:      r.Phone2,
		Email:       r.Email,
		Email2:      r.Email2,
		Comment:     r.Comment,
		StatusID:    r.StatusID,
		ClearStatus: r.ClearStatus,
		AssignedTo:  r.AssignedTo,
		Source:      r.Source,
		SourceMeta:  r.SourceMeta,
	}
}

// UpdateLead applies a partial update to a lead.
func (h *LeadHandler) UpdateLead(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req leadPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	lead, err := h.leadService.UpdateLead(actor, id, req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, dto.ToLeadDTO(*lead))
}

// DeleteLead removes a lead and its sub-entities.
func (h *LeadHandler) DeleteLead(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.leadService.DeleteLead(actor, id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": true})
}

// BulkCreate imports a batch of leads into one department. Gated to
// super/manager via router.
func (h *LeadHandler) BulkCreate(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	type BulkItemRequest struct {
		Name     string `json:"name"`
		LastName string `json:"lastName"`
		Phone    string `json:"phone"`
		Email    string `json:"email"`
	}
	type BulkCreateRequest struct {
		DepartmentID uint64            `json:"departmentId" binding:"required"`
		Leads        []BulkItemRequest `json:"leads" binding:"required"`
	}

	var req BulkCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	if len(req.Leads) == 0 || len(req.Leads) > constants.MaxBulkLeads {
		apierrors.BadRequest(c, "Invalid batch size")
		return
	}

	items := make([]services.BulkLeadItem, len(req.Leads))
	for i, item := range req.Leads {
		items[i] = services.BulkLeadItem{
			Name:     item.Name,
			LastName: item.LastName,
			Phone:    item.Phone,
			Email:    item.Email,
		}
	}

	result, err := h.leadService.BulkCreateLeads(actor, req.DepartmentID, items)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, result)
}

// BulkUpdate applies per-item updates, skipping items that fail. Gated to
// super/manager via router.
func (h *LeadHandler) BulkUpdate(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	type BulkUpdateRequest struct {
		Leads []struct {
			ID uint64 `json:"id" binding:"required"`
			leadPatchRequest
		} `json:"leads" binding:"required"`
	}

	var req BulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	items := make([]services.BulkUpdateItem, len(req.Leads))
	for i, item := range req.Leads {
		items[i] = services.BulkUpdateItem{
			ID:    item.ID,
			Patch: item.toInput(),
		}
	}

	updated, err := h.leadService.BulkUpdateLeads(actor, items)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"updated": updated})
}

// BulkDelete deletes per item, skipping leads the actor cannot delete. Gated
// to super/manager via router.
func (h *LeadHandler) BulkDelete(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	type BulkDeleteRequest struct {
		IDs []uint64 `json:"ids" binding:"required"`
	}

	var req BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	deleted, err := h.leadService.BulkDeleteLeads(actor, req.IDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": deleted})
}

// LeadStats returns the per-assignee status matrix for a department.
func (h *LeadHandler) LeadStats(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	departmentID, err := strconv.ParseUint(c.Query("departmentId"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "departmentId is required")
		return
	}

	filter := repository.StatsFilter{
		DateFrom: parseDateQuery(c, "dateFrom", false),
		DateTo:   parseDateQuery(c, "dateTo", true),
	}
	if statusID, err := strconv.ParseUint(c.Query("statusId"), 10, 64); err == nil {
		filter.StatusID = &statusID
	}

	stats, err := h.leadService.GetLeadStats(actor, departmentID, filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, stats)
}

// ExportLeads returns a department's leads for export, newest first.
func (h *LeadHandler) ExportLeads(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	departmentID, err := strconv.ParseUint(c.Query("departmentId"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "departmentId is required")
		return
	}

	input := services.ExportLeadsInput{
		DepartmentID: departmentID,
		DateFrom:     parseDateQuery(c, "dateFrom", false),
		DateTo:       parseDateQuery(c, "dateTo", true),
	}
	if statusID, err := strconv.ParseUint(c.Query("statusId"), 10, 64); err == nil {
		input.StatusID = &statusID
	}
	if assignedTo, err := strconv.ParseUint(c.Query("assignedTo"), 10, 64); err == nil {
		input.AssignedTo = &assignedTo
	}

	leads, err := h.leadService.ExportLeads(actor, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, dto.ToLeadDTOs(leads))
}

// UpcomingReminders lists undone reminders due within 24 hours, scoped to
// leads the actor can view.
func (h *LeadHandler) UpcomingReminders(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	reminders, err := h.leadService.UpcomingReminders(actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, reminders)
}
