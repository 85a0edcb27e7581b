package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/astracore/crm-backend/internal/dto"
	apierrors "github.com/astracore/crm-backend/internal/errors"
	"github.com/astracore/crm-backend/internal/middleware"
	"github.com/astracore/crm-backend/internal/services"
)

// StatusHandler coordinates pipeline status HTTP handlers.
type StatusHandler struct {
	statusService *services.StatusService
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(statusService *services.StatusService) *StatusHandler {
	return &StatusHandler{
		statusService: statusService,
	}
}

// CreateStatus creates a pipeline stage.
func (h *StatusHandler) CreateStatus(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateStatusRequest struct {
		Name         string `json:"name" binding:"required"`
		Description  string `json:"description"`
		Color        string `json:"color"`
		DepartmentID uint64 `json:"departmentId" binding:"required"`
	}

	var req CreateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	status, err := h.statusService.CreateStatus(actor, services.CreateStatusInput{
		Name:         req.Name,
		Description:  req.Description,
		Color:        req.Color,
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, dto.ToStatusDTO(*status))
}

// ListStatuses lists a department's pipeline stages in order.
func (h *StatusHandler) ListStatuses(c *gin.Context) {
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

	statuses, err := h.statusService.ListStatuses(actor, departmentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, dto.ToStatusDTOs(statuses))
}

// GetStatus returns one pipeline stage.
func (h *StatusHandler) GetStatus(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	status, err := h.statusService.GetStatus(actor, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, dto.ToStatusDTO(*status))
}

// UpdateStatus applies a partial update to a pipeline stage.
func (h *StatusHandler) UpdateStatus(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type UpdateStatusRequest struct {
		Name         *string `json:"name"`
		Description  *string `json:"description"`
		Color        *string `json:"color"`
		Order        *int    `json:"order"`
		DepartmentID *uint64 `json:"departmentId"`
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	status, err := h.statusService.UpdateStatus(actor, id, services.UpdateStatusInput{
		Name:         req.Name,
		Description:  req.Description,
		Color:        req.Color,
		Order:        req.Order,
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, dto.ToStatusDTO(*status))
}

// DeleteStatus removes a pipeline stage, detaching its leads.
func (h *StatusHandler) DeleteStatus(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.statusService.DeleteStatus(actor, id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": true})
}
