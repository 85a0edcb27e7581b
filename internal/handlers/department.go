package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/astracore/crm-backend/internal/dto"
	apierrors "github.com/astracore/crm-backend/internal/errors"
	"github.com/astracore/crm-backend/internal/middleware"
	"github.com/astracore/crm-backend/internal/services"
)

// DepartmentHandler coordinates department HTTP handlers.
type DepartmentHandler struct {
	deptService *services.DepartmentService
}

// NewDepartmentHandler creates a new DepartmentHandler.
func NewDepartmentHandler(deptService *services.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{
		deptService: deptService,
	}
}

// CreateDepartment creates a department. Gated to super via router.
func (h *DepartmentHandler) CreateDepartment(c *gin.Context) {
	type CreateDepartmentRequest struct {
		Name        string  `json:"name" binding:"required"`
		Description string  `json:"description"`
		ManagerID   *uint64 `json:"managerId"`
	}

	var req CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	dept, err := h.deptService.CreateDepartment(services.CreateDepartmentInput{
		Name:        req.Name,
		Description: req.Description,
		ManagerID:   req.ManagerID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, dto.ToDepartmentDTO(*dept))
}

// ListDepartments lists departments within the actor's scope.
func (h *DepartmentHandler) ListDepartments(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	departments, err := h.deptService.ListDepartments(actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, dto.ToDepartmentDTOs(departments))
}

// GetDepartment returns a department with members and resource counts.
func (h *DepartmentHandler) GetDepartment(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.deptService.GetDepartmentDetail(actor, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, dto.ToDepartmentDetailDTO(detail))
}

// UpdateDepartment applies a partial update to a department.
func (h *DepartmentHandler) UpdateDepartment(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type UpdateDepartmentRequest struct {
		Name         *string `json:"name"`
		Description  *string `json:"description"`
		ManagerID    *uint64 `json:"managerId"`
		ClearManager bool    `json:"clearManager"`
	}

	var req UpdateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	dept, err := h.deptService.UpdateDepartment(actor, id, services.UpdateDepartmentInput{
		Name:         req.Name,
		Description:  req.Description,
		ManagerID:    req.ManagerID,
		ClearManager: req.ClearManager,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, dto.ToDepartmentDTO(*dept))
}

// DeleteDepartment removes a department. Gated to super via router.
func (h *DepartmentHandler) DeleteDepartment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.deptService.DeleteDepartment(id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": true})
}
