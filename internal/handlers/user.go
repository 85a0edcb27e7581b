package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/astracore/crm-backend/internal/constants"
	"github.com/astracore/crm-backend/internal/dto"
	apierrors "github.com/astracore/crm-backend/internal/errors"
	"github.com/astracore/crm-backend/internal/middleware"
	"github.com/astracore/crm-backend/internal/services"
	"github.com/astracore/crm-backend/internal/utils"
)

// UserHandler coordinates user management HTTP handlers.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// CreateUser registers a new account.
func (h *UserHandler) CreateUser(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateUserRequest struct {
		Email        string  `json:"email" binding:"required,email"`
		Password     string  `json:"password" binding:"required"`
		FirstName    string  `json:"firstName"`
		LastName     string  `json:"lastName"`
		Role         string  `json:"role"`
		DepartmentID *uint64 `json:"departmentId"`
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.CreateUser(actor, services.CreateUserInput{
		Email:        req.Email,
		Password:     req.Password,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         constants.Role(req.Role),
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, dto.ToUserDTO(*user))
}

// ListUsers returns all accounts.
func (h *UserHandler) ListUsers(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	users, err := h.userService.ListUsers(actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, dto.ToUserDTOs(users))
}

// GetUser returns one account.
func (h *UserHandler) GetUser(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetUser(actor, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, dto.ToUserDTO(*user))
}

// UpdateUser applies a partial update to an account.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type UpdateUserRequest struct {
		Email           *string `json:"email"`
		Password        *string `json:"password"`
		FirstName       *string `json:"firstName"`
		LastName        *string `json:"lastName"`
		Role            *string `json:"role"`
		DepartmentID    *uint64 `json:"departmentId"`
		ClearDepartment bool    `json:"clearDepartment"`
		IsActive        *bool   `json:"isActive"`
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateUserInput{
		Email:           req.Email,
		Password:        req.Password,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		DepartmentID:    req.DepartmentID,
		ClearDepartment: req.ClearDepartment,
		IsActive:        req.IsActive,
	}
	if req.Role != nil {
		role := constants.Role(*req.Role)
		input.Role = &role
	}

	user, err := h.userService.UpdateUser(actor, id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, dto.ToUserDTO(*user))
}

// DeleteUser removes an account.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(actor, id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": true})
}

// UserLeads lists leads assigned to a user.
func (h *UserHandler) UserLeads(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	input := services.UserLeadsInput{
		Name:     c.Query("name"),
		Phone:    c.Query("phone"),
		Email:    c.Query("email"),
		SortBy:   c.Query("sortBy"),
		SortDesc: c.Query("sortOrder") != "asc",
		Skip:     params.Skip,
		Limit:    params.Limit,
	}
	if statusID, err := strconv.ParseUint(c.Query("statusId"), 10, 64); err == nil {
		input.StatusID = &statusID
	}
	if deptID, err := strconv.ParseUint(c.Query("departmentId"), 10, 64); err == nil {
		input.DepartmentID = &deptID
	}

	leads, total, err := h.userService.UserLeads(actor, id, input)
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

// UserLeadStats returns per-user assignment statistics.
func (h *UserHandler) UserLeadStats(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	days, _ := strconv.Atoi(c.Query("days"))
	stats, err := h.userService.GetUserLeadStats(actor, id, days)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, stats)
}
