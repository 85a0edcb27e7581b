package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/astracore/crm-backend/internal/dto"
	apierrors "github.com/astracore/crm-backend/internal/errors"
	"github.com/astracore/crm-backend/internal/middleware"
	"github.com/astracore/crm-backend/internal/repository"
	"github.com/astracore/crm-backend/internal/services"
)

// BoardHandler coordinates the internal task board HTTP handlers. The whole
// surface is gated to super via router.
type BoardHandler struct {
	boardService *services.BoardService
}

// NewBoardHandler creates a new BoardHandler.
func NewBoardHandler(boardService *services.BoardService) *BoardHandler {
	return &BoardHandler{
		boardService: boardService,
	}
}

// CreateTask creates a board card.
func (h *BoardHandler) CreateTask(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateTaskRequest struct {
		Title        string     `json:"title" binding:"required"`
		Description  string     `json:"description"`
		DepartmentID uint64     `json:"departmentId" binding:"required"`
		StatusID     *uint64    `json:"statusId"`
		PriorityID   *uint64    `json:"priorityId"`
		AssigneeID   *uint64    `json:"assigneeId"`
		DueDate      *time.Time `json:"dueDate"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.boardService.CreateBoardTask(actor, services.CreateBoardTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		DepartmentID: req.DepartmentID,
		StatusID:     req.StatusID,
		PriorityID:   req.PriorityID,
		AssigneeID:   req.AssigneeID,
		DueAt:        req.DueDate,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, dto.ToBoardTaskDTO(*task))
}

// ListTasks lists a department's board cards.
func (h *BoardHandler) ListTasks(c *gin.Context) {
	departmentID, err := strconv.ParseUint(c.Query("departmentId"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "departmentId is required")
		return
	}

	filter := repository.BoardFilter{DepartmentID: departmentID}
	if statusID, err := strconv.ParseUint(c.Query("statusId"), 10, 64); err == nil {
		filter.StatusID = &statusID
	}
	if priorityID, err := strconv.ParseUint(c.Query("priorityId"), 10, 64); err == nil {
		filter.PriorityID = &priorityID
	}
	if assigneeID, err := strconv.ParseUint(c.Query("assigneeId"), 10, 64); err == nil {
		filter.AssigneeID = &assigneeID
	}

	tasks, err := h.boardService.ListBoardTasks(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, dto.ToBoardTaskDTOs(tasks))
}

// GetTask returns one board card.
func (h *BoardHandler) GetTask(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	task, err := h.boardService.GetBoardTask(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, dto.ToBoardTaskDTO(*task))
}

// UpdateTask applies a partial update to a board card.
func (h *BoardHandler) UpdateTask(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type UpdateTaskRequest struct {
		Title         *string    `json:"title"`
		Description   *string    `json:"description"`
		StatusID      *uint64    `json:"statusId"`
		ClearStatus   bool       `json:"clearStatus"`
		PriorityID    *uint64    `json:"priorityId"`
		ClearPriority bool       `json:"clearPriority"`
		AssigneeID    *uint64    `json:"assigneeId"`
		ClearAssignee bool       `json:"clearAssignee"`
		DueDate       *time.Time `json:"dueDate"`
		ClearDueDate  bool       `json:"clearDueDate"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.boardService.UpdateBoardTask(id, services.UpdateBoardTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		StatusID:      req.StatusID,
		ClearStatus:   req.ClearStatus,
		PriorityID:    req.PriorityID,
		ClearPriority: req.ClearPriority,
		AssigneeID:    req.AssigneeID,
		ClearAssignee: req.ClearAssignee,
		DueAt:         req.DueDate,
		ClearDueAt:    req.ClearDueDate,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, dto.ToBoardTaskDTO(*task))
}

// DeleteTask removes a board card.
func (h *BoardHandler) DeleteTask(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.boardService.DeleteBoardTask(id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": true})
}

// ReorderTasks rewrites a column's card order. Unknown or out-of-column ids
// are skipped.
func (h *BoardHandler) ReorderTasks(c *gin.Context) {
	type ReorderRequest struct {
		DepartmentID uint64   `json:"departmentId" binding:"required"`
		StatusID     *uint64  `json:"statusId"`
		TaskIDs      []uint64 `json:"taskIds" binding:"required"`
	}

	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.boardService.ReorderBoardTasks(req.DepartmentID, req.StatusID, req.TaskIDs); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"reordered": true})
}

// CreateStatus creates a board column.
func (h *BoardHandler) CreateStatus(c *gin.Context) {
	type CreateStatusRequest struct {
		Name         string `json:"name" binding:"required"`
		Color        string `json:"color"`
		IsCompleted  bool   `json:"isCompleted"`
		DepartmentID uint64 `json:"departmentId" binding:"required"`
	}

	var req CreateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	status, err := h.boardService.CreateTaskStatus(services.CreateTaskStatusInput{
		Name:         req.Name,
		Color:        req.Color,
		IsCompleted:  req.IsCompleted,
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, dto.ToTaskStatusDTO(*status))
}

// ListStatuses lists a department's board columns in order.
func (h *BoardHandler) ListStatuses(c *gin.Context) {
	departmentID, err := strconv.ParseUint(c.Query("departmentId"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "departmentId is required")
		return
	}

	statuses, err := h.boardService.ListTaskStatuses(departmentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, dto.ToTaskStatusDTOs(statuses))
}

// UpdateStatus applies a partial update to a board column.
func (h *BoardHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type UpdateStatusRequest struct {
		Name        *string `json:"name"`
		Color       *string `json:"color"`
		Order       *int    `json:"order"`
		IsCompleted *bool   `json:"isCompleted"`
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	status, err := h.boardService.UpdateTaskStatus(id, services.UpdateTaskStatusInput{
		Name:        req.Name,
		Color:       req.Color,
		Order:       req.Order,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, dto.ToTaskStatusDTO(*status))
}

// DeleteStatus removes a board column, detaching its cards.
func (h *BoardHandler) DeleteStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.boardService.DeleteTaskStatus(id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": true})
}

// CreatePriority creates a board priority label.
func (h *BoardHandler) CreatePriority(c *gin.Context) {
	type CreatePriorityRequest struct {
		Name         string `json:"name" binding:"required"`
		Color        string `json:"color"`
		DepartmentID uint64 `json:"departmentId" binding:"required"`
	}

	var req CreatePriorityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	priority, err := h.boardService.CreateTaskPriority(services.CreateTaskPriorityInput{
		Name:         req.Name,
		Color:        req.Color,
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, dto.ToTaskPriorityDTO(*priority))
}

// ListPriorities lists a department's priority labels in order.
func (h *BoardHandler) ListPriorities(c *gin.Context) {
	departmentID, err := strconv.ParseUint(c.Query("departmentId"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "departmentId is required")
		return
	}

	priorities, err := h.boardService.ListTaskPriorities(departmentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, dto.ToTaskPriorityDTOs(priorities))
}

// UpdatePriority applies a partial update to a priority label.
func (h *BoardHandler) UpdatePriority(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type UpdatePriorityRequest struct {
		Name  *string `json:"name"`
		Color *string `json:"color"`
		Order *int    `json:"order"`
	}

	var req UpdatePriorityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	priority, err := h.boardService.UpdateTaskPriority(id, services.UpdateTaskPriorityInput{
		Name:  req.Name,
		Color: req.Color,
		Order: req.Order,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, dto.ToTaskPriorityDTO(*priority))
}

// DeletePriority removes a priority label, detaching its cards.
func (h *BoardHandler) DeletePriority(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.boardService.DeleteTaskPriority(id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": true})
}
