package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/astracore/crm-backend/internal/dto"
	apierrors "github.com/astracore/crm-backend/internal/errors"
	"github.com/astracore/crm-backend/internal/middleware"
	"github.com/astracore/crm-backend/internal/services"
)

// DashboardHandler coordinates the dashboard HTTP handlers.
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// Summary returns the headline counters.
func (h *DashboardHandler) Summary(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	summary, err := h.dashboardService.GetSummary(actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, summary)
}

// LeadsByStatus returns lead counts grouped by status.
func (h *DashboardHandler) LeadsByStatus(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	counts, err := h.dashboardService.LeadsByStatus(actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, counts)
}

// LeadsOverTime returns a zero-filled daily creation series.
func (h *DashboardHandler) LeadsOverTime(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	days, _ := strconv.Atoi(c.Query("days"))
	series, err := h.dashboardService.LeadsOverTime(actor, days)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, series)
}

// RecentLeads returns the newest leads within scope.
func (h *DashboardHandler) RecentLeads(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	leads, err := h.dashboardService.RecentLeads(actor, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, dto.ToLeadDTOs(leads))
}

// DepartmentsSummary returns per-department lead counts.
func (h *DashboardHandler) DepartmentsSummary(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	summary, err := h.dashboardService.DepartmentsSummary(actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, summary)
}

// TopAssignees returns the assignment leaderboard.
func (h *DashboardHandler) TopAssignees(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	assignees, err := h.dashboardService.TopAssignees(actor, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, assignees)
}

// Attention returns counts of leads needing follow-up.
func (h *DashboardHandler) Attention(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	attention, err := h.dashboardService.GetAttention(actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, attention)
}

// WeekEvents returns reminders and tasks due this week.
func (h *DashboardHandler) WeekEvents(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	events, err := h.dashboardService.WeekEvents(actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, events)
}
