package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/astracore/crm-backend/internal/dto"
	apierrors "github.com/astracore/crm-backend/internal/errors"
	"github.com/astracore/crm-backend/internal/middleware"
	"github.com/astracore/crm-backend/internal/services"
)

// widgetTemplate is the embeddable capture script served per site. The
// placeholders are substituted at request time.
const widgetTemplate = `(function () {
  var API_BASE = "__API_BASE__";
  var SITE_TOKEN = "__SITE_TOKEN__";

  function submitLead(fields, done) {
    var payload = {
      token: SITE_TOKEN,
      name: fields.name || "",
      lastName: fields.lastName || "",
      phone: fields.phone || "",
      email: fields.email || "",
      additionalInfo: fields.additionalInfo || "",
      meta: {
        page: window.location.href,
        referrer: document.referrer || "",
      },
    };
    var xhr = new XMLHttpRequest();
    xhr.open("POST", API_BASE + "/api/v1/leads/from-site", true);
    xhr.setRequestHeader("Content-Type", "application/json");
    xhr.onreadystatechange = function () {
      if (xhr.readyState === 4 && typeof done === "function") {
        done(xhr.status >= 200 && xhr.status < 300);
      }
    };
    xhr.send(JSON.stringify(payload));
  }

  window.crmWidget = { submitLead: submitLead };
})();
`

// SiteHandler coordinates lead-capture site HTTP handlers.
type SiteHandler struct {
	siteService   *services.SiteService
	publicBaseURL string
}

// NewSiteHandler creates a new SiteHandler.
func NewSiteHandler(siteService *services.SiteService, publicBaseURL string) *SiteHandler {
	return &SiteHandler{
		siteService:   siteService,
		publicBaseURL: publicBaseURL,
	}
}

// CreateSite registers a site and mints its token.
func (h *SiteHandler) CreateSite(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateSiteRequest struct {
		URL          string `json:"url" binding:"required"`
		Description  string `json:"description"`
		DepartmentID uint64 `json:"departmentId" binding:"required"`
	}

	var req CreateSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	site, err := h.siteService.CreateSite(actor, services.CreateSiteInput{
		URL:          req.URL,
		Description:  req.Description,
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, dto.ToSiteDTO(*site))
}

// ListSites lists sites, optionally filtered to one department.
func (h *SiteHandler) ListSites(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var departmentID *uint64
	if id, err := strconv.ParseUint(c.Query("departmentId"), 10, 64); err == nil {
		departmentID = &id
	}

	sites, err := h.siteService.ListSites(actor, departmentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, dto.ToSiteDTOs(sites))
}

// GetSite returns one site.
func (h *SiteHandler) GetSite(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	site, err := h.siteService.GetSite(actor, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, dto.ToSiteDTO(*site))
}

// UpdateSite applies a partial update to a site. The token never changes.
func (h *SiteHandler) UpdateSite(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type UpdateSiteRequest struct {
		URL         *string `json:"url"`
		Description *string `json:"description"`
	}

	var req UpdateSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	site, err := h.siteService.UpdateSite(actor, id, services.UpdateSiteInput{
		URL:         req.URL,
		Description: req.Description,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, dto.ToSiteDTO(*site))
}

// DeleteSite removes a site.
func (h *SiteHandler) DeleteSite(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.siteService.DeleteSite(actor, id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": true})
}

// WidgetScript serves the embeddable capture script for a site. It is public
// and cacheable; the site's token is baked into the script body, and an
// unknown site is a 404.
func (h *SiteHandler) WidgetScript(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	site, err := h.siteService.FindByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	script := strings.ReplaceAll(widgetTemplate, "__API_BASE__", h.publicBaseURL)
	script = strings.ReplaceAll(script, "__SITE_TOKEN__", site.Token)

	c.Header("Cache-Control", "public, max-age=300")
	c.Data(http.StatusOK, "application/javascript; charset=utf-8", []byte(script))
}
