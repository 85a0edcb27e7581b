package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/astracore/crm-backend/internal/constants"
	apierrors "github.com/astracore/crm-backend/internal/errors"
	"github.com/astracore/crm-backend/internal/services"
)

// APIResponse is the standardized success envelope
type APIResponse struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Timestamp  string      `json:"timestamp"`
}

func respond(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, APIResponse{
		StatusCode: statusCode,
		Data:       data,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}

func respondOK(c *gin.Context, data interface{}) {
	respond(c, http.StatusOK, data)
}

func respondCreated(c *gin.Context, data interface{}) {
	respond(c, http.StatusCreated, data)
}

// parseIDParam parses a numeric path parameter
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, fmt.Sprintf("Invalid %s", name))
		return 0, false
	}
	return id, true
}

// respondServiceError maps service sentinel errors onto the error envelope.
// Unknown errors become opaque 500s.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidToken):
		apierrors.Unauthorized(c, err.Error())

	case errors.Is(err, services.ErrAccessDenied),
		errors.Is(err, services.ErrRoleNotAllowed),
		errors.Is(err, services.ErrOwnRoleChange),
		errors.Is(err, services.ErrSelfDelete),
		errors.Is(err, services.ErrManagerNoDepartment),
		errors.Is(err, services.ErrEmployeeSelfClaimOnly),
		errors.Is(err, services.ErrNotNoteAuthor):
		apierrors.Forbidden(c, err.Error())

	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrDepartmentNotFound),
		errors.Is(err, services.ErrStatusNotFound),
		errors.Is(err, services.ErrSiteNotFound),
		errors.Is(err, services.ErrLeadNotFound),
		errors.Is(err, services.ErrNoteNotFound),
		errors.Is(err, services.ErrLeadTaskNotFound),
		errors.Is(err, services.ErrReminderNotFound),
		errors.Is(err, services.ErrBoardTaskNotFound),
		errors.Is(err, services.ErrTaskStatusNotFound),
		errors.Is(err, services.ErrTaskPriorityNotFound):
		apierrors.NotFound(c, err.Error())

	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrDepartmentNameTaken):
		apierrors.Conflict(c, err.Error())

	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))

	case errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrDuplicatePhone),
		errors.Is(err, services.ErrDuplicateEmail),
		errors.Is(err, services.ErrInvalidAssignee),
		errors.Is(err, services.ErrStatusWrongDepartment),
		errors.Is(err, services.ErrEmptyContent),
		errors.Is(err, services.ErrEmptyTitle),
		errors.Is(err, services.ErrInvalidRemindAt),
		errors.Is(err, services.ErrInvalidSiteToken),
		errors.Is(err, services.ErrNameRequired):
		apierrors.BadRequest(c, err.Error())

	case errors.Is(err, gorm.ErrRecordNotFound):
		apierrors.NotFound(c, "")

	default:
		apierrors.InternalError(c, "")
	}
}
