package services

import "errors"

// Sentinel errors shared across services. Handlers map these onto the API
// error envelope.
var (
	// Unauthorized
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")

	// Forbidden
	ErrAccessDenied          = errors.New("access denied")
	ErrRoleNotAllowed        = errors.New("not allowed to assign this role")
	ErrOwnRoleChange         = errors.New("cannot change own role")
	ErrSelfDelete            = errors.New("cannot delete own account")
	ErrManagerNoDepartment   = errors.New("manager has no department")
	ErrEmployeeSelfClaimOnly = errors.New("employees may only assign a lead to themselves")
	ErrNotNoteAuthor         = errors.New("only the author or a manager can modify this note")

	// NotFound
	ErrUserNotFound         = errors.New("user not found")
	ErrDepartmentNotFound   = errors.New("department not found")
	ErrStatusNotFound       = errors.New("status not found")
	ErrSiteNotFound         = errors.New("site not found")
	ErrLeadNotFound         = errors.New("lead not found")
	ErrNoteNotFound         = errors.New("note not found")
	ErrLeadTaskNotFound     = errors.New("lead task not found")
	ErrReminderNotFound     = errors.New("reminder not found")
	ErrBoardTaskNotFound    = errors.New("task not found")
	ErrTaskStatusNotFound   = errors.New("task status not found")
	ErrTaskPriorityNotFound = errors.New("task priority not found")

	// Conflict
	ErrEmailTaken          = errors.New("email already in use")
	ErrDepartmentNameTaken = errors.New("department with this name already exists")

	// BadRequest
	ErrPasswordTooShort      = errors.New("password too short")
	ErrInvalidRole           = errors.New("invalid role")
	ErrDuplicatePhone        = errors.New("lead with this phone already exists")
	ErrDuplicateEmail        = errors.New("lead with this email already exists")
	ErrInvalidAssignee       = errors.New("one or more assignees do not belong to the department")
	ErrStatusWrongDepartment = errors.New("status belongs to a different department")
	ErrEmptyContent          = errors.New("content cannot be empty")
	ErrEmptyTitle            = errors.New("title cannot be empty")
	ErrInvalidRemindAt       = errors.New("remindAt is required and must be a valid date")
	ErrInvalidSiteToken      = errors.New("invalid site token")
	ErrNameRequired          = errors.New("name is required")
)
