package constants

// Gin context keys set by the auth middleware.
const (
	ContextKeyUserID    = "user_id"
	ContextKeyUserEmail = "user_email"
	ContextKeyUserRole  = "user_role"
)

const MinPasswordLength = 6

// Pagination bounds for list endpoints.
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

// MaxBulkLeads caps the number of rows accepted by a single bulk import.
const MaxBulkLeads = 1000

// MaxExportLeads caps the number of rows returned by a lead export.
const MaxExportLeads = 10000

// SiteTokenLength is the byte length of the random site widget token.
const SiteTokenLength = 32
