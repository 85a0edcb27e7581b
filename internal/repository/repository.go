package repository

import (
	"time"

	"github.com/astracore/crm-backend/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email (stored lowercased)
	FindByEmail(email string) (*models.User, error)

	// FindAll lists all users
	FindAll() ([]models.User, error)

	// FindByDepartment lists users belonging to a department
	FindByDepartment(departmentID uint64) ([]models.User, error)

	// FindByIDs lists users with the given IDs
	FindByIDs(ids []uint64) ([]models.User, error)

	// Update updates a user
	Update(user *models.User) error

	// UpdateLastLogin records a successful login
	UpdateLastLogin(id uint64, at time.Time) error

	// Delete removes a user
	Delete(id uint64) error

	// ClearDepartment detaches all members of a department
	ClearDepartment(departmentID uint64) error
}

// DepartmentRepository defines the interface for department data access
type DepartmentRepository interface {
	Create(department *models.Department) error
	FindByID(id uint64) (*models.Department, error)
	FindAll() ([]models.Department, error)

	// FindByName finds a department by exact name, ignoring excludeID
	FindByName(name string, excludeID uint64) (*models.Department, error)

	Update(department *models.Department) error

	// UpdateManager sets or clears the manager pointer only
	UpdateManager(id uint64, managerID *uint64) error

	Delete(id uint64) error
}

// StatusRepository defines the interface for lead pipeline stages
type StatusRepository interface {
	Create(status *models.Status) error
	FindByID(id uint64) (*models.Status, error)
	FindByDepartment(departmentID uint64) ([]models.Status, error)
	FindByIDs(ids []uint64) ([]models.Status, error)
	Update(status *models.Status) error
	Delete(id uint64) error

	// MaxOrder returns the highest order value within a department, 0 if none
	MaxOrder(departmentID uint64) (int, error)

	CountByDepartment(departmentID uint64) (int64, error)
}

// SiteRepository defines the interface for widget site data access
type SiteRepository interface {
	Create(site *models.Site) error
	FindByID(id uint64) (*models.Site, error)
	FindByToken(token string) (*models.Site, error)
	FindByDepartments(departmentIDs []uint64) ([]models.Site, error)
	FindAll() ([]models.Site, error)
	Update(site *models.Site) error
	Delete(id uint64) error
	CountByDepartment(departmentID uint64) (int64, error)
}

// LeadFilter holds filtering options for listing leads
type LeadFilter struct {
	DepartmentIDs []uint64
	Name          string
	Phone         string
	Email         string
	Source        string
	StatusID      *uint64
	AssignedTo    *uint64
	DateFrom      *time.Time
	DateTo        *time.Time

	// SortBy must be a validated column name; empty means created_at
	SortBy   string
	SortDesc bool

	Skip  int
	Limit int
}

// StatsFilter narrows lead statistics queries
type StatsFilter struct {
	DateFrom *time.Time
	DateTo   *time.Time
	StatusID *uint64
}

// StatusCount is a per-status aggregate row
type StatusCount struct {
	StatusID *uint64
	Count    int64
}

// UserStatusCount is a per-assignee, per-status aggregate row
type UserStatusCount struct {
	UserID   uint64
	StatusID *uint64
	Count    int64
}

// DepartmentCount is a per-department aggregate row
type DepartmentCount struct {
	DepartmentID uint64
	Count        int64
}

// UserCount is a per-assignee aggregate row
type UserCount struct {
	UserID uint64
	Count  int64
}

// LeadRepository defines the interface for lead data access
type LeadRepository interface {
	Create(lead *models.Lead) error

	// FindByID finds a lead by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Lead, error)

	// List retrieves leads with filtering and pagination
	List(filter LeadFilter) ([]models.Lead, int64, error)

	Update(lead *models.Lead) error

	// Delete removes a lead and all dependent rows
	Delete(id uint64) error

	// ReplaceAssignments replaces the full assignee set of a lead
	ReplaceAssignments(leadID uint64, userIDs []uint64) error

	// AssignedUserIDs returns the assignee IDs of a lead
	AssignedUserIDs(leadID uint64) ([]uint64, error)

	// FindByPhone finds a lead in a department by exact phone, ignoring excludeID
	FindByPhone(departmentID uint64, phone string, excludeID uint64) (*models.Lead, error)

	// FindByEmail finds a lead in a department by exact email, ignoring excludeID
	FindByEmail(departmentID uint64, email string, excludeID uint64) (*models.Lead, error)

	// ExistingPhones returns which of the given phones already exist in a department
	ExistingPhones(departmentID uint64, phones []string) (map[string]bool, error)

	// ExistingEmails returns which of the given emails already exist in a department
	ExistingEmails(departmentID uint64, emails []string) (map[string]bool, error)

	// ClearStatus detaches a deleted status from all leads referencing it
	ClearStatus(statusID uint64) error

	// Aggregates
	Count(departmentIDs []uint64) (int64, error)
	CountSince(departmentIDs []uint64, since time.Time) (int64, error)
	CountUnassigned(departmentIDs []uint64) (int64, error)
	CountByStatus(departmentIDs []uint64) ([]StatusCount, error)
	CountByUserAndStatus(departmentID uint64, filter StatsFilter) ([]UserStatusCount, error)
	CountByDepartment(departmentIDs []uint64) ([]DepartmentCount, error)
	CountByAssignee(departmentIDs []uint64, limit int) ([]UserCount, error)
	CreatedSince(departmentIDs []uint64, since time.Time) ([]time.Time, error)
	Recent(departmentIDs []uint64, limit int) ([]models.Lead, error)

	// Per-user aggregates
	CountForUser(userID uint64) (int64, error)
	CountForUserByStatus(userID uint64) ([]StatusCount, error)
	AssignedCreatedSince(userID uint64, since time.Time) ([]time.Time, error)
}

// LeadItemRepository defines the interface for notes, tasks, reminders and
// the append-only history of a lead
type LeadItemRepository interface {
	CreateNote(note *models.LeadNote) error
	FindNoteByID(id uint64) (*models.LeadNote, error)
	NotesByLead(leadID uint64) ([]models.LeadNote, error)
	UpdateNote(note *models.LeadNote) error
	DeleteNote(id uint64) error

	CreateTask(task *models.LeadTask) error
	FindTaskByID(id uint64) (*models.LeadTask, error)
	TasksByLead(leadID uint64) ([]models.LeadTask, error)
	UpdateTask(task *models.LeadTask) error
	DeleteTask(id uint64) error

	CreateReminder(reminder *models.LeadReminder) error
	FindReminderByID(id uint64) (*models.LeadReminder, error)
	RemindersByLead(leadID uint64) ([]models.LeadReminder, error)
	UpdateReminder(reminder *models.LeadReminder) error
	DeleteReminder(id uint64) error

	// UpcomingReminders lists pending reminders due before the given time,
	// scoped to leads of the given departments
	UpcomingReminders(departmentIDs []uint64, before time.Time, limit int) ([]models.LeadReminder, error)

	// RemindersDueBetween lists pending reminders inside a time window
	RemindersDueBetween(departmentIDs []uint64, from, to time.Time) ([]models.LeadReminder, error)

	// TasksDueBetween lists uncompleted lead tasks inside a time window
	TasksDueBetween(departmentIDs []uint64, from, to time.Time) ([]models.LeadTask, error)

	CreateHistory(entry *models.LeadHistory) error
	HistoryByLead(leadID uint64) ([]models.LeadHistory, error)
}

// BoardFilter holds filtering options for listing board tasks
type BoardFilter struct {
	DepartmentID uint64
	StatusID     *uint64
	PriorityID   *uint64
	AssigneeID   *uint64
}

// BoardRepository defines the interface for the internal task board
type BoardRepository interface {
	CreateTask(task *models.BoardTask) error
	FindTaskByID(id uint64, preload ...string) (*models.BoardTask, error)
	ListTasks(filter BoardFilter) ([]models.BoardTask, error)
	UpdateTask(task *models.BoardTask) error
	DeleteTask(id uint64) error

	// MaxTaskOrder returns the highest order within a department column
	MaxTaskOrder(departmentID uint64, statusID *uint64) (int, error)

	// TasksInColumn lists tasks of a department currently in the given column
	TasksInColumn(departmentID uint64, statusID *uint64) ([]models.BoardTask, error)

	// SetTaskOrder updates the order of a single task
	SetTaskOrder(id uint64, order int) error

	// ReassignTaskStatus detaches a deleted column from its tasks
	ReassignTaskStatus(statusID uint64) error

	// ReassignTaskPriority detaches a deleted priority from its tasks
	ReassignTaskPriority(priorityID uint64) error

	CreateStatus(status *models.TaskStatus) error
	FindStatusByID(id uint64) (*models.TaskStatus, error)
	StatusesByDepartment(departmentID uint64) ([]models.TaskStatus, error)
	UpdateStatus(status *models.TaskStatus) error
	DeleteStatus(id uint64) error
	MaxStatusOrder(departmentID uint64) (int, error)

	CreatePriority(priority *models.TaskPriority) error
	FindPriorityByID(id uint64) (*models.TaskPriority, error)
	PrioritiesByDepartment(departmentID uint64) ([]models.TaskPriority, error)
	UpdatePriority(priority *models.TaskPriority) error
	DeletePriority(id uint64) error
	MaxPriorityOrder(departmentID uint64) (int, error)
}
