package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/astracore/crm-backend/internal/models"
	"github.com/astracore/crm-backend/internal/repository"
	"gorm.io/gorm"
)

// BoardService handles the internal kanban task board. Every operation,
// including reads, is restricted to super at the endpoint boundary; there is
// no department-manager delegation here.
type BoardService struct {
	boardRepo repository.BoardRepository
	deptRepo  repository.DepartmentRepository
	userRepo  repository.UserRepository
}

// NewBoardService creates a new BoardService
func NewBoardService(boardRepo repository.BoardRepository, deptRepo repository.DepartmentRepository, userRepo repository.UserRepository) *BoardService {
	return &BoardService{
		boardRepo: boardRepo,
		deptRepo:  deptRepo,
		userRepo:  userRepo,
	}
}

// CreateBoardTaskInput represents input for creating a board task
type CreateBoardTaskInput struct {
	Title        string
	Description  string
	DepartmentID uint64
	StatusID     *uint64
	PriorityID   *uint64
	AssigneeID   *uint64
	DueAt        *time.Time
}

// UpdateBoardTaskInput represents a partial update of a board task
type UpdateBoardTaskInput struct {
	Title         *string
	Description   *string
	StatusID      *uint64
	ClearStatus   bool
	PriorityID    *uint64
	ClearPriority bool
	AssigneeID    *uint64
	ClearAssignee bool
	DueAt         *time.Time
	ClearDueAt    bool
}

// CreateBoardTask creates a card appended past the current maximum order of
// its column.
func (s *BoardService) CreateBoardTask(actor *models.User, input CreateBoardTaskInput) (*models.BoardTask, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if _, err := s.deptRepo.FindByID(input.DepartmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("failed to find department: %w", err)
	}
	if input.StatusID != nil {
		if err := s.checkStatusOwnership(*input.StatusID, input.DepartmentID); err != nil {
			return nil, err
		}
	}
	if input.PriorityID != nil {
		if err := s.checkPriorityOwnership(*input.PriorityID, input.DepartmentID); err != nil {
			return nil, err
		}
	}

	maxOrder, err := s.boardRepo.MaxTaskOrder(input.DepartmentID, input.StatusID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve task order: %w", err)
	}

	task := &models.BoardTask{
		Title:        title,
		Description:  input.Description,
		DepartmentID: input.DepartmentID,
		StatusID:     input.StatusID,
		PriorityID:   input.PriorityID,
		AssigneeID:   input.AssigneeID,
		CreatedBy:    actor.ID,
		DueDate:      input.DueAt,
		Order:        maxOrder + 1,
	}
	if err := s.boardRepo.CreateTask(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

// ListBoardTasks lists a department's cards in column/order/creation order.
func (s *BoardService) ListBoardTasks(filter repository.BoardFilter) ([]models.BoardTask, error) {
	tasks, err := s.boardRepo.ListTasks(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// GetBoardTask returns a single card with its relations.
func (s *BoardService) GetBoardTask(id uint64) (*models.BoardTask, error) {
	task, err := s.boardRepo.FindTaskByID(id, "Status", "Priority", "Assignee")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBoardTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// UpdateBoardTask applies a partial update. Moving a card to another column
// re-appends it past the target column's maximum order.
func (s *BoardService) UpdateBoardTask(id uint64, input UpdateBoardTaskInput) (*models.BoardTask, error) {
	task, err := s.boardRepo.FindTaskByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBoardTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrEmptyTitle
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}

	columnChanged := false
	if input.ClearStatus {
		if task.StatusID != nil {
			task.StatusID = nil
			columnChanged = true
		}
	} else if input.StatusID != nil {
		if task.StatusID == nil || *task.StatusID != *input.StatusID {
			if err := s.checkStatusOwnership(*input.StatusID, task.DepartmentID); err != nil {
				return nil, err
			}
			task.StatusID = input.StatusID
			columnChanged = true
		}
	}
	if columnChanged {
		maxOrder, err := s.boardRepo.MaxTaskOrder(task.DepartmentID, task.StatusID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve task order: %w", err)
		}
		task.Order = maxOrder + 1
	}

	if input.ClearPriority {
		task.PriorityID = nil
	} else if input.PriorityID != nil {
		if err := s.checkPriorityOwnership(*input.PriorityID, task.DepartmentID); err != nil {
			return nil, err
		}
		task.PriorityID = input.PriorityID
	}
	if input.ClearAssignee {
		task.AssigneeID = nil
	} else if input.AssigneeID != nil {
		task.AssigneeID = input.AssigneeID
	}
	if input.ClearDueAt {
		task.DueDate = nil
	} else if input.DueAt != nil {
		task.DueDate = input.DueAt
	}

	task.Status = nil
	task.Priority = nil
	task.Assignee = nil
	if err := s.boardRepo.UpdateTask(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return s.GetBoardTask(task.ID)
}

// DeleteBoardTask removes a card.
func (s *BoardService) DeleteBoardTask(id uint64) error {
	if _, err := s.boardRepo.FindTaskByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBoardTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}
	if err := s.boardRepo.DeleteTask(id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// ReorderBoardTasks assigns sequential order values following the submitted
// id list. Ids not belonging to the department, or not currently sitting in
// the target column, are silently skipped.
func (s *BoardService) ReorderBoardTasks(departmentID uint64, statusID *uint64, taskIDs []uint64) error {
	inColumn, err := s.boardRepo.TasksInColumn(departmentID, statusID)
	if err != nil {
		return fmt.Errorf("failed to load column: %w", err)
	}
	valid := make(map[uint64]bool, len(inColumn))
	for _, task := range inColumn {
		valid[task.ID] = true
	}

	order := 1
	for _, id := range taskIDs {
		if !valid[id] {
			continue
		}
		if err := s.boardRepo.SetTaskOrder(id, order); err != nil {
			return fmt.Errorf("failed to set order: %w", err)
		}
		order++
	}
	return nil
}

func (s *BoardService) checkStatusOwnership(statusID, departmentID uint64) error {
	status, err := s.boardRepo.FindStatusByID(statusID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskStatusNotFound
		}
		return fmt.Errorf("failed to find task status: %w", err)
	}
	if status.DepartmentID != departmentID {
		return ErrTaskStatusNotFound
	}
	return nil
}

func (s *BoardService) checkPriorityOwnership(priorityID, departmentID uint64) error {
	priority, err := s.boardRepo.FindPriorityByID(priorityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskPriorityNotFound
		}
		return fmt.Errorf("failed to find task priority: %w", err)
	}
	if priority.DepartmentID != departmentID {
		return ErrTaskPriorityNotFound
	}
	return nil
}

// Task statuses (board columns)

// CreateTaskStatusInput represents input for creating a board column
type CreateTaskStatusInput struct {
	Name         string
	Color        string
	IsCompleted  bool
	DepartmentID uint64
}

// UpdateTaskStatusInput represents a partial update of a board column
type UpdateTaskStatusInput struct {
	Name        *string
	Color       *string
	Order       *int
	IsCompleted *bool
}

func (s *BoardService) CreateTaskStatus(input CreateTaskStatusInput) (*models.TaskStatus, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if _, err := s.deptRepo.FindByID(input.DepartmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("failed to find department: %w", err)
	}
	maxOrder, err := s.boardRepo.MaxStatusOrder(input.DepartmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve status order: %w", err)
	}
	color := input.Color
	if color == "" {
		color = "#cccccc"
	}
	status := &models.TaskStatus{
		Name:         name,
		Color:        color,
		Order:        maxOrder + 1,
		IsCompleted:  input.IsCompleted,
		DepartmentID: input.DepartmentID,
	}
	if err := s.boardRepo.CreateStatus(status); err != nil {
		return nil, fmt.Errorf("failed to create task status: %w", err)
	}
	return status, nil
}

func (s *BoardService) ListTaskStatuses(departmentID uint64) ([]models.TaskStatus, error) {
	return s.boardRepo.StatusesByDepartment(departmentID)
}

func (s *BoardService) UpdateTaskStatus(id uint64, input UpdateTaskStatusInput) (*models.TaskStatus, error) {
	status, err := s.boardRepo.FindStatusByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskStatusNotFound
		}
		return nil, fmt.Errorf("failed to find task status: %w", err)
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		status.Name = name
	}
	if input.Color != nil && *input.Color != "" {
		status.Color = *input.Color
	}
	if input.Order != nil {
		status.Order = *input.Order
	}
	if input.IsCompleted != nil {
		status.IsCompleted = *input.IsCompleted
	}
	if err := s.boardRepo.UpdateStatus(status); err != nil {
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}
	return status, nil
}

// DeleteTaskStatus removes a column; its cards fall back to no column.
func (s *BoardService) DeleteTaskStatus(id uint64) error {
	if _, err := s.boardRepo.FindStatusByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskStatusNotFound
		}
		return fmt.Errorf("failed to find task status: %w", err)
	}
	if err := s.boardRepo.ReassignTaskStatus(id); err != nil {
		return fmt.Errorf("failed to detach tasks: %w", err)
	}
	if err := s.boardRepo.DeleteStatus(id); err != nil {
		return fmt.Errorf("failed to delete task status: %w", err)
	}
	return nil
}

// Task priorities

// CreateTaskPriorityInput represents input for creating a task priority
type CreateTaskPriorityInput struct {
	Name         string
	Color        string
	DepartmentID uint64
}

// UpdateTaskPriorityInput represents a partial update of a task priority
type UpdateTaskPriorityInput struct {
	Name  *string
	Color *string
	Order *int
}

func (s *BoardService) CreateTaskPriority(input CreateTaskPriorityInput) (*models.TaskPriority, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if _, err := s.deptRepo.FindByID(input.DepartmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("failed to find department: %w", err)
	}
	maxOrder, err := s.boardRepo.MaxPriorityOrder(input.DepartmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve priority order: %w", err)
	}
	color := input.Color
	if color == "" {
		color = "#cccccc"
	}
	priority := &models.TaskPriority{
		Name:         name,
		Color:        color,
		Order:        maxOrder + 1,
		DepartmentID: input.DepartmentID,
	}
	if err := s.boardRepo.CreatePriority(priority); err != nil {
		return nil, fmt.Errorf("failed to create task priority: %w", err)
	}
	return priority, nil
}

func (s *BoardService) ListTaskPriorities(departmentID uint64) ([]models.TaskPriority, error) {
	return s.boardRepo.PrioritiesByDepartment(departmentID)
}

func (s *BoardService) UpdateTaskPriority(id uint64, input UpdateTaskPriorityInput) (*models.TaskPriority, error) {
	priority, err := s.boardRepo.FindPriorityByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskPriorityNotFound
		}
		return nil, fmt.Errorf("failed to find task priority: %w", err)
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		priority.Name = name
	}
	if input.Color != nil && *input.Color != "" {
		priority.Color = *input.Color
	}
	if input.Order != nil {
		priority.Order = *input.Order
	}
	if err := s.boardRepo.UpdatePriority(priority); err != nil {
		return nil, fmt.Errorf("failed to update task priority: %w", err)
	}
	return priority, nil
}

// DeleteTaskPriority removes a priority; cards referencing it fall back to
// none.
func (s *BoardService) DeleteTaskPriority(id uint64) error {
	if _, err := s.boardRepo.FindPriorityByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskPriorityNotFound
		}
		return fmt.Errorf("failed to find task priority: %w", err)
	}
	if err := s.boardRepo.ReassignTaskPriority(id); err != nil {
		return fmt.Errorf("failed to detach tasks: %w", err)
	}
	if err := s.boardRepo.DeletePriority(id); err != nil {
		return fmt.Errorf("failed to delete task priority: %w", err)
	}
	return nil
}
