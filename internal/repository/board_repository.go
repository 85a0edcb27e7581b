package repository

import (
	"github.com/astracore/crm-backend/internal/models"
	"gorm.io/gorm"
)

// GormBoardRepository is a GORM implementation of BoardRepository
type GormBoardRepository struct {
	db *gorm.DB
}

// NewBoardRepository creates a new BoardRepository
func NewBoardRepository(db *gorm.DB) BoardRepository {
	return &GormBoardRepository{db: db}
}

func (r *GormBoardRepository) CreateTask(task *models.BoardTask) error {
	return r.db.Create(task).Error
}

func (r *GormBoardRepository) FindTaskByID(id uint64, preload ...string) (*models.BoardTask, error) {
	var task models.BoardTask
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *GormBoardRepository) ListTasks(filter BoardFilter) ([]models.BoardTask, error) {
	var tasks []models.BoardTask
	query := r.db.Where("department_id = ?", filter.DepartmentID)
	if filter.StatusID != nil {
		query = query.Where("status_id = ?", *filter.StatusID)
	}
	if filter.PriorityID != nil {
		query = query.Where("priority_id = ?", *filter.PriorityID)
	}
	if filter.AssigneeID != nil {
		query = query.Where("assignee_id = ?", *filter.AssigneeID)
	}
	if err := query.Order("sort_order ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *GormBoardRepository) UpdateTask(task *models.BoardTask) error {
	return r.db.Save(task).Error
}

func (r *GormBoardRepository) DeleteTask(id uint64) error {
	return r.db.Delete(&models.BoardTask{}, id).Error
}

// MaxTaskOrder returns the highest order within a department column
func (r *GormBoardRepository) MaxTaskOrder(departmentID uint64, statusID *uint64) (int, error) {
	var max int
	query := r.db.Model(&models.BoardTask{}).
		Where("department_id = ?", departmentID).
		Select("COALESCE(MAX(sort_order), 0)")
	if statusID != nil {
		query = query.Where("status_id = ?", *statusID)
	} else {
		query = query.Where("status_id IS NULL")
	}
	err := query.Scan(&max).Error
	return max, err
}

// TasksInColumn lists tasks of a department currently in the given column
func (r *GormBoardRepository) TasksInColumn(departmentID uint64, statusID *uint64) ([]models.BoardTask, error) {
	var tasks []models.BoardTask
	query := r.db.Where("department_id = ?", departmentID)
	if statusID != nil {
		query = query.Where("status_id = ?", *statusID)
	} else {
		query = query.Where("status_id IS NULL")
	}
	if err := query.Order("sort_order ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// SetTaskOrder updates the order of a single task
func (r *GormBoardRepository) SetTaskOrder(id uint64, order int) error {
	return r.db.Model(&models.BoardTask{}).Where("id = ?", id).
		Update("sort_order", order).Error
}

// ReassignTaskStatus detaches a deleted column from its tasks
func (r *GormBoardRepository) ReassignTaskStatus(statusID uint64) error {
	return r.db.Model(&models.BoardTask{}).Where("status_id = ?", statusID).
		Update("status_id", nil).Error
}

// ReassignTaskPriority detaches a deleted priority from its tasks
func (r *GormBoardRepository) ReassignTaskPriority(priorityID uint64) error {
	return r.db.Model(&models.BoardTask{}).Where("priority_id = ?", priorityID).
		Update("priority_id", nil).Error
}

func (r *GormBoardRepository) CreateStatus(status *models.TaskStatus) error {
	return r.db.Create(status).Error
}

func (r *GormBoardRepository) FindStatusByID(id uint64) (*models.TaskStatus, error) {
	var status models.TaskStatus
	if err := r.db.First(&status, id).Error; err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *GormBoardRepository) StatusesByDepartment(departmentID uint64) ([]models.TaskStatus, error) {
	var statuses []models.TaskStatus
	if err := r.db.Where("department_id = ?", departmentID).
		Order("sort_order ASC").Find(&statuses).Error; err != nil {
		return nil, err
	}
	return statuses, nil
}

func (r *GormBoardRepository) UpdateStatus(status *models.TaskStatus) error {
	return r.db.Save(status).Error
}

func (r *GormBoardRepository) DeleteStatus(id uint64) error {
	return r.db.Delete(&models.TaskStatus{}, id).Error
}

func (r *GormBoardRepository) MaxStatusOrder(departmentID uint64) (int, error) {
	var max int
	err := r.db.Model(&models.TaskStatus{}).
		Where("department_id = ?", departmentID).
		Select("COALESCE(MAX(sort_order), 0)").
		Scan(&max).Error
	return max, err
}

func (r *GormBoardRepository) CreatePriority(priority *models.TaskPriority) error {
	return r.db.Create(priority).Error
}

func (r *GormBoardRepository) FindPriorityByID(id uint64) (*models.TaskPriority, error) {
	var priority models.TaskPriority
	if err := r.db.First(&priority, id).Error; err != nil {
		return nil, err
	}
	return &priority, nil
}

func (r *GormBoardRepository) PrioritiesByDepartment(departmentID uint64) ([]models.TaskPriority, error) {
	var priorities []models.TaskPriority
	if err := r.db.Where("department_id = ?", departmentID).
		Order("sort_order ASC").Find(&priorities).Error; err != nil {
		return nil, err
	}
	return priorities, nil
}

func (r *GormBoardRepository) UpdatePriority(priority *models.TaskPriority) error {
	return r.db.Save(priority).Error
}

func (r *GormBoardRepository) DeletePriority(id uint64) error {
	return r.db.Delete(&models.TaskPriority{}, id).Error
}

func (r *GormBoardRepository) MaxPriorityOrder(departmentID uint64) (int, error) {
	var max int
	err := r.db.Model(&models.TaskPriority{}).
		Where("department_id = ?", departmentID).
		Select("COALESCE(MAX(sort_order), 0)").
		Scan(&max).Error
	return max, err
}
