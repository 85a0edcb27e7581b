package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/astracore/crm-backend/internal/constants"
	"github.com/astracore/crm-backend/internal/database"
	"github.com/astracore/crm-backend/internal/models"
	"github.com/astracore/crm-backend/internal/repository"
)

type testEnv struct {
	db *gorm.DB

	userRepo   repository.UserRepository
	deptRepo   repository.DepartmentRepository
	statusRepo repository.StatusRepository
	siteRepo   repository.SiteRepository
	leadRepo   repository.LeadRepository
	itemRepo   repository.LeadItemRepository
	boardRepo  repository.BoardRepository

	access    *AccessService
	auth      *AuthService
	users     *UserService
	depts     *DepartmentService
	statuses  *StatusService
	sites     *SiteService
	leads     *LeadService
	board     *BoardService
	dashboard *DashboardService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Department{},
		&models.Status{},
		&models.Site{},
		&models.Lead{},
		&models.LeadAssignment{},
		&models.LeadNote{},
		&models.LeadTask{},
		&models.LeadReminder{},
		&models.LeadHistory{},
		&models.TaskStatus{},
		&models.TaskPriority{},
		&models.BoardTask{},
	)
	require.NoError(t, err)

	database.SetDB(db)

	env := &testEnv{
		db:         db,
		userRepo:   repository.NewUserRepository(db),
		deptRepo:   repository.NewDepartmentRepository(db),
		statusRepo: repository.NewStatusRepository(db),
		siteRepo:   repository.NewSiteRepository(db),
		leadRepo:   repository.NewLeadRepository(db),
		itemRepo:   repository.NewLeadItemRepository(db),
		boardRepo:  repository.NewBoardRepository(db),
	}
	env.access = NewAccessService(env.userRepo, env.deptRepo)
	env.auth = NewAuthService(env.userRepo, "test-secret", 15, 7)
	env.users = NewUserService(env.userRepo, env.leadRepo, env.access)
	env.depts = NewDepartmentService(env.deptRepo, env.userRepo, env.statusRepo, env.siteRepo)
	env.statuses = NewStatusService(env.statusRepo, env.leadRepo, env.access)
	env.sites = NewSiteService(env.siteRepo, env.access)
	env.leads = NewLeadService(env.leadRepo, env.itemRepo, env.userRepo, env.deptRepo, env.statusRepo, env.siteRepo, env.access)
	env.board = NewBoardService(env.boardRepo, env.deptRepo, env.userRepo)
	env.dashboard = NewDashboardService(env.leadRepo, env.itemRepo, env.userRepo, env.deptRepo, env.statusRepo, env.access)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return env
}

func (env *testEnv) createUser(t *testing.T, email string, role constants.Role, departmentID *uint64) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
		DepartmentID: departmentID,
		IsActive:     true,
	}
	require.NoError(t, env.userRepo.Create(user))
	return user
}

func (env *testEnv) createDepartment(t *testing.T, name string, managerID *uint64) *models.Department {
	t.Helper()

	dept := &models.Department{Name: name, ManagerID: managerID}
	require.NoError(t, env.deptRepo.Create(dept))
	if managerID != nil {
		manager, err := env.userRepo.FindByID(*managerID)
		require.NoError(t, err)
		manager.DepartmentID = &dept.ID
		require.NoError(t, env.userRepo.Update(manager))
	}
	return dept
}

func (env *testEnv) createStatus(t *testing.T, name string, departmentID uint64) *models.Status {
	t.Helper()

	status := &models.Status{Name: name, Color: "#9ca3af", DepartmentID: departmentID}
	require.NoError(t, env.statusRepo.Create(status))
	return status
}

func (env *testEnv) createLead(t *testing.T, actor *models.User, input CreateLeadInput) *models.Lead {
	t.Helper()

	lead, err := env.leads.CreateLead(actor, input)
	require.NoError(t, err)
	return lead
}

func (env *testEnv) historyActions(t *testing.T, leadID uint64) []string {
	t.Helper()

	entries, err := env.itemRepo.HistoryByLead(leadID)
	require.NoError(t, err)
	actions := make([]string, len(entries))
	for i, entry := range entries {
		actions[i] = entry.Action
	}
	return actions
}
