package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/astracore/crm-backend/internal/constants"
	"github.com/astracore/crm-backend/internal/database"
	"github.com/astracore/crm-backend/internal/middleware"
	"github.com/astracore/crm-backend/internal/models"
	"github.com/astracore/crm-backend/internal/repository"
	"github.com/astracore/crm-backend/internal/services"
)

const testJWTSecret = "test-secret"

type testServer struct {
	router *gin.Engine
	db     *gorm.DB

	userRepo repository.UserRepository
	deptRepo repository.DepartmentRepository
	siteRepo repository.SiteRepository
	leadRepo repository.LeadRepository

	auth  *services.AuthService
	users *services.UserService
	sites *services.SiteService
	leads *services.LeadService
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	srv := &testServer{
		db:       db,
		userRepo: repository.NewUserRepository(db),
		deptRepo: repository.NewDepartmentRepository(db),
		siteRepo: repository.NewSiteRepository(db),
		leadRepo: repository.NewLeadRepository(db),
	}
	statusRepo := repository.NewStatusRepository(db)
	itemRepo := repository.NewLeadItemRepository(db)
	boardRepo := repository.NewBoardRepository(db)

	access := services.NewAccessService(srv.userRepo, srv.deptRepo)
	srv.auth = services.NewAuthService(srv.userRepo, testJWTSecret, 15, 7)
	srv.users = services.NewUserService(srv.userRepo, srv.leadRepo, access)
	srv.sites = services.NewSiteService(srv.siteRepo, access)
	srv.leads = services.NewLeadService(srv.leadRepo, itemRepo, srv.userRepo, srv.deptRepo, statusRepo, srv.siteRepo, access)
	board := services.NewBoardService(boardRepo, srv.deptRepo, srv.userRepo)

	authHandler := NewAuthHandler(srv.auth)
	userHandler := NewUserHandler(srv.users)
	siteHandler := NewSiteHandler(srv.sites, "https://crm.example.com")
	leadHandler := NewLeadHandler(srv.leads)
	boardHandler := NewBoardHandler(board)

	requireAuth := middleware.RequireAuth(testJWTSecret)
	superOnly := middleware.RequireRole(constants.RoleSuper)

	r := gin.New()
	api := r.Group("/api/v1")
	api.GET("/sites/:id/widget.js", siteHandler.WidgetScript)
	api.POST("/leads/from-site", leadHandler.CreateFromSite)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.GET("/auth/me", requireAuth, authHandler.Me)
	api.GET("/users", requireAuth, userHandler.ListUsers)
	api.GET("/leads", requireAuth, leadHandler.ListLeads)
	api.GET("/tasks", requireAuth, superOnly, boardHandler.ListTasks)
	srv.router = r

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})
	return srv
}

func (srv *testServer) createUser(t *testing.T, email string, role constants.Role, departmentID *uint64) *models.User {
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
	require.NoError(t, srv.userRepo.Create(user))
	return user
}

func (srv *testServer) login(t *testing.T, email string) string {
	t.Helper()
	_, tokens, err := srv.auth.Login(email, "password123")
	require.NoError(t, err)
	return tokens.AccessToken
}

func (srv *testServer) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func TestAuthEndpoints(t *testing.T) {
	srv := setupTestServer(t)
	srv.createUser(t, "super@crm.test", constants.RoleSuper, nil)

	w := srv.request(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "Super@CRM.test", "password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	envelope := decodeEnvelope(t, w)
	require.EqualValues(t, http.StatusOK, envelope["statusCode"])
	require.NotEmpty(t, envelope["timestamp"])

	data := envelope["data"].(map[string]interface{})
	require.NotEmpty(t, data["accessToken"])
	require.NotEmpty(t, data["refreshToken"])
	user := data["user"].(map[string]interface{})
	require.Equal(t, "super@crm.test", user["email"])
	_, hashLeaked := user["passwordHash"]
	require.False(t, hashLeaked)

	// Wrong password and unknown email give the same opaque 401.
	w = srv.request(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "super@crm.test", "password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	envelope = decodeEnvelope(t, w)
	require.EqualValues(t, http.StatusUnauthorized, envelope["statusCode"])
	require.Equal(t, "Unauthorized", envelope["error"])

	w = srv.request(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "super@crm.test"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Refresh issues a fresh access token.
	refreshToken := data["refreshToken"].(string)
	w = srv.request(t, http.MethodPost, "/api/v1/auth/refresh", "", gin.H{"refreshToken": refreshToken})
	require.Equal(t, http.StatusOK, w.Code)
	refreshed := decodeEnvelope(t, w)["data"].(map[string]interface{})
	require.NotEmpty(t, refreshed["accessToken"])
}

func TestMeEndpoint(t *testing.T) {
	srv := setupTestServer(t)
	user := srv.createUser(t, "super@crm.test", constants.RoleSuper, nil)
	token := srv.login(t, "super@crm.test")

	w := srv.request(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	require.EqualValues(t, user.ID, data["id"])

	w = srv.request(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	w = srv.request(t, http.MethodGet, "/api/v1/auth/me", "garbage", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// A valid token stops working once the account is deactivated.
	user.IsActive = false
	require.NoError(t, srv.userRepo.Update(user))
	w = srv.request(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoleGate(t *testing.T) {
	srv := setupTestServer(t)
	sales := &models.Department{Name: "Sales"}
	require.NoError(t, srv.deptRepo.Create(sales))
	srv.createUser(t, "employee@crm.test", constants.RoleEmployee, &sales.ID)
	srv.createUser(t, "super@crm.test", constants.RoleSuper, nil)

	path := fmt.Sprintf("/api/v1/tasks?departmentId=%d", sales.ID)
	w := srv.request(t, http.MethodGet, path, srv.login(t, "employee@crm.test"), nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = srv.request(t, http.MethodGet, path, srv.login(t, "super@crm.test"), nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestFromSiteEndpoint(t *testing.T) {
	srv := setupTestServer(t)
	super := srv.createUser(t, "super@crm.test", constants.RoleSuper, nil)
	sales := &models.Department{Name: "Sales"}
	require.NoError(t, srv.deptRepo.Create(sales))

	site, err := srv.sites.CreateSite(super, services.CreateSiteInput{
		URL: "https://example.com", DepartmentID: sales.ID,
	})
	require.NoError(t, err)

	w := srv.request(t, http.MethodPost, "/api/v1/leads/from-site", "", gin.H{
		"token": site.Token,
		"name":  "Visitor",
		"phone": "555-0100",
		"meta":  gin.H{"page": "/pricing"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	require.NotZero(t, data["id"])

	lead, err := srv.leads.GetLead(super, uint64(data["id"].(float64)))
	require.NoError(t, err)
	require.Equal(t, models.LeadSourceSite, lead.Source)
	require.Equal(t, "/pricing", lead.SourceMeta["page"])

	w = srv.request(t, http.MethodPost, "/api/v1/leads/from-site", "", gin.H{
		"token": "bogus", "name": "Visitor",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWidgetScript(t *testing.T) {
	srv := setupTestServer(t)
	super := srv.createUser(t, "super@crm.test", constants.RoleSuper, nil)
	sales := &models.Department{Name: "Sales"}
	require.NoError(t, srv.deptRepo.Create(sales))
	site, err := srv.sites.CreateSite(super, services.CreateSiteInput{
		URL: "https://example.com", DepartmentID: sales.ID,
	})
	require.NoError(t, err)

	w := srv.request(t, http.MethodGet, fmt.Sprintf("/api/v1/sites/%d/widget.js", site.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/javascript; charset=utf-8", w.Header().Get("Content-Type"))
	require.Equal(t, "public, max-age=300", w.Header().Get("Cache-Control"))

	// The site's token is baked into the script body.
	body := w.Body.String()
	require.Contains(t, body, site.Token)
	require.Contains(t, body, "https://crm.example.com")
	require.NotContains(t, body, "__SITE_TOKEN__")
	require.NotContains(t, body, "__API_BASE__")

	w = srv.request(t, http.MethodGet, "/api/v1/sites/9999/widget.js", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserDirectoryGate(t *testing.T) {
	srv := setupTestServer(t)
	sales := &models.Department{Name: "Sales"}
	require.NoError(t, srv.deptRepo.Create(sales))
	srv.createUser(t, "employee@crm.test", constants.RoleEmployee, &sales.ID)
	srv.createUser(t, "admin@crm.test", constants.RoleAdmin, nil)

	w := srv.request(t, http.MethodGet, "/api/v1/users", srv.login(t, "employee@crm.test"), nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = srv.request(t, http.MethodGet, "/api/v1/users", srv.login(t, "admin@crm.test"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := decodeEnvelope(t, w)["data"].([]interface{})
	require.Len(t, items, 2)
}

func TestLeadListDefaultOrder(t *testing.T) {
	srv := setupTestServer(t)
	super := srv.createUser(t, "super@crm.test", constants.RoleSuper, nil)
	sales := &models.Department{Name: "Sales"}
	require.NoError(t, srv.deptRepo.Create(sales))

	older, err := srv.leads.CreateLead(super, services.CreateLeadInput{
		Name: "Older", Phone: "555-0001", DepartmentID: sales.ID,
	})
	require.NoError(t, err)
	_, err = srv.leads.CreateLead(super, services.CreateLeadInput{
		Name: "Newer", Phone: "555-0002", DepartmentID: sales.ID,
	})
	require.NoError(t, err)
	err = srv.db.Model(&models.Lead{}).Where("id = ?", older.ID).
		Update("created_at", time.Now().Add(-time.Hour)).Error
	require.NoError(t, err)

	// Without sortOrder the list comes back newest first.
	token := srv.login(t, "super@crm.test")
	w := srv.request(t, http.MethodGet, "/api/v1/leads", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	items := data["items"].([]interface{})
	require.Len(t, items, 2)
	require.Equal(t, "Newer", items[0].(map[string]interface{})["name"])

	w = srv.request(t, http.MethodGet, "/api/v1/leads?sortOrder=asc", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeEnvelope(t, w)["data"].(map[string]interface{})
	items = data["items"].([]interface{})
	require.Equal(t, "Older", items[0].(map[string]interface{})["name"])
}
