package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/backend/internal/model"
	"github.com/taskhive/backend/internal/role"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newGateDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&model.User{},
		&model.Organization{},
		&model.OrganizationMember{},
		&model.Project{},
		&model.ProjectMember{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func gateUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, PasswordHash: "x", FirstName: "Gate", IsActive: true}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

// gateRequest sends a request through a minimal engine that authenticates
// as userID before the gate runs, and returns the HTTP status plus the
// envelope code.
func gateRequest(t *testing.T, route, url string, userID uint, gate gin.HandlerFunc) (int, int) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET(route, func(c *gin.Context) { c.Set("userID", userID) }, gate, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": 0})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	r.ServeHTTP(w, req)

	var body struct {
		Code int `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return w.Code, body.Code
}

func TestRequireOrgOwner(t *testing.T) {
	db := newGateDB(t)
	owner := gateUser(t, db, "owner@example.com")
	admin := gateUser(t, db, "admin@example.com")

	org := &model.Organization{Name: "Acme", Slug: "acme", IsActive: true}
	db.Create(org)
	db.Create(&model.OrganizationMember{OrganizationID: org.ID, UserID: owner.ID, Role: role.OrgOwner})
	db.Create(&model.OrganizationMember{OrganizationID: org.ID, UserID: admin.ID, Role: role.OrgAdmin})

	gate := RequireOrgOwner(db)
	if status, _ := gateRequest(t, "/orgs/:orgId", "/orgs/1", owner.ID, gate); status != http.StatusOK {
		t.Errorf("owner status = %d, want 200", status)
	}
	status, code := gateRequest(t, "/orgs/:orgId", "/orgs/1", admin.ID, gate)
	if status != http.StatusForbidden || code != 40303 {
		t.Errorf("admin status = %d code = %d, want 403/40303", status, code)
	}
}

func TestRequireMinOrgRole(t *testing.T) {
	db := newGateDB(t)
	admin := gateUser(t, db, "admin@example.com")
	member := gateUser(t, db, "member@example.com")

	org := &model.Organization{Name: "Acme", Slug: "acme", IsActive: true}
	db.Create(org)
	db.Create(&model.OrganizationMember{OrganizationID: org.ID, UserID: admin.ID, Role: role.OrgAdmin})
	db.Create(&model.OrganizationMember{OrganizationID: org.ID, UserID: member.ID, Role: role.OrgMember})

	gate := RequireMinOrgRole(db, role.OrgAdmin)
	if status, _ := gateRequest(t, "/orgs/:orgId", "/orgs/1", admin.ID, gate); status != http.StatusOK {
		t.Errorf("admin status = %d, want 200", status)
	}
	status, code := gateRequest(t, "/orgs/:orgId", "/orgs/1", member.ID, gate)
	if status != http.StatusForbidden || code != 40302 {
		t.Errorf("member status = %d code = %d, want 403/40302", status, code)
	}
}

func TestRequireMinProjectRole(t *testing.T) {
	db := newGateDB(t)
	owner := gateUser(t, db, "owner@example.com")
	admin := gateUser(t, db, "admin@example.com")
	member := gateUser(t, db, "member@example.com")

	project := &model.Project{OrganizationID: 1, OwnerID: owner.ID, Key: "PLT", Name: "Platform"}
	db.Create(project)
	db.Create(&model.ProjectMember{ProjectID: project.ID, UserID: admin.ID, Role: role.ProjectAdmin})
	db.Create(&model.ProjectMember{ProjectID: project.ID, UserID: member.ID, Role: role.ProjectMember})

	gate := RequireMinProjectRole(db, role.ProjectAdmin)

	// the project owner passes without a membership row
	if status, _ := gateRequest(t, "/projects/:projectId", "/projects/1", owner.ID, gate); status != http.StatusOK {
		t.Errorf("owner status = %d, want 200", status)
	}
	if status, _ := gateRequest(t, "/projects/:projectId", "/projects/1", admin.ID, gate); status != http.StatusOK {
		t.Errorf("admin status = %d, want 200", status)
	}
	status, code := gateRequest(t, "/projects/:projectId", "/projects/1", member.ID, gate)
	if status != http.StatusForbidden || code != 40305 {
		t.Errorf("member status = %d code = %d, want 403/40305", status, code)
	}
}
