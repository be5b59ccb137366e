package service

import (
	"fmt"
	"testing"

	"github.com/taskhive/backend/internal/mail"
	"github.com/taskhive/backend/internal/model"
	"github.com/taskhive/backend/internal/realtime"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an in-memory sqlite database with the full schema.
// MaxOpenConns(1) keeps every query on the single connection that holds
// the in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
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
		&model.RefreshToken{},
		&model.Organization{},
		&model.OrganizationSettings{},
		&model.OrganizationMember{},
		&model.OrganizationInvitation{},
		&model.Project{},
		&model.ProjectMember{},
		&model.Invitation{},
		&model.Label{},
		&model.Board{},
		&model.BoardColumn{},
		&model.Task{},
		&model.TaskAssignee{},
		&model.TaskLabel{},
		&model.Comment{},
		&model.Attachment{},
		&model.Activity{},
		&model.Notification{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestHub() *realtime.Hub {
	return realtime.NewHub(nil)
}

func seedUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{
		Email:        email,
		PasswordHash: "x",
		FirstName:    "Test",
		LastName:     "User",
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return user
}

func newOrgService(db *gorm.DB) *OrganizationService {
	return NewOrganizationService(db, mail.NoopMailer{}, newTestHub(), 3, 7)
}

func newProjService(db *gorm.DB) *ProjectService {
	return NewProjectService(db, mail.NoopMailer{}, newTestHub(), "http://localhost:3000", 7)
}

// assertCode checks the five digit error code prefix.
func assertCode(t *testing.T, err error, code int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %d, got nil", code)
	}
	prefix := fmt.Sprintf("%d:", code)
	if len(err.Error()) < len(prefix) || err.Error()[:len(prefix)] != prefix {
		t.Fatalf("expected error code %d, got %q", code, err.Error())
	}
}
