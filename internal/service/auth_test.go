package service

import (
	"testing"

	"github.com/taskhive/backend/internal/model"
	"gorm.io/gorm"
)

func newAuthService(db *gorm.DB) *AuthService {
	return NewAuthService(db, "test-secret", 1, 24)
}

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	result, err := svc.Register("dev@example.com", "hunter2hunter2", "Dev", "Eloper")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if result.Tokens.AccessToken == "" || result.Tokens.RefreshToken == "" {
		t.Fatal("expected both tokens on registration")
	}
	if result.User.PasswordHash == "hunter2hunter2" {
		t.Fatal("password stored in plaintext")
	}

	// duplicate email is a conflict
	_, err = svc.Register("dev@example.com", "another-pass", "Other", "")
	assertCode(t, err, 40904)

	// wrong password and unknown email produce the same error
	_, err = svc.Login("dev@example.com", "wrong")
	assertCode(t, err, 40104)
	_, err = svc.Login("nobody@example.com", "hunter2hunter2")
	assertCode(t, err, 40104)

	login, err := svc.Login("dev@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.User.LastLoginAt == nil {
		t.Error("login should stamp last_login_at")
	}
}

func TestDeactivatedAccountCannotLogin(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	result, _ := svc.Register("dev@example.com", "hunter2hunter2", "Dev", "")
	db.Model(&model.User{}).Where("id = ?", result.User.ID).Update("is_active", false)

	_, err := svc.Login("dev@example.com", "hunter2hunter2")
	assertCode(t, err, 40309)
}

func TestRefreshTokenRotation(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	registered, _ := svc.Register("dev@example.com", "hunter2hunter2", "Dev", "")
	old := registered.Tokens.RefreshToken

	refreshed, err := svc.Refresh(old)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.Tokens.RefreshToken == old {
		t.Error("refresh must rotate the token")
	}

	// the consumed token is dead
	_, err = svc.Refresh(old)
	assertCode(t, err, 40103)
}

func TestChangePassword(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	registered, _ := svc.Register("dev@example.com", "hunter2hunter2", "Dev", "")

	assertCode(t, svc.ChangePassword(registered.User.ID, "wrong", "newpass-newpass"), 40104)
	if err := svc.ChangePassword(registered.User.ID, "hunter2hunter2", "newpass-newpass"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if _, err := svc.Login("dev@example.com", "newpass-newpass"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}
