package service

import (
	"testing"
	"time"

	"github.com/taskhive/backend/internal/mail"
	"github.com/taskhive/backend/internal/model"
	"github.com/taskhive/backend/internal/role"
)

func TestSweepOverdueTasksIsIdempotent(t *testing.T) {
	_, _, project, db := setupProject(t)
	taskSvc := NewTaskService(db, newTestHub())
	scheduler := NewSchedulerService(db, mail.NoopMailer{}, newTestHub())

	owner := project.OwnerID
	dev := seedUser(t, db, "dev@example.com")

	due := time.Now().Add(-48 * time.Hour)
	task, err := taskSvc.Create(project.ID, owner, CreateTaskData{
		Title:       "late work",
		DueDate:     &due,
		AssigneeIDs: []uint{dev.ID},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	sent, err := scheduler.SweepOverdueTasks()
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if sent != 1 {
		t.Fatalf("first sweep sent %d notifications, want 1", sent)
	}

	// a second run sends nothing new
	sent, _ = scheduler.SweepOverdueTasks()
	if sent != 0 {
		t.Errorf("second sweep sent %d notifications, want 0", sent)
	}

	// finished tasks are never flagged
	status := model.StatusDone
	if _, err := taskSvc.Update(project.ID, task.ID, owner, UpdateTaskData{Status: &status}); err != nil {
		t.Fatalf("finish: %v", err)
	}
	other := seedUser(t, db, "other@example.com")
	if _, err := taskSvc.AssignUser(project.ID, task.ID, owner, other.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	sent, _ = scheduler.SweepOverdueTasks()
	if sent != 0 {
		t.Errorf("done task triggered %d notifications", sent)
	}
}

func TestExpireInvitationsBatch(t *testing.T) {
	projSvc, owner, project, db := setupProject(t)
	orgSvc := newOrgService(db)
	scheduler := NewSchedulerService(db, mail.NoopMailer{}, newTestHub())

	stale, _ := projSvc.AddMember(project.ID, owner.ID, "stale@example.com", role.ProjectMember)
	fresh, _ := projSvc.AddMember(project.ID, owner.ID, "fresh@example.com", role.ProjectMember)
	orgInv, err := orgSvc.CreateInvitation(project.OrganizationID, owner.ID, "org-stale@example.com", role.OrgMember)
	if err != nil {
		t.Fatalf("org invitation: %v", err)
	}

	past := time.Now().Add(-time.Hour)
	db.Model(&model.Invitation{}).Where("id = ?", stale.Invitation.ID).Update("expires_at", past)
	db.Model(&model.OrganizationInvitation{}).Where("id = ?", orgInv.ID).Update("expires_at", past)

	n, err := scheduler.ExpireInvitations()
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if n != 2 {
		t.Fatalf("expired %d invitations, want 2", n)
	}

	var staleRow model.Invitation
	db.First(&staleRow, stale.Invitation.ID)
	if staleRow.Status != model.InvitationExpired {
		t.Error("stale project invitation should be EXPIRED")
	}
	var freshRow model.Invitation
	db.First(&freshRow, fresh.Invitation.ID)
	if freshRow.Status != model.InvitationPending {
		t.Error("fresh invitation should stay PENDING")
	}

	// rerun is a no-op
	n, _ = scheduler.ExpireInvitations()
	if n != 0 {
		t.Errorf("rerun expired %d invitations, want 0", n)
	}
}

func TestCleanupExpiredTokens(t *testing.T) {
	db := newTestDB(t)
	authSvc := newAuthService(db)
	scheduler := NewSchedulerService(db, mail.NoopMailer{}, newTestHub())

	registered, _ := authSvc.Register("dev@example.com", "hunter2hunter2", "Dev", "")
	db.Model(&model.RefreshToken{}).
		Where("token = ?", registered.Tokens.RefreshToken).
		Update("expires_at", time.Now().Add(-time.Hour))
	authSvc.issueTokens(registered.User)

	n, err := scheduler.CleanupExpiredTokens()
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if n != 1 {
		t.Errorf("removed %d tokens, want 1", n)
	}
	var remaining int64
	db.Model(&model.RefreshToken{}).Count(&remaining)
	if remaining != 1 {
		t.Errorf("%d tokens left, want the valid one", remaining)
	}
}
