package service

import (
	"testing"
	"time"

	"github.com/taskhive/backend/internal/model"
	"github.com/taskhive/backend/internal/role"
)

func TestProjectInvitationAccept(t *testing.T) {
	projSvc, owner, project, db := setupProject(t)
	invSvc := NewInvitationService(db, newTestHub())

	result, err := projSvc.AddMember(project.ID, owner.ID, "new@example.com", role.ProjectManager)
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	token := result.Invitation.Token

	// the invitee registers later with the invited email
	invitee := seedUser(t, db, "new@example.com")
	imposter := seedUser(t, db, "imposter@example.com")

	_, err = invSvc.Accept(token, imposter.ID)
	assertCode(t, err, 40307)

	member, err := invSvc.Accept(token, invitee.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if member.Role != role.ProjectManager {
		t.Errorf("role = %s, want the invited MANAGER role", member.Role)
	}

	// the token is consumed
	_, err = invSvc.GetByToken(token)
	assertCode(t, err, 40012)
}

func TestProjectInvitationExpiry(t *testing.T) {
	projSvc, owner, project, db := setupProject(t)
	invSvc := NewInvitationService(db, newTestHub())

	result, _ := projSvc.AddMember(project.ID, owner.ID, "late@example.com", role.ProjectMember)
	db.Model(&model.Invitation{}).Where("id = ?", result.Invitation.ID).
		Update("expires_at", time.Now().Add(-time.Minute))

	_, err := invSvc.GetByToken(result.Invitation.Token)
	assertCode(t, err, 40013)

	var fresh model.Invitation
	db.First(&fresh, result.Invitation.ID)
	if fresh.Status != model.InvitationExpired {
		t.Errorf("status = %s, want EXPIRED", fresh.Status)
	}
}

func TestProjectInvitationCancel(t *testing.T) {
	projSvc, owner, project, db := setupProject(t)
	invSvc := NewInvitationService(db, newTestHub())

	result, _ := projSvc.AddMember(project.ID, owner.ID, "pending@example.com", role.ProjectMember)

	plain := seedUser(t, db, "plain@example.com")
	db.Create(&model.ProjectMember{ProjectID: project.ID, UserID: plain.ID, Role: role.ProjectMember})

	// plain members cannot manage invitations
	assertCode(t, invSvc.Cancel(project.ID, result.Invitation.ID, plain.ID), 40306)
	_, err := invSvc.List(project.ID, plain.ID)
	assertCode(t, err, 40306)

	if err := invSvc.Cancel(project.ID, result.Invitation.ID, owner.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	assertCode(t, invSvc.Cancel(project.ID, result.Invitation.ID, owner.ID), 40406)
}
