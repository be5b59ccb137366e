package service

import (
	"fmt"
	"time"

	"github.com/taskhive/backend/internal/model"
	"github.com/taskhive/backend/internal/realtime"
	"gorm.io/gorm"
)

// InvitationService handles the project invitation lifecycle. Creation
// lives on ProjectService.AddMember; this service covers everything a
// recipient or manager does with an existing invitation.
type InvitationService struct {
	db  *gorm.DB
	hub *realtime.Hub
}

func NewInvitationService(db *gorm.DB, hub *realtime.Hub) *InvitationService {
	return &InvitationService{db: db, hub: hub}
}

// GetByToken is the public lookup behind the invite link. A pending
// invitation past its expiry is marked EXPIRED on read.
func (s *InvitationService) GetByToken(token string) (*model.Invitation, error) {
	var invitation model.Invitation
	if err := s.db.Preload("Project").Preload("Sender").
		Where("token = ?", token).First(&invitation).Error; err != nil {
		return nil, fmt.Errorf("40406:invitation not found")
	}
	if invitation.Status != model.InvitationPending {
		return nil, fmt.Errorf("40012:invitation is no longer valid")
	}
	if time.Now().After(invitation.ExpiresAt) {
		s.db.Model(&invitation).Update("status", model.InvitationExpired)
		return nil, fmt.Errorf("40013:invitation has expired")
	}
	return &invitation, nil
}

// Accept requires the authenticated user's email to match the invited
// address. Membership creation and the status flip are atomic.
func (s *InvitationService) Accept(token string, userID uint) (*model.ProjectMember, error) {
	invitation, err := s.GetByToken(token)
	if err != nil {
		return nil, err
	}

	var user model.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("40401:user not found")
	}
	if user.Email != invitation.Email {
		return nil, fmt.Errorf("40307:this invitation was sent to a different email address")
	}

	var existing int64
	s.db.Model(&model.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", invitation.ProjectID, userID).
		Count(&existing)
	if existing > 0 {
		s.db.Model(invitation).Update("status", model.InvitationAccepted)
		return nil, fmt.Errorf("40901:user is already a member")
	}

	member := &model.ProjectMember{
		ProjectID: invitation.ProjectID,
		UserID:    userID,
		Role:      invitation.Role,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(member).Error; err != nil {
			return err
		}
		return tx.Model(invitation).Update("status", model.InvitationAccepted).Error
	})
	if err != nil {
		return nil, err
	}

	member.User = &user
	s.hub.Emit(realtime.ProjectRoom(invitation.ProjectID), "member:added", member)
	return member, nil
}

func (s *InvitationService) Reject(token string, userID uint) error {
	invitation, err := s.GetByToken(token)
	if err != nil {
		return err
	}
	var user model.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return fmt.Errorf("40401:user not found")
	}
	if user.Email != invitation.Email {
		return fmt.Errorf("40307:this invitation was sent to a different email address")
	}
	return s.db.Model(invitation).Update("status", model.InvitationRejected).Error
}

// Cancel removes a pending invitation. Owner-or-admin only.
func (s *InvitationService) Cancel(projectID, invitationID, userID uint) error {
	var project model.Project
	if err := s.db.Preload("Members").First(&project, projectID).Error; err != nil {
		return fmt.Errorf("40403:project not found")
	}
	if !isOwnerOrAdmin(&project, userID) {
		return fmt.Errorf("40306:only the project owner or an admin can cancel invitations")
	}

	result := s.db.Where("id = ? AND project_id = ? AND status = ?",
		invitationID, projectID, model.InvitationPending).
		Delete(&model.Invitation{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("40406:invitation not found")
	}
	return nil
}

func (s *InvitationService) List(projectID, userID uint) ([]model.Invitation, error) {
	var project model.Project
	if err := s.db.Preload("Members").First(&project, projectID).Error; err != nil {
		return nil, fmt.Errorf("40403:project not found")
	}
	if !isOwnerOrAdmin(&project, userID) {
		return nil, fmt.Errorf("40306:only the project owner or an admin can list invitations")
	}

	var invitations []model.Invitation
	if err := s.db.Preload("Sender").
		Where("project_id = ? AND status = ?", projectID, model.InvitationPending).
		Order("created_at desc").
		Find(&invitations).Error; err != nil {
		return nil, err
	}
	return invitations, nil
}
