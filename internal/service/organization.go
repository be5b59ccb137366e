package service

import (
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taskhive/backend/internal/mail"
	"github.com/taskhive/backend/internal/model"
	"github.com/taskhive/backend/internal/realtime"
	"github.com/taskhive/backend/internal/role"
	"gorm.io/gorm"
)

type OrganizationService struct {
	db            *gorm.DB
	mailer        mail.Mailer
	hub           *realtime.Hub
	maxOwnedOrgs  int
	invitationTTL time.Duration
}

func NewOrganizationService(db *gorm.DB, mailer mail.Mailer, hub *realtime.Hub, maxOwnedOrgs, invitationTTLDays int) *OrganizationService {
	return &OrganizationService{
		db:            db,
		mailer:        mailer,
		hub:           hub,
		maxOwnedOrgs:  maxOwnedOrgs,
		invitationTTL: time.Duration(invitationTTLDays) * 24 * time.Hour,
	}
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// slugify lowercases, collapses every non-alphanumeric run into a hyphen,
// trims leading/trailing hyphens and caps at 50 chars.
func slugify(name string) string {
	slug := nonAlnum.ReplaceAllString(strings.ToLower(name), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 50 {
		slug = strings.Trim(slug[:50], "-")
	}
	return slug
}

// uniqueSlug appends an incrementing numeric suffix until the slug is free.
// excludeID skips the organization's own row on slug changes.
func uniqueSlug(tx *gorm.DB, name string, excludeID uint) string {
	base := slugify(name)
	slug := base
	for counter := 1; ; counter++ {
		var existing model.Organization
		err := tx.Where("slug = ?", slug).First(&existing).Error
		if err == gorm.ErrRecordNotFound || (err == nil && existing.ID == excludeID) {
			return slug
		}
		slug = fmt.Sprintf("%s-%d", base, counter)
	}
}

type CreateOrganizationData struct {
	Name        string
	Slug        string
	Description string
	Logo        string
	Website     string
	Industry    string
	Size        string
}

func (s *OrganizationService) Create(userID uint, data CreateOrganizationData) (*model.Organization, error) {
	org := &model.Organization{
		Name:        data.Name,
		Description: data.Description,
		Logo:        data.Logo,
		Website:     data.Website,
		Industry:    data.Industry,
		Size:        data.Size,
		IsActive:    true,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// the quota read shares the transaction with the member insert so
		// concurrent creates cannot both pass the check
		var ownedCount int64
		tx.Model(&model.OrganizationMember{}).
			Where("user_id = ? AND role = ?", userID, role.OrgOwner).
			Count(&ownedCount)
		if ownedCount >= int64(s.maxOwnedOrgs) {
			return fmt.Errorf("40010:you can only create up to %d organizations", s.maxOwnedOrgs)
		}

		base := data.Name
		if data.Slug != "" {
			base = data.Slug
		}
		org.Slug = uniqueSlug(tx, base, 0)

		if err := tx.Create(org).Error; err != nil {
			return err
		}
		if err := tx.Create(&model.OrganizationMember{
			OrganizationID: org.ID,
			UserID:         userID,
			Role:           role.OrgOwner,
		}).Error; err != nil {
			return err
		}
		if err := tx.Create(&model.OrganizationSettings{
			OrganizationID:        org.ID,
			AllowMemberInvites:    false,
			DefaultProjectRole:    role.ProjectMember,
			RequireApprovalToJoin: false,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&model.User{}).Where("id = ?", userID).
			Update("current_organization_id", org.ID).Error
	})
	if err != nil {
		return nil, err
	}

	return s.FindByID(org.ID, userID)
}

// FindAll lists the caller's active organizations with their role in each.
func (s *OrganizationService) FindAll(userID uint) ([]map[string]interface{}, error) {
	var orgs []model.Organization
	if err := s.db.
		Where("is_active = ? AND id IN (SELECT organization_id FROM organization_members WHERE user_id = ?)", true, userID).
		Order("updated_at desc").
		Find(&orgs).Error; err != nil {
		return nil, err
	}

	result := make([]map[string]interface{}, 0, len(orgs))
	for _, org := range orgs {
		var member model.OrganizationMember
		userRole := role.OrgGuest
		if err := s.db.Where("organization_id = ? AND user_id = ?", org.ID, userID).First(&member).Error; err == nil {
			userRole = member.Role
		}
		result = append(result, map[string]interface{}{
			"organization":  org,
			"role":          userRole,
			"project_count": s.projectCount(org.ID),
			"member_count":  s.memberCount(org.ID),
		})
	}
	return result, nil
}

func (s *OrganizationService) projectCount(orgID uint) int64 {
	var count int64
	s.db.Model(&model.Project{}).Where("organization_id = ?", orgID).Count(&count)
	return count
}

func (s *OrganizationService) memberCount(orgID uint) int64 {
	var count int64
	s.db.Model(&model.OrganizationMember{}).Where("organization_id = ?", orgID).Count(&count)
	return count
}

// FindByID loads an organization and verifies the caller's membership. The
// caller's role rides along on the Members preload.
func (s *OrganizationService) FindByID(orgID, userID uint) (*model.Organization, error) {
	var org model.Organization
	if err := s.db.Preload("Members.User").Preload("Settings").First(&org, orgID).Error; err != nil {
		return nil, fmt.Errorf("40402:organization not found")
	}
	if memberOf(&org, userID) == nil {
		return nil, fmt.Errorf("40301:not a member of this organization")
	}
	return &org, nil
}

func (s *OrganizationService) FindBySlug(slug string, userID uint) (*model.Organization, error) {
	var org model.Organization
	if err := s.db.Preload("Members.User").Preload("Settings").Where("slug = ?", slug).First(&org).Error; err != nil {
		return nil, fmt.Errorf("40402:organization not found")
	}
	if memberOf(&org, userID) == nil {
		return nil, fmt.Errorf("40301:not a member of this organization")
	}
	return &org, nil
}

func memberOf(org *model.Organization, userID uint) *model.OrganizationMember {
	for i := range org.Members {
		if org.Members[i].UserID == userID {
			return &org.Members[i]
		}
	}
	return nil
}

// UserRole returns the caller's role in the organization, or an error if
// not a member.
func (s *OrganizationService) UserRole(orgID, userID uint) (role.OrgRole, error) {
	var member model.OrganizationMember
	if err := s.db.Where("organization_id = ? AND user_id = ?", orgID, userID).First(&member).Error; err != nil {
		return "", fmt.Errorf("40301:not a member of this organization")
	}
	return member.Role, nil
}

func (s *OrganizationService) Update(orgID, userID uint, updates map[string]interface{}) (*model.Organization, error) {
	userRole, err := s.UserRole(orgID, userID)
	if err != nil {
		return nil, err
	}
	if ok, _ := role.HasMinOrgRole(userRole, role.OrgAdmin); !ok {
		return nil, fmt.Errorf("40302:only admins can update the organization")
	}
	if err := s.db.Model(&model.Organization{}).Where("id = ?", orgID).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.FindByID(orgID, userID)
}

// UpdateSlug is owner-only, stricter than the admin gate on Update.
func (s *OrganizationService) UpdateSlug(orgID, userID uint, newSlug string) (*model.Organization, error) {
	userRole, err := s.UserRole(orgID, userID)
	if err != nil {
		return nil, err
	}
	if userRole != role.OrgOwner {
		return nil, fmt.Errorf("40303:only the organization owner can change the slug")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		slug := uniqueSlug(tx, newSlug, orgID)
		return tx.Model(&model.Organization{}).Where("id = ?", orgID).Update("slug", slug).Error
	})
	if err != nil {
		return nil, err
	}
	return s.FindByID(orgID, userID)
}

func (s *OrganizationService) Delete(orgID, userID uint) error {
	userRole, err := s.UserRole(orgID, userID)
	if err != nil {
		return err
	}
	if userRole != role.OrgOwner {
		return fmt.Errorf("40303:only the organization owner can delete the organization")
	}
	if s.projectCount(orgID) > 0 {
		return fmt.Errorf("40011:cannot delete an organization that still has projects")
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("organization_id = ?", orgID).Delete(&model.OrganizationMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("organization_id = ?", orgID).Delete(&model.OrganizationInvitation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("organization_id = ?", orgID).Delete(&model.OrganizationSettings{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Organization{}, orgID).Error
	})
}

type SettingsPatch struct {
	AllowMemberInvites    *bool
	DefaultProjectRole    *role.ProjectRole
	RequireApprovalToJoin *bool
}

// UpdateSettings has upsert semantics: missing rows get defaults first.
func (s *OrganizationService) UpdateSettings(orgID, userID uint, patch SettingsPatch) (*model.OrganizationSettings, error) {
	userRole, err := s.UserRole(orgID, userID)
	if err != nil {
		return nil, err
	}
	if ok, _ := role.HasMinOrgRole(userRole, role.OrgAdmin); !ok {
		return nil, fmt.Errorf("40302:only admins can update organization settings")
	}
	if patch.DefaultProjectRole != nil && !role.ValidProjectRole(*patch.DefaultProjectRole) {
		return nil, fmt.Errorf("40002:invalid project role %q", string(*patch.DefaultProjectRole))
	}

	var settings model.OrganizationSettings
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("organization_id = ?", orgID).First(&settings).Error; err != nil {
			if err != gorm.ErrRecordNotFound {
				return err
			}
			settings = model.OrganizationSettings{
				OrganizationID:     orgID,
				DefaultProjectRole: role.ProjectMember,
			}
		}
		if patch.AllowMemberInvites != nil {
			settings.AllowMemberInvites = *patch.AllowMemberInvites
		}
		if patch.DefaultProjectRole != nil {
			settings.DefaultProjectRole = *patch.DefaultProjectRole
		}
		if patch.RequireApprovalToJoin != nil {
			settings.RequireApprovalToJoin = *patch.RequireApprovalToJoin
		}
		return tx.Save(&settings).Error
	})
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *OrganizationService) GetMembers(orgID, userID uint) ([]model.OrganizationMember, error) {
	if _, err := s.UserRole(orgID, userID); err != nil {
		return nil, err
	}
	var members []model.OrganizationMember
	if err := s.db.Preload("User").
		Where("organization_id = ?", orgID).
		Order("joined_at asc").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// canAddMembers: admins always; plain members only when settings allow it.
func (s *OrganizationService) canAddMembers(org *model.Organization, userRole role.OrgRole) bool {
	if ok, _ := role.HasMinOrgRole(userRole, role.OrgAdmin); ok {
		return true
	}
	isMember, _ := role.HasMinOrgRole(userRole, role.OrgMember)
	return isMember && org.Settings != nil && org.Settings.AllowMemberInvites
}

func (s *OrganizationService) AddMember(orgID, userID uint, memberEmail string, memberRole role.OrgRole) (*model.OrganizationMember, error) {
	org, err := s.FindByID(orgID, userID)
	if err != nil {
		return nil, err
	}
	actor := memberOf(org, userID)
	if !s.canAddMembers(org, actor.Role) {
		return nil, fmt.Errorf("40302:not authorized to add members")
	}
	if memberRole == role.OrgOwner {
		return nil, fmt.Errorf("40003:cannot add a member as owner, use transfer ownership")
	}
	if !role.ValidOrgRole(memberRole) {
		return nil, fmt.Errorf("40002:invalid organization role %q", string(memberRole))
	}

	var user model.User
	if err := s.db.Where("email = ?", memberEmail).First(&user).Error; err != nil {
		return nil, fmt.Errorf("40401:user not found")
	}

	var count int64
	s.db.Model(&model.OrganizationMember{}).
		Where("organization_id = ? AND user_id = ?", orgID, user.ID).
		Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("40901:user is already a member of this organization")
	}

	member := &model.OrganizationMember{
		OrganizationID: orgID,
		UserID:         user.ID,
		Role:           memberRole,
	}
	if err := s.db.Create(member).Error; err != nil {
		return nil, err
	}
	member.User = &user

	s.hub.Emit(realtime.OrganizationRoom(orgID), "member:added", member)
	return member, nil
}

func (s *OrganizationService) UpdateMemberRole(orgID, userID, memberID uint, newRole role.OrgRole) (*model.OrganizationMember, error) {
	userRole, err := s.UserRole(orgID, userID)
	if err != nil {
		return nil, err
	}
	if userRole != role.OrgOwner {
		return nil, fmt.Errorf("40303:only the organization owner can change member roles")
	}
	if memberID == userID {
		return nil, fmt.Errorf("40003:cannot change your own role")
	}
	if newRole == role.OrgOwner {
		return nil, fmt.Errorf("40003:use transfer ownership to make someone owner")
	}
	if !role.ValidOrgRole(newRole) {
		return nil, fmt.Errorf("40002:invalid organization role %q", string(newRole))
	}

	var member model.OrganizationMember
	if err := s.db.Where("organization_id = ? AND user_id = ?", orgID, memberID).First(&member).Error; err != nil {
		return nil, fmt.Errorf("40408:member not found")
	}
	member.Role = newRole
	if err := s.db.Save(&member).Error; err != nil {
		return nil, err
	}
	s.db.Preload("User").First(&member, member.ID)
	return &member, nil
}

// RemoveMember: self-removal is always allowed; removing others needs
// admin; the owner can never be removed by anyone.
func (s *OrganizationService) RemoveMember(orgID, userID, memberID uint) error {
	org, err := s.FindByID(orgID, userID)
	if err != nil {
		return err
	}
	target := memberOf(org, memberID)
	if target == nil {
		return fmt.Errorf("40408:member not found")
	}
	if target.Role == role.OrgOwner {
		return fmt.Errorf("40003:cannot remove the organization owner")
	}
	actor := memberOf(org, userID)
	if memberID != userID {
		if ok, _ := role.HasMinOrgRole(actor.Role, role.OrgAdmin); !ok {
			return fmt.Errorf("40302:not authorized to remove members")
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("organization_id = ? AND user_id = ?", orgID, memberID).
			Delete(&model.OrganizationMember{}).Error; err != nil {
			return err
		}
		if memberID == userID {
			if err := tx.Model(&model.User{}).Where("id = ? AND current_organization_id = ?", userID, orgID).
				Update("current_organization_id", nil).Error; err != nil {
				return err
			}
		}
		s.hub.Emit(realtime.OrganizationRoom(orgID), "member:removed", map[string]interface{}{"user_id": memberID})
		return nil
	})
}

// TransferOwnership promotes the target and demotes the current owner to
// admin in a single transaction, keeping the one-OWNER invariant.
func (s *OrganizationService) TransferOwnership(orgID, userID, newOwnerID uint) error {
	org, err := s.FindByID(orgID, userID)
	if err != nil {
		return err
	}
	actor := memberOf(org, userID)
	if actor.Role != role.OrgOwner {
		return fmt.Errorf("40303:only the organization owner can transfer ownership")
	}
	if newOwnerID == userID {
		return fmt.Errorf("40005:you are already the owner")
	}
	if memberOf(org, newOwnerID) == nil {
		return fmt.Errorf("40003:new owner must be a member of the organization")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.OrganizationMember{}).
			Where("organization_id = ? AND user_id = ?", orgID, newOwnerID).
			Update("role", role.OrgOwner).Error; err != nil {
			return err
		}
		return tx.Model(&model.OrganizationMember{}).
			Where("organization_id = ? AND user_id = ?", orgID, userID).
			Update("role", role.OrgAdmin).Error
	})
}

func (s *OrganizationService) CreateInvitation(orgID, userID uint, email string, invRole role.OrgRole) (*model.OrganizationInvitation, error) {
	org, err := s.FindByID(orgID, userID)
	if err != nil {
		return nil, err
	}
	actor := memberOf(org, userID)
	if !s.canAddMembers(org, actor.Role) {
		return nil, fmt.Errorf("40302:not authorized to send invitations")
	}
	if invRole == role.OrgOwner {
		return nil, fmt.Errorf("40003:cannot invite as owner")
	}
	if !role.ValidOrgRole(invRole) {
		return nil, fmt.Errorf("40002:invalid organization role %q", string(invRole))
	}

	var existingUser model.User
	if err := s.db.Where("email = ?", email).First(&existingUser).Error; err == nil {
		var count int64
		s.db.Model(&model.OrganizationMember{}).
			Where("organization_id = ? AND user_id = ?", orgID, existingUser.ID).
			Count(&count)
		if count > 0 {
			return nil, fmt.Errorf("40901:user is already a member")
		}
	}

	var pending int64
	s.db.Model(&model.OrganizationInvitation{}).
		Where("organization_id = ? AND email = ? AND status = ?", orgID, email, model.InvitationPending).
		Count(&pending)
	if pending > 0 {
		return nil, fmt.Errorf("40902:invitation already sent to this email")
	}

	invitation := &model.OrganizationInvitation{
		OrganizationID: orgID,
		Email:          email,
		Role:           invRole,
		Token:          uuid.NewString(),
		Status:         model.InvitationPending,
		SenderID:       userID,
		ExpiresAt:      time.Now().Add(s.invitationTTL),
	}
	if err := s.db.Create(invitation).Error; err != nil {
		return nil, err
	}

	sender := actor.User
	senderName := "A team member"
	if sender != nil {
		senderName = sender.FullName()
	}
	if err := s.mailer.SendOrganizationInvitation(email, org.Name, senderName, string(invRole), invitation.Token); err != nil {
		log.Printf("[mail] organization invitation to %s not sent: %v", email, err)
	}

	invitation.Organization = org
	return invitation, nil
}

func (s *OrganizationService) GetInvitations(orgID, userID uint) ([]model.OrganizationInvitation, error) {
	userRole, err := s.UserRole(orgID, userID)
	if err != nil {
		return nil, err
	}
	if ok, _ := role.HasMinOrgRole(userRole, role.OrgManager); !ok {
		return nil, fmt.Errorf("40302:not authorized to view invitations")
	}
	var invitations []model.OrganizationInvitation
	if err := s.db.Preload("Sender").
		Where("organization_id = ?", orgID).
		Order("created_at desc").
		Find(&invitations).Error; err != nil {
		return nil, err
	}
	return invitations, nil
}

func (s *OrganizationService) CancelInvitation(orgID, userID, invitationID uint) error {
	userRole, err := s.UserRole(orgID, userID)
	if err != nil {
		return err
	}
	if ok, _ := role.HasMinOrgRole(userRole, role.OrgAdmin); !ok {
		return fmt.Errorf("40302:not authorized to cancel invitations")
	}
	var invitation model.OrganizationInvitation
	if err := s.db.First(&invitation, invitationID).Error; err != nil || invitation.OrganizationID != orgID {
		return fmt.Errorf("40406:invitation not found")
	}
	return s.db.Delete(&invitation).Error
}

// GetInvitationByToken performs the lazy expiry transition: a PENDING row
// read past its deadline flips to EXPIRED before the error is returned.
func (s *OrganizationService) GetInvitationByToken(token string) (*model.OrganizationInvitation, error) {
	var invitation model.OrganizationInvitation
	if err := s.db.Preload("Organization").Preload("Sender").
		Where("token = ?", token).First(&invitation).Error; err != nil {
		return nil, fmt.Errorf("40406:invitation not found")
	}
	if invitation.Status != model.InvitationPending {
		return nil, fmt.Errorf("40012:invitation is no longer valid")
	}
	if invitation.ExpiresAt.Before(time.Now()) {
		s.db.Model(&invitation).Update("status", model.InvitationExpired)
		return nil, fmt.Errorf("40013:invitation has expired")
	}
	return &invitation, nil
}

// AcceptInvitation requires the accepting user's email to match the
// invitation exactly. An already-member acceptor still consumes the
// invitation but gets a conflict back.
func (s *OrganizationService) AcceptInvitation(token string, userID uint) (*model.OrganizationMember, error) {
	invitation, err := s.GetInvitationByToken(token)
	if err != nil {
		return nil, err
	}

	var user model.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("40401:user not found")
	}
	if user.Email != invitation.Email {
		return nil, fmt.Errorf("40307:this invitation was sent to %s, log in with that email to accept it", invitation.Email)
	}

	var count int64
	s.db.Model(&model.OrganizationMember{}).
		Where("organization_id = ? AND user_id = ?", invitation.OrganizationID, userID).
		Count(&count)
	if count > 0 {
		s.db.Model(&model.OrganizationInvitation{}).Where("id = ?", invitation.ID).
			Update("status", model.InvitationAccepted)
		return nil, fmt.Errorf("40901:you are already a member of this organization")
	}

	member := &model.OrganizationMember{
		OrganizationID: invitation.OrganizationID,
		UserID:         userID,
		Role:           invitation.Role,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(member).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.OrganizationInvitation{}).Where("id = ?", invitation.ID).
			Update("status", model.InvitationAccepted).Error; err != nil {
			return err
		}
		return tx.Model(&model.User{}).Where("id = ?", userID).
			Update("current_organization_id", invitation.OrganizationID).Error
	})
	if err != nil {
		return nil, err
	}

	s.db.Preload("User").First(member, member.ID)
	s.hub.Emit(realtime.OrganizationRoom(invitation.OrganizationID), "member:added", member)
	return member, nil
}

func (s *OrganizationService) RejectInvitation(token string, userID uint) error {
	invitation, err := s.GetInvitationByToken(token)
	if err != nil {
		return err
	}
	var user model.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return fmt.Errorf("40401:user not found")
	}
	if user.Email != invitation.Email {
		return fmt.Errorf("40307:invitation was sent to a different email")
	}
	return s.db.Model(&model.OrganizationInvitation{}).Where("id = ?", invitation.ID).
		Update("status", model.InvitationRejected).Error
}

// GetDashboardStats aggregates counts and recent movement for the org
// landing page. Requires membership only.
func (s *OrganizationService) GetDashboardStats(orgID, userID uint) (map[string]interface{}, error) {
	if _, err := s.UserRole(orgID, userID); err != nil {
		return nil, err
	}

	tasksByStatus := make(map[string]int64)
	rows, err := s.db.Model(&model.Task{}).
		Select("tasks.status, count(tasks.id) as count").
		Joins("JOIN projects ON projects.id = tasks.project_id").
		Where("projects.organization_id = ?", orgID).
		Group("tasks.status").Rows()
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var status string
			var count int64
			if err := rows.Scan(&status, &count); err == nil {
				tasksByStatus[status] = count
			}
		}
	}
	var totalTasks int64
	for _, c := range tasksByStatus {
		totalTasks += c
	}

	var recentActivity []model.Activity
	s.db.Preload("User").Preload("Task").
		Joins("JOIN tasks ON tasks.id = activities.task_id").
		Joins("JOIN projects ON projects.id = tasks.project_id").
		Where("projects.organization_id = ?", orgID).
		Order("activities.created_at desc").
		Limit(20).
		Find(&recentActivity)

	var recentProjects []model.Project
	s.db.Where("organization_id = ?", orgID).
		Order("updated_at desc").
		Limit(5).
		Find(&recentProjects)

	return map[string]interface{}{
		"project_count":   s.projectCount(orgID),
		"member_count":    s.memberCount(orgID),
		"total_tasks":     totalTasks,
		"completed_tasks": tasksByStatus[string(model.StatusDone)],
		"tasks_by_status": tasksByStatus,
		"recent_activity": recentActivity,
		"recent_projects": recentProjects,
	}, nil
}

func (s *OrganizationService) GetProjects(orgID, userID uint, page, limit int) ([]model.Project, int64, error) {
	if _, err := s.UserRole(orgID, userID); err != nil {
		return nil, 0, err
	}
	var total int64
	s.db.Model(&model.Project{}).Where("organization_id = ?", orgID).Count(&total)

	var projects []model.Project
	if err := s.db.Preload("Owner").
		Where("organization_id = ?", orgID).
		Order("updated_at desc").
		Offset((page - 1) * limit).Limit(limit).
		Find(&projects).Error; err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

// UserNeedsOrganization is true iff the user belongs to no organization.
func (s *OrganizationService) UserNeedsOrganization(userID uint) bool {
	var count int64
	s.db.Model(&model.OrganizationMember{}).Where("user_id = ?", userID).Count(&count)
	return count == 0
}

func (s *OrganizationService) SwitchOrganization(userID, orgID uint) (*model.Organization, error) {
	var member model.OrganizationMember
	if err := s.db.Where("organization_id = ? AND user_id = ?", orgID, userID).First(&member).Error; err != nil {
		return nil, fmt.Errorf("40301:not a member of this organization")
	}
	if err := s.db.Model(&model.User{}).Where("id = ?", userID).
		Update("current_organization_id", orgID).Error; err != nil {
		return nil, err
	}
	var org model.Organization
	if err := s.db.First(&org, orgID).Error; err != nil {
		return nil, err
	}
	return &org, nil
}
