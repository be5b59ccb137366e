package model

import (
	"time"

	"github.com/taskhive/backend/internal/role"
	"gorm.io/gorm"
)

type Organization struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"type:varchar(128);not null" json:"name"`
	Slug        string         `gorm:"type:varchar(64);uniqueIndex:idx_org_slug;not null" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
	Logo        string         `gorm:"type:varchar(512)" json:"logo"`
	Website     string         `gorm:"type:varchar(256)" json:"website"`
	Industry    string         `gorm:"type:varchar(64)" json:"industry"`
	Size        string         `gorm:"type:varchar(32)" json:"size"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Members  []OrganizationMember  `gorm:"foreignKey:OrganizationID" json:"members,omitempty"`
	Settings *OrganizationSettings `gorm:"foreignKey:OrganizationID" json:"settings,omitempty"`
	Projects []Project             `gorm:"foreignKey:OrganizationID" json:"projects,omitempty"`
}

func (Organization) TableName() string { return "organizations" }

type OrganizationSettings struct {
	ID                    uint             `gorm:"primaryKey" json:"id"`
	OrganizationID        uint             `gorm:"not null;uniqueIndex:uk_org_settings" json:"organization_id"`
	AllowMemberInvites    bool             `gorm:"default:false" json:"allow_member_invites"`
	DefaultProjectRole    role.ProjectRole `gorm:"type:varchar(10);default:MEMBER" json:"default_project_role"`
	RequireApprovalToJoin bool             `gorm:"default:false" json:"require_approval_to_join"`
}

func (OrganizationSettings) TableName() string { return "organization_settings" }

type OrganizationMember struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	OrganizationID uint         `gorm:"not null;uniqueIndex:uk_org_user" json:"organization_id"`
	UserID         uint         `gorm:"not null;uniqueIndex:uk_org_user;index:idx_om_user" json:"user_id"`
	Role           role.OrgRole `gorm:"type:varchar(10);not null" json:"role"`
	JoinedAt       time.Time    `gorm:"autoCreateTime" json:"joined_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (OrganizationMember) TableName() string { return "organization_members" }

// Invitation lifecycle. EXPIRED is assigned lazily on first read past
// expires_at, or by the batch expiry job.
const (
	InvitationPending  = "PENDING"
	InvitationAccepted = "ACCEPTED"
	InvitationRejected = "REJECTED"
	InvitationExpired  = "EXPIRED"
)

type OrganizationInvitation struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	OrganizationID uint         `gorm:"not null;index:idx_oi_org" json:"organization_id"`
	Email          string       `gorm:"type:varchar(128);not null;index:idx_oi_email" json:"email"`
	Role           role.OrgRole `gorm:"type:varchar(10);not null;default:MEMBER" json:"role"`
	Token          string       `gorm:"type:varchar(64);uniqueIndex:idx_oi_token;not null" json:"token"`
	Status         string       `gorm:"type:varchar(10);not null;default:PENDING" json:"status"`
	SenderID       uint         `gorm:"not null" json:"sender_id"`
	ExpiresAt      time.Time    `gorm:"not null" json:"expires_at"`
	CreatedAt      time.Time    `json:"created_at"`

	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Sender       *User         `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

func (OrganizationInvitation) TableName() string { return "organization_invitations" }
