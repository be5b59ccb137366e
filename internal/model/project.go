package model

import (
	"time"

	"github.com/taskhive/backend/internal/role"
	"gorm.io/gorm"
)

const (
	ProjectActive    = "ACTIVE"
	ProjectOnHold    = "ON_HOLD"
	ProjectCompleted = "COMPLETED"
	ProjectArchived  = "ARCHIVED"
)

type Project struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	OrganizationID uint           `gorm:"not null;index:idx_proj_org" json:"organization_id"`
	OwnerID        uint           `gorm:"not null;index:idx_proj_owner" json:"owner_id"`
	Key            string         `gorm:"type:varchar(10);uniqueIndex:idx_proj_key;not null" json:"key"`
	Name           string         `gorm:"type:varchar(128);not null" json:"name"`
	Description    string         `gorm:"type:text" json:"description"`
	Color          string         `gorm:"type:varchar(16)" json:"color"`
	Status         string         `gorm:"type:varchar(16);default:ACTIVE;index:idx_proj_status" json:"status"`
	StartDate      *time.Time     `json:"start_date"`
	EndDate        *time.Time     `json:"end_date"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	Owner   *User           `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Members []ProjectMember `gorm:"foreignKey:ProjectID" json:"members,omitempty"`
	Boards  []Board         `gorm:"foreignKey:ProjectID" json:"boards,omitempty"`
	Labels  []Label         `gorm:"foreignKey:ProjectID" json:"labels,omitempty"`
}

func (Project) TableName() string { return "projects" }

// ProjectMember has no OWNER tier; Project.OwnerID is the sole owner and
// outranks ADMIN for every gate regardless of any membership row.
type ProjectMember struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	ProjectID uint             `gorm:"not null;uniqueIndex:uk_project_user" json:"project_id"`
	UserID    uint             `gorm:"not null;uniqueIndex:uk_project_user;index:idx_pm_user" json:"user_id"`
	Role      role.ProjectRole `gorm:"type:varchar(10);not null" json:"role"`
	JoinedAt  time.Time        `gorm:"autoCreateTime" json:"joined_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (ProjectMember) TableName() string { return "project_members" }

type Invitation struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	ProjectID uint             `gorm:"not null;index:idx_inv_project" json:"project_id"`
	Email     string           `gorm:"type:varchar(128);not null;index:idx_inv_email" json:"email"`
	Role      role.ProjectRole `gorm:"type:varchar(10);not null;default:MEMBER" json:"role"`
	Token     string           `gorm:"type:varchar(64);uniqueIndex:idx_inv_token;not null" json:"token"`
	Status    string           `gorm:"type:varchar(10);not null;default:PENDING" json:"status"`
	SenderID  uint             `gorm:"not null" json:"sender_id"`
	ExpiresAt time.Time        `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time        `json:"created_at"`

	Project *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Sender  *User    `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

func (Invitation) TableName() string { return "invitations" }

type Label struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProjectID uint   `gorm:"not null;index:idx_label_project" json:"project_id"`
	Name      string `gorm:"type:varchar(64);not null" json:"name"`
	Color     string `gorm:"type:varchar(16)" json:"color"`
}

func (Label) TableName() string { return "labels" }
