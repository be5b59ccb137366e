package model

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID                    uint           `gorm:"primaryKey" json:"id"`
	Email                 string         `gorm:"type:varchar(128);uniqueIndex:idx_email;not null" json:"email"`
	PasswordHash          string         `gorm:"type:varchar(128);not null" json:"-"`
	FirstName             string         `gorm:"type:varchar(64);not null" json:"first_name"`
	LastName              string         `gorm:"type:varchar(64)" json:"last_name"`
	Avatar                string         `gorm:"type:varchar(512)" json:"avatar"`
	IsActive              bool           `gorm:"default:true" json:"is_active"`
	CurrentOrganizationID *uint          `gorm:"index:idx_current_org" json:"current_organization_id"`
	LastLoginAt           *time.Time     `json:"last_login_at"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

type UserBrief struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
}

func (u *User) Brief() UserBrief {
	return UserBrief{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Avatar:    u.Avatar,
	}
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// RefreshToken backs token rotation; expired rows are swept by the
// cleanup job.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_rt_user" json:"user_id"`
	Token     string    `gorm:"type:varchar(64);uniqueIndex:idx_rt_token;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (RefreshToken) TableName() string { return "refresh_tokens" }
