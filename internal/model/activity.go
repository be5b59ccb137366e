package model

import "time"

type ActivityType string

const (
	ActivityCreated       ActivityType = "CREATED"
	ActivityUpdated       ActivityType = "UPDATED"
	ActivityStatusChanged ActivityType = "STATUS_CHANGED"
	ActivityMoved         ActivityType = "MOVED"
	ActivityAssigned      ActivityType = "ASSIGNED"
	ActivityUnassigned    ActivityType = "UNASSIGNED"
	ActivityCommented     ActivityType = "COMMENTED"
	ActivityDeleted       ActivityType = "DELETED"
)

// Activity is an append-only audit log row. TaskID is nullable: deleting a
// task records a DELETED activity that no longer references the row.
type Activity struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Type        ActivityType `gorm:"type:varchar(16);not null" json:"type"`
	Description string       `gorm:"type:varchar(512);not null" json:"description"`
	TaskID      *uint        `gorm:"index:idx_activity_task" json:"task_id"`
	UserID      uint         `gorm:"not null" json:"user_id"`
	Metadata    JSONMap      `gorm:"type:json" json:"metadata"`
	CreatedAt   time.Time    `json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Task *Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
}

func (Activity) TableName() string { return "activities" }

const (
	NotificationTaskAssigned = "TASK_ASSIGNED"
	NotificationTaskOverdue  = "TASK_OVERDUE"
	NotificationTaskDueSoon  = "TASK_DUE_SOON"
)

type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Type      string    `gorm:"type:varchar(32);not null" json:"type"`
	Title     string    `gorm:"type:varchar(128);not null" json:"title"`
	Message   string    `gorm:"type:varchar(512);not null" json:"message"`
	UserID    uint      `gorm:"not null;index:idx_notif_user" json:"user_id"`
	Metadata  JSONMap   `gorm:"type:json" json:"metadata"`
	IsRead    bool      `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
