package model

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	StatusBacklog    TaskStatus = "BACKLOG"
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusInReview   TaskStatus = "IN_REVIEW"
	StatusDone       TaskStatus = "DONE"
	StatusCancelled  TaskStatus = "CANCELLED"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
	PriorityUrgent TaskPriority = "URGENT"
)

type Task struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	ProjectID      uint           `gorm:"not null;index:idx_task_project" json:"project_id"`
	TaskNumber     int            `gorm:"not null;index:idx_task_number" json:"task_number"`
	Title          string         `gorm:"type:varchar(256);not null" json:"title"`
	Description    string         `gorm:"type:text" json:"description"`
	Status         TaskStatus     `gorm:"type:varchar(16);not null;default:TODO;index:idx_task_status" json:"status"`
	Priority       TaskPriority   `gorm:"type:varchar(10);not null;default:MEDIUM" json:"priority"`
	ColumnID       *uint          `gorm:"index:idx_task_column" json:"column_id"`
	ParentID       *uint          `gorm:"index:idx_task_parent" json:"parent_id"`
	Order          float64        `gorm:"not null;default:0" json:"order"`
	DueDate        *time.Time     `json:"due_date"`
	StartDate      *time.Time     `json:"start_date"`
	CreatorID      uint           `gorm:"not null" json:"creator_id"`
	EstimatedHours *float64       `json:"estimated_hours"`
	ActualHours    *float64       `json:"actual_hours"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	Project     *Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Column      *BoardColumn   `gorm:"foreignKey:ColumnID" json:"column,omitempty"`
	Creator     *User          `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Subtasks    []Task         `gorm:"foreignKey:ParentID" json:"subtasks,omitempty"`
	Assignees   []TaskAssignee `gorm:"foreignKey:TaskID" json:"assignees,omitempty"`
	Labels      []TaskLabel    `gorm:"foreignKey:TaskID" json:"labels,omitempty"`
	Comments    []Comment      `gorm:"foreignKey:TaskID" json:"comments,omitempty"`
	Attachments []Attachment   `gorm:"foreignKey:TaskID" json:"attachments,omitempty"`
}

func (Task) TableName() string { return "tasks" }

type TaskAssignee struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	TaskID uint `gorm:"not null;uniqueIndex:uk_task_user" json:"task_id"`
	UserID uint `gorm:"not null;uniqueIndex:uk_task_user;index:idx_ta_user" json:"user_id"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (TaskAssignee) TableName() string { return "task_assignees" }

type TaskLabel struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	TaskID  uint `gorm:"not null;uniqueIndex:uk_task_label" json:"task_id"`
	LabelID uint `gorm:"not null;uniqueIndex:uk_task_label" json:"label_id"`

	Label *Label `gorm:"foreignKey:LabelID" json:"label,omitempty"`
}

func (TaskLabel) TableName() string { return "task_labels" }

type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TaskID    uint      `gorm:"not null;index:idx_comment_task" json:"task_id"`
	UserID    uint      `gorm:"not null" json:"user_id"`
	ParentID  *uint     `gorm:"index:idx_comment_parent" json:"parent_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User    *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Replies []Comment `gorm:"foreignKey:ParentID" json:"replies,omitempty"`
}

func (Comment) TableName() string { return "comments" }

type Attachment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TaskID       uint      `gorm:"not null;index:idx_att_task" json:"task_id"`
	FileName     string    `gorm:"type:varchar(256);not null" json:"file_name"`
	URL          string    `gorm:"type:varchar(512);not null" json:"url"`
	PublicID     string    `gorm:"type:varchar(128)" json:"public_id"`
	SizeBytes    int64     `json:"size_bytes"`
	UploadedByID uint      `gorm:"not null" json:"uploaded_by_id"`
	CreatedAt    time.Time `json:"created_at"`

	UploadedBy *User `gorm:"foreignKey:UploadedByID" json:"uploaded_by,omitempty"`
}

func (Attachment) TableName() string { return "attachments" }
