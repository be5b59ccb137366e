package model

import "time"

type Board struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"not null;index:idx_board_project" json:"project_id"`
	Name      string    `gorm:"type:varchar(128);not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Columns []BoardColumn `gorm:"foreignKey:BoardID" json:"columns,omitempty"`
}

func (Board) TableName() string { return "boards" }

// BoardColumn binds a task status to a position on the board. Tasks moved
// into a column inherit its status; the wip limit is advisory.
type BoardColumn struct {
	ID       uint       `gorm:"primaryKey" json:"id"`
	BoardID  uint       `gorm:"not null;index:idx_col_board" json:"board_id"`
	Name     string     `gorm:"type:varchar(64);not null" json:"name"`
	Order    int        `gorm:"not null;default:0" json:"order"`
	Status   TaskStatus `gorm:"type:varchar(16);not null" json:"status"`
	Color    string     `gorm:"type:varchar(16)" json:"color"`
	WipLimit *int       `json:"wip_limit"`
}

func (BoardColumn) TableName() string { return "board_columns" }
