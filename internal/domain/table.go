package domain

import "time"

// Table is a physical seating unit with its own join code. It is both the
// billing unit (one active tab at a time) and the fairness unit in the
// song queue. Deactivation blocks new joins, never existing sessions.
type Table struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null" validate:"required"`
	JoinCode  string    `json:"join_code" gorm:"uniqueIndex;not null"`
	Active    bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Table) TableName() string { return "tables" }
