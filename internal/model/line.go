package model

import "time"

// Line represents a physical packaging or production line.
type Line struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Description string    `gorm:"size:1024" json:"description"`
	Location    string    `gorm:"size:256" json:"location"`
	Capacity    *int      `json:"capacity"`
	Efficiency  *float64  `json:"efficiency"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}
