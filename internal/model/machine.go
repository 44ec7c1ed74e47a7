package model

import "time"

// MachineStatusActive is the status given to machines created without one.
const MachineStatusActive = "active"

// Machine is a piece of equipment installed on a line.
type Machine struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	LineID      int64     `gorm:"index;not null" json:"line_id"`
	Name        string    `gorm:"size:256;not null" json:"name"`
	Description string    `gorm:"size:1024" json:"description"`
	Status      string    `gorm:"size:32;not null;default:active" json:"status"`
	Location    string    `gorm:"size:256" json:"location"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
