package model

import "time"

// Checkweigher is a calibration-tracked weighing device on a line.
type Checkweigher struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	LineID         int64     `gorm:"index;not null" json:"line_id"`
	Name           string    `gorm:"size:256;not null" json:"name"`
	LastCalibrated Date      `json:"last_calibrated"`
	NextDue        Date      `gorm:"index" json:"next_due"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
