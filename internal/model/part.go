package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Part is a spare or consumable item stocked against a machine.
type Part struct {
	ID            int64               `gorm:"primaryKey" json:"id"`
	MachineID     int64               `gorm:"index;not null" json:"machine_id"`
	Name          string              `gorm:"size:256;not null" json:"name"`
	PartNumber    string              `gorm:"index;size:128" json:"part_number"`
	Description   string              `gorm:"size:1024" json:"description"`
	StockQuantity int                 `gorm:"not null;default:0" json:"stock_quantity"`
	MinStockLevel int                 `gorm:"not null;default:0" json:"min_stock_level"`
	Location      string              `gorm:"size:256" json:"location"`
	Cost          decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"cost"`
	LastChecked   Date                `json:"last_checked"`
	NextDue       Date                `gorm:"index" json:"next_due"`
	Notes         string              `gorm:"size:2048" json:"notes"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`

	// LowStock is derived on every read and never persisted.
	LowStock bool `gorm:"-" json:"low_stock"`
}

// IsLowStock reports whether the stock is below the configured minimum.
func (p *Part) IsLowStock() bool {
	return p.StockQuantity < p.MinStockLevel
}

// AfterFind recomputes the derived low-stock flag.
func (p *Part) AfterFind(tx *gorm.DB) error {
	p.LowStock = p.IsLowStock()
	return nil
}

// AfterSave recomputes the derived low-stock flag.
func (p *Part) AfterSave(tx *gorm.DB) error {
	p.LowStock = p.IsLowStock()
	return nil
}
