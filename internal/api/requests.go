package api

import (
	"strings"

	"github.com/shopspring/decimal"

	"sparesmart-backend/internal/model"
)

type createLineRequest struct {
	Name        string   `json:"name" validate:"notblank,max=128"`
	Description string   `json:"description" validate:"max=1024"`
	Location    string   `json:"location" validate:"max=256"`
	Capacity    *int     `json:"capacity" validate:"omitempty,gte=0"`
	Efficiency  *float64 `json:"efficiency" validate:"omitempty,gte=0"`
}

func (r createLineRequest) toModel() model.Line {
	return model.Line{
		Name:        strings.TrimSpace(r.Name),
		Description: strings.TrimSpace(r.Description),
		Location:    strings.TrimSpace(r.Location),
		Capacity:    r.Capacity,
		Efficiency:  r.Efficiency,
	}
}

type createMachineRequest struct {
	LineID      int64  `json:"line_id" validate:"gt=0"`
	Name        string `json:"name" validate:"notblank,max=256"`
	Description string `json:"description" validate:"max=1024"`
	Status      string `json:"status" validate:"max=32"`
	Location    string `json:"location" validate:"max=256"`
}

func (r createMachineRequest) toModel() model.Machine {
	status := strings.TrimSpace(r.Status)
	if status == "" {
		status = model.MachineStatusActive
	}
	return model.Machine{
		LineID:      r.LineID,
		Name:        strings.TrimSpace(r.Name),
		Description: strings.TrimSpace(r.Description),
		Status:      status,
		Location:    strings.TrimSpace(r.Location),
	}
}

type createPartRequest struct {
	MachineID     int64               `json:"machine_id" validate:"gt=0"`
	Name          string              `json:"name" validate:"notblank,max=256"`
	PartNumber    string              `json:"part_number" validate:"max=128"`
	Description   string              `json:"description" validate:"max=1024"`
	StockQuantity int                 `json:"stock_quantity" validate:"min=0"`
	MinStockLevel int                 `json:"min_stock_level" validate:"min=0"`
	Location      string              `json:"location" validate:"max=256"`
	Cost          decimal.NullDecimal `json:"cost" validate:"omitempty,gte=0"`
	LastChecked   model.Date          `json:"last_checked"`
	NextDue       model.Date          `json:"next_due"`
	Notes         string              `json:"notes" validate:"max=2048"`
}

func (r createPartRequest) toModel() model.Part {
	return model.Part{
		MachineID:     r.MachineID,
		Name:          strings.TrimSpace(r.Name),
		PartNumber:    strings.TrimSpace(r.PartNumber),
		Description:   strings.TrimSpace(r.Description),
		StockQuantity: r.StockQuantity,
		MinStockLevel: r.MinStockLevel,
		Location:      strings.TrimSpace(r.Location),
		Cost:          r.Cost,
		LastChecked:   r.LastChecked,
		NextDue:       r.NextDue,
		Notes:         r.Notes,
	}
}

type createCheckweigherRequest struct {
	LineID         int64      `json:"line_id" validate:"gt=0"`
	Name           string     `json:"name" validate:"notblank,max=256"`
	LastCalibrated model.Date `json:"last_calibrated"`
	NextDue        model.Date `json:"next_due"`
}

func (r createCheckweigherRequest) toModel() model.Checkweigher {
	return model.Checkweigher{
		LineID:         r.LineID,
		Name:           strings.TrimSpace(r.Name),
		LastCalibrated: r.LastCalibrated,
		NextDue:        r.NextDue,
	}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
