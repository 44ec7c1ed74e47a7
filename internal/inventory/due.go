package inventory

import (
	"time"

	"sparesmart-backend/internal/model"
)

// LowStockParts returns the parts below their minimum level.
func LowStockParts(parts []model.Part) []model.Part {
	var out []model.Part
	for _, p := range parts {
		if IsLowStock(p.StockQuantity, p.MinStockLevel) {
			out = append(out, p)
		}
	}
	return out
}

// DueParts returns the parts whose next check falls on or before cutoff.
func DueParts(parts []model.Part, cutoff time.Time) []model.Part {
	var out []model.Part
	for _, p := range parts {
		if p.NextDue.OnOrBefore(cutoff) {
			out = append(out, p)
		}
	}
	return out
}

// DueCheckweighers returns the checkweighers whose calibration falls on or before cutoff.
func DueCheckweighers(cws []model.Checkweigher, cutoff time.Time) []model.Checkweigher {
	var out []model.Checkweigher
	for _, c := range cws {
		if c.NextDue.OnOrBefore(cutoff) {
			out = append(out, c)
		}
	}
	return out
}
