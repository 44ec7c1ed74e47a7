// Package inventory holds the in-memory rules applied to loaded inventory rows:
// aggregation by part number, text filters, display ordering and due checks.
package inventory

import "sparesmart-backend/internal/model"

// Snapshot is the full contents of the four inventory tables.
type Snapshot struct {
	Lines         []model.Line         `json:"lines"`
	Machines      []model.Machine      `json:"machines"`
	Parts         []model.Part         `json:"parts"`
	Checkweighers []model.Checkweigher `json:"checkweighers"`
}

// IsLowStock reports whether a stock quantity is below its minimum level.
func IsLowStock(stock, min int) bool {
	return stock < min
}

// MachineIndex maps machine IDs to machines.
func (s Snapshot) MachineIndex() map[int64]model.Machine {
	idx := make(map[int64]model.Machine, len(s.Machines))
	for _, m := range s.Machines {
		idx[m.ID] = m
	}
	return idx
}

// LineIndex maps line IDs to lines.
func (s Snapshot) LineIndex() map[int64]model.Line {
	idx := make(map[int64]model.Line, len(s.Lines))
	for _, l := range s.Lines {
		idx[l.ID] = l
	}
	return idx
}
