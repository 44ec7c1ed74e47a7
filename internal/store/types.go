package store

import "errors"

// Sentinel errors returned by the store. Use errors.Is to check for them.
var (
	// ErrNotFound is returned when no row has the requested primary key.
	ErrNotFound = errors.New("store: record not found")

	// ErrInvalidReference is returned when a row points at a parent that does not exist.
	ErrInvalidReference = errors.New("store: referenced record does not exist")

	// ErrDuplicate is returned when a unique column already holds the value.
	ErrDuplicate = errors.New("store: duplicate record")
)

// MachineFilter narrows machine listings. Zero fields are ignored.
type MachineFilter struct {
	LineID int64
}

// PartFilter narrows part listings. Zero fields are ignored.
type PartFilter struct {
	MachineID    int64
	LineID       int64
	LowStockOnly bool
}

// CheckweigherFilter narrows checkweigher listings. Zero fields are ignored.
type CheckweigherFilter struct {
	LineID int64
}
