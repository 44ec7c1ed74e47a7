package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"sparesmart-backend/internal/inventory"
	"sparesmart-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	Snapshot(ctx context.Context) (inventory.Snapshot, error)
	Search(ctx context.Context, q string) (inventory.Results, error)

	ListLines(ctx context.Context) ([]model.Line, error)
	GetLine(ctx context.Context, id int64) (*model.Line, error)
	CreateLine(ctx context.Context, line *model.Line) error
	UpdateLine(ctx context.Context, id int64, updates map[string]any) (*model.Line, error)
	DeleteLine(ctx context.Context, id int64) error

	ListMachines(ctx context.Context, filter MachineFilter) ([]model.Machine, error)
	GetMachine(ctx context.Context, id int64) (*model.Machine, error)
	CreateMachine(ctx context.Context, machine *model.Machine) error
	UpdateMachine(ctx context.Context, id int64, updates map[string]any) (*model.Machine, error)
	DeleteMachine(ctx context.Context, id int64) error

	ListParts(ctx context.Context, filter PartFilter) ([]model.Part, error)
	GetPart(ctx context.Context, id int64) (*model.Part, error)
	CreatePart(ctx context.Context, part *model.Part) error
	UpdatePart(ctx context.Context, id int64, updates map[string]any) (*model.Part, error)
	DeletePart(ctx context.Context, id int64) error

	ListCheckweighers(ctx context.Context, filter CheckweigherFilter) ([]model.Checkweigher, error)
	GetCheckweigher(ctx context.Context, id int64) (*model.Checkweigher, error)
	CreateCheckweigher(ctx context.Context, cw *model.Checkweigher) error
	UpdateCheckweigher(ctx context.Context, id int64, updates map[string]any) (*model.Checkweigher, error)
	DeleteCheckweigher(ctx context.Context, id int64) error

	PutSubscription(ctx context.Context, sub *model.PushSubscription, lineIDs []int64) error
	GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	SubscriptionsForLine(ctx context.Context, lineID int64) ([]model.PushSubscription, error)

	Ping(ctx context.Context) error
	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying handle for callers that need raw access.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// Ping checks that the database is reachable.
func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Snapshot loads every row of the four inventory tables.
func (s *gormStore) Snapshot(ctx context.Context) (inventory.Snapshot, error) {
	var snap inventory.Snapshot
	var err error

	if snap.Lines, err = s.ListLines(ctx); err != nil {
		return snap, err
	}
	if snap.Machines, err = s.ListMachines(ctx, MachineFilter{}); err != nil {
		return snap, err
	}
	if snap.Parts, err = s.ListParts(ctx, PartFilter{}); err != nil {
		return snap, err
	}
	if snap.Checkweighers, err = s.ListCheckweighers(ctx, CheckweigherFilter{}); err != nil {
		return snap, err
	}
	return snap, nil
}

// --- Generic helpers shared by the per-table files ---

func getByID[T any](ctx context.Context, db *gorm.DB, id int64) (*T, error) {
	var row T
	if err := db.WithContext(ctx).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

// updateByID applies a partial column update and returns the row as stored afterwards.
func updateByID[T any](ctx context.Context, db *gorm.DB, id int64, updates map[string]any, checks ...func(tx *gorm.DB) error) (*T, error) {
	var updated *T
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getByID[T](ctx, tx, id); err != nil {
			return err
		}
		for _, check := range checks {
			if err := check(tx); err != nil {
				return err
			}
		}
		if err := tx.Model(new(T)).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		row, err := getByID[T](ctx, tx, id)
		if err != nil {
			return err
		}
		updated = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// deleteByID removes one row and reports ErrNotFound when nothing matched.
func deleteByID[T any](tx *gorm.DB, id int64) error {
	res := tx.Delete(new(T), id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ensureExists returns ErrInvalidReference unless a T with the given id exists.
func ensureExists[T any](tx *gorm.DB, id int64) error {
	var n int64
	if err := tx.Model(new(T)).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %T %d", ErrInvalidReference, *new(T), id)
	}
	return nil
}

// referenceCheck builds an update check for a foreign key column, if present.
func referenceCheck[T any](updates map[string]any, column string) func(tx *gorm.DB) error {
	return func(tx *gorm.DB) error {
		raw, ok := updates[column]
		if !ok {
			return nil
		}
		id, ok := raw.(int64)
		if !ok {
			return fmt.Errorf("%w: %s must be an integer id", ErrInvalidReference, column)
		}
		return ensureExists[T](tx, id)
	}
}
