package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"sparesmart-backend/internal/model"
)

func (s *gormStore) ListMachines(ctx context.Context, filter MachineFilter) ([]model.Machine, error) {
	q := s.db.WithContext(ctx).Order("name").Order("id")
	if filter.LineID != 0 {
		q = q.Where("line_id = ?", filter.LineID)
	}

	var machines []model.Machine
	if err := q.Find(&machines).Error; err != nil {
		return nil, fmt.Errorf("failed to list machines: %w", err)
	}
	return machines, nil
}

func (s *gormStore) GetMachine(ctx context.Context, id int64) (*model.Machine, error) {
	return getByID[model.Machine](ctx, s.db, id)
}

func (s *gormStore) CreateMachine(ctx context.Context, machine *model.Machine) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists[model.Line](tx, machine.LineID); err != nil {
			return err
		}
		if err := tx.Create(machine).Error; err != nil {
			return fmt.Errorf("failed to create machine %q: %w", machine.Name, err)
		}
		return nil
	})
}

func (s *gormStore) UpdateMachine(ctx context.Context, id int64, updates map[string]any) (*model.Machine, error) {
	return updateByID[model.Machine](ctx, s.db, id, updates, referenceCheck[model.Line](updates, "line_id"))
}

// DeleteMachine removes a machine and every part held against it.
func (s *gormStore) DeleteMachine(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("machine_id = ?", id).Delete(&model.Part{}).Error; err != nil {
			return fmt.Errorf("failed to delete parts of machine %d: %w", id, err)
		}
		return deleteByID[model.Machine](tx, id)
	})
}
