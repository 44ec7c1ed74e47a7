package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"sparesmart-backend/internal/model"
)

func (s *gormStore) ListParts(ctx context.Context, filter PartFilter) ([]model.Part, error) {
	q := s.db.WithContext(ctx).Order("name").Order("id")
	if filter.MachineID != 0 {
		q = q.Where("machine_id = ?", filter.MachineID)
	}
	if filter.LineID != 0 {
		q = q.Where("machine_id IN (?)", s.db.Model(&model.Machine{}).Select("id").Where("line_id = ?", filter.LineID))
	}
	if filter.LowStockOnly {
		q = q.Where("stock_quantity < min_stock_level")
	}

	var parts []model.Part
	if err := q.Find(&parts).Error; err != nil {
		return nil, fmt.Errorf("failed to list parts: %w", err)
	}
	return parts, nil
}

func (s *gormStore) GetPart(ctx context.Context, id int64) (*model.Part, error) {
	return getByID[model.Part](ctx, s.db, id)
}

func (s *gormStore) CreatePart(ctx context.Context, part *model.Part) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists[model.Machine](tx, part.MachineID); err != nil {
			return err
		}
		if err := tx.Create(part).Error; err != nil {
			return fmt.Errorf("failed to create part %q: %w", part.Name, err)
		}
		return nil
	})
}

func (s *gormStore) UpdatePart(ctx context.Context, id int64, updates map[string]any) (*model.Part, error) {
	return updateByID[model.Part](ctx, s.db, id, updates, referenceCheck[model.Machine](updates, "machine_id"))
}

func (s *gormStore) DeletePart(ctx context.Context, id int64) error {
	return deleteByID[model.Part](s.db.WithContext(ctx), id)
}
