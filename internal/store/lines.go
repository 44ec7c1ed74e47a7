package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"sparesmart-backend/internal/model"
)

func (s *gormStore) ListLines(ctx context.Context) ([]model.Line, error) {
	var lines []model.Line
	if err := s.db.WithContext(ctx).Order("name").Order("id").Find(&lines).Error; err != nil {
		return nil, fmt.Errorf("failed to list lines: %w", err)
	}
	return lines, nil
}

func (s *gormStore) GetLine(ctx context.Context, id int64) (*model.Line, error) {
	return getByID[model.Line](ctx, s.db, id)
}

func (s *gormStore) CreateLine(ctx context.Context, line *model.Line) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUniqueLineName(tx, line.Name, 0); err != nil {
			return err
		}
		if err := tx.Create(line).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: line %q", ErrDuplicate, line.Name)
			}
			return fmt.Errorf("failed to create line %q: %w", line.Name, err)
		}
		return nil
	})
}

func (s *gormStore) UpdateLine(ctx context.Context, id int64, updates map[string]any) (*model.Line, error) {
	return updateByID[model.Line](ctx, s.db, id, updates, func(tx *gorm.DB) error {
		name, ok := updates["name"].(string)
		if !ok {
			return nil
		}
		return ensureUniqueLineName(tx, name, id)
	})
}

// ensureUniqueLineName fails with ErrDuplicate when another line has the name.
func ensureUniqueLineName(tx *gorm.DB, name string, exceptID int64) error {
	var n int64
	if err := tx.Model(&model.Line{}).Where("name = ? AND id <> ?", name, exceptID).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: line %q", ErrDuplicate, name)
	}
	return nil
}

// DeleteLine removes a line together with its machines, their parts, its
// checkweighers and any subscription mappings pointing at it.
func (s *gormStore) DeleteLine(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		machineIDs := tx.Model(&model.Machine{}).Select("id").Where("line_id = ?", id)
		if err := tx.Where("machine_id IN (?)", machineIDs).Delete(&model.Part{}).Error; err != nil {
			return fmt.Errorf("failed to delete parts of line %d: %w", id, err)
		}
		if err := tx.Where("line_id = ?", id).Delete(&model.Machine{}).Error; err != nil {
			return fmt.Errorf("failed to delete machines of line %d: %w", id, err)
		}
		if err := tx.Where("line_id = ?", id).Delete(&model.Checkweigher{}).Error; err != nil {
			return fmt.Errorf("failed to delete checkweighers of line %d: %w", id, err)
		}
		if err := tx.Exec("DELETE FROM subscription_line_mapping WHERE line_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete subscription mappings of line %d: %w", id, err)
		}
		return deleteByID[model.Line](tx, id)
	})
}
