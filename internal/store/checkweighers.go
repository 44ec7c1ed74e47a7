package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"sparesmart-backend/internal/model"
)

func (s *gormStore) ListCheckweighers(ctx context.Context, filter CheckweigherFilter) ([]model.Checkweigher, error) {
	q := s.db.WithContext(ctx).Order("name").Order("id")
	if filter.LineID != 0 {
		q = q.Where("line_id = ?", filter.LineID)
	}

	var cws []model.Checkweigher
	if err := q.Find(&cws).Error; err != nil {
		return nil, fmt.Errorf("failed to list checkweighers: %w", err)
	}
	return cws, nil
}

func (s *gormStore) GetCheckweigher(ctx context.Context, id int64) (*model.Checkweigher, error) {
	return getByID[model.Checkweigher](ctx, s.db, id)
}

func (s *gormStore) CreateCheckweigher(ctx context.Context, cw *model.Checkweigher) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists[model.Line](tx, cw.LineID); err != nil {
			return err
		}
		if err := tx.Create(cw).Error; err != nil {
			return fmt.Errorf("failed to create checkweigher %q: %w", cw.Name, err)
		}
		return nil
	})
}

func (s *gormStore) UpdateCheckweigher(ctx context.Context, id int64, updates map[string]any) (*model.Checkweigher, error) {
	return updateByID[model.Checkweigher](ctx, s.db, id, updates, referenceCheck[model.Line](updates, "line_id"))
}

func (s *gormStore) DeleteCheckweigher(ctx context.Context, id int64) error {
	return deleteByID[model.Checkweigher](s.db.WithContext(ctx), id)
}
