package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sparesmart-backend/internal/model"
)

// PutSubscription creates or replaces a subscription and the set of lines it follows.
func (s *gormStore) PutSubscription(ctx context.Context, sub *model.PushSubscription, lineIDs []int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Create(sub).Error; err != nil {
			return fmt.Errorf("failed to upsert subscription: %w", err)
		}

		lines := make([]*model.Line, 0, len(lineIDs))
		if len(lineIDs) > 0 {
			if err := tx.Find(&lines, lineIDs).Error; err != nil {
				return err
			}
			if len(lines) != len(uniqueIDs(lineIDs)) {
				return fmt.Errorf("%w: subscribed line does not exist", ErrInvalidReference)
			}
		}

		if err := tx.Model(sub).Association("Lines").Replace(lines); err != nil {
			return fmt.Errorf("failed to replace subscribed lines: %w", err)
		}
		sub.Lines = lines
		return nil
	})
}

func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	if err := s.db.WithContext(ctx).Preload("Lines").First(&sub, "endpoint = ?", endpoint).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM subscription_line_mapping WHERE push_subscription_endpoint = ?", endpoint).Error; err != nil {
			return err
		}
		res := tx.Where("endpoint = ?", endpoint).Delete(&model.PushSubscription{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// SubscriptionsForLine returns every subscription following the given line.
func (s *gormStore) SubscriptionsForLine(ctx context.Context, lineID int64) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	err := s.db.WithContext(ctx).
		Joins("JOIN subscription_line_mapping slm ON slm.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("slm.line_id = ?", lineID).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load subscriptions for line %d: %w", lineID, err)
	}
	return subs, nil
}

func uniqueIDs(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
