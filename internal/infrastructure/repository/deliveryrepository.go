package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"tgnotify/internal/domain/delivery"
	"tgnotify/internal/infrastructure/persistence/mappers"
	"tgnotify/internal/infrastructure/persistence/models"
	"tgnotify/internal/shared/constants"
)

type DeliveryRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.DeliveryMapper
}

func NewDeliveryRepository(db *gorm.DB) delivery.Repository {
	return &DeliveryRepositoryImpl{
		db:     db,
		mapper: mappers.NewDeliveryMapper(),
	}
}

func (r *DeliveryRepositoryImpl) Create(ctx context.Context, d *delivery.Delivery) error {
	model := r.mapper.ToModel(d)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create delivery: %w", err)
	}

	if err := d.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set delivery ID: %w", err)
	}

	return nil
}

// ListRecent returns up to limit deliveries, newest first.
func (r *DeliveryRepositoryImpl) ListRecent(ctx context.Context, limit int) ([]*delivery.Delivery, error) {
	if limit <= 0 {
		limit = constants.DefaultDeliveryLimit
	}
	if limit > constants.MaxDeliveryLimit {
		limit = constants.MaxDeliveryLimit
	}

	var modelList []*models.DeliveryModel
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&modelList).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list deliveries: %w", err)
	}

	entities, err := r.mapper.ToEntities(modelList)
	if err != nil {
		return nil, fmt.Errorf("failed to map delivery models to entities: %w", err)
	}

	return entities, nil
}

func (r *DeliveryRepositoryImpl) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Total  int64
	}

	err := r.db.WithContext(ctx).
		Model(&models.DeliveryModel{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count deliveries: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}
