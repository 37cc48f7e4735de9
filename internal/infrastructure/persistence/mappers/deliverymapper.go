package mappers

import (
	"fmt"

	"tgnotify/internal/domain/delivery"
	vo "tgnotify/internal/domain/delivery/valueobjects"
	"tgnotify/internal/infrastructure/persistence/models"
)

type DeliveryMapper interface {
	ToEntity(model *models.DeliveryModel) (*delivery.Delivery, error)
	ToModel(entity *delivery.Delivery) *models.DeliveryModel
	ToEntities(models []*models.DeliveryModel) ([]*delivery.Delivery, error)
}

type DeliveryMapperImpl struct{}

func NewDeliveryMapper() DeliveryMapper {
	return &DeliveryMapperImpl{}
}

func (m *DeliveryMapperImpl) ToEntity(model *models.DeliveryModel) (*delivery.Delivery, error) {
	if model == nil {
		return nil, nil
	}

	status, err := vo.NewStatus(model.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to create delivery status: %w", err)
	}

	entity, err := delivery.ReconstructDelivery(
		model.ID,
		vo.Kind(model.Kind),
		model.ChatID,
		model.ClientIP,
		status,
		model.Parts,
		model.Error,
		model.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct delivery entity: %w", err)
	}

	return entity, nil
}

func (m *DeliveryMapperImpl) ToModel(entity *delivery.Delivery) *models.DeliveryModel {
	if entity == nil {
		return nil
	}

	return &models.DeliveryModel{
		ID:        entity.ID(),
		Kind:      entity.Kind().String(),
		ChatID:    entity.ChatID(),
		ClientIP:  entity.ClientIP(),
		Status:    entity.Status().String(),
		Parts:     entity.Parts(),
		Error:     entity.Error(),
		CreatedAt: entity.CreatedAt(),
	}
}

func (m *DeliveryMapperImpl) ToEntities(modelList []*models.DeliveryModel) ([]*delivery.Delivery, error) {
	entities := make([]*delivery.Delivery, 0, len(modelList))
	for _, model := range modelList {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
