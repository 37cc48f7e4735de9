package usecases

import (
	"context"

	"tgnotify/internal/application/notification/dto"
	"tgnotify/internal/shared/errors"
	"tgnotify/internal/shared/logger"
)

type ListDeliveriesUseCase struct {
	repo   DeliveryRepository
	logger logger.Interface
}

func NewListDeliveriesUseCase(repo DeliveryRepository, logger logger.Interface) *ListDeliveriesUseCase {
	return &ListDeliveriesUseCase{
		repo:   repo,
		logger: logger,
	}
}

func (uc *ListDeliveriesUseCase) Execute(ctx context.Context, limit int) (*dto.DeliveryListResponse, error) {
	if uc.repo == nil {
		return nil, errors.NewServiceUnavailableError("Delivery log is disabled", 0)
	}

	list, err := uc.repo.ListRecent(ctx, limit)
	if err != nil {
		uc.logger.Errorw("failed to list deliveries", "error", err)
		return nil, errors.NewInternalError("Failed to list deliveries")
	}

	counts, err := uc.repo.CountByStatus(ctx)
	if err != nil {
		uc.logger.Errorw("failed to count deliveries", "error", err)
		return nil, errors.NewInternalError("Failed to list deliveries")
	}

	return &dto.DeliveryListResponse{
		Items:  dto.ToDeliveryResponses(list),
		Counts: counts,
	}, nil
}
