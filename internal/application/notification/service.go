package notification

import (
	"context"

	"tgnotify/internal/application/notification/dto"
	"tgnotify/internal/application/notification/usecases"
	"tgnotify/internal/shared/logger"
)

// Service is the entry point the HTTP handlers use.
type Service struct {
	logger logger.Interface

	sendNotification *usecases.SendNotificationUseCase
	listDeliveries   *usecases.ListDeliveriesUseCase
}

func NewService(
	sender usecases.MessageSender,
	throttle usecases.ThrottleChecker,
	repo usecases.DeliveryRepository,
	renderer usecases.TextRenderer,
	logger logger.Interface,
) *Service {
	return &Service{
		logger: logger,

		sendNotification: usecases.NewSendNotificationUseCase(sender, throttle, repo, renderer, logger),
		listDeliveries:   usecases.NewListDeliveriesUseCase(repo, logger),
	}
}

// Notify validates, formats and forwards one submission.
func (s *Service) Notify(ctx context.Context, cmd dto.NotifyCommand) (*dto.NotifyResponse, error) {
	return s.sendNotification.Execute(ctx, cmd)
}

// RecentDeliveries lists the delivery log newest first.
func (s *Service) RecentDeliveries(ctx context.Context, limit int) (*dto.DeliveryListResponse, error) {
	return s.listDeliveries.Execute(ctx, limit)
}
