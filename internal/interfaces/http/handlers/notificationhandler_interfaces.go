package handlers

import (
	"context"

	"tgnotify/internal/application/notification/dto"
)

// notificationService is the subset of notification.Service the handlers use.
type notificationService interface {
	Notify(ctx context.Context, cmd dto.NotifyCommand) (*dto.NotifyResponse, error)
	RecentDeliveries(ctx context.Context, limit int) (*dto.DeliveryListResponse, error)
}
