package usecases

import (
	"context"

	"tgnotify/internal/domain/delivery"
	"tgnotify/internal/infrastructure/ratelimit"
)

// MessageSender delivers formatted HTML text to a Telegram chat.
type MessageSender interface {
	DefaultChatID() int64
	SendLongMessage(ctx context.Context, chatID int64, text string) (int, error)
}

// ThrottleChecker is the global limiter guarding the outbound Telegram rate.
type ThrottleChecker interface {
	Check(ctx context.Context, identifier string) (ratelimit.Result, error)
	Config() ratelimit.Config
}

type TextRenderer interface {
	ToTelegramHTML(markdown string) (string, error)
	StripTags(s string) string
}

type DeliveryRepository = delivery.Repository
