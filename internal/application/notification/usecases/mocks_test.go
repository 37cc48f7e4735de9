package usecases

import (
	"context"
	"sync"

	"tgnotify/internal/domain/delivery"
	"tgnotify/internal/infrastructure/ratelimit"
)

type mockSender struct {
	chatID   int64
	sendFunc func(ctx context.Context, chatID int64, text string) (int, error)
	texts    []string
}

func (m *mockSender) DefaultChatID() int64 { return m.chatID }

func (m *mockSender) SendLongMessage(ctx context.Context, chatID int64, text string) (int, error) {
	m.texts = append(m.texts, text)
	if m.sendFunc != nil {
		return m.sendFunc(ctx, chatID, text)
	}
	return 1, nil
}

type mockThrottle struct {
	result ratelimit.Result
	err    error
	cfg    ratelimit.Config
	keys   []string
}

func (m *mockThrottle) Check(_ context.Context, identifier string) (ratelimit.Result, error) {
	m.keys = append(m.keys, identifier)
	return m.result, m.err
}

func (m *mockThrottle) Config() ratelimit.Config { return m.cfg }

type mockDeliveryRepo struct {
	mu         sync.Mutex
	deliveries []*delivery.Delivery
	createErr  error
	listFunc   func(ctx context.Context, limit int) ([]*delivery.Delivery, error)
	counts     map[string]int64
}

func (m *mockDeliveryRepo) Create(_ context.Context, d *delivery.Delivery) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deliveries = append(m.deliveries, d)
	return d.SetID(uint(len(m.deliveries)))
}

func (m *mockDeliveryRepo) ListRecent(ctx context.Context, limit int) ([]*delivery.Delivery, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit)
	}
	return m.deliveries, nil
}

func (m *mockDeliveryRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	return m.counts, nil
}
