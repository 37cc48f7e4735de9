package delivery

import "context"

type Repository interface {
	Create(ctx context.Context, d *Delivery) error
	ListRecent(ctx context.Context, limit int) ([]*Delivery, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}
