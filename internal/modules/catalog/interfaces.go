package catalog

import (
	"context"

	"karaoke/internal/domain"
)

type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, offset, limit int) ([]domain.Product, error)
	UpdatePrice(ctx context.Context, id int64, price float64) error
	SetStock(ctx context.Context, id int64, stock int) error
	SetActive(ctx context.Context, id int64, active bool) error
}

// Notifier pushes catalog changes to connected menus.
type Notifier interface {
	ProductUpdate(product any)
}
