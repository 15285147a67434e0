package table

import (
	"context"

	"karaoke/internal/domain"
)

type TableRepository interface {
	Create(ctx context.Context, t *domain.Table) error
	GetByID(ctx context.Context, id int64) (*domain.Table, error)
	GetByJoinCode(ctx context.Context, code string) (*domain.Table, error)
	List(ctx context.Context) ([]domain.Table, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

type GuestRepository interface {
	Create(ctx context.Context, g *domain.Guest) error
	IsNickBanned(ctx context.Context, nick string) (bool, error)
}

// TokenIssuer mints the guest session credential on a successful join.
type TokenIssuer interface {
	GenerateToken(guestID, tableID int64, role string) (string, error)
}
