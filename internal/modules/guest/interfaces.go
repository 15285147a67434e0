package guest

import (
	"context"

	"karaoke/internal/domain"
	"karaoke/internal/repository"
)

type GuestRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Guest, error)
	ListByTable(ctx context.Context, tableID int64) ([]domain.Guest, error)
	SetSilenced(ctx context.Context, id int64, silenced bool) error
	Delete(ctx context.Context, id int64) error
	BanNick(ctx context.Context, nick, reason string) error
	Ranking(ctx context.Context) ([]repository.GuestRankingRow, error)
}

type SongRepository interface {
	ListByGuest(ctx context.Context, guestID int64) ([]domain.Song, error)
	Reject(ctx context.Context, id int64) (bool, error)
}
