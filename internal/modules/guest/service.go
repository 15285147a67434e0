package guest

import (
	"context"
	"errors"
	"log"

	"karaoke/internal/domain"
	"karaoke/internal/repository"
)

type Service struct {
	guests GuestRepository
	songs  SongRepository
}

func NewService(guests GuestRepository, songs SongRepository) *Service {
	return &Service{guests: guests, songs: songs}
}

func (s *Service) Profile(ctx context.Context, guestID int64) (*domain.Guest, error) {
	g, err := s.guests.GetByID(ctx, guestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return g, nil
}

func (s *Service) ListByTable(ctx context.Context, tableID int64) ([]domain.Guest, error) {
	return s.guests.ListByTable(ctx, tableID)
}

// Ranking lists guests by lifetime consumption, highest first.
func (s *Service) Ranking(ctx context.Context) ([]repository.GuestRankingRow, error) {
	return s.guests.Ranking(ctx)
}

// Silence blocks the guest from submitting song requests. Already queued
// songs stay; silencing is about future requests only.
func (s *Service) Silence(ctx context.Context, guestID int64, silenced bool) error {
	err := s.guests.SetSilenced(ctx, guestID, silenced)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// Evict removes a guest from the night entirely: the nickname is banned
// from rejoining, every live song request is rejected and the guest row
// is deleted. Sung history and consumption lines stay for reporting.
func (s *Service) Evict(ctx context.Context, guestID int64, reason string) error {
	g, err := s.guests.GetByID(ctx, guestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := s.guests.BanNick(ctx, g.Nick, reason); err != nil {
		return err
	}

	songs, err := s.songs.ListByGuest(ctx, guestID)
	if err != nil {
		return err
	}
	for _, song := range songs {
		if song.Status.Terminal() || song.Status == domain.SongPlaying {
			continue
		}
		if _, err := s.songs.Reject(ctx, song.ID); err != nil {
			log.Printf("guest: rejecting song %d during eviction: %v", song.ID, err)
		}
	}

	return s.guests.Delete(ctx, guestID)
}
