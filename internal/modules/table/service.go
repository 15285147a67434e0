package table

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"karaoke/internal/domain"
	"karaoke/internal/pkg/clock"
	"karaoke/internal/pkg/validator"
	"karaoke/internal/repository"
)

// blockedNickWords is the static profanity filter applied on top of the
// per-night ban list.
var blockedNickWords = []string{
	"admin", "dj", "staff", "mesero", "puta", "puto", "mierda", "pendejo",
}

type Service struct {
	tables TableRepository
	guests GuestRepository
	tokens TokenIssuer
	clock  clock.Clock
}

func NewService(tables TableRepository, guests GuestRepository, tokens TokenIssuer, clk clock.Clock) *Service {
	return &Service{tables: tables, guests: guests, tokens: tokens, clock: clk}
}

// CreateTable registers a table with a fresh random join code. The code
// is what the printed QR encodes.
func (s *Service) CreateTable(ctx context.Context, name string) (*domain.Table, error) {
	t := &domain.Table{
		Name:     name,
		JoinCode: uuid.NewString(),
		Active:   true,
	}
	if err := s.tables.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Table, error) {
	return s.tables.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Table, error) {
	t, err := s.tables.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *Service) SetActive(ctx context.Context, id int64, active bool) error {
	err := s.tables.SetActive(ctx, id, active)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// Join resolves a scanned join code into a guest session. The nickname
// must pass the profanity filter, not be banned and not be in use
// anywhere tonight.
func (s *Service) Join(ctx context.Context, req JoinRequest) (*JoinResponse, error) {
	t, err := s.tables.GetByJoinCode(ctx, req.JoinCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !t.Active {
		return nil, ErrTableInactive
	}

	nick := strings.TrimSpace(req.Nick)
	if !nickAllowed(nick) {
		return nil, ErrNickInvalid
	}
	banned, err := s.guests.IsNickBanned(ctx, nick)
	if err != nil {
		return nil, err
	}
	if banned {
		return nil, ErrNickBanned
	}

	guest := &domain.Guest{
		Nick:       nick,
		Tier:       domain.TierBronze,
		TableID:    &t.ID,
		LastActive: s.clock.Now(),
	}
	if errs := validator.Validate(guest); errs != nil {
		return nil, ErrNickInvalid
	}
	if err := s.guests.Create(ctx, guest); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrNickTaken
		}
		return nil, err
	}

	token, err := s.tokens.GenerateToken(guest.ID, t.ID, "guest")
	if err != nil {
		return nil, err
	}
	return &JoinResponse{Token: token, Guest: guest, Table: t}, nil
}

func nickAllowed(nick string) bool {
	if len(nick) < 2 || len(nick) > 32 {
		return false
	}
	lower := strings.ToLower(nick)
	for _, word := range blockedNickWords {
		if lower == word || strings.Contains(lower, word) {
			return false
		}
	}
	return true
}
