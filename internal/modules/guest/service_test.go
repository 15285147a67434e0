package guest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"karaoke/internal/domain"
	"karaoke/internal/repository"
)

type mockGuestRepo struct {
	mock.Mock
}

func (m *mockGuestRepo) GetByID(ctx context.Context, id int64) (*domain.Guest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Guest), args.Error(1)
}

func (m *mockGuestRepo) ListByTable(ctx context.Context, tableID int64) ([]domain.Guest, error) {
	args := m.Called(ctx, tableID)
	return args.Get(0).([]domain.Guest), args.Error(1)
}

func (m *mockGuestRepo) SetSilenced(ctx context.Context, id int64, silenced bool) error {
	return m.Called(ctx, id, silenced).Error(0)
}

func (m *mockGuestRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockGuestRepo) BanNick(ctx context.Context, nick, reason string) error {
	return m.Called(ctx, nick, reason).Error(0)
}

func (m *mockGuestRepo) Ranking(ctx context.Context) ([]repository.GuestRankingRow, error) {
	args := m.Called(ctx)
	return args.Get(0).([]repository.GuestRankingRow), args.Error(1)
}

type mockSongRepo struct {
	mock.Mock
}

func (m *mockSongRepo) ListByGuest(ctx context.Context, guestID int64) ([]domain.Song, error) {
	args := m.Called(ctx, guestID)
	return args.Get(0).([]domain.Song), args.Error(1)
}

func (m *mockSongRepo) Reject(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func TestEvictBansRejectsAndDeletes(t *testing.T) {
	guests := new(mockGuestRepo)
	songs := new(mockSongRepo)
	svc := NewService(guests, songs)

	guests.On("GetByID", mock.Anything, int64(5)).
		Return(&domain.Guest{ID: 5, Nick: "troll"}, nil)
	guests.On("BanNick", mock.Anything, "troll", "abuse").Return(nil)
	songs.On("ListByGuest", mock.Anything, int64(5)).Return([]domain.Song{
		{ID: 1, Status: domain.SongPending},
		{ID: 2, Status: domain.SongApproved},
		{ID: 3, Status: domain.SongSung},
		{ID: 4, Status: domain.SongPlaying},
	}, nil)
	songs.On("Reject", mock.Anything, int64(1)).Return(true, nil)
	songs.On("Reject", mock.Anything, int64(2)).Return(true, nil)
	guests.On("Delete", mock.Anything, int64(5)).Return(nil)

	require.NoError(t, svc.Evict(context.Background(), 5, "abuse"))

	// terminal and on-stage songs are left alone
	songs.AssertNotCalled(t, "Reject", mock.Anything, int64(3))
	songs.AssertNotCalled(t, "Reject", mock.Anything, int64(4))
	guests.AssertExpectations(t)
	songs.AssertExpectations(t)
}

func TestEvictUnknownGuest(t *testing.T) {
	guests := new(mockGuestRepo)
	svc := NewService(guests, new(mockSongRepo))

	guests.On("GetByID", mock.Anything, int64(9)).Return(nil, repository.ErrNotFound)

	assert.ErrorIs(t, svc.Evict(context.Background(), 9, ""), ErrNotFound)
}

func TestSilenceUnknownGuest(t *testing.T) {
	guests := new(mockGuestRepo)
	svc := NewService(guests, new(mockSongRepo))

	guests.On("SetSilenced", mock.Anything, int64(9), true).Return(repository.ErrNotFound)

	assert.ErrorIs(t, svc.Silence(context.Background(), 9, true), ErrNotFound)
}

func TestProfile(t *testing.T) {
	guests := new(mockGuestRepo)
	svc := NewService(guests, new(mockSongRepo))

	guests.On("GetByID", mock.Anything, int64(1)).
		Return(&domain.Guest{ID: 1, Nick: "ana", Points: 30}, nil)

	g, err := svc.Profile(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "ana", g.Nick)
	assert.Equal(t, 30, g.Points)
}
