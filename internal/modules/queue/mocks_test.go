package queue

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"karaoke/internal/domain"
	"karaoke/internal/repository"
)

type mockSongRepo struct {
	mock.Mock
}

func (m *mockSongRepo) Create(ctx context.Context, s *domain.Song) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockSongRepo) GetByID(ctx context.Context, id int64) (*domain.Song, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Song), args.Error(1)
}

func (m *mockSongRepo) ListByGuest(ctx context.Context, guestID int64) ([]domain.Song, error) {
	args := m.Called(ctx, guestID)
	return args.Get(0).([]domain.Song), args.Error(1)
}

func (m *mockSongRepo) ListByStatus(ctx context.Context, statuses ...domain.SongStatus) ([]domain.Song, error) {
	args := m.Called(ctx, statuses)
	return args.Get(0).([]domain.Song), args.Error(1)
}

func (m *mockSongRepo) GetPlaying(ctx context.Context) (*domain.Song, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Song), args.Error(1)
}

func (m *mockSongRepo) ExistsActiveTrack(ctx context.Context, tableID *int64, trackID string) (bool, error) {
	args := m.Called(ctx, tableID, trackID)
	return args.Bool(0), args.Error(1)
}

func (m *mockSongRepo) Approve(ctx context.Context, id int64, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *mockSongRepo) Reject(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockSongRepo) MarkPlaying(ctx context.Context, id int64, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *mockSongRepo) Finish(ctx context.Context, id int64, at time.Time, score int) (bool, error) {
	args := m.Called(ctx, id, at, score)
	return args.Bool(0), args.Error(1)
}

func (m *mockSongRepo) StalePending(ctx context.Context, cutoff time.Time, limit int) ([]domain.Song, error) {
	args := m.Called(ctx, cutoff, limit)
	return args.Get(0).([]domain.Song), args.Error(1)
}

func (m *mockSongRepo) SetManualOrder(ctx context.Context, id int64, rank *int) error {
	return m.Called(ctx, id, rank).Error(0)
}

func (m *mockSongRepo) ReorderManual(ctx context.Context, ids []int64) error {
	return m.Called(ctx, ids).Error(0)
}

func (m *mockSongRepo) MinManualOrder(ctx context.Context) (int, bool, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Bool(1), args.Error(2)
}

func (m *mockSongRepo) SumDuration(ctx context.Context, status domain.SongStatus) (int, error) {
	args := m.Called(ctx, status)
	return args.Int(0), args.Error(1)
}

func (m *mockSongRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockSongRepo) TopSung(ctx context.Context, limit int) ([]repository.TopSongRow, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]repository.TopSongRow), args.Error(1)
}

// staticTiers is a TierSource pinned to a fixed map.
type staticTiers map[int64]domain.SpendTier

func (s staticTiers) TableTiers(context.Context) (map[int64]domain.SpendTier, error) {
	return s, nil
}

// recordingNotifier counts broadcasts so tests can assert on fan-out
// without a websocket in the loop.
type recordingNotifier struct {
	queueChanged int
	played       []string
	finished     []string
}

func (n *recordingNotifier) QueueChanged(any) { n.queueChanged++ }

func (n *recordingNotifier) PlaySong(trackID string) { n.played = append(n.played, trackID) }

func (n *recordingNotifier) SongFinished(title, performer string, score int) {
	n.finished = append(n.finished, title)
}
