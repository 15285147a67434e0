package queue

import (
	"context"
	"time"

	"karaoke/internal/domain"
	"karaoke/internal/repository"
)

// SongRepository is the persistence surface the queue needs. The
// conditional-update methods (Approve, MarkPlaying, Finish) return false
// when the guarded state precondition did not hold.
type SongRepository interface {
	Create(ctx context.Context, s *domain.Song) error
	GetByID(ctx context.Context, id int64) (*domain.Song, error)
	ListByGuest(ctx context.Context, guestID int64) ([]domain.Song, error)
	ListByStatus(ctx context.Context, statuses ...domain.SongStatus) ([]domain.Song, error)
	GetPlaying(ctx context.Context) (*domain.Song, error)
	ExistsActiveTrack(ctx context.Context, tableID *int64, trackID string) (bool, error)
	Approve(ctx context.Context, id int64, at time.Time) (bool, error)
	Reject(ctx context.Context, id int64) (bool, error)
	MarkPlaying(ctx context.Context, id int64, at time.Time) (bool, error)
	Finish(ctx context.Context, id int64, at time.Time, score int) (bool, error)
	StalePending(ctx context.Context, cutoff time.Time, limit int) ([]domain.Song, error)
	SetManualOrder(ctx context.Context, id int64, rank *int) error
	ReorderManual(ctx context.Context, ids []int64) error
	MinManualOrder(ctx context.Context) (int, bool, error)
	SumDuration(ctx context.Context, status domain.SongStatus) (int, error)
	Delete(ctx context.Context, id int64) error
	TopSung(ctx context.Context, limit int) ([]repository.TopSongRow, error)
}

type GuestRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Guest, error)
	GetOrCreateDJ(ctx context.Context) (*domain.Guest, error)
	AddPoints(ctx context.Context, id int64, delta int) error
}

// TierSource exposes the ledger-derived spend tier per table, which sets
// each table's per-round song quota.
type TierSource interface {
	TableTiers(ctx context.Context) (map[int64]domain.SpendTier, error)
}

// Notifier is the realtime fan-out collaborator. All calls are fire and
// forget; the queue never fails a state transition over a notification.
type Notifier interface {
	QueueChanged(queueView any)
	PlaySong(trackID string)
	SongFinished(title, performer string, score int)
}

// Scorer grades a finished performance, 0..100. Best effort: errors and
// timeouts degrade to score 0.
type Scorer interface {
	Score(ctx context.Context, trackID, recordingPath string) (int, error)
}

// RecordingLocator resolves the uploaded recording for a song, ok=false
// when the guest never recorded one.
type RecordingLocator interface {
	Locate(songID int64) (string, bool)
}
