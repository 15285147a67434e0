package queue

import (
	"context"
	"errors"
	"log"
	"time"

	"karaoke/internal/config"
	"karaoke/internal/domain"
	"karaoke/internal/pkg/clock"
	"karaoke/internal/repository"
)

const (
	// performanceBasePoints is awarded for finishing a song; the scorer
	// result (0..100) is added on top.
	performanceBasePoints = 10

	// stalePendingAfter is the safety net for unmoderated requests: any
	// song still pending after this long is force-approved.
	stalePendingAfter = 10 * time.Minute
	// stalePendingBatch caps how many stale songs one sweep approves.
	stalePendingBatch = 2

	// lazyElapsedFraction is how far the playing song must have advanced
	// before the next pending_lazy song is committed to the queue.
	lazyElapsedFraction = 0.5
)

// Service owns the shared playback slot and every transition around it.
type Service struct {
	songs      SongRepository
	guests     GuestRepository
	tiers      TierSource
	notifier   Notifier
	scorer     Scorer
	recordings RecordingLocator
	clock      clock.Clock
	settings   *config.Settings
	gate       *Gate
}

func NewService(
	songs SongRepository,
	guests GuestRepository,
	tiers TierSource,
	notifier Notifier,
	scorer Scorer,
	recordings RecordingLocator,
	clk clock.Clock,
	settings *config.Settings,
) *Service {
	return &Service{
		songs:      songs,
		guests:     guests,
		tiers:      tiers,
		notifier:   notifier,
		scorer:     scorer,
		recordings: recordings,
		clock:      clk,
		settings:   settings,
		gate:       NewGate(songs, clk, settings),
	}
}

// AdmitRequest validates and stores a new song request. Depending on the
// approval mode it lands approved, pending or pending_lazy. When the
// system is idle and autoplay is on, an approved admit starts playback.
func (s *Service) AdmitRequest(ctx context.Context, guestID int64, req AdmitSongRequest) (*domain.Song, error) {
	guest, err := s.guests.GetByID(ctx, guestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.gate.CanAdmit(ctx, guest, req.TrackID, req.DurationSeconds); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	song := &domain.Song{
		TrackID:         req.TrackID,
		Title:           req.Title,
		DurationSeconds: req.DurationSeconds,
		GuestID:         guest.ID,
		TableID:         guest.TableID,
		CreatedAt:       now,
	}
	switch s.settings.ApprovalMode() {
	case config.ApprovalLazy:
		song.Status = domain.SongPendingLazy
	case config.ApprovalManual:
		song.Status = domain.SongPending
	default:
		song.Status = domain.SongApproved
		song.ApprovedAt = &now
	}

	if err := s.songs.Create(ctx, song); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// lost the admit race to another guest at the same table
			return nil, ErrDuplicateInTable
		}
		return nil, err
	}

	s.notifyQueueChanged(ctx)
	if song.Status == domain.SongApproved {
		s.autoplayIfIdle(ctx)
	}
	return song, nil
}

// AdminAddSong inserts an operator pick through the DJ pseudo-guest,
// bypassing the admission gate.
func (s *Service) AdminAddSong(ctx context.Context, req AdmitSongRequest) (*domain.Song, error) {
	dj, err := s.guests.GetOrCreateDJ(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	song := &domain.Song{
		TrackID:         req.TrackID,
		Title:           req.Title,
		DurationSeconds: req.DurationSeconds,
		Status:          domain.SongApproved,
		GuestID:         dj.ID,
		CreatedAt:       now,
		ApprovedAt:      &now,
	}
	if err := s.songs.Create(ctx, song); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateInTable
		}
		return nil, err
	}

	s.notifyQueueChanged(ctx)
	s.autoplayIfIdle(ctx)
	return song, nil
}

// Approve promotes a pending or pending_lazy song into the queue.
func (s *Service) Approve(ctx context.Context, songID int64) (*domain.Song, error) {
	song, err := s.getSong(ctx, songID)
	if err != nil {
		return nil, err
	}
	if song.Status.Terminal() {
		return nil, ErrInvalidState
	}

	ok, err := s.songs.Approve(ctx, songID, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidState
	}

	s.notifyQueueChanged(ctx)
	s.autoplayIfIdle(ctx)
	return s.getSong(ctx, songID)
}

// Reject refuses a song that has not played yet.
func (s *Service) Reject(ctx context.Context, songID int64) (*domain.Song, error) {
	song, err := s.getSong(ctx, songID)
	if err != nil {
		return nil, err
	}
	if song.Status.Terminal() || song.Status == domain.SongPlaying {
		return nil, ErrInvalidState
	}

	ok, err := s.songs.Reject(ctx, songID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidState
	}

	s.notifyQueueChanged(ctx)
	return s.getSong(ctx, songID)
}

// Advance moves the playback slot forward: the playing song (if any) is
// finished, scored and rewarded, then the fairness head of the approved
// pool goes on stage. With nothing queued the system goes idle; the call
// is a no-op that still notifies viewers so stale UIs clear.
func (s *Service) Advance(ctx context.Context) (*domain.Song, error) {
	now := s.clock.Now()

	finished, err := s.songs.GetPlaying(ctx)
	if err != nil {
		return nil, err
	}
	if finished != nil {
		score := s.scorePerformance(ctx, finished)
		ok, err := s.songs.Finish(ctx, finished.ID, now, score)
		if err != nil {
			return nil, err
		}
		if ok {
			if err := s.guests.AddPoints(ctx, finished.GuestID, performanceBasePoints+score); err != nil {
				log.Printf("queue: awarding points for song %d: %v", finished.ID, err)
			}
			performer := ""
			if g, err := s.guests.GetByID(ctx, finished.GuestID); err == nil {
				performer = g.Nick
			}
			if s.notifier != nil {
				s.notifier.SongFinished(finished.Title, performer, score)
			}
		}
	}

	var started *domain.Song
	ranked, err := s.rankedApproved(ctx)
	if err != nil {
		return nil, err
	}
	if len(ranked) > 0 {
		head := ranked[0]
		// Conditional promotion: only succeeds while no song is playing,
		// so concurrent Advance calls cannot double-promote.
		ok, err := s.songs.MarkPlaying(ctx, head.ID, now)
		if err != nil {
			return nil, err
		}
		if ok {
			head.Status = domain.SongPlaying
			head.StartedAt = &now
			started = &head
			if s.notifier != nil {
				s.notifier.PlaySong(head.TrackID)
			}
		}
	}

	s.notifyQueueChanged(ctx)
	return started, nil
}

// MoveToFront gives the song a manual rank below the current minimum,
// making it the absolute head of the queue.
func (s *Service) MoveToFront(ctx context.Context, songID int64) error {
	song, err := s.getSong(ctx, songID)
	if err != nil {
		return err
	}
	if song.Status != domain.SongApproved {
		return ErrNotFound
	}

	rank := 1
	if min, ok, err := s.songs.MinManualOrder(ctx); err != nil {
		return err
	} else if ok {
		rank = min - 1
	}
	if err := s.songs.SetManualOrder(ctx, songID, &rank); err != nil {
		return err
	}

	s.notifyQueueChanged(ctx)
	return nil
}

// SetManualOrder replaces all override ranks: listed songs get rank =
// position+1, everything else reverts to automatic ordering after them.
func (s *Service) SetManualOrder(ctx context.Context, songIDs []int64) error {
	if err := s.songs.ReorderManual(ctx, songIDs); err != nil {
		return err
	}
	s.notifyQueueChanged(ctx)
	return nil
}

// OrderedQueue is the public queue view. The order is recomputed from
// scratch on every call; it is never persisted.
func (s *Service) OrderedQueue(ctx context.Context) (*QueueView, error) {
	playing, err := s.songs.GetPlaying(ctx)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.rankedApproved(ctx)
	if err != nil {
		return nil, err
	}
	return &QueueView{NowPlaying: playing, Upcoming: upcoming}, nil
}

// EstimateWait returns the seconds until the song reaches the stage:
// remaining time of the playing song plus every ranked song before the
// target. ErrNotQueued when the song is neither playing nor approved.
func (s *Service) EstimateWait(ctx context.Context, songID int64) (int, error) {
	now := s.clock.Now()

	var total float64
	playing, err := s.songs.GetPlaying(ctx)
	if err != nil {
		return 0, err
	}
	if playing != nil {
		if playing.ID == songID {
			return 0, nil
		}
		var elapsed float64
		if playing.StartedAt != nil {
			elapsed = now.Sub(*playing.StartedAt).Seconds()
		}
		if remaining := float64(playing.DurationSeconds) - elapsed; remaining > 0 {
			total += remaining
		}
	}

	ranked, err := s.rankedApproved(ctx)
	if err != nil {
		return 0, err
	}
	for _, song := range ranked {
		if song.ID == songID {
			return int(total), nil
		}
		total += float64(song.DurationSeconds)
	}

	return -1, ErrNotQueued
}

// CheckAndApproveNextLazy commits the fairness head of the pending_lazy
// pool once the playing song is at least half done and nothing approved
// is waiting. It keeps the visible upcoming list at one song while
// requests keep being accepted.
func (s *Service) CheckAndApproveNextLazy(ctx context.Context) error {
	approved, err := s.songs.ListByStatus(ctx, domain.SongApproved)
	if err != nil {
		return err
	}
	if len(approved) > 0 {
		return nil
	}

	playing, err := s.songs.GetPlaying(ctx)
	if err != nil {
		return err
	}
	if playing != nil {
		if playing.StartedAt == nil || playing.DurationSeconds <= 0 {
			return nil
		}
		elapsed := s.clock.Now().Sub(*playing.StartedAt).Seconds()
		if elapsed < lazyElapsedFraction*float64(playing.DurationSeconds) {
			return nil
		}
	}

	lazy, err := s.songs.ListByStatus(ctx, domain.SongPendingLazy)
	if err != nil {
		return err
	}
	if len(lazy) == 0 {
		return nil
	}

	tiers, err := s.tiers.TableTiers(ctx)
	if err != nil {
		return err
	}
	head := Rank(lazy, tiers)[0]

	ok, err := s.songs.Approve(ctx, head.ID, s.clock.Now())
	if err != nil {
		return err
	}
	if ok {
		log.Printf("queue: lazy-approved song %d (%s)", head.ID, head.Title)
		s.notifyQueueChanged(ctx)
		if playing == nil {
			s.autoplayIfIdle(ctx)
		}
	}
	return nil
}

// ApproveStaleRequests is the timed safety net: pending songs older than
// stalePendingAfter are force-approved, at most stalePendingBatch per
// sweep, so unmoderated requests never sit forever.
func (s *Service) ApproveStaleRequests(ctx context.Context) error {
	cutoff := s.clock.Now().Add(-stalePendingAfter)
	stale, err := s.songs.StalePending(ctx, cutoff, stalePendingBatch)
	if err != nil {
		return err
	}

	promoted := 0
	for _, song := range stale {
		ok, err := s.songs.Approve(ctx, song.ID, s.clock.Now())
		if err != nil {
			return err
		}
		if ok {
			promoted++
			log.Printf("queue: auto-approved stale song %d (%s)", song.ID, song.Title)
		}
	}
	if promoted > 0 {
		s.notifyQueueChanged(ctx)
		s.autoplayIfIdle(ctx)
	}
	return nil
}

// DeleteOwn removes a guest's own request while it is still pending.
func (s *Service) DeleteOwn(ctx context.Context, guestID, songID int64) error {
	song, err := s.getSong(ctx, songID)
	if err != nil {
		return err
	}
	if song.GuestID != guestID {
		return ErrForbidden
	}
	if song.Status != domain.SongPending && song.Status != domain.SongPendingLazy {
		return ErrInvalidState
	}
	return s.songs.Delete(ctx, songID)
}

func (s *Service) GuestSongs(ctx context.Context, guestID int64) ([]domain.Song, error) {
	return s.songs.ListByGuest(ctx, guestID)
}

// PendingSongs lists requests awaiting moderation, arrival order.
func (s *Service) PendingSongs(ctx context.Context) ([]domain.Song, error) {
	return s.songs.ListByStatus(ctx, domain.SongPending, domain.SongPendingLazy)
}

func (s *Service) TopSongs(ctx context.Context, limit int) ([]repository.TopSongRow, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.songs.TopSung(ctx, limit)
}

func (s *Service) getSong(ctx context.Context, id int64) (*domain.Song, error) {
	song, err := s.songs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return song, nil
}

func (s *Service) rankedApproved(ctx context.Context) ([]domain.Song, error) {
	approved, err := s.songs.ListByStatus(ctx, domain.SongApproved)
	if err != nil {
		return nil, err
	}
	if len(approved) == 0 {
		return nil, nil
	}
	tiers, err := s.tiers.TableTiers(ctx)
	if err != nil {
		return nil, err
	}
	return Rank(approved, tiers), nil
}

// scorePerformance grades the finished song against its uploaded
// recording. Strictly best effort: no recording, scorer failure or an
// out-of-range result all degrade to 0 and never block the transition.
func (s *Service) scorePerformance(ctx context.Context, song *domain.Song) int {
	if s.scorer == nil || s.recordings == nil {
		return 0
	}
	path, ok := s.recordings.Locate(song.ID)
	if !ok {
		return 0
	}
	score, err := s.scorer.Score(ctx, song.TrackID, path)
	if err != nil {
		log.Printf("queue: scoring song %d: %v", song.ID, err)
		return 0
	}
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func (s *Service) notifyQueueChanged(ctx context.Context) {
	if s.notifier == nil {
		return
	}
	view, err := s.OrderedQueue(ctx)
	if err != nil {
		log.Printf("queue: building queue view for broadcast: %v", err)
		s.notifier.QueueChanged(nil)
		return
	}
	s.notifier.QueueChanged(view)
}

// autoplayIfIdle starts playback when autoplay is on and nothing is on
// stage. Failures are logged, never surfaced: autoplay is a convenience
// on top of an already-committed admit/approve.
func (s *Service) autoplayIfIdle(ctx context.Context) {
	if !s.settings.Autoplay() {
		return
	}
	playing, err := s.songs.GetPlaying(ctx)
	if err != nil {
		log.Printf("queue: autoplay idle check: %v", err)
		return
	}
	if playing != nil {
		return
	}
	if _, err := s.Advance(ctx); err != nil {
		log.Printf("queue: autoplay advance: %v", err)
	}
}
