package queue

import (
	"context"
	"fmt"
	"time"

	"karaoke/internal/config"
	"karaoke/internal/domain"
	"karaoke/internal/pkg/clock"
)

// Gate decides whether a new song request may enter the system at all.
// Every check is a business-rule rejection surfaced verbatim; none are
// retried.
type Gate struct {
	songs    SongRepository
	clock    clock.Clock
	settings *config.Settings
}

func NewGate(songs SongRepository, clk clock.Clock, settings *config.Settings) *Gate {
	return &Gate{songs: songs, clock: clk, settings: settings}
}

// CanAdmit runs the admission checks in order: silenced guest, closing
// time, remaining time budget, duplicate track at the same table.
func (g *Gate) CanAdmit(ctx context.Context, guest *domain.Guest, trackID string, durationSeconds int) error {
	if trackID == "" || durationSeconds <= 0 {
		return ErrValidation
	}
	if guest.Silenced {
		return ErrUserSilenced
	}

	now := g.clock.Now()
	closing, err := nextClosing(now, g.settings.ClosingTime())
	if err != nil {
		return fmt.Errorf("closing time: %w", err)
	}
	if !now.Before(closing) {
		return ErrPastClosing
	}

	queued, err := g.songs.SumDuration(ctx, domain.SongApproved)
	if err != nil {
		return err
	}
	remaining := closing.Sub(now).Seconds()
	if float64(queued+durationSeconds) > remaining {
		return ErrNoTimeBudget
	}

	dup, err := g.songs.ExistsActiveTrack(ctx, guest.TableID, trackID)
	if err != nil {
		return err
	}
	if dup {
		return ErrDuplicateInTable
	}

	return nil
}

// nextClosing resolves a wall-clock "HH:MM" to its next occurrence: a
// closing time earlier than now means tomorrow.
func nextClosing(now time.Time, hhmm string) (time.Time, error) {
	var h, m int
	if _, err := fmt.Sscanf(hhmm, "%d:%d", &h, &m); err != nil {
		return time.Time{}, fmt.Errorf("invalid closing time %q", hhmm)
	}
	closing := time.Date(now.Year(), now.Month(), now.Day(), h, m, 0, 0, now.Location())
	if closing.Before(now) {
		closing = closing.Add(24 * time.Hour)
	}
	return closing, nil
}
