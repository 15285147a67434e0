package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"karaoke/internal/domain"
)

type SongRepository struct {
	db *gorm.DB
}

func NewSongRepository(db *gorm.DB) *SongRepository {
	return &SongRepository{db: db}
}

func (r *SongRepository) Create(ctx context.Context, s *domain.Song) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *SongRepository) GetByID(ctx context.Context, id int64) (*domain.Song, error) {
	var s domain.Song
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *SongRepository) ListByGuest(ctx context.Context, guestID int64) ([]domain.Song, error) {
	var songs []domain.Song
	err := r.db.WithContext(ctx).
		Where("guest_id = ?", guestID).
		Order("id ASC").
		Find(&songs).Error
	return songs, err
}

// ListByStatus returns songs in any of the given states ordered by id,
// which is arrival order. The ranker relies on this ordering.
func (r *SongRepository) ListByStatus(ctx context.Context, statuses ...domain.SongStatus) ([]domain.Song, error) {
	var songs []domain.Song
	err := r.db.WithContext(ctx).
		Where("status IN ?", statuses).
		Order("id ASC").
		Find(&songs).Error
	return songs, err
}

// GetPlaying returns the song currently playing, or nil when the system
// is idle.
func (r *SongRepository) GetPlaying(ctx context.Context) (*domain.Song, error) {
	var s domain.Song
	err := r.db.WithContext(ctx).
		Where("status = ?", domain.SongPlaying).
		Order("id ASC").
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ExistsActiveTrack reports whether any guest at the table already holds
// this track in a live state. tableID nil targets the DJ pool.
func (r *SongRepository) ExistsActiveTrack(ctx context.Context, tableID *int64, trackID string) (bool, error) {
	q := r.db.WithContext(ctx).Model(&domain.Song{}).
		Where("track_id = ? AND status IN ?", trackID, domain.ActiveStatuses)
	if tableID == nil {
		q = q.Where("table_id IS NULL")
	} else {
		q = q.Where("table_id = ?", *tableID)
	}
	var cnt int64
	if err := q.Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// Approve promotes a pending or pending_lazy song. Returns false when the
// song was not in a promotable state.
func (r *SongRepository) Approve(ctx context.Context, id int64, at time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&domain.Song{}).
		Where("id = ? AND status IN ?", id, []domain.SongStatus{domain.SongPending, domain.SongPendingLazy}).
		Updates(map[string]any{"status": domain.SongApproved, "approved_at": at})
	return tx.RowsAffected > 0, tx.Error
}

// Reject moves a non-terminal, non-playing song to rejected.
func (r *SongRepository) Reject(ctx context.Context, id int64) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&domain.Song{}).
		Where("id = ? AND status IN ?", id, []domain.SongStatus{domain.SongPending, domain.SongPendingLazy, domain.SongApproved}).
		Update("status", domain.SongRejected)
	return tx.RowsAffected > 0, tx.Error
}

// MarkPlaying promotes an approved song to playing, but only while no
// other song is playing. The single conditional statement is what keeps
// concurrent advance() calls from double-promoting.
func (r *SongRepository) MarkPlaying(ctx context.Context, id int64, at time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE songs SET status = ?, started_at = ?
WHERE id = ? AND status = ?
  AND NOT EXISTS (SELECT 1 FROM songs s2 WHERE s2.status = ?)
`, domain.SongPlaying, at, id, domain.SongApproved, domain.SongPlaying)
	return tx.RowsAffected > 0, tx.Error
}

// Finish marks the playing song as sung and stamps its score.
func (r *SongRepository) Finish(ctx context.Context, id int64, at time.Time, score int) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&domain.Song{}).
		Where("id = ? AND status = ?", id, domain.SongPlaying).
		Updates(map[string]any{"status": domain.SongSung, "finished_at": at, "score": score})
	return tx.RowsAffected > 0, tx.Error
}

// StalePending returns pending songs created before the cutoff, oldest
// first, capped at limit. Feeds the timed auto-approval safety net.
func (r *SongRepository) StalePending(ctx context.Context, cutoff time.Time, limit int) ([]domain.Song, error) {
	var songs []domain.Song
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", domain.SongPending, cutoff).
		Order("id ASC").
		Limit(limit).
		Find(&songs).Error
	return songs, err
}

func (r *SongRepository) SetManualOrder(ctx context.Context, id int64, rank *int) error {
	return r.db.WithContext(ctx).Model(&domain.Song{}).
		Where("id = ?", id).
		Update("manual_order", rank).Error
}

// ClearManualOrders resets the override rank on every approved song.
func (r *SongRepository) ClearManualOrders(ctx context.Context) error {
	return r.db.WithContext(ctx).Model(&domain.Song{}).
		Where("status = ?", domain.SongApproved).
		Update("manual_order", nil).Error
}

// ReorderManual wipes all override ranks on approved songs and assigns
// rank = position+1 to each listed id, in one transaction.
func (r *SongRepository) ReorderManual(ctx context.Context, ids []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Song{}).
			Where("status = ?", domain.SongApproved).
			Update("manual_order", nil).Error; err != nil {
			return err
		}
		for i, id := range ids {
			if err := tx.Model(&domain.Song{}).
				Where("id = ?", id).
				Update("manual_order", i+1).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// MinManualOrder returns the lowest assigned rank among approved songs,
// ok=false when none is set.
func (r *SongRepository) MinManualOrder(ctx context.Context) (int, bool, error) {
	var min *int
	err := r.db.WithContext(ctx).Model(&domain.Song{}).
		Where("status = ? AND manual_order IS NOT NULL", domain.SongApproved).
		Select("MIN(manual_order)").
		Scan(&min).Error
	if err != nil {
		return 0, false, err
	}
	if min == nil {
		return 0, false, nil
	}
	return *min, true, nil
}

// SumDuration totals the durations of all songs in the given state.
func (r *SongRepository) SumDuration(ctx context.Context, status domain.SongStatus) (int, error) {
	var total *int
	err := r.db.WithContext(ctx).Model(&domain.Song{}).
		Where("status = ?", status).
		Select("SUM(duration_seconds)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (r *SongRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&domain.Song{}, id).Error
}

type TopSongRow struct {
	Title     string `json:"title"`
	TrackID   string `json:"track_id"`
	TimesSung int64  `json:"times_sung"`
}

func (r *SongRepository) TopSung(ctx context.Context, limit int) ([]TopSongRow, error) {
	var rows []TopSongRow
	err := r.db.WithContext(ctx).Model(&domain.Song{}).
		Select("title, track_id, COUNT(id) AS times_sung").
		Where("status = ?", domain.SongSung).
		Group("title, track_id").
		Order("times_sung DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
