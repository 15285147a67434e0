package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"karaoke/internal/domain"
)

const djNick = "DJ"

type GuestRepository struct {
	db *gorm.DB
}

func NewGuestRepository(db *gorm.DB) *GuestRepository {
	return &GuestRepository{db: db}
}

func (r *GuestRepository) Create(ctx context.Context, g *domain.Guest) error {
	if err := r.db.WithContext(ctx).Create(g).Error; err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *GuestRepository) GetByID(ctx context.Context, id int64) (*domain.Guest, error) {
	var g domain.Guest
	if err := r.db.WithContext(ctx).First(&g, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (r *GuestRepository) ListByTable(ctx context.Context, tableID int64) ([]domain.Guest, error) {
	var guests []domain.Guest
	err := r.db.WithContext(ctx).
		Where("table_id = ?", tableID).
		Order("id ASC").
		Find(&guests).Error
	return guests, err
}

func (r *GuestRepository) SetSilenced(ctx context.Context, id int64, silenced bool) error {
	tx := r.db.WithContext(ctx).Model(&domain.Guest{}).
		Where("id = ?", id).
		Update("silenced", silenced)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AddPoints applies a relative points change without a read-modify-write
// race. Negative deltas floor at zero.
func (r *GuestRepository) AddPoints(ctx context.Context, id int64, delta int) error {
	return r.db.WithContext(ctx).Model(&domain.Guest{}).
		Where("id = ?", id).
		Update("points", gorm.Expr("CASE WHEN points + ? < 0 THEN 0 ELSE points + ? END", delta, delta)).Error
}

func (r *GuestRepository) UpdateTier(ctx context.Context, id int64, tier domain.SpendTier) error {
	return r.db.WithContext(ctx).Model(&domain.Guest{}).
		Where("id = ?", id).
		Update("tier", tier).Error
}

func (r *GuestRepository) TouchLastActive(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.Guest{}).
		Where("id = ?", id).
		Update("last_active", at).Error
}

func (r *GuestRepository) Delete(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Delete(&domain.Guest{}, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetOrCreateDJ returns the table-less operator pseudo-guest, creating it
// on first use. The ranker groups its songs under the sentinel table 0.
func (r *GuestRepository) GetOrCreateDJ(ctx context.Context) (*domain.Guest, error) {
	var g domain.Guest
	err := r.db.WithContext(ctx).
		Where("nick = ? AND table_id IS NULL", djNick).
		First(&g).Error
	if err == nil {
		return &g, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	g = domain.Guest{Nick: djNick, Tier: domain.TierGold, LastActive: time.Now()}
	if err := r.db.WithContext(ctx).Create(&g).Error; err != nil {
		if IsUniqueViolation(err) {
			// lost the race to another request; fetch the winner
			err = r.db.WithContext(ctx).
				Where("nick = ? AND table_id IS NULL", djNick).
				First(&g).Error
			if err != nil {
				return nil, err
			}
			return &g, nil
		}
		return nil, err
	}
	return &g, nil
}

func (r *GuestRepository) IsNickBanned(ctx context.Context, nick string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&domain.BannedNick{}).
		Where("LOWER(nick) = LOWER(?)", nick).
		Count(&cnt).Error
	return cnt > 0, err
}

func (r *GuestRepository) BanNick(ctx context.Context, nick, reason string) error {
	err := r.db.WithContext(ctx).Create(&domain.BannedNick{Nick: nick, Reason: reason}).Error
	if IsUniqueViolation(err) {
		return nil
	}
	return err
}

type GuestRankingRow struct {
	domain.Guest
	TotalConsumed float64 `json:"total_consumed"`
}

// Ranking lists all guests ordered by lifetime consumption, highest
// first. Ties resolve by guest id so the order is stable.
func (r *GuestRepository) Ranking(ctx context.Context) ([]GuestRankingRow, error) {
	var rows []GuestRankingRow
	err := r.db.WithContext(ctx).Model(&domain.Guest{}).
		Select("guests.*, COALESCE(SUM(consumption_lines.total), 0) AS total_consumed").
		Joins("LEFT JOIN consumption_lines ON consumption_lines.guest_id = guests.id").
		Group("guests.id").
		Order("total_consumed DESC, guests.id ASC").
		Scan(&rows).Error
	return rows, err
}
