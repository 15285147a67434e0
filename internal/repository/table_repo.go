package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"karaoke/internal/domain"
)

type TableRepository struct {
	db *gorm.DB
}

func NewTableRepository(db *gorm.DB) *TableRepository {
	return &TableRepository{db: db}
}

func (r *TableRepository) Create(ctx context.Context, t *domain.Table) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *TableRepository) GetByID(ctx context.Context, id int64) (*domain.Table, error) {
	var t domain.Table
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TableRepository) GetByJoinCode(ctx context.Context, code string) (*domain.Table, error) {
	var t domain.Table
	if err := r.db.WithContext(ctx).Where("join_code = ?", code).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TableRepository) List(ctx context.Context) ([]domain.Table, error) {
	var tables []domain.Table
	err := r.db.WithContext(ctx).Order("id ASC").Find(&tables).Error
	return tables, err
}

func (r *TableRepository) SetActive(ctx context.Context, id int64, active bool) error {
	tx := r.db.WithContext(ctx).Model(&domain.Table{}).
		Where("id = ?", id).
		Update("active", active)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
