package catalog

import (
	"context"
	"errors"

	"karaoke/internal/domain"
	"karaoke/internal/repository"
)

type Service struct {
	products ProductRepository
	notifier Notifier
}

func NewService(products ProductRepository, notifier Notifier) *Service {
	return &Service{products: products, notifier: notifier}
}

func (s *Service) Create(ctx context.Context, req CreateProductRequest) (*domain.Product, error) {
	p := &domain.Product{
		Name:   req.Name,
		Price:  req.Price,
		Stock:  req.Stock,
		Active: true,
	}
	if err := s.products.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicate
		}
		return nil, err
	}

	s.notifyUpdate(ctx, p.ID)
	return p, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, offset, limit int) ([]domain.Product, error) {
	return s.products.List(ctx, offset, limit)
}

func (s *Service) UpdatePrice(ctx context.Context, id int64, price float64) error {
	if err := s.mapErr(s.products.UpdatePrice(ctx, id, price)); err != nil {
		return err
	}
	s.notifyUpdate(ctx, id)
	return nil
}

func (s *Service) SetStock(ctx context.Context, id int64, stock int) error {
	if err := s.mapErr(s.products.SetStock(ctx, id, stock)); err != nil {
		return err
	}
	s.notifyUpdate(ctx, id)
	return nil
}

func (s *Service) SetActive(ctx context.Context, id int64, active bool) error {
	if err := s.mapErr(s.products.SetActive(ctx, id, active)); err != nil {
		return err
	}
	s.notifyUpdate(ctx, id)
	return nil
}

func (s *Service) mapErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// notifyUpdate broadcasts the fresh product row so menus refresh live.
func (s *Service) notifyUpdate(ctx context.Context, id int64) {
	if s.notifier == nil {
		return
	}
	if p, err := s.products.GetByID(ctx, id); err == nil {
		s.notifier.ProductUpdate(p)
	}
}
