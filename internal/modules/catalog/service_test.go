package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"karaoke/internal/domain"
	"karaoke/internal/repository"
)

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) Create(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	if args.Error(0) == nil {
		p.ID = 11
	}
	return args.Error(0)
}

func (m *mockProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepo) List(ctx context.Context, offset, limit int) ([]domain.Product, error) {
	args := m.Called(ctx, offset, limit)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepo) UpdatePrice(ctx context.Context, id int64, price float64) error {
	return m.Called(ctx, id, price).Error(0)
}

func (m *mockProductRepo) SetStock(ctx context.Context, id int64, stock int) error {
	return m.Called(ctx, id, stock).Error(0)
}

func (m *mockProductRepo) SetActive(ctx context.Context, id int64, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

type countingNotifier struct {
	updates int
}

func (n *countingNotifier) ProductUpdate(any) { n.updates++ }

func TestCreateProductBroadcastsUpdate(t *testing.T) {
	products := new(mockProductRepo)
	notifier := &countingNotifier{}
	svc := NewService(products, notifier)

	products.On("Create", mock.Anything, mock.Anything).Return(nil)
	products.On("GetByID", mock.Anything, int64(11)).
		Return(&domain.Product{ID: 11, Name: "Cerveza", Price: 60, Stock: 100, Active: true}, nil)

	p, err := svc.Create(context.Background(), CreateProductRequest{Name: "Cerveza", Price: 60, Stock: 100})
	require.NoError(t, err)
	assert.True(t, p.Active)
	assert.Equal(t, 1, notifier.updates)
}

func TestCreateProductDuplicateName(t *testing.T) {
	products := new(mockProductRepo)
	svc := NewService(products, nil)

	products.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicate)

	_, err := svc.Create(context.Background(), CreateProductRequest{Name: "Cerveza"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestPriceAndStockChangesNotify(t *testing.T) {
	products := new(mockProductRepo)
	notifier := &countingNotifier{}
	svc := NewService(products, notifier)

	products.On("UpdatePrice", mock.Anything, int64(3), 75.0).Return(nil)
	products.On("SetStock", mock.Anything, int64(3), 40).Return(nil)
	products.On("SetActive", mock.Anything, int64(3), false).Return(nil)
	products.On("GetByID", mock.Anything, int64(3)).
		Return(&domain.Product{ID: 3, Name: "Cerveza"}, nil)

	require.NoError(t, svc.UpdatePrice(context.Background(), 3, 75))
	require.NoError(t, svc.SetStock(context.Background(), 3, 40))
	require.NoError(t, svc.SetActive(context.Background(), 3, false))
	assert.Equal(t, 3, notifier.updates)
}

func TestUpdatePriceUnknownProduct(t *testing.T) {
	products := new(mockProductRepo)
	svc := NewService(products, nil)

	products.On("UpdatePrice", mock.Anything, int64(99), 10.0).Return(repository.ErrNotFound)

	assert.ErrorIs(t, svc.UpdatePrice(context.Background(), 99, 10), ErrNotFound)
}
