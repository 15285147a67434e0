package table

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"karaoke/internal/domain"
	"karaoke/internal/pkg/clock"
	"karaoke/internal/repository"
)

type mockTableRepo struct {
	mock.Mock
}

func (m *mockTableRepo) Create(ctx context.Context, t *domain.Table) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockTableRepo) GetByID(ctx context.Context, id int64) (*domain.Table, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Table), args.Error(1)
}

func (m *mockTableRepo) GetByJoinCode(ctx context.Context, code string) (*domain.Table, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Table), args.Error(1)
}

func (m *mockTableRepo) List(ctx context.Context) ([]domain.Table, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Table), args.Error(1)
}

func (m *mockTableRepo) SetActive(ctx context.Context, id int64, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

type mockGuestRepo struct {
	mock.Mock
}

func (m *mockGuestRepo) Create(ctx context.Context, g *domain.Guest) error {
	args := m.Called(ctx, g)
	if args.Error(0) == nil {
		g.ID = 42
	}
	return args.Error(0)
}

func (m *mockGuestRepo) IsNickBanned(ctx context.Context, nick string) (bool, error) {
	args := m.Called(ctx, nick)
	return args.Bool(0), args.Error(1)
}

type stubTokens struct{}

func (stubTokens) GenerateToken(guestID, tableID int64, role string) (string, error) {
	return "token", nil
}

func joinFixture() (*Service, *mockTableRepo, *mockGuestRepo) {
	tables := new(mockTableRepo)
	guests := new(mockGuestRepo)
	clk := &clock.Fixed{Current: time.Date(2026, 8, 28, 20, 0, 0, 0, time.UTC)}
	return NewService(tables, guests, stubTokens{}, clk), tables, guests
}

func TestJoinMintsSession(t *testing.T) {
	svc, tables, guests := joinFixture()
	tables.On("GetByJoinCode", mock.Anything, "code-1").
		Return(&domain.Table{ID: 7, Name: "Mesa 7", JoinCode: "code-1", Active: true}, nil)
	guests.On("IsNickBanned", mock.Anything, "ana").Return(false, nil)
	guests.On("Create", mock.Anything, mock.Anything).Return(nil)

	resp, err := svc.Join(context.Background(), JoinRequest{JoinCode: "code-1", Nick: "ana"})
	require.NoError(t, err)
	assert.Equal(t, "token", resp.Token)
	assert.Equal(t, "ana", resp.Guest.Nick)
	require.NotNil(t, resp.Guest.TableID)
	assert.EqualValues(t, 7, *resp.Guest.TableID)
	assert.Equal(t, domain.TierBronze, resp.Guest.Tier)
}

func TestJoinUnknownCode(t *testing.T) {
	svc, tables, _ := joinFixture()
	tables.On("GetByJoinCode", mock.Anything, "nope").Return(nil, repository.ErrNotFound)

	_, err := svc.Join(context.Background(), JoinRequest{JoinCode: "nope", Nick: "ana"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJoinInactiveTable(t *testing.T) {
	svc, tables, _ := joinFixture()
	tables.On("GetByJoinCode", mock.Anything, "code-1").
		Return(&domain.Table{ID: 7, JoinCode: "code-1", Active: false}, nil)

	_, err := svc.Join(context.Background(), JoinRequest{JoinCode: "code-1", Nick: "ana"})
	assert.ErrorIs(t, err, ErrTableInactive)
}

func TestJoinRejectsBlockedNicks(t *testing.T) {
	svc, tables, _ := joinFixture()
	tables.On("GetByJoinCode", mock.Anything, "code-1").
		Return(&domain.Table{ID: 7, JoinCode: "code-1", Active: true}, nil)

	for _, nick := range []string{"x", "admin", "DJMaster", "puta123"} {
		_, err := svc.Join(context.Background(), JoinRequest{JoinCode: "code-1", Nick: nick})
		assert.ErrorIs(t, err, ErrNickInvalid, "nick %q", nick)
	}
}

func TestJoinBannedNick(t *testing.T) {
	svc, tables, guests := joinFixture()
	tables.On("GetByJoinCode", mock.Anything, "code-1").
		Return(&domain.Table{ID: 7, JoinCode: "code-1", Active: true}, nil)
	guests.On("IsNickBanned", mock.Anything, "troll").Return(true, nil)

	_, err := svc.Join(context.Background(), JoinRequest{JoinCode: "code-1", Nick: "troll"})
	assert.ErrorIs(t, err, ErrNickBanned)
}

func TestJoinDuplicateNick(t *testing.T) {
	svc, tables, guests := joinFixture()
	tables.On("GetByJoinCode", mock.Anything, "code-1").
		Return(&domain.Table{ID: 7, JoinCode: "code-1", Active: true}, nil)
	guests.On("IsNickBanned", mock.Anything, "ana").Return(false, nil)
	guests.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicate)

	_, err := svc.Join(context.Background(), JoinRequest{JoinCode: "code-1", Nick: "ana"})
	assert.ErrorIs(t, err, ErrNickTaken)
}

func TestCreateTableGetsJoinCode(t *testing.T) {
	svc, tables, _ := joinFixture()
	tables.On("Create", mock.Anything, mock.Anything).Return(nil)

	created, err := svc.CreateTable(context.Background(), "Mesa VIP")
	require.NoError(t, err)
	assert.Equal(t, "Mesa VIP", created.Name)
	assert.NotEmpty(t, created.JoinCode)
	assert.True(t, created.Active)
}
