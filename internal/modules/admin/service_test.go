package admin

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"karaoke/internal/config"
	"karaoke/internal/database"
	"karaoke/internal/domain"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := database.Connect(dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestResetNightWipesPerNightState(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db, config.NewSettings(), nil)

	table := domain.Table{Name: "Mesa 1", JoinCode: "c1", Active: true}
	require.NoError(t, db.Create(&table).Error)
	product := domain.Product{Name: "Cerveza", Price: 60, Stock: 100, Active: true}
	require.NoError(t, db.Create(&product).Error)
	guest := domain.Guest{Nick: "ana", TableID: &table.ID, Tier: domain.TierBronze}
	require.NoError(t, db.Create(&guest).Error)
	banned := domain.BannedNick{Nick: "troll"}
	require.NoError(t, db.Create(&banned).Error)
	tab := domain.Tab{TableID: table.ID, Active: true}
	require.NoError(t, db.Create(&tab).Error)
	line := domain.ConsumptionLine{ProductID: product.ID, GuestID: guest.ID, TabID: tab.ID, Quantity: 1, Total: 60}
	require.NoError(t, db.Create(&line).Error)
	payment := domain.Payment{TabID: tab.ID, Amount: 60, Method: "cash"}
	require.NoError(t, db.Create(&payment).Error)
	song := domain.Song{TrackID: "yt:one", GuestID: guest.ID, TableID: &table.ID, Status: domain.SongApproved, DurationSeconds: 180}
	require.NoError(t, db.Create(&song).Error)

	require.NoError(t, svc.ResetNight(context.Background()))

	counts := map[string]any{
		"payments":          &domain.Payment{},
		"consumption_lines": &domain.ConsumptionLine{},
		"tabs":              &domain.Tab{},
		"songs":             &domain.Song{},
		"guests":            &domain.Guest{},
	}
	for name, model := range counts {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		assert.Zero(t, n, "%s should be empty after reset", name)
	}

	// venue fixtures survive the reset
	var tables, products, bans int64
	require.NoError(t, db.Model(&domain.Table{}).Count(&tables).Error)
	require.NoError(t, db.Model(&domain.Product{}).Count(&products).Error)
	require.NoError(t, db.Model(&domain.BannedNick{}).Count(&bans).Error)
	assert.EqualValues(t, 1, tables)
	assert.EqualValues(t, 1, products)
	assert.EqualValues(t, 1, bans)
}

func TestSettingsRoundTrip(t *testing.T) {
	svc := NewService(nil, config.NewSettings(), nil)

	require.NoError(t, svc.SetClosingTime("01:30"))
	svc.SetAutoplay(true)
	require.NoError(t, svc.SetApprovalMode(config.ApprovalLazy))

	view := svc.Settings()
	assert.Equal(t, "01:30", view.ClosingTime)
	assert.True(t, view.Autoplay)
	assert.Equal(t, config.ApprovalLazy, view.ApprovalMode)

	assert.Error(t, svc.SetClosingTime("25:00"))
	assert.Error(t, svc.SetApprovalMode("whenever"))
}
