package ledger

import (
	"context"
	"errors"
	"log"
	"math"

	"gorm.io/gorm"

	"karaoke/internal/domain"
	"karaoke/internal/pkg/clock"
)

const (
	// points credited per consumption: one point per 10 currency units.
	pointsPerCurrency = 10.0

	// guest tier thresholds, in lifetime consumption.
	guestSilverSpend = 50.0
	guestGoldSpend   = 150.0

	// table tier thresholds, in lifetime consumption.
	tableSilverSpend = 50000.0
	tableGoldSpend   = 150000.0

	// txAttempts bounds the retry loop on transient transaction failures.
	txAttempts = 3
)

// Notifier is the realtime fan-out for money events. Fire and forget.
type Notifier interface {
	ConsumoCreated(line any)
	ConsumoDeleted(line any)
}

// Service owns every money mutation: consumption lines, stock, points,
// tiers, payments and tab lifecycle. It works on the database handle
// directly because each operation touches several entities and must
// commit or roll back as one unit.
type Service struct {
	db       *gorm.DB
	notifier Notifier
	clock    clock.Clock
}

func NewService(db *gorm.DB, notifier Notifier, clk clock.Clock) *Service {
	return &Service{db: db, notifier: notifier, clock: clk}
}

// RecordConsumption books a product against the table's open tab, opening
// one if needed. Stock is decremented with a guarded single statement so
// two waiters selling the last unit cannot both succeed. The guest earns
// floor(total/10) points and both guest and table tiers are refreshed in
// the same transaction.
func (s *Service) RecordConsumption(ctx context.Context, tableID int64, req RecordConsumptionRequest) (*domain.ConsumptionLine, error) {
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var line *domain.ConsumptionLine
	err := s.withRetry(func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var product domain.Product
			if err := tx.First(&product, req.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return err
			}
			if !product.Active {
				return ErrProductInactive
			}

			res := tx.Model(&domain.Product{}).
				Where("id = ? AND active = ? AND stock >= ?", product.ID, true, req.Quantity).
				Update("stock", gorm.Expr("stock - ?", req.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrOutOfStock
			}

			tab, err := s.openTabTx(tx, tableID)
			if err != nil {
				return err
			}

			line = &domain.ConsumptionLine{
				ProductID: product.ID,
				GuestID:   req.GuestID,
				TabID:     tab.ID,
				Quantity:  req.Quantity,
				Total:     product.Price * float64(req.Quantity),
				CreatedAt: s.clock.Now(),
			}
			if err := tx.Create(line).Error; err != nil {
				return err
			}

			points := int(math.Floor(line.Total / pointsPerCurrency))
			if err := s.adjustGuestTx(tx, req.GuestID, points); err != nil {
				return err
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.ConsumoCreated(line)
	}
	return line, nil
}

// ReverseConsumption cancels a booked line: stock returns, the line is
// deleted and the guest loses the points it earned. The tier is
// recomputed rather than decremented so singing points are untouched.
func (s *Service) ReverseConsumption(ctx context.Context, lineID int64) error {
	var removed domain.ConsumptionLine
	err := s.withRetry(func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&removed, lineID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return err
			}

			if err := tx.Model(&domain.Product{}).
				Where("id = ?", removed.ProductID).
				Update("stock", gorm.Expr("stock + ?", removed.Quantity)).Error; err != nil {
				return err
			}

			if err := tx.Delete(&domain.ConsumptionLine{}, lineID).Error; err != nil {
				return err
			}

			points := -int(math.Floor(removed.Total / pointsPerCurrency))
			return s.adjustGuestTx(tx, removed.GuestID, points)
		})
	})
	if err != nil {
		return err
	}

	if s.notifier != nil {
		s.notifier.ConsumoDeleted(&removed)
	}
	return nil
}

// SetDispatched flags a line as delivered to the table.
func (s *Service) SetDispatched(ctx context.Context, lineID int64, dispatched bool) error {
	res := s.db.WithContext(ctx).Model(&domain.ConsumptionLine{}).
		Where("id = ?", lineID).
		Update("dispatched", dispatched)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SettlePayment records a payment against the table's open tab.
func (s *Service) SettlePayment(ctx context.Context, tableID int64, req PaymentRequest) (*domain.Payment, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var payment *domain.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tab, err := s.activeTabTx(tx, tableID)
		if err != nil {
			return err
		}
		payment = &domain.Payment{
			TabID:     tab.ID,
			Amount:    req.Amount,
			Method:    req.Method,
			CreatedAt: s.clock.Now(),
		}
		return tx.Create(payment).Error
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// CloseTab settles the table's open tab and opens a fresh one in the same
// transaction, so the next round lands on a clean bill.
func (s *Service) CloseTab(ctx context.Context, tableID int64) (*TabSummary, error) {
	var summary *TabSummary
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tab, err := s.activeTabTx(tx, tableID)
		if err != nil {
			return err
		}

		sum, err := s.summarizeTx(tx, tab)
		if err != nil {
			return err
		}
		summary = sum

		now := s.clock.Now()
		if err := tx.Model(&domain.Tab{}).
			Where("id = ?", tab.ID).
			Updates(map[string]any{"active": false, "closed_at": now}).Error; err != nil {
			return err
		}

		fresh := domain.Tab{TableID: tableID, Active: true, OpenedAt: now}
		return tx.Create(&fresh).Error
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// TabSummary returns the running bill of the table's open tab.
func (s *Service) TabSummary(ctx context.Context, tableID int64) (*TabSummary, error) {
	var summary *TabSummary
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tab, err := s.activeTabTx(tx, tableID)
		if err != nil {
			return err
		}
		summary, err = s.summarizeTx(tx, tab)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// TableSpendTier derives the table's quota tier from the lifetime
// consumption of the guests currently seated there. Evicted guests stop
// counting toward the table's weight.
func (s *Service) TableSpendTier(ctx context.Context, tableID int64) (domain.SpendTier, error) {
	var total *float64
	err := s.db.WithContext(ctx).Model(&domain.ConsumptionLine{}).
		Joins("JOIN guests ON guests.id = consumption_lines.guest_id").
		Where("guests.table_id = ?", tableID).
		Select("SUM(consumption_lines.total)").
		Scan(&total).Error
	if err != nil {
		return "", err
	}
	spend := 0.0
	if total != nil {
		spend = *total
	}
	return tableTierFor(spend), nil
}

// TableTiers maps every table to its current spend tier. Tables with no
// consumption are absent; callers default them to bronze.
func (s *Service) TableTiers(ctx context.Context) (map[int64]domain.SpendTier, error) {
	type row struct {
		TableID int64
		Spend   float64
	}
	var rows []row
	err := s.db.WithContext(ctx).Model(&domain.ConsumptionLine{}).
		Joins("JOIN guests ON guests.id = consumption_lines.guest_id").
		Where("guests.table_id IS NOT NULL").
		Select("guests.table_id AS table_id, SUM(consumption_lines.total) AS spend").
		Group("guests.table_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	tiers := make(map[int64]domain.SpendTier, len(rows))
	for _, r := range rows {
		tiers[r.TableID] = tableTierFor(r.Spend)
	}
	return tiers, nil
}

// TopProducts ranks products by units sold across the whole night.
func (s *Service) TopProducts(ctx context.Context, limit int) ([]TopProductRow, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []TopProductRow
	err := s.db.WithContext(ctx).Model(&domain.ConsumptionLine{}).
		Joins("JOIN products ON products.id = consumption_lines.product_id").
		Select("products.id AS product_id, products.name AS name, SUM(consumption_lines.quantity) AS units_sold, SUM(consumption_lines.total) AS revenue").
		Group("products.id, products.name").
		Order("units_sold DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// TotalIncome sums every consumption line ever booked.
func (s *Service) TotalIncome(ctx context.Context) (float64, error) {
	var total *float64
	err := s.db.WithContext(ctx).Model(&domain.ConsumptionLine{}).
		Select("SUM(total)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

// IncomeByTable breaks total income down per table, highest first.
func (s *Service) IncomeByTable(ctx context.Context) ([]TableIncomeRow, error) {
	var rows []TableIncomeRow
	err := s.db.WithContext(ctx).Model(&domain.ConsumptionLine{}).
		Joins("JOIN tabs ON tabs.id = consumption_lines.tab_id").
		Joins("JOIN tables ON tables.id = tabs.table_id").
		Select("tables.id AS table_id, tables.name AS table_name, SUM(consumption_lines.total) AS income").
		Group("tables.id, tables.name").
		Order("income DESC").
		Scan(&rows).Error
	return rows, err
}

// openTabTx returns the table's active tab, creating one when the table
// has none yet.
func (s *Service) openTabTx(tx *gorm.DB, tableID int64) (*domain.Tab, error) {
	var tab domain.Tab
	err := tx.Where("table_id = ? AND active = ?", tableID, true).First(&tab).Error
	if err == nil {
		return &tab, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	tab = domain.Tab{TableID: tableID, Active: true, OpenedAt: s.clock.Now()}
	if err := tx.Create(&tab).Error; err != nil {
		return nil, err
	}
	return &tab, nil
}

func (s *Service) activeTabTx(tx *gorm.DB, tableID int64) (*domain.Tab, error) {
	var tab domain.Tab
	err := tx.Where("table_id = ? AND active = ?", tableID, true).First(&tab).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoOpenTab
	}
	if err != nil {
		return nil, err
	}
	return &tab, nil
}

func (s *Service) summarizeTx(tx *gorm.DB, tab *domain.Tab) (*TabSummary, error) {
	var lines []domain.ConsumptionLine
	if err := tx.Preload("Product").Preload("Guest").
		Where("tab_id = ?", tab.ID).
		Order("id ASC").
		Find(&lines).Error; err != nil {
		return nil, err
	}

	consumed := 0.0
	for _, l := range lines {
		consumed += l.Total
	}

	var paid *float64
	if err := tx.Model(&domain.Payment{}).
		Where("tab_id = ?", tab.ID).
		Select("SUM(amount)").
		Scan(&paid).Error; err != nil {
		return nil, err
	}
	paidTotal := 0.0
	if paid != nil {
		paidTotal = *paid
	}

	return &TabSummary{
		Tab:      tab,
		Lines:    lines,
		Consumed: consumed,
		Paid:     paidTotal,
		Balance:  consumed - paidTotal,
	}, nil
}

// adjustGuestTx moves the guest's points by delta (floored at zero) and
// recomputes the tier from the guest's remaining consumption history, so
// cancellations demote correctly without touching singing rewards.
func (s *Service) adjustGuestTx(tx *gorm.DB, guestID int64, delta int) error {
	res := tx.Model(&domain.Guest{}).
		Where("id = ?", guestID).
		Update("points", gorm.Expr("CASE WHEN points + ? < 0 THEN 0 ELSE points + ? END", delta, delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	var spend *float64
	if err := tx.Model(&domain.ConsumptionLine{}).
		Where("guest_id = ?", guestID).
		Select("SUM(total)").
		Scan(&spend).Error; err != nil {
		return err
	}
	total := 0.0
	if spend != nil {
		total = *spend
	}
	return tx.Model(&domain.Guest{}).
		Where("id = ?", guestID).
		Update("tier", guestTierFor(total)).Error
}

// withRetry reruns fn on transient transaction failures. Business
// rejections pass through untouched; after txAttempts the caller gets
// ErrConflict.
func (s *Service) withRetry(fn func() error) error {
	var err error
	for attempt := 1; attempt <= txAttempts; attempt++ {
		err = fn()
		if err == nil || isBusinessError(err) {
			return err
		}
		log.Printf("ledger: transaction attempt %d/%d failed: %v", attempt, txAttempts, err)
	}
	return errors.Join(ErrConflict, err)
}

func isBusinessError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrOutOfStock) ||
		errors.Is(err, ErrProductInactive) ||
		errors.Is(err, ErrNoOpenTab)
}

func guestTierFor(spend float64) domain.SpendTier {
	switch {
	case spend >= guestGoldSpend:
		return domain.TierGold
	case spend >= guestSilverSpend:
		return domain.TierSilver
	default:
		return domain.TierBronze
	}
}

func tableTierFor(spend float64) domain.SpendTier {
	switch {
	case spend >= tableGoldSpend:
		return domain.TierGold
	case spend >= tableSilverSpend:
		return domain.TierSilver
	default:
		return domain.TierBronze
	}
}
