package ledger

import "karaoke/internal/domain"

type RecordConsumptionRequest struct {
	GuestID   int64 `json:"guest_id" binding:"required"`
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

type PaymentRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
	Method string  `json:"method" binding:"required"`
}

// TabSummary is the running bill for one table's open tab.
type TabSummary struct {
	Tab      *domain.Tab              `json:"tab"`
	Lines    []domain.ConsumptionLine `json:"lines"`
	Consumed float64                  `json:"consumed"`
	Paid     float64                  `json:"paid"`
	Balance  float64                  `json:"balance"`
}

type TopProductRow struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	UnitsSold int64   `json:"units_sold"`
	Revenue   float64 `json:"revenue"`
}

type TableIncomeRow struct {
	TableID   int64   `json:"table_id"`
	TableName string  `json:"table_name"`
	Income    float64 `json:"income"`
}
