package domain

import "time"

// Tab is the running bill ("cuenta") of a table. A table has at most one
// active tab; settling closes it and opens a fresh one in the same
// transaction so service continues uninterrupted.
type Tab struct {
	ID       int64      `json:"id" gorm:"primaryKey"`
	TableID  int64      `json:"table_id" gorm:"index;not null"`
	Active   bool       `json:"active" gorm:"not null;default:true"`
	OpenedAt time.Time  `json:"opened_at" gorm:"autoCreateTime"`
	ClosedAt *time.Time `json:"closed_at,omitempty"`
}

func (Tab) TableName() string { return "tabs" }

// ConsumptionLine is immutable once written; cancelling an order deletes
// the line and reverses its side effects (stock, points, tier).
type ConsumptionLine struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	ProductID  int64     `json:"product_id" gorm:"index;not null"`
	GuestID    int64     `json:"guest_id" gorm:"index;not null"`
	TabID      int64     `json:"tab_id" gorm:"index;not null"`
	Quantity   int       `json:"quantity" gorm:"not null"`
	Total      float64   `json:"total" gorm:"not null"`
	Dispatched bool      `json:"dispatched" gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Guest   *Guest   `json:"guest,omitempty" gorm:"foreignKey:GuestID"`
}

func (ConsumptionLine) TableName() string { return "consumption_lines" }

type Payment struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	TabID     int64     `json:"tab_id" gorm:"index;not null"`
	Amount    float64   `json:"amount" gorm:"not null" validate:"gt=0"`
	Method    string    `json:"method" gorm:"type:varchar(24);not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Payment) TableName() string { return "payments" }
