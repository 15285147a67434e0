package domain

import "time"

type Product struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null" validate:"required"`
	Price     float64   `json:"price" gorm:"not null;default:0" validate:"gte=0"`
	Stock     int       `json:"stock" gorm:"not null;default:0"`
	Active    bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Product) TableName() string { return "products" }
