package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is a purchase container. Total starts at 0.00 and is adjusted in
// lockstep with line mutations; RecomputeTotal in the orders repository is
// the authoritative sum.
type Order struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Total     decimal.Decimal `gorm:"column:total;type:numeric(10,2);not null"`
	Lines     []OrderLine     `gorm:"foreignKey:OrderID"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
