package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a buyer identity. IDs are supplied by the caller, so creation
// is idempotent: ensuring an existing customer is a no-op.
type Customer struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
