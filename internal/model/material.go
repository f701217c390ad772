package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Material is one entry of the yard's price list (copper, aluminum, iron…).
// Stock is NOT tracked here — current stock comes from the external
// inventory aggregator (see service.StockProvider).
type Material struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name   string    `gorm:"uniqueIndex;not null"`
	Unit   string    `gorm:"not null;default:'kg'"`
	// ReferencePrice is the suggested price per unit; the actual line price
	// is negotiated per order item.
	ReferencePrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Active         bool            `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
