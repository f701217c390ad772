package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order status and type values.
const (
	OrderOpen      = "open"
	OrderCompleted = "completed"

	OrderPurchase = "purchase" // yard buys scrap from the customer
	OrderSale     = "sale"     // yard sells material to the customer
)

// Payment methods. Orders without a resolvable payment record default to
// cash during reconciliation.
const (
	PayCash   = "cash"
	PayPix    = "pix"
	PayDebit  = "debit"
	PayCredit = "credit"
)

// Order is a customer transaction in progress or finished.
// Total always equals the sum of its items' totals; the type is frozen once
// the order has at least one item. A completed order is immutable except for
// the cancellation flag, which excludes it from reconciliation.
type Order struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Number      int             `gorm:"uniqueIndex;not null"`
	OperatorID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type        string          `gorm:"type:varchar(10);not null"`
	Status      string          `gorm:"type:varchar(10);not null;default:'open'"`
	Cancelled   bool            `gorm:"not null;default:false"`
	Total       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt   time.Time
	CompletedAt *time.Time

	Customer *Customer     `gorm:"foreignKey:CustomerID"`
	Items    []OrderItem   `gorm:"foreignKey:OrderID"`
	Payment  *OrderPayment `gorm:"foreignKey:OrderID"`
}

// OrderItem is one priced line. Quantity is the net weight, already reduced
// by Tare; Total is always UnitPrice × Quantity.
type OrderItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	MaterialID   uuid.UUID       `gorm:"type:uuid;not null"`
	MaterialName string          `gorm:"not null"`
	Position     int             `gorm:"not null"`
	Quantity     decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	Tare         decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt    time.Time
}

// OrderPayment records how a completed order was paid, keyed by order id.
type OrderPayment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID   uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Method    string    `gorm:"type:varchar(10);not null"`
	CreatedAt time.Time
}
