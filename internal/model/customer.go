package model

import (
	"time"

	"github.com/google/uuid"
)

// Customer is the identity an order is settled against. Created implicitly
// when an order is opened against a new name, removed when its last order
// is deleted.
type Customer struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OperatorID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_customer_operator_name"`
	Name       string    `gorm:"not null;uniqueIndex:idx_customer_operator_name"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Orders []Order `gorm:"foreignKey:CustomerID"`
}
