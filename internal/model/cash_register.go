package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Register status values.
const (
	RegisterOpen   = "open"
	RegisterClosed = "closed"
)

// Cash transaction types. Opening and closing are bookkeeping markers with
// no balance effect of their own: opening records the float the register
// started with, closing records the operator-counted amount.
const (
	TxOpening  = "opening"
	TxSale     = "sale"
	TxPurchase = "purchase"
	TxAddition = "addition"
	TxExpense  = "expense"
	TxClosing  = "closing"
	TxReversal = "reversal"
)

// CashRegister tracks one physical cash drawer for one operator during one
// open/close cycle. At most one register per operator may be open at a time
// (enforced by a partial unique index, see infra.applySchemaPatches).
type CashRegister struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OperatorID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	InitialAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// CurrentAmount is the running balance: InitialAmount plus the signed
	// sum of all ledger entries. Mutated only by LedgerService under a row lock.
	CurrentAmount decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	FinalAmount   *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Status        string           `gorm:"type:varchar(10);not null;default:'open'"`
	OpenedAt      time.Time
	ClosedAt      *time.Time

	Transactions []CashTransaction `gorm:"foreignKey:CashRegisterID"`
}

// CashTransaction is one immutable monetary event attributed to a register.
// Entries are NEVER updated or deleted — mistakes are corrected by appending
// a reversal entry that references the original.
type CashTransaction struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CashRegisterID uuid.UUID `gorm:"type:uuid;not null;index"`
	Type           string    `gorm:"type:varchar(10);not null"`
	// Amount is a non-negative magnitude; the sign is derived from Type.
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Description string          `gorm:"not null"`
	// OrderID links sale/purchase entries to the order that caused them.
	OrderID *uuid.UUID `gorm:"type:uuid;index"`
	// ReversalOf points at the entry a reversal compensates; ReversedType
	// carries that entry's type so the signed effect stays derivable even
	// without loading the original row.
	ReversalOf   *uuid.UUID `gorm:"type:uuid"`
	ReversedType *string    `gorm:"type:varchar(10)"`
	CreatedAt    time.Time
}

// SignedAmount returns the balance effect of the entry: positive for money
// into the drawer, negative for money out, zero for the opening/closing
// markers. A reversal carries the negated sign of the entry it compensates.
func (t CashTransaction) SignedAmount() decimal.Decimal {
	switch t.Type {
	case TxSale, TxAddition:
		return t.Amount
	case TxPurchase, TxExpense:
		return t.Amount.Neg()
	case TxReversal:
		if t.ReversedType == nil {
			return decimal.Zero
		}
		switch *t.ReversedType {
		case TxSale, TxAddition:
			return t.Amount.Neg()
		case TxPurchase, TxExpense:
			return t.Amount
		}
	}
	return decimal.Zero
}
