package service

import (
	"context"

	"yardpos/internal/model"
	"yardpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerEntry is the input to an append. OrderID links settlement entries to
// their order; ReversalOf/ReversedType are set only for reversal entries.
type LedgerEntry struct {
	Type         string
	Amount       decimal.Decimal
	Description  string
	OrderID      *uuid.UUID
	ReversalOf   *uuid.UUID
	ReversedType *string
}

// LedgerService is the append-only transaction log per cash register.
// Entries are immutable; the owning register's running balance is updated in
// the same DB transaction, under a row lock so concurrent appends against
// one register are serialized.
type LedgerService interface {
	// Append writes one entry inside tx and applies its signed amount to the
	// register balance. The register must be open; the opening entry is
	// appended right after the register row is created, while it is open.
	Append(ctx context.Context, tx *gorm.DB, registerID uuid.UUID, entry LedgerEntry) (*model.CashTransaction, error)
}

type ledgerService struct {
	repo repository.RegisterRepository
}

func NewLedgerService(repo repository.RegisterRepository) LedgerService {
	return &ledgerService{repo: repo}
}

func (s *ledgerService) Append(ctx context.Context, tx *gorm.DB, registerID uuid.UUID, entry LedgerEntry) (*model.CashTransaction, error) {
	if entry.Amount.IsNegative() {
		return nil, ErrInvalidAmount
	}

	reg, err := s.repo.LockByID(tx, registerID)
	if err != nil {
		return nil, &StoreUnavailableError{Op: "ledger append", Err: err}
	}
	if reg.Status != model.RegisterOpen {
		return nil, ErrRegisterNotOpen
	}

	t := &model.CashTransaction{
		CashRegisterID: registerID,
		Type:           entry.Type,
		Amount:         entry.Amount,
		Description:    entry.Description,
		OrderID:        entry.OrderID,
		ReversalOf:     entry.ReversalOf,
		ReversedType:   entry.ReversedType,
	}
	if err := s.repo.CreateTransaction(ctx, tx, t); err != nil {
		return nil, err
	}

	if signed := t.SignedAmount(); !signed.IsZero() {
		reg.CurrentAmount = reg.CurrentAmount.Add(signed)
		if err := s.repo.Update(ctx, tx, reg); err != nil {
			return nil, err
		}
	}
	return t, nil
}
