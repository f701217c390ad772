package service

import (
	"context"
	"time"

	"yardpos/internal/dto"
	"yardpos/internal/model"
	"yardpos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ClosingNotifier enqueues the async closing-report job after a register is
// closed. Implemented by worker.Dispatcher; declared here to keep the
// service free of queue details.
type ClosingNotifier interface {
	EnqueueClosingReport(ctx context.Context, registerID uuid.UUID) error
}

// RegisterService owns the open → closed lifecycle of a cash drawer and is
// the only writer of CashRegister rows outside the ledger balance update.
type RegisterService interface {
	// Open creates a new register for the operator. If one is already open
	// it fails with ErrRegisterAlreadyOpen unless the request carries a
	// counted amount for the prior drawer, in which case the prior register
	// is closed properly and the new one opened in a single transaction.
	Open(ctx context.Context, operatorID uuid.UUID, req dto.OpenRegisterRequest) (*dto.RegisterResponse, error)
	// Close appends the closing entry recording the operator-counted amount
	// and freezes the register.
	Close(ctx context.Context, operatorID uuid.UUID, countedAmount decimal.Decimal) (*dto.RegisterResponse, error)
	// AddFunds records an addition entry. Callers must pass the external
	// authorization gate before invoking this (handler responsibility).
	AddFunds(ctx context.Context, operatorID uuid.UUID, amount decimal.Decimal, description string) error
	// RecordExpense records an expense entry, rejected when it would
	// overdraw the drawer.
	RecordExpense(ctx context.Context, operatorID uuid.UUID, amount decimal.Decimal, description string) error
	// Active returns the operator's open register, or nil when none exists.
	Active(ctx context.Context, operatorID uuid.UUID) (*dto.RegisterResponse, error)
	History(ctx context.Context, operatorID uuid.UUID, page, limit int) (*dto.RegisterHistoryResponse, error)
}

type registerService struct {
	repo     repository.RegisterRepository
	ledger   LedgerService
	notifier ClosingNotifier
	txm      repository.TxManager
}

func NewRegisterService(repo repository.RegisterRepository, ledger LedgerService, notifier ClosingNotifier, txm repository.TxManager) RegisterService {
	return &registerService{repo: repo, ledger: ledger, notifier: notifier, txm: txm}
}

func (s *registerService) Open(ctx context.Context, operatorID uuid.UUID, req dto.OpenRegisterRequest) (*dto.RegisterResponse, error) {
	if req.InitialAmount.IsNegative() {
		return nil, ErrInvalidAmount
	}

	var reg *model.CashRegister
	err := s.txm.Transaction(ctx, func(tx *gorm.DB) error {
		existing, err := s.repo.FindOpenByOperator(ctx, operatorID)
		if err != nil {
			return &StoreUnavailableError{Op: "open register", Err: err}
		}
		if existing != nil {
			// Refuse the lossy silent auto-close: the prior drawer may only
			// be closed with an explicit counted amount.
			if req.PriorCountedAmount == nil {
				return ErrRegisterAlreadyOpen
			}
			if err := s.closeLocked(ctx, tx, existing.ID, *req.PriorCountedAmount); err != nil {
				return err
			}
			log.Warn().
				Str("register_id", existing.ID.String()).
				Str("operator_id", operatorID.String()).
				Msg("prior open register closed during reopen")
		}

		reg = &model.CashRegister{
			OperatorID:    operatorID,
			InitialAmount: req.InitialAmount,
			CurrentAmount: req.InitialAmount,
			Status:        model.RegisterOpen,
			OpenedAt:      time.Now(),
		}
		if err := s.repo.Create(ctx, tx, reg); err != nil {
			return err
		}
		_, err = s.ledger.Append(ctx, tx, reg.ID, LedgerEntry{
			Type:        model.TxOpening,
			Amount:      req.InitialAmount,
			Description: "register opened",
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return registerToResponse(reg, nil), nil
}

// closeLocked appends the closing entry and freezes the register inside tx.
func (s *registerService) closeLocked(ctx context.Context, tx *gorm.DB, registerID uuid.UUID, counted decimal.Decimal) error {
	if counted.IsNegative() {
		return ErrInvalidAmount
	}
	if _, err := s.ledger.Append(ctx, tx, registerID, LedgerEntry{
		Type:        model.TxClosing,
		Amount:      counted,
		Description: "register closed",
	}); err != nil {
		return err
	}

	reg, err := s.repo.LockByID(tx, registerID)
	if err != nil {
		return err
	}
	now := time.Now()
	reg.Status = model.RegisterClosed
	reg.FinalAmount = &counted
	reg.ClosedAt = &now
	return s.repo.Update(ctx, tx, reg)
}

func (s *registerService) Close(ctx context.Context, operatorID uuid.UUID, countedAmount decimal.Decimal) (*dto.RegisterResponse, error) {
	reg, err := s.activeRegister(ctx, operatorID)
	if err != nil {
		return nil, err
	}

	err = s.txm.Transaction(ctx, func(tx *gorm.DB) error {
		return s.closeLocked(ctx, tx, reg.ID, countedAmount)
	})
	if err != nil {
		return nil, err
	}

	// Best-effort: the closing report is rendered and mailed asynchronously.
	if s.notifier != nil {
		if err := s.notifier.EnqueueClosingReport(ctx, reg.ID); err != nil {
			log.Error().Err(err).Str("register_id", reg.ID.String()).
				Msg("failed to enqueue closing report")
		}
	}

	closed, err := s.repo.FindByID(ctx, reg.ID)
	if err != nil {
		return nil, &StoreUnavailableError{Op: "close register", Err: err}
	}
	return registerToResponse(closed, closed.Transactions), nil
}

func (s *registerService) AddFunds(ctx context.Context, operatorID uuid.UUID, amount decimal.Decimal, description string) error {
	if amount.IsNegative() || amount.IsZero() {
		return ErrInvalidAmount
	}
	reg, err := s.activeRegister(ctx, operatorID)
	if err != nil {
		return err
	}
	return s.txm.Transaction(ctx, func(tx *gorm.DB) error {
		_, err := s.ledger.Append(ctx, tx, reg.ID, LedgerEntry{
			Type:        model.TxAddition,
			Amount:      amount,
			Description: description,
		})
		return err
	})
}

func (s *registerService) RecordExpense(ctx context.Context, operatorID uuid.UUID, amount decimal.Decimal, description string) error {
	if amount.IsNegative() || amount.IsZero() {
		return ErrInvalidAmount
	}
	reg, err := s.activeRegister(ctx, operatorID)
	if err != nil {
		return err
	}
	if reg.CurrentAmount.LessThan(amount) {
		return insufficientFunds(amount, reg.CurrentAmount)
	}
	return s.txm.Transaction(ctx, func(tx *gorm.DB) error {
		// Balance is re-read under the lock inside Append; the check above
		// is advisory, the drawer cannot go negative between check and
		// append under the single-writer-per-operator model.
		_, err := s.ledger.Append(ctx, tx, reg.ID, LedgerEntry{
			Type:        model.TxExpense,
			Amount:      amount,
			Description: description,
		})
		return err
	})
}

func (s *registerService) Active(ctx context.Context, operatorID uuid.UUID) (*dto.RegisterResponse, error) {
	reg, err := s.repo.FindOpenByOperator(ctx, operatorID)
	if err != nil {
		return nil, &StoreUnavailableError{Op: "active register", Err: err}
	}
	if reg == nil {
		return nil, nil
	}
	txs, err := s.repo.ListTransactions(ctx, reg.ID)
	if err != nil {
		return nil, &StoreUnavailableError{Op: "active register", Err: err}
	}
	return registerToResponse(reg, txs), nil
}

func (s *registerService) History(ctx context.Context, operatorID uuid.UUID, page, limit int) (*dto.RegisterHistoryResponse, error) {
	regs, total, err := s.repo.ListClosed(ctx, operatorID, page, limit)
	if err != nil {
		return nil, &StoreUnavailableError{Op: "register history", Err: err}
	}
	data := make([]dto.RegisterResponse, 0, len(regs))
	for i := range regs {
		data = append(data, *registerToResponse(&regs[i], nil))
	}
	return &dto.RegisterHistoryResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

func (s *registerService) activeRegister(ctx context.Context, operatorID uuid.UUID) (*model.CashRegister, error) {
	reg, err := s.repo.FindOpenByOperator(ctx, operatorID)
	if err != nil {
		return nil, &StoreUnavailableError{Op: "active register", Err: err}
	}
	if reg == nil {
		return nil, ErrRegisterNotOpen
	}
	return reg, nil
}

func registerToResponse(reg *model.CashRegister, txs []model.CashTransaction) *dto.RegisterResponse {
	resp := &dto.RegisterResponse{
		ID:            reg.ID.String(),
		InitialAmount: reg.InitialAmount,
		CurrentAmount: reg.CurrentAmount,
		FinalAmount:   reg.FinalAmount,
		Status:        reg.Status,
		OpenedAt:      reg.OpenedAt.Format(time.RFC3339),
	}
	if reg.ClosedAt != nil {
		t := reg.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &t
	}
	for _, t := range txs {
		tr := dto.TransactionResponse{
			ID:          t.ID.String(),
			Type:        t.Type,
			Amount:      t.Amount,
			Signed:      t.SignedAmount(),
			Description: t.Description,
			CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		}
		if t.OrderID != nil {
			id := t.OrderID.String()
			tr.OrderID = &id
		}
		resp.Transactions = append(resp.Transactions, tr)
	}
	return resp
}
