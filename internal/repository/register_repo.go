package repository

import (
	"context"

	"yardpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RegisterRepository interface {
	Create(ctx context.Context, tx *gorm.DB, r *model.CashRegister) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CashRegister, error)
	// FindOpenByOperator returns the operator's open register, or nil when
	// there is none. It must never return more than one result — the
	// partial unique index guarantees that at the store level.
	FindOpenByOperator(ctx context.Context, operatorID uuid.UUID) (*model.CashRegister, error)
	// LockByID re-reads a register with SELECT … FOR UPDATE inside tx.
	// Ledger appends are serialized through this lock.
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.CashRegister, error)
	Update(ctx context.Context, tx *gorm.DB, r *model.CashRegister) error
	CreateTransaction(ctx context.Context, tx *gorm.DB, t *model.CashTransaction) error
	ListTransactions(ctx context.Context, registerID uuid.UUID) ([]model.CashTransaction, error)
	// FindTransactionByOrder locates the sale/purchase entry a settlement
	// produced for the given order, regardless of register.
	FindTransactionByOrder(ctx context.Context, orderID uuid.UUID) (*model.CashTransaction, error)
	ListClosed(ctx context.Context, operatorID uuid.UUID, page, limit int) ([]model.CashRegister, int64, error)
}

type registerRepo struct{ db *gorm.DB }

func NewRegisterRepository(db *gorm.DB) RegisterRepository { return &registerRepo{db: db} }

func (r *registerRepo) Create(ctx context.Context, tx *gorm.DB, reg *model.CashRegister) error {
	return tx.WithContext(ctx).Create(reg).Error
}

func (r *registerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CashRegister, error) {
	var reg model.CashRegister
	err := r.db.WithContext(ctx).Preload("Transactions").First(&reg, id).Error
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *registerRepo) FindOpenByOperator(ctx context.Context, operatorID uuid.UUID) (*model.CashRegister, error) {
	var reg model.CashRegister
	err := r.db.WithContext(ctx).
		Where("operator_id = ? AND status = ?", operatorID, model.RegisterOpen).
		First(&reg).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *registerRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.CashRegister, error) {
	var reg model.CashRegister
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&reg, id).Error
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *registerRepo) Update(ctx context.Context, tx *gorm.DB, reg *model.CashRegister) error {
	return tx.WithContext(ctx).Save(reg).Error
}

func (r *registerRepo) CreateTransaction(ctx context.Context, tx *gorm.DB, t *model.CashTransaction) error {
	return tx.WithContext(ctx).Create(t).Error
}

func (r *registerRepo) ListTransactions(ctx context.Context, registerID uuid.UUID) ([]model.CashTransaction, error) {
	var txs []model.CashTransaction
	err := r.db.WithContext(ctx).
		Where("cash_register_id = ?", registerID).
		Order("created_at ASC").
		Find(&txs).Error
	return txs, err
}

func (r *registerRepo) FindTransactionByOrder(ctx context.Context, orderID uuid.UUID) (*model.CashTransaction, error) {
	var t model.CashTransaction
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND type IN ?",
			orderID, []string{model.TxSale, model.TxPurchase}).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *registerRepo) ListClosed(ctx context.Context, operatorID uuid.UUID, page, limit int) ([]model.CashRegister, int64, error) {
	var regs []model.CashRegister
	var total int64
	q := r.db.WithContext(ctx).Model(&model.CashRegister{}).
		Where("operator_id = ? AND status = ?", operatorID, model.RegisterClosed)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("closed_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&regs).Error
	return regs, total, err
}
