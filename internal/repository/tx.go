package repository

import (
	"context"

	"gorm.io/gorm"
)

// TxManager owns database transaction boundaries. Services run each atomic
// unit of work through it; fn either commits as a whole or rolls back as a
// whole. Tests substitute an in-memory transactor with the same contract.
type TxManager interface {
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTxManager struct{ db *gorm.DB }

func NewTxManager(db *gorm.DB) TxManager { return &gormTxManager{db: db} }

func (m *gormTxManager) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return m.db.WithContext(ctx).Transaction(fn)
}
