package infra

import (
	"fmt"

	"yardpos/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches GORM
// cannot express (partial unique index, order-number sequence).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations applies AutoMigrate plus the schema patches. Split out so
// integration tests can run it against their own database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Operator{},
		&model.Material{},
		&model.Customer{},
		&model.CashRegister{},
		&model.CashTransaction{},
		&model.Order{},
		&model.OrderItem{},
		&model.OrderPayment{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL statements that GORM AutoMigrate
// cannot fully handle on its own. Each statement uses IF NOT EXISTS / guard
// semantics so re-running on an already-patched DB is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// One open register per operator, enforced at the store level. The
		// service checks first, but the partial unique index is what makes
		// the invariant hold under concurrent opens.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_one_open_register_per_operator') THEN
		    CREATE UNIQUE INDEX idx_one_open_register_per_operator
		        ON cash_registers (operator_id)
		        WHERE status = 'open';
		  END IF;
		END $$`,
		// Order numbers come from a sequence so numbering stays atomic
		// across concurrent sessions.
		`CREATE SEQUENCE IF NOT EXISTS orders_number_seq START 1`,
		// Reconciliation reads a register's entries in insertion order.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_cash_transactions_register_created') THEN
		    CREATE INDEX idx_cash_transactions_register_created
		        ON cash_transactions (cash_register_id, created_at);
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
