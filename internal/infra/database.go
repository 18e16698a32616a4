package infra

import (
	"fmt"

	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, migrates the ledger
// tables and then applies the idempotent SQL patches GORM cannot express.
// TranslateError is on so unique violations surface as gorm.ErrDuplicatedKey.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
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

// RunMigrations creates or updates the ledger tables and applies the patches.
// The online_orders tables belong to the web storefront; they are migrated
// too so a bare database is usable in development and tests.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.CashShift{},
		&model.CashMovement{},
		&model.Transaction{},
		&model.LineItem{},
		&model.Payment{},
		&model.ExternalOrder{},
		&model.ExternalOrderItem{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent DDL statements that AutoMigrate cannot
// express. Each statement uses IF NOT EXISTS semantics so re-running on an
// already-patched DB is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// At most one shift may be OPEN: the store-side guard behind the
		// in-process mutex of the shift service.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_cash_shifts_single_open
		    ON cash_shifts ((status))
		    WHERE status = 'OPEN'`,
		`CREATE INDEX IF NOT EXISTS idx_online_orders_status
		    ON online_orders (status, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_cash_movements_shift_ts
		    ON cash_movements (shift_id, timestamp)`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
