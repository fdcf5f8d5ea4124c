package infra

import (
	"fmt"

	"armory/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies any idempotent SQL patches that GORM
// cannot express.
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

// RunMigrations creates / updates the schema. Shared with integration tests so
// they run against the exact production schema.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Base{},
		&model.EquipmentType{},
		&model.StockLevel{},
		&model.Purchase{},
		&model.Expenditure{},
		&model.Transfer{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot fully handle
// on its own. Each statement uses existence guards so re-running on an
// already-patched DB is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// Claim queries scan open transfers; partial index keeps that cheap.
		`DO $$ BEGIN
		  IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'transfers')
		    AND NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_transfers_open') THEN
		    CREATE INDEX idx_transfers_open
		        ON transfers (requested_at)
		        WHERE status = 'open';
		  END IF;
		END $$`,
		// Base dashboards filter transfers by either side.
		`DO $$ BEGIN
		  IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'transfers')
		    AND NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_transfers_request_base') THEN
		    CREATE INDEX idx_transfers_request_base ON transfers (request_base, status);
		  END IF;
		END $$`,
		`DO $$ BEGIN
		  IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'transfers')
		    AND NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_transfers_supplier_base') THEN
		    CREATE INDEX idx_transfers_supplier_base ON transfers (supplier_base, status);
		  END IF;
		END $$`,
		// Movement lists page by base and date.
		`DO $$ BEGIN
		  IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'purchases')
		    AND NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_purchases_base_date') THEN
		    CREATE INDEX idx_purchases_base_date ON purchases (base_code, purchased_at DESC);
		  END IF;
		END $$`,
		`DO $$ BEGIN
		  IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'expenditures')
		    AND NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_expenditures_base_date') THEN
		    CREATE INDEX idx_expenditures_base_date ON expenditures (base_code, created_at DESC);
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
