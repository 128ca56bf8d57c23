package infra

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"floreria/internal/model"
)

// Models lists every table owned by the backend, in dependency order.
var Models = []any{
	&model.User{},
	&model.PasswordReset{},
	&model.Product{},
	&model.StockMovement{},
	&model.Seller{},
	&model.Sale{},
	&model.SalePayment{},
	&model.Earning{},
	&model.Investment{},
}

// NewDatabase opens a GORM connection for driver ("postgres" or "mysql"),
// runs AutoMigrate and then the idempotent patches GORM cannot express.
func NewDatabase(driver, dsn string, verbose bool) (*gorm.DB, error) {
	dialector, err := openDialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	level := logger.Silent
	if verbose {
		level = logger.Warn
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
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
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

func openDialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "", "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	}
	return nil, fmt.Errorf("database: unsupported driver %q", driver)
}

// RunMigrations creates or updates every table. Integration tests call it
// directly on a container database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs DDL AutoMigrate cannot express. Postgres only.
func applySchemaPatches(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	patches := []string{
		// the due-date scan only looks at open sales
		`CREATE INDEX IF NOT EXISTS idx_sales_open_due
		    ON sales (due_date)
		    WHERE status IN ('PENDING', 'PARTIAL') AND due_date IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS idx_password_resets_pending
		    ON password_resets (expires_at)
		    WHERE used_at IS NULL`,
	}
	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
