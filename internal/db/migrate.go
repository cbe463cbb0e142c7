package db

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/salonkit/salonkit-server/internal/models"
	internalsettings "github.com/salonkit/salonkit-server/internal/settings"
)

// Migrate runs database migrations for the current dialect.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	switch DialectName(conn) {
	case DialectSQLite:
		return migrateSQLite(conn)
	case DialectPostgres, "":
		return migratePostgres(conn)
	default:
		return fmt.Errorf("db: unsupported dialect: %s", DialectName(conn))
	}
}

// autoMigrateAll applies the shared schema for every model.
func autoMigrateAll(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&models.Admin{},
		&models.Plan{},
		&models.Affiliate{},
		&models.Company{},
		&models.Client{},
		&models.Professional{},
		&models.Service{},
		&models.Appointment{},
		&models.Task{},
		&models.Coupon{},
		&models.Campaign{},
		&models.SupportTicket{},
		&models.TicketMessage{},
		&models.Setting{},
		&models.WebhookEvent{},
	)
}

// migratePostgres applies PostgreSQL-specific schema updates and indexes.
func migratePostgres(conn *gorm.DB) error {
	if errAutoMigrate := autoMigrateAll(conn); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}
	if errSeed := ensureDefaultSettings(conn); errSeed != nil {
		return errSeed
	}

	// ddl defines an index or DDL statement to apply.
	type ddl struct {
		name string // Human-readable name for error reporting.
		sql  string // SQL to execute.
	}
	ddls := []ddl{
		{
			name: "idx_companies_blocked_true",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_companies_blocked_true
				ON companies (id)
				WHERE blocked = true
			`,
		},
		{
			name: "idx_appointments_company_starts",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_appointments_company_starts
				ON appointments (company_id, starts_at DESC)
			`,
		},
		{
			name: "idx_professionals_company_active",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_professionals_company_active
				ON professionals (company_id)
				WHERE active = true
			`,
		},
		{
			name: "idx_plans_permissions",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_plans_permissions
				ON plans USING gin (permissions)
			`,
		},
	}
	for _, d := range ddls {
		if errExec := conn.Exec(d.sql).Error; errExec != nil {
			return fmt.Errorf("db: create %s: %w", d.name, errExec)
		}
	}
	return nil
}

// migrateSQLite applies the schema for SQLite (local runs and tests).
func migrateSQLite(conn *gorm.DB) error {
	if errAutoMigrate := autoMigrateAll(conn); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}
	return ensureDefaultSettings(conn)
}

// ensureDefaultSettings seeds missing setting rows with their defaults.
func ensureDefaultSettings(conn *gorm.DB) error {
	defaults := map[string]string{
		internalsettings.SiteNameKey:         internalsettings.DefaultSiteName,
		internalsettings.SupportEmailKey:     internalsettings.DefaultSupportEmail,
		internalsettings.DefaultTrialDaysKey: internalsettings.DefaultTrialDaysValue,
	}
	now := time.Now().UTC()
	for key, value := range defaults {
		var count int64
		if errCount := conn.Model(&models.Setting{}).Where("key = ?", key).Count(&count).Error; errCount != nil {
			return fmt.Errorf("db: check setting %s: %w", key, errCount)
		}
		if count > 0 {
			continue
		}
		row := models.Setting{Key: key, Value: value, CreatedAt: now, UpdatedAt: now}
		if errCreate := conn.Create(&row).Error; errCreate != nil {
			return fmt.Errorf("db: seed setting %s: %w", key, errCreate)
		}
	}
	return nil
}
