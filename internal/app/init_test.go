package app

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"github.com/salonkit/salonkit-server/internal/config"
	"github.com/salonkit/salonkit-server/internal/db"
	"github.com/salonkit/salonkit-server/internal/models"
	"github.com/salonkit/salonkit-server/internal/security"
)

func openMigratedDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, errOpen := db.Open(filepath.Join(t.TempDir(), "init.db"))
	if errOpen != nil {
		t.Fatalf("open: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return conn
}

func TestCreateAdminUser_SetsSuperAdmin(t *testing.T) {
	conn := openMigratedDB(t)

	if errCreate := CreateAdminUser(conn, "admin", "password123"); errCreate != nil {
		t.Fatalf("create admin: %v", errCreate)
	}

	var admin models.Admin
	if errFind := conn.Where("username = ?", "admin").First(&admin).Error; errFind != nil {
		t.Fatalf("load admin: %v", errFind)
	}
	if !admin.IsSuperAdmin {
		t.Fatalf("first admin should be super admin")
	}
	if !admin.Active {
		t.Fatalf("first admin should be active")
	}
	if admin.Password == "password123" {
		t.Fatalf("password stored in plain text")
	}
	if !security.CheckPassword(admin.Password, "password123") {
		t.Fatalf("stored hash does not verify")
	}
}

func TestEnsureAdmin_SeedsFromEnv(t *testing.T) {
	conn := openMigratedDB(t)
	t.Setenv(config.EnvAdminUsername, "root")
	t.Setenv(config.EnvAdminPassword, "secret123")

	if errEnsure := EnsureAdmin(conn); errEnsure != nil {
		t.Fatalf("ensure admin: %v", errEnsure)
	}

	initialized, errCheck := HasAdminInitialized(conn)
	if errCheck != nil {
		t.Fatalf("check: %v", errCheck)
	}
	if !initialized {
		t.Fatalf("expected admin to be seeded")
	}

	// A second run must not add another account.
	t.Setenv(config.EnvAdminUsername, "another")
	if errEnsure := EnsureAdmin(conn); errEnsure != nil {
		t.Fatalf("second ensure: %v", errEnsure)
	}
	var count int64
	if errCount := conn.Model(&models.Admin{}).Count(&count).Error; errCount != nil {
		t.Fatalf("count: %v", errCount)
	}
	if count != 1 {
		t.Fatalf("expected 1 admin, got %d", count)
	}
}

func TestEnsureAdmin_NoEnvNoAccount(t *testing.T) {
	conn := openMigratedDB(t)
	t.Setenv(config.EnvAdminUsername, "")
	t.Setenv(config.EnvAdminPassword, "")

	if errEnsure := EnsureAdmin(conn); errEnsure != nil {
		t.Fatalf("ensure without env should not fail: %v", errEnsure)
	}
	initialized, errCheck := HasAdminInitialized(conn)
	if errCheck != nil {
		t.Fatalf("check: %v", errCheck)
	}
	if initialized {
		t.Fatalf("no account should be created without credentials")
	}
}

func TestEnsureAdmin_RejectsShortPassword(t *testing.T) {
	conn := openMigratedDB(t)
	t.Setenv(config.EnvAdminUsername, "root")
	t.Setenv(config.EnvAdminPassword, "abc")

	if errEnsure := EnsureAdmin(conn); errEnsure == nil {
		t.Fatalf("expected error for short password")
	}
}
