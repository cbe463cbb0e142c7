package db

import (
	"path/filepath"
	"testing"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/salonkit/salonkit-server/internal/models"
	internalsettings "github.com/salonkit/salonkit-server/internal/settings"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "migrate.db")
	conn, errOpen := Open(dsn)
	if errOpen != nil {
		t.Fatalf("open: %v", errOpen)
	}
	return conn
}

func TestMigrate_CreatesSchema(t *testing.T) {
	conn := openTestDB(t)
	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	// A round trip through the main tables proves the schema exists.
	plan := models.Plan{Name: "Starter", Permissions: datatypes.JSON(`{"dashboard":true}`), IsEnabled: true}
	if errCreate := conn.Create(&plan).Error; errCreate != nil {
		t.Fatalf("create plan: %v", errCreate)
	}
	company := models.Company{Name: "Studio A", Email: "a@studio.test", Password: "x", PlanID: &plan.ID, Active: true}
	if errCreate := conn.Create(&company).Error; errCreate != nil {
		t.Fatalf("create company: %v", errCreate)
	}

	var loaded models.Company
	if errFind := conn.Preload("Plan").First(&loaded, company.ID).Error; errFind != nil {
		t.Fatalf("load company: %v", errFind)
	}
	if loaded.Plan == nil || loaded.Plan.Name != "Starter" {
		t.Fatalf("plan preload failed: %+v", loaded.Plan)
	}
}

func TestMigrate_SeedsDefaultSettings(t *testing.T) {
	conn := openTestDB(t)
	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	cases := []struct {
		key  string
		want string
	}{
		{internalsettings.SiteNameKey, internalsettings.DefaultSiteName},
		{internalsettings.SupportEmailKey, internalsettings.DefaultSupportEmail},
		{internalsettings.DefaultTrialDaysKey, internalsettings.DefaultTrialDaysValue},
	}
	for _, c := range cases {
		var row models.Setting
		if errFind := conn.Where("key = ?", c.key).First(&row).Error; errFind != nil {
			t.Fatalf("setting %s missing: %v", c.key, errFind)
		}
		if row.Value != c.want {
			t.Fatalf("setting %s = %q, want %q", c.key, row.Value, c.want)
		}
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	conn := openTestDB(t)
	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("first migrate: %v", errMigrate)
	}

	// Seeded settings must not duplicate or reset on the second run.
	if errUpdate := conn.Model(&models.Setting{}).
		Where("key = ?", internalsettings.SiteNameKey).
		Update("value", "Renamed").Error; errUpdate != nil {
		t.Fatalf("update setting: %v", errUpdate)
	}
	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("second migrate: %v", errMigrate)
	}

	var count int64
	if errCount := conn.Model(&models.Setting{}).
		Where("key = ?", internalsettings.SiteNameKey).
		Count(&count).Error; errCount != nil {
		t.Fatalf("count: %v", errCount)
	}
	if count != 1 {
		t.Fatalf("expected one row for %s, got %d", internalsettings.SiteNameKey, count)
	}
	var row models.Setting
	if errFind := conn.Where("key = ?", internalsettings.SiteNameKey).First(&row).Error; errFind != nil {
		t.Fatalf("load setting: %v", errFind)
	}
	if row.Value != "Renamed" {
		t.Fatalf("second migrate overwrote value: %q", row.Value)
	}
}
