package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/salonkit/salonkit-server/internal/config"
	"github.com/salonkit/salonkit-server/internal/models"
	"github.com/salonkit/salonkit-server/internal/security"
)

// HasAdminInitialized reports whether any admin account exists.
func HasAdminInitialized(conn *gorm.DB) (bool, error) {
	if conn == nil {
		return false, fmt.Errorf("nil connection")
	}
	var count int64
	if errCount := conn.Model(&models.Admin{}).Count(&count).Error; errCount != nil {
		return false, fmt.Errorf("count admins: %w", errCount)
	}
	return count > 0, nil
}

// EnsureAdmin seeds the first super admin from ADMIN_USERNAME and
// ADMIN_PASSWORD when the admins table is empty. With no credentials in the
// environment the server still starts; admin setup then needs a manual seed.
func EnsureAdmin(conn *gorm.DB) error {
	initialized, errCheck := HasAdminInitialized(conn)
	if errCheck != nil {
		return errCheck
	}
	if initialized {
		return nil
	}

	username := strings.TrimSpace(os.Getenv(config.EnvAdminUsername))
	password := os.Getenv(config.EnvAdminPassword)
	if username == "" || strings.TrimSpace(password) == "" {
		log.Warn("no admin account exists and ADMIN_USERNAME/ADMIN_PASSWORD are unset")
		return nil
	}
	if len(password) < 6 {
		return fmt.Errorf("admin password must be at least 6 characters")
	}

	if errCreate := CreateAdminUser(conn, username, password); errCreate != nil {
		return errCreate
	}
	log.Infof("seeded initial super admin %q", username)
	return nil
}

// CreateAdminUser creates the first super admin account.
func CreateAdminUser(conn *gorm.DB, username, password string) error {
	if conn == nil {
		return fmt.Errorf("nil connection")
	}

	hashedPassword, errHash := security.HashPassword(password)
	if errHash != nil {
		return fmt.Errorf("hash password: %w", errHash)
	}

	now := time.Now().UTC()
	admin := models.Admin{
		Username:     username,
		Password:     hashedPassword,
		Active:       true,
		IsSuperAdmin: true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if errCreate := conn.Create(&admin).Error; errCreate != nil {
		return fmt.Errorf("create admin: %w", errCreate)
	}
	return nil
}
