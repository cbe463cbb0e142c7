package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/salonkit/salonkit-server/internal/models"
	"github.com/salonkit/salonkit-server/internal/security"
	internalsettings "github.com/salonkit/salonkit-server/internal/settings"
)

// MFAHandler manages admin TOTP enrollment.
type MFAHandler struct {
	db *gorm.DB
}

// NewMFAHandler constructs an MFAHandler.
func NewMFAHandler(db *gorm.DB) *MFAHandler {
	return &MFAHandler{db: db}
}

// currentAdmin loads the admin record set by the auth middleware.
func currentAdmin(c *gin.Context, db *gorm.DB) (*models.Admin, bool) {
	adminID := c.GetUint64("adminID")
	if adminID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return nil, false
	}
	var admin models.Admin
	if errFind := db.WithContext(c.Request.Context()).First(&admin, adminID).Error; errFind != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "admin not found"})
		return nil, false
	}
	return &admin, true
}

// Status reports whether TOTP is enabled for the current admin.
func (h *MFAHandler) Status(c *gin.Context) {
	admin, ok := currentAdmin(c, h.db)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"totp_enabled": admin.TOTPSecret != ""})
}

// PrepareTOTP generates a new TOTP secret for enrollment. The secret only
// becomes active after ConfirmTOTP verifies a code against it.
func (h *MFAHandler) PrepareTOTP(c *gin.Context) {
	admin, ok := currentAdmin(c, h.db)
	if !ok {
		return
	}
	if admin.TOTPSecret != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "totp already enabled"})
		return
	}

	key, errGenerate := security.GenerateTOTPSecret(internalsettings.DefaultSiteName, admin.Username)
	if errGenerate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "generate secret failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"secret": key.Secret(), "url": key.URL()})
}

// confirmTOTPRequest carries the enrollment confirmation payload.
type confirmTOTPRequest struct {
	Secret string `json:"secret"`
	Code   string `json:"code"`
}

// ConfirmTOTP verifies the first code and persists the secret.
func (h *MFAHandler) ConfirmTOTP(c *gin.Context) {
	admin, ok := currentAdmin(c, h.db)
	if !ok {
		return
	}

	var body confirmTOTPRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	secret := strings.TrimSpace(body.Secret)
	if !security.ValidateTOTP(secret, strings.TrimSpace(body.Code)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid code"})
		return
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.Admin{}).Where("id = ?", admin.ID).
		Updates(map[string]any{"totp_secret": secret, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// DisableTOTP removes the stored TOTP secret after verifying a final code.
func (h *MFAHandler) DisableTOTP(c *gin.Context) {
	admin, ok := currentAdmin(c, h.db)
	if !ok {
		return
	}
	if admin.TOTPSecret == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "totp not enabled"})
		return
	}

	var body struct {
		Code string `json:"code"`
	}
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if !security.ValidateTOTP(admin.TOTPSecret, strings.TrimSpace(body.Code)) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid code"})
		return
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.Admin{}).Where("id = ?", admin.ID).
		Updates(map[string]any{"totp_secret": "", "updated_at": time.Now().UTC()})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
