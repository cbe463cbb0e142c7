package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/salonkit/salonkit-server/internal/models"
)

// SettingsHandler manages platform key/value settings.
type SettingsHandler struct {
	db *gorm.DB
}

// NewSettingsHandler constructs a SettingsHandler.
func NewSettingsHandler(db *gorm.DB) *SettingsHandler {
	return &SettingsHandler{db: db}
}

// List returns all settings as a key/value map.
func (h *SettingsHandler) List(c *gin.Context) {
	var rows []models.Setting
	if errFind := h.db.WithContext(c.Request.Context()).Order("key ASC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list settings failed"})
		return
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	c.JSON(http.StatusOK, gin.H{"settings": out})
}

// updateSettingsRequest carries a partial settings map to upsert.
type updateSettingsRequest struct {
	Settings map[string]string `json:"settings"`
}

// Update upserts the provided settings keys.
func (h *SettingsHandler) Update(c *gin.Context) {
	var body updateSettingsRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if len(body.Settings) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "settings map is empty"})
		return
	}

	now := time.Now().UTC()
	rows := make([]models.Setting, 0, len(body.Settings))
	for key, value := range body.Settings {
		key = strings.TrimSpace(key)
		if key == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "setting key cannot be empty"})
			return
		}
		rows = append(rows, models.Setting{Key: key, Value: value, CreatedAt: now, UpdatedAt: now})
	}

	errUpsert := h.db.WithContext(c.Request.Context()).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rows).Error
	if errUpsert != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update settings failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
