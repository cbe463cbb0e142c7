package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/salonkit/salonkit-server/internal/models"
)

// CampaignFrontHandler manages a tenant's WhatsApp campaigns. Delivery runs
// through an external integration; the handlers only store and schedule.
type CampaignFrontHandler struct {
	db *gorm.DB
}

// NewCampaignFrontHandler constructs a CampaignFrontHandler.
func NewCampaignFrontHandler(db *gorm.DB) *CampaignFrontHandler {
	return &CampaignFrontHandler{db: db}
}

// createCampaignRequest captures the payload for creating a campaign.
type createCampaignRequest struct {
	Name      string   `json:"name"`
	Message   string   `json:"message"`
	ClientIDs []uint64 `json:"client_ids"`
}

// Create stores a draft campaign targeting the given clients. Only active
// clients with a phone number are accepted into the audience.
func (h *CampaignFrontHandler) Create(c *gin.Context) {
	companyID := getCompanyID(c)
	if companyID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body createCampaignRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.Name)
	message := strings.TrimSpace(body.Message)
	if name == "" || message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and message are required"})
		return
	}
	if len(body.ClientIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "client_ids cannot be empty"})
		return
	}

	var reachable []uint64
	if errFind := h.db.WithContext(c.Request.Context()).Model(&models.Client{}).
		Where("company_id = ? AND active = ? AND phone <> '' AND id IN ?", companyID, true, body.ClientIDs).
		Pluck("id", &reachable).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if len(reachable) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no reachable clients in audience"})
		return
	}

	audience, errMarshal := json.Marshal(reachable)
	if errMarshal != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "encode audience failed"})
		return
	}

	now := time.Now().UTC()
	campaign := models.Campaign{
		CompanyID: companyID,
		Name:      name,
		Message:   message,
		Audience:  datatypes.JSON(audience),
		Status:    models.CampaignStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&campaign).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create campaign failed"})
		return
	}
	c.JSON(http.StatusCreated, h.formatCampaign(&campaign))
}

// List returns the tenant's campaigns.
func (h *CampaignFrontHandler) List(c *gin.Context) {
	companyID := getCompanyID(c)
	if companyID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	q := h.db.WithContext(c.Request.Context()).Model(&models.Campaign{}).Where("company_id = ?", companyID)
	if statusQ := strings.TrimSpace(c.Query("status")); statusQ != "" {
		q = q.Where("status = ?", statusQ)
	}

	var rows []models.Campaign
	if errFind := q.Order("created_at DESC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list campaigns failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, h.formatCampaign(&row))
	}
	c.JSON(http.StatusOK, gin.H{"campaigns": out})
}

// queueCampaignRequest schedules a campaign for delivery.
type queueCampaignRequest struct {
	ScheduledAt *time.Time `json:"scheduled_at"` // Nil means send as soon as possible.
}

// Queue moves a draft campaign into the delivery queue.
func (h *CampaignFrontHandler) Queue(c *gin.Context) {
	companyID := getCompanyID(c)
	if companyID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	campaign, ok := h.findCampaign(c, companyID)
	if !ok {
		return
	}
	if campaign.Status != models.CampaignStatusDraft {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only draft campaigns can be queued"})
		return
	}

	var body queueCampaignRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	now := time.Now().UTC()
	scheduledAt := now
	if body.ScheduledAt != nil {
		if body.ScheduledAt.Before(now) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "scheduled_at must be in the future"})
			return
		}
		scheduledAt = body.ScheduledAt.UTC()
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.Campaign{}).
		Where("id = ?", campaign.ID).
		Updates(map[string]any{
			"status":       models.CampaignStatusQueued,
			"scheduled_at": scheduledAt,
			"updated_at":   now,
		}).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Delete removes a campaign that has not been sent.
func (h *CampaignFrontHandler) Delete(c *gin.Context) {
	companyID := getCompanyID(c)
	if companyID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	campaign, ok := h.findCampaign(c, companyID)
	if !ok {
		return
	}
	if campaign.Status == models.CampaignStatusSent {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sent campaigns cannot be deleted"})
		return
	}

	if errDelete := h.db.WithContext(c.Request.Context()).Delete(&models.Campaign{}, campaign.ID).Error; errDelete != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// findCampaign resolves the :id path param within the tenant scope.
func (h *CampaignFrontHandler) findCampaign(c *gin.Context, companyID uint64) (*models.Campaign, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return nil, false
	}
	var campaign models.Campaign
	errFind := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND company_id = ?", id, companyID).
		First(&campaign).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return nil, false
	}
	return &campaign, true
}

// formatCampaign converts a campaign into a response payload.
func (h *CampaignFrontHandler) formatCampaign(cp *models.Campaign) gin.H {
	var audience []uint64
	_ = json.Unmarshal(cp.Audience, &audience)
	return gin.H{
		"id":            cp.ID,
		"name":          cp.Name,
		"message":       cp.Message,
		"client_ids":    audience,
		"status":        cp.Status,
		"scheduled_at":  cp.ScheduledAt,
		"audience_size": len(audience),
		"created_at":    cp.CreatedAt,
		"updated_at":    cp.UpdatedAt,
	}
}
