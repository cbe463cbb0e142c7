package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	dbutil "github.com/salonkit/salonkit-server/internal/db"
	"github.com/salonkit/salonkit-server/internal/models"
	"github.com/salonkit/salonkit-server/internal/phone"
)

// AffiliateHandler manages admin CRUD for referral affiliates.
type AffiliateHandler struct {
	db *gorm.DB
}

// NewAffiliateHandler constructs an AffiliateHandler.
func NewAffiliateHandler(db *gorm.DB) *AffiliateHandler {
	return &AffiliateHandler{db: db}
}

// newReferralCode derives a short uppercase code from a random UUID.
func newReferralCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:8])
}

// createAffiliateRequest captures the payload for creating an affiliate.
type createAffiliateRequest struct {
	Name              string  `json:"name"`
	Email             string  `json:"email"`
	Phone             string  `json:"phone"`
	CommissionPercent float64 `json:"commission_percent"`
}

// Create validates input and inserts a new affiliate with a fresh referral code.
func (h *AffiliateHandler) Create(c *gin.Context) {
	var body createAffiliateRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	name := strings.TrimSpace(body.Name)
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if name == "" || email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and email are required"})
		return
	}
	if body.CommissionPercent < 0 || body.CommissionPercent > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "commission_percent must be between 0 and 100"})
		return
	}

	normalizedPhone := ""
	if strings.TrimSpace(body.Phone) != "" {
		var errPhone error
		normalizedPhone, errPhone = phone.Normalize(body.Phone)
		if errPhone != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid phone"})
			return
		}
	}

	now := time.Now().UTC()
	affiliate := models.Affiliate{
		Name:              name,
		Email:             email,
		Phone:             normalizedPhone,
		ReferralCode:      newReferralCode(),
		CommissionPercent: body.CommissionPercent,
		Active:            true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&affiliate).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create affiliate failed"})
		return
	}
	c.JSON(http.StatusCreated, h.formatAffiliate(&affiliate, 0))
}

// List returns affiliates with referred-company counts.
func (h *AffiliateHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&models.Affiliate{})
	if searchQ := strings.TrimSpace(c.Query("search")); searchQ != "" {
		pattern := dbutil.NormalizeLikePattern(h.db, "%"+searchQ+"%")
		q = q.Where(
			dbutil.CaseInsensitiveLikeExpr(h.db, "name")+" OR "+
				dbutil.CaseInsensitiveLikeExpr(h.db, "email"),
			pattern,
			pattern,
		)
	}

	var rows []models.Affiliate
	if errFind := q.Order("created_at DESC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list affiliates failed"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		var referred int64
		if errCount := h.db.WithContext(c.Request.Context()).Model(&models.Company{}).
			Where("affiliate_id = ?", row.ID).Count(&referred).Error; errCount != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "count referrals failed"})
			return
		}
		out = append(out, h.formatAffiliate(&row, referred))
	}
	c.JSON(http.StatusOK, gin.H{"affiliates": out})
}

// Get fetches an affiliate by ID.
func (h *AffiliateHandler) Get(c *gin.Context) {
	affiliate, ok := h.findAffiliate(c)
	if !ok {
		return
	}
	var referred int64
	if errCount := h.db.WithContext(c.Request.Context()).Model(&models.Company{}).
		Where("affiliate_id = ?", affiliate.ID).Count(&referred).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count referrals failed"})
		return
	}
	c.JSON(http.StatusOK, h.formatAffiliate(affiliate, referred))
}

// updateAffiliateRequest captures optional fields for affiliate updates.
type updateAffiliateRequest struct {
	Name              *string  `json:"name"`
	Phone             *string  `json:"phone"`
	CommissionPercent *float64 `json:"commission_percent"`
	Active            *bool    `json:"active"`
}

// Update validates and applies affiliate field updates.
func (h *AffiliateHandler) Update(c *gin.Context) {
	affiliate, ok := h.findAffiliate(c)
	if !ok {
		return
	}
	var body updateAffiliateRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{
		"updated_at": time.Now().UTC(),
	}
	if body.Name != nil {
		n := strings.TrimSpace(*body.Name)
		if n == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name cannot be empty"})
			return
		}
		updates["name"] = n
	}
	if body.Phone != nil {
		normalized := ""
		if strings.TrimSpace(*body.Phone) != "" {
			var errPhone error
			normalized, errPhone = phone.Normalize(*body.Phone)
			if errPhone != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid phone"})
				return
			}
		}
		updates["phone"] = normalized
	}
	if body.CommissionPercent != nil {
		if *body.CommissionPercent < 0 || *body.CommissionPercent > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "commission_percent must be between 0 and 100"})
			return
		}
		updates["commission_percent"] = *body.CommissionPercent
	}
	if body.Active != nil {
		updates["active"] = *body.Active
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.Affiliate{}).
		Where("id = ?", affiliate.ID).Updates(updates).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Delete removes an affiliate. Companies referred by it keep their history by
// clearing the reference first.
func (h *AffiliateHandler) Delete(c *gin.Context) {
	affiliate, ok := h.findAffiliate(c)
	if !ok {
		return
	}

	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if errClear := tx.Model(&models.Company{}).Where("affiliate_id = ?", affiliate.ID).
			Update("affiliate_id", nil).Error; errClear != nil {
			return errClear
		}
		return tx.Delete(&models.Affiliate{}, affiliate.ID).Error
	})
	if errTx != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// findAffiliate resolves the :id path param to an affiliate, writing the error
// response itself on failure.
func (h *AffiliateHandler) findAffiliate(c *gin.Context) (*models.Affiliate, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return nil, false
	}
	var affiliate models.Affiliate
	if errFind := h.db.WithContext(c.Request.Context()).First(&affiliate, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return nil, false
	}
	return &affiliate, true
}

// formatAffiliate converts an affiliate model into a response payload.
func (h *AffiliateHandler) formatAffiliate(a *models.Affiliate, referred int64) gin.H {
	return gin.H{
		"id":                 a.ID,
		"name":               a.Name,
		"email":              a.Email,
		"phone":              a.Phone,
		"referral_code":      a.ReferralCode,
		"commission_percent": a.CommissionPercent,
		"active":             a.Active,
		"referred_companies": referred,
		"created_at":         a.CreatedAt,
		"updated_at":         a.UpdatedAt,
	}
}
