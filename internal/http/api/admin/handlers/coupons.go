package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/salonkit/salonkit-server/internal/coupon"
	dbutil "github.com/salonkit/salonkit-server/internal/db"
	"github.com/salonkit/salonkit-server/internal/models"
)

// CouponHandler manages admin CRUD for platform coupons.
type CouponHandler struct {
	db *gorm.DB
}

// NewCouponHandler constructs a CouponHandler.
func NewCouponHandler(db *gorm.DB) *CouponHandler {
	return &CouponHandler{db: db}
}

// createCouponRequest captures the payload for creating a coupon.
type createCouponRequest struct {
	Code          string     `json:"code"`
	DiscountType  string     `json:"discount_type"`
	DiscountValue float64    `json:"discount_value"`
	MinOrderValue *float64   `json:"min_order_value"`
	MaxDiscount   *float64   `json:"max_discount"`
	UsageLimit    *int       `json:"usage_limit"`
	ValidUntil    *time.Time `json:"valid_until"`
	Active        *bool      `json:"active"`
}

// validateCouponFields checks discount type and value constraints shared by
// create and update.
func validateCouponFields(discountType string, discountValue float64) string {
	switch discountType {
	case models.CouponDiscountPercentage:
		if discountValue <= 0 || discountValue > 100 {
			return "percentage value must be between 0 and 100"
		}
	case models.CouponDiscountFixed:
		if discountValue <= 0 {
			return "fixed value must be positive"
		}
	default:
		return "discount_type must be percentage or fixed"
	}
	return ""
}

// Create validates input and inserts a new platform coupon.
func (h *CouponHandler) Create(c *gin.Context) {
	var body createCouponRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	code := strings.ToUpper(strings.TrimSpace(body.Code))
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code is required"})
		return
	}
	if msg := validateCouponFields(body.DiscountType, body.DiscountValue); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	var count int64
	if errCount := h.db.WithContext(c.Request.Context()).Model(&models.Coupon{}).
		Where("code = ?", code).Count(&count).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "coupon code already exists"})
		return
	}

	active := true
	if body.Active != nil {
		active = *body.Active
	}
	now := time.Now().UTC()
	cp := models.Coupon{
		Code:          code,
		DiscountType:  body.DiscountType,
		DiscountValue: body.DiscountValue,
		MinOrderValue: body.MinOrderValue,
		MaxDiscount:   body.MaxDiscount,
		UsageLimit:    body.UsageLimit,
		ValidUntil:    body.ValidUntil,
		Active:        active,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&cp).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create coupon failed"})
		return
	}
	c.JSON(http.StatusCreated, h.formatCoupon(&cp))
}

// List returns platform coupons with an optional code search.
func (h *CouponHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&models.Coupon{}).Where("company_id IS NULL")
	if searchQ := strings.TrimSpace(c.Query("search")); searchQ != "" {
		pattern := dbutil.NormalizeLikePattern(h.db, "%"+searchQ+"%")
		q = q.Where(dbutil.CaseInsensitiveLikeExpr(h.db, "code"), pattern)
	}

	var rows []models.Coupon
	if errFind := q.Order("created_at DESC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list coupons failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, h.formatCoupon(&row))
	}
	c.JSON(http.StatusOK, gin.H{"coupons": out})
}

// Get fetches a coupon by ID.
func (h *CouponHandler) Get(c *gin.Context) {
	cp, ok := h.findCoupon(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.formatCoupon(cp))
}

// updateCouponRequest captures optional fields for coupon updates. Pointer
// fields distinguish "not sent" from explicit values.
type updateCouponRequest struct {
	DiscountType  *string    `json:"discount_type"`
	DiscountValue *float64   `json:"discount_value"`
	MinOrderValue *float64   `json:"min_order_value"`
	MaxDiscount   *float64   `json:"max_discount"`
	UsageLimit    *int       `json:"usage_limit"`
	ValidUntil    *time.Time `json:"valid_until"`
	Active        *bool      `json:"active"`
}

// Update validates and applies coupon field updates. The code itself is
// immutable after creation.
func (h *CouponHandler) Update(c *gin.Context) {
	cp, ok := h.findCoupon(c)
	if !ok {
		return
	}
	var body updateCouponRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	discountType := cp.DiscountType
	if body.DiscountType != nil {
		discountType = *body.DiscountType
	}
	discountValue := cp.DiscountValue
	if body.DiscountValue != nil {
		discountValue = *body.DiscountValue
	}
	if msg := validateCouponFields(discountType, discountValue); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	updates := map[string]any{
		"discount_type":  discountType,
		"discount_value": discountValue,
		"updated_at":     time.Now().UTC(),
	}
	if body.MinOrderValue != nil {
		updates["min_order_value"] = *body.MinOrderValue
	}
	if body.MaxDiscount != nil {
		updates["max_discount"] = *body.MaxDiscount
	}
	if body.UsageLimit != nil {
		updates["usage_limit"] = *body.UsageLimit
	}
	if body.ValidUntil != nil {
		updates["valid_until"] = *body.ValidUntil
	}
	if body.Active != nil {
		updates["active"] = *body.Active
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.Coupon{}).
		Where("id = ?", cp.ID).Updates(updates).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Delete removes a coupon.
func (h *CouponHandler) Delete(c *gin.Context) {
	cp, ok := h.findCoupon(c)
	if !ok {
		return
	}
	if errDelete := h.db.WithContext(c.Request.Context()).Delete(&models.Coupon{}, cp.ID).Error; errDelete != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Enable sets a coupon active.
func (h *CouponHandler) Enable(c *gin.Context) {
	h.setActive(c, true)
}

// Disable sets a coupon inactive.
func (h *CouponHandler) Disable(c *gin.Context) {
	h.setActive(c, false)
}

func (h *CouponHandler) setActive(c *gin.Context, active bool) {
	cp, ok := h.findCoupon(c)
	if !ok {
		return
	}
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.Coupon{}).Where("id = ?", cp.ID).
		Updates(map[string]any{"active": active, "updated_at": time.Now().UTC()}).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Preview evaluates a coupon against a hypothetical subtotal without
// redeeming it. Subtotal comes from the `subtotal` query parameter.
func (h *CouponHandler) Preview(c *gin.Context) {
	cp, ok := h.findCoupon(c)
	if !ok {
		return
	}

	subtotalQ := strings.TrimSpace(c.Query("subtotal"))
	subtotal, errParse := decimal.NewFromString(subtotalQ)
	if subtotalQ == "" || errParse != nil || subtotal.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subtotal"})
		return
	}

	eval := coupon.Evaluate(cp, time.Now().UTC(), subtotal)
	out := gin.H{
		"status":   string(eval.Status),
		"discount": eval.Discount.StringFixed(2),
		"total":    subtotal.Sub(eval.Discount).StringFixed(2),
	}
	if eval.Status == coupon.StatusBelowMinimum {
		out["min_order_value"] = eval.Minimum.StringFixed(2)
	}
	c.JSON(http.StatusOK, out)
}

// findCoupon resolves the :id path param to a platform coupon, writing the
// error response itself on failure.
func (h *CouponHandler) findCoupon(c *gin.Context) (*models.Coupon, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return nil, false
	}
	var cp models.Coupon
	errFind := h.db.WithContext(c.Request.Context()).Where("company_id IS NULL").First(&cp, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return nil, false
	}
	return &cp, true
}

// formatCoupon converts a coupon model into a response payload, including the
// derived status.
func (h *CouponHandler) formatCoupon(cp *models.Coupon) gin.H {
	return gin.H{
		"id":              cp.ID,
		"code":            cp.Code,
		"discount_type":   cp.DiscountType,
		"discount_value":  cp.DiscountValue,
		"min_order_value": cp.MinOrderValue,
		"max_discount":    cp.MaxDiscount,
		"usage_limit":     cp.UsageLimit,
		"used_count":      cp.UsedCount,
		"valid_until":     cp.ValidUntil,
		"active":          cp.Active,
		"status":          string(coupon.DerivedStatus(cp, time.Now().UTC())),
		"created_at":      cp.CreatedAt,
		"updated_at":      cp.UpdatedAt,
	}
}
