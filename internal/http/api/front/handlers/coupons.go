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
	"github.com/salonkit/salonkit-server/internal/models"
)

// CouponFrontHandler manages a tenant's own coupons and coupon redemption.
type CouponFrontHandler struct {
	db *gorm.DB
}

// NewCouponFrontHandler constructs a CouponFrontHandler.
func NewCouponFrontHandler(db *gorm.DB) *CouponFrontHandler {
	return &CouponFrontHandler{db: db}
}

// createCouponFrontRequest captures the payload for creating a tenant coupon.
type createCouponFrontRequest struct {
	Code          string     `json:"code"`
	DiscountType  string     `json:"discount_type"`
	DiscountValue float64    `json:"discount_value"`
	MinOrderValue *float64   `json:"min_order_value"`
	MaxDiscount   *float64   `json:"max_discount"`
	UsageLimit    *int       `json:"usage_limit"`
	ValidUntil    *time.Time `json:"valid_until"`
}

// Create adds a coupon scoped to the tenant.
func (h *CouponFrontHandler) Create(c *gin.Context) {
	companyID := getCompanyID(c)
	if companyID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body createCouponFrontRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	code := strings.ToUpper(strings.TrimSpace(body.Code))
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code is required"})
		return
	}
	switch body.DiscountType {
	case models.CouponDiscountPercentage:
		if body.DiscountValue <= 0 || body.DiscountValue > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "percentage value must be between 0 and 100"})
			return
		}
	case models.CouponDiscountFixed:
		if body.DiscountValue <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "fixed value must be positive"})
			return
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "discount_type must be percentage or fixed"})
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

	now := time.Now().UTC()
	cp := models.Coupon{
		CompanyID:     &companyID,
		Code:          code,
		DiscountType:  body.DiscountType,
		DiscountValue: body.DiscountValue,
		MinOrderValue: body.MinOrderValue,
		MaxDiscount:   body.MaxDiscount,
		UsageLimit:    body.UsageLimit,
		ValidUntil:    body.ValidUntil,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&cp).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create coupon failed"})
		return
	}
	c.JSON(http.StatusCreated, h.formatCoupon(&cp))
}

// List returns the tenant's coupons.
func (h *CouponFrontHandler) List(c *gin.Context) {
	companyID := getCompanyID(c)
	if companyID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var rows []models.Coupon
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("company_id = ?", companyID).
		Order("created_at DESC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list coupons failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, h.formatCoupon(&row))
	}
	c.JSON(http.StatusOK, gin.H{"coupons": out})
}

// updateCouponFrontRequest captures optional fields for tenant coupon updates.
type updateCouponFrontRequest struct {
	MinOrderValue *float64   `json:"min_order_value"`
	MaxDiscount   *float64   `json:"max_discount"`
	UsageLimit    *int       `json:"usage_limit"`
	ValidUntil    *time.Time `json:"valid_until"`
	Active        *bool      `json:"active"`
}

// Update applies tenant coupon field updates. Discount type and value are
// immutable after creation to keep past redemptions meaningful.
func (h *CouponFrontHandler) Update(c *gin.Context) {
	companyID := getCompanyID(c)
	if companyID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	cp, ok := h.findCoupon(c, companyID)
	if !ok {
		return
	}

	var body updateCouponFrontRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{
		"updated_at": time.Now().UTC(),
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

// Delete removes a tenant coupon.
func (h *CouponFrontHandler) Delete(c *gin.Context) {
	companyID := getCompanyID(c)
	if companyID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	cp, ok := h.findCoupon(c, companyID)
	if !ok {
		return
	}
	if errDelete := h.db.WithContext(c.Request.Context()).Delete(&models.Coupon{}, cp.ID).Error; errDelete != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// applyCouponRequest redeems a coupon code against an order subtotal.
type applyCouponRequest struct {
	Code     string `json:"code"`
	Subtotal string `json:"subtotal"`
}

// Apply evaluates a coupon code against a subtotal and, when valid, consumes
// one use. Both tenant-scoped and platform-wide codes are accepted.
func (h *CouponFrontHandler) Apply(c *gin.Context) {
	companyID := getCompanyID(c)
	if companyID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body applyCouponRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	code := strings.ToUpper(strings.TrimSpace(body.Code))
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code is required"})
		return
	}
	subtotal, errParse := decimal.NewFromString(strings.TrimSpace(body.Subtotal))
	if errParse != nil || subtotal.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subtotal"})
		return
	}

	var cp models.Coupon
	errFind := h.db.WithContext(c.Request.Context()).
		Where("code = ? AND (company_id = ? OR company_id IS NULL)", code, companyID).
		First(&cp).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "coupon not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	eval := coupon.Evaluate(&cp, time.Now().UTC(), subtotal)
	if eval.Status != coupon.StatusValid {
		out := gin.H{"status": string(eval.Status)}
		if eval.Status == coupon.StatusBelowMinimum {
			out["min_order_value"] = eval.Minimum.StringFixed(2)
		}
		c.JSON(http.StatusUnprocessableEntity, out)
		return
	}

	// Consume a use, guarding the limit again in SQL so concurrent applies
	// cannot exceed it.
	q := h.db.WithContext(c.Request.Context()).Model(&models.Coupon{}).Where("id = ?", cp.ID)
	if cp.UsageLimit != nil {
		q = q.Where("used_count < ?", *cp.UsageLimit)
	}
	res := q.Updates(map[string]any{
		"used_count": gorm.Expr("used_count + 1"),
		"updated_at": time.Now().UTC(),
	})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "apply failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": string(coupon.StatusExhausted)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   string(coupon.StatusValid),
		"discount": eval.Discount.StringFixed(2),
		"total":    subtotal.Sub(eval.Discount).StringFixed(2),
	})
}

// findCoupon resolves the :id path param within the tenant scope.
func (h *CouponFrontHandler) findCoupon(c *gin.Context, companyID uint64) (*models.Coupon, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return nil, false
	}
	var cp models.Coupon
	errFind := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND company_id = ?", id, companyID).
		First(&cp).Error
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

// formatCoupon converts a tenant coupon into a response payload.
func (h *CouponFrontHandler) formatCoupon(cp *models.Coupon) gin.H {
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
