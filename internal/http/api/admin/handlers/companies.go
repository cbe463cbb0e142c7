package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	dbutil "github.com/salonkit/salonkit-server/internal/db"
	"github.com/salonkit/salonkit-server/internal/models"
	"github.com/salonkit/salonkit-server/internal/phone"
	"github.com/salonkit/salonkit-server/internal/security"
	"github.com/salonkit/salonkit-server/internal/subscriptiongate"
)

// CompanyHandler manages admin CRUD endpoints for tenant companies.
type CompanyHandler struct {
	db *gorm.DB
}

// NewCompanyHandler constructs a CompanyHandler.
func NewCompanyHandler(db *gorm.DB) *CompanyHandler {
	return &CompanyHandler{db: db}
}

// validSubscriptionStatuses lists the accepted subscription status strings.
var validSubscriptionStatuses = map[string]struct{}{
	models.SubscriptionStatusActive:        {},
	models.SubscriptionStatusTrialing:      {},
	models.SubscriptionStatusPastDue:       {},
	models.SubscriptionStatusPaymentFailed: {},
	models.SubscriptionStatusCancelled:     {},
}

// createCompanyRequest captures the payload for creating a company.
type createCompanyRequest struct {
	Name        string  `json:"name"`
	FantasyName string  `json:"fantasy_name"`
	TaxID       string  `json:"tax_id"`
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	Phone       string  `json:"phone"`
	WhatsApp    string  `json:"whatsapp"`
	PlanID      *uint64 `json:"plan_id"`
}

// Create validates input and inserts a new company.
func (h *CompanyHandler) Create(c *gin.Context) {
	var body createCompanyRequest
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
	if strings.TrimSpace(body.Password) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
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
	normalizedWhatsApp := ""
	if strings.TrimSpace(body.WhatsApp) != "" {
		var errPhone error
		normalizedWhatsApp, errPhone = phone.Normalize(body.WhatsApp)
		if errPhone != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid whatsapp"})
			return
		}
	}

	hash, errHash := security.HashPassword(body.Password)
	if errHash != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "hash password failed"})
		return
	}

	var trialEndsAt *time.Time
	status := models.SubscriptionStatusCancelled
	if body.PlanID != nil {
		var plan models.Plan
		if errFind := h.db.WithContext(c.Request.Context()).First(&plan, *body.PlanID).Error; errFind != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "plan not found"})
			return
		}
		status = models.SubscriptionStatusActive
		if plan.TrialDays > 0 {
			t := time.Now().UTC().AddDate(0, 0, plan.TrialDays)
			trialEndsAt = &t
			status = models.SubscriptionStatusTrialing
		}
	}

	now := time.Now().UTC()
	company := models.Company{
		Name:               name,
		FantasyName:        strings.TrimSpace(body.FantasyName),
		TaxID:              strings.TrimSpace(body.TaxID),
		Email:              email,
		Password:           hash,
		Phone:              normalizedPhone,
		WhatsApp:           normalizedWhatsApp,
		PlanID:             body.PlanID,
		Active:             true,
		Blocked:            false,
		TrialEndsAt:        trialEndsAt,
		SubscriptionStatus: status,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&company).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create company failed"})
		return
	}
	c.JSON(http.StatusCreated, h.formatCompany(&company))
}

// List returns companies with optional filters.
func (h *CompanyHandler) List(c *gin.Context) {
	var (
		searchQ  = strings.TrimSpace(c.Query("search"))
		planQ    = strings.TrimSpace(c.Query("plan_id"))
		statusQ  = strings.TrimSpace(c.Query("status"))
		blockedQ = strings.TrimSpace(c.Query("blocked"))
	)

	q := h.db.WithContext(c.Request.Context()).Model(&models.Company{})
	if searchQ != "" {
		pattern := dbutil.NormalizeLikePattern(h.db, "%"+searchQ+"%")
		q = q.Where(
			dbutil.CaseInsensitiveLikeExpr(h.db, "name")+" OR "+
				dbutil.CaseInsensitiveLikeExpr(h.db, "fantasy_name")+" OR "+
				dbutil.CaseInsensitiveLikeExpr(h.db, "email"),
			pattern,
			pattern,
			pattern,
		)
	}
	if planQ != "" {
		if planID, errParse := strconv.ParseUint(planQ, 10, 64); errParse == nil {
			q = q.Where("plan_id = ?", planID)
		}
	}
	if statusQ != "" {
		q = q.Where("subscription_status = ?", statusQ)
	}
	if blockedQ == "true" || blockedQ == "1" {
		q = q.Where("blocked = ?", true)
	} else if blockedQ == "false" || blockedQ == "0" {
		q = q.Where("blocked = ?", false)
	}

	var rows []models.Company
	if errFind := q.Preload("Plan").Order("created_at DESC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list companies failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, h.formatCompany(&row))
	}
	c.JSON(http.StatusOK, gin.H{"companies": out})
}

// Get fetches a company by ID.
func (h *CompanyHandler) Get(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var company models.Company
	if errFind := h.db.WithContext(c.Request.Context()).Preload("Plan").First(&company, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, h.formatCompany(&company))
}

// updateCompanyRequest captures optional fields for company updates.
type updateCompanyRequest struct {
	Name        *string `json:"name"`
	FantasyName *string `json:"fantasy_name"`
	TaxID       *string `json:"tax_id"`
	Phone       *string `json:"phone"`
	WhatsApp    *string `json:"whatsapp"`
	Active      *bool   `json:"active"`
}

// Update validates and applies company field updates.
func (h *CompanyHandler) Update(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body updateCompanyRequest
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
	if body.FantasyName != nil {
		updates["fantasy_name"] = strings.TrimSpace(*body.FantasyName)
	}
	if body.TaxID != nil {
		updates["tax_id"] = strings.TrimSpace(*body.TaxID)
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
	if body.WhatsApp != nil {
		normalized := ""
		if strings.TrimSpace(*body.WhatsApp) != "" {
			var errPhone error
			normalized, errPhone = phone.Normalize(*body.WhatsApp)
			if errPhone != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid whatsapp"})
				return
			}
		}
		updates["whatsapp"] = normalized
	}
	if body.Active != nil {
		updates["active"] = *body.Active
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.Company{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Block sets the administrative block flag.
func (h *CompanyHandler) Block(c *gin.Context) {
	h.setBlocked(c, true)
}

// Unblock clears the administrative block flag.
func (h *CompanyHandler) Unblock(c *gin.Context) {
	h.setBlocked(c, false)
}

// setBlocked toggles the administrative block flag for a company.
func (h *CompanyHandler) setBlocked(c *gin.Context, blocked bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.Company{}).Where("id = ?", id).
		Updates(map[string]any{"blocked": blocked, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// setPlanRequest assigns or clears a company's plan.
type setPlanRequest struct {
	PlanID *uint64 `json:"plan_id"` // Nil clears the plan reference.
}

// SetPlan assigns a plan to a company, or clears it.
func (h *CompanyHandler) SetPlan(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body setPlanRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if body.PlanID != nil {
		var plan models.Plan
		if errFind := h.db.WithContext(c.Request.Context()).First(&plan, *body.PlanID).Error; errFind != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "plan not found"})
			return
		}
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.Company{}).Where("id = ?", id).
		Updates(map[string]any{"plan_id": body.PlanID, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// setStatusRequest mutates subscription status fields, mirroring what billing
// webhooks would apply.
type setStatusRequest struct {
	Status                *string    `json:"status"`
	BillingSubscriptionID *string    `json:"billing_subscription_id"`
	NextDueDate           *time.Time `json:"next_due_date"`
	TrialEndsAt           *time.Time `json:"trial_ends_at"`
}

// SetStatus updates a company's subscription status fields.
func (h *CompanyHandler) SetStatus(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body setStatusRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{
		"updated_at": time.Now().UTC(),
	}
	if body.Status != nil {
		status := strings.TrimSpace(*body.Status)
		if _, ok := validSubscriptionStatuses[status]; !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		updates["subscription_status"] = status
	}
	if body.BillingSubscriptionID != nil {
		updates["billing_subscription_id"] = strings.TrimSpace(*body.BillingSubscriptionID)
	}
	if body.NextDueDate != nil {
		updates["next_due_date"] = *body.NextDueDate
	}
	if body.TrialEndsAt != nil {
		updates["trial_ends_at"] = *body.TrialEndsAt
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.Company{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// formatCompany converts a company model into a response payload.
func (h *CompanyHandler) formatCompany(co *models.Company) gin.H {
	gate := subscriptiongate.Evaluate(co)
	out := gin.H{
		"id":                      co.ID,
		"name":                    co.Name,
		"fantasy_name":            co.FantasyName,
		"tax_id":                  co.TaxID,
		"email":                   co.Email,
		"phone":                   co.Phone,
		"whatsapp":                co.WhatsApp,
		"plan_id":                 co.PlanID,
		"active":                  co.Active,
		"blocked":                 co.Blocked,
		"trial_ends_at":           co.TrialEndsAt,
		"subscription_status":     co.SubscriptionStatus,
		"billing_subscription_id": co.BillingSubscriptionID,
		"next_due_date":           co.NextDueDate,
		"gate_state":              gate.State.String(),
		"created_at":              co.CreatedAt,
		"updated_at":              co.UpdatedAt,
	}
	if gate.State == subscriptiongate.StateBlocked {
		out["gate_reason"] = string(gate.Reason)
	}
	if co.Plan != nil {
		out["plan_name"] = co.Plan.Name
	}
	return out
}
