package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/salonkit/salonkit-server/internal/config"
	"github.com/salonkit/salonkit-server/internal/models"
	"github.com/salonkit/salonkit-server/internal/phone"
	"github.com/salonkit/salonkit-server/internal/security"
	internalsettings "github.com/salonkit/salonkit-server/internal/settings"
)

// AuthFrontHandler serves company login and self-service registration.
type AuthFrontHandler struct {
	db     *gorm.DB
	jwtCfg config.JWTConfig
}

// NewAuthFrontHandler constructs an AuthFrontHandler.
func NewAuthFrontHandler(db *gorm.DB, jwtCfg config.JWTConfig) *AuthFrontHandler {
	return &AuthFrontHandler{db: db, jwtCfg: jwtCfg}
}

// loginFrontRequest defines the company login payload.
type loginFrontRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login validates company credentials and issues a session token. A blocked
// company can still sign in; the subscription gate decides what it may see.
func (h *AuthFrontHandler) Login(c *gin.Context) {
	var body loginFrontRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(body.Email))
	if email == "" || body.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing credentials"})
		return
	}

	var company models.Company
	errFind := h.db.WithContext(c.Request.Context()).Where("email = ?", email).First(&company).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if !security.CheckPassword(company.Password, body.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, errSign := security.SignCompanyToken(h.jwtCfg.Secret, company.ID, h.jwtCfg.Expiry)
	if errSign != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sign token failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// registerFrontRequest defines the self-service signup payload.
type registerFrontRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Phone        string `json:"phone"`
	PlanID       uint64 `json:"plan_id"`
	ReferralCode string `json:"referral_code"`
}

// Register creates a company on a public plan and starts its trial.
func (h *AuthFrontHandler) Register(c *gin.Context) {
	var body registerFrontRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	name := strings.TrimSpace(body.Name)
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if name == "" || email == "" || strings.TrimSpace(body.Password) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, email and password are required"})
		return
	}
	if body.PlanID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "plan_id is required"})
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

	var plan models.Plan
	errFindPlan := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND is_enabled = ? AND is_public = ?", body.PlanID, true, true).
		First(&plan).Error
	if errFindPlan != nil {
		if errors.Is(errFindPlan, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query plan failed"})
		return
	}

	var emailCount int64
	if errCount := h.db.WithContext(c.Request.Context()).Model(&models.Company{}).
		Where("email = ?", email).Count(&emailCount).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if emailCount > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	}

	var affiliateID *uint64
	if code := strings.ToUpper(strings.TrimSpace(body.ReferralCode)); code != "" {
		var affiliate models.Affiliate
		errFindAffiliate := h.db.WithContext(c.Request.Context()).
			Where("referral_code = ? AND active = ?", code, true).
			First(&affiliate).Error
		if errFindAffiliate == nil {
			affiliateID = &affiliate.ID
		}
		// Unknown referral codes do not fail the signup.
	}

	hash, errHash := security.HashPassword(body.Password)
	if errHash != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "hash password failed"})
		return
	}

	now := time.Now().UTC()
	trialDays := plan.TrialDays
	if trialDays <= 0 {
		trialDays = h.defaultTrialDays(c)
	}
	status := models.SubscriptionStatusActive
	var trialEndsAt *time.Time
	if trialDays > 0 {
		t := now.AddDate(0, 0, trialDays)
		trialEndsAt = &t
		status = models.SubscriptionStatusTrialing
	}

	planID := plan.ID
	company := models.Company{
		Name:               name,
		Email:              email,
		Password:           hash,
		Phone:              normalizedPhone,
		PlanID:             &planID,
		Active:             true,
		TrialEndsAt:        trialEndsAt,
		SubscriptionStatus: status,
		AffiliateID:        affiliateID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&company).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create company failed"})
		return
	}

	token, errSign := security.SignCompanyToken(h.jwtCfg.Secret, company.ID, h.jwtCfg.Expiry)
	if errSign != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sign token failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"token":               token,
		"company_id":          company.ID,
		"subscription_status": company.SubscriptionStatus,
		"trial_ends_at":       company.TrialEndsAt,
	})
}

// defaultTrialDays reads the platform-wide trial length setting.
func (h *AuthFrontHandler) defaultTrialDays(c *gin.Context) int {
	var setting models.Setting
	errFind := h.db.WithContext(c.Request.Context()).
		Where("key = ?", internalsettings.DefaultTrialDaysKey).
		First(&setting).Error
	if errFind != nil {
		return 0
	}
	days, errParse := strconv.Atoi(strings.TrimSpace(setting.Value))
	if errParse != nil || days < 0 {
		return 0
	}
	return days
}
