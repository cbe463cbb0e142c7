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
	"github.com/salonkit/salonkit-server/internal/entitlement"
	"github.com/salonkit/salonkit-server/internal/models"
	"github.com/salonkit/salonkit-server/internal/phone"
)

// ProfessionalFrontHandler manages a tenant's professionals.
type ProfessionalFrontHandler struct {
	db *gorm.DB
}

// NewProfessionalFrontHandler constructs a ProfessionalFrontHandler.
func NewProfessionalFrontHandler(db *gorm.DB) *ProfessionalFrontHandler {
	return &ProfessionalFrontHandler{db: db}
}

// createProfessionalRequest captures the payload for adding a professional.
type createProfessionalRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Specialty string `json:"specialty"`
}

// Create adds a professional, enforcing the plan headcount limit. A refused
// creation returns 409 with the limit and current count so the UI can show an
// upgrade prompt.
func (h *ProfessionalFrontHandler) Create(c *gin.Context) {
	companyID := getCompanyID(c)
	if companyID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body createProfessionalRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
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

	resolver, errLoad := loadResolver(c, h.db, companyID)
	if errLoad != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load plan failed"})
		return
	}
	if errLimit := resolver.CheckAddProfessional(); errLimit != nil {
		var limitErr *entitlement.LimitReachedError
		if errors.As(errLimit, &limitErr) {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "professional limit reached",
				"limit":   limitErr.Limit,
				"current": limitErr.Current,
			})
			return
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "feature disabled"})
		return
	}

	now := time.Now().UTC()
	professional := models.Professional{
		CompanyID: companyID,
		Name:      name,
		Email:     strings.ToLower(strings.TrimSpace(body.Email)),
		Phone:     normalizedPhone,
		Specialty: strings.TrimSpace(body.Specialty),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&professional).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create professional failed"})
		return
	}
	c.JSON(http.StatusCreated, h.formatProfessional(&professional))
}

// List returns the tenant's professionals with optional search.
func (h *ProfessionalFrontHandler) List(c *gin.Context) {
	companyID := getCompanyID(c)
	if companyID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	q := h.db.WithContext(c.Request.Context()).Model(&models.Professional{}).Where("company_id = ?", companyID)
	if searchQ := strings.TrimSpace(c.Query("search")); searchQ != "" {
		pattern := dbutil.NormalizeLikePattern(h.db, "%"+searchQ+"%")
		q = q.Where(dbutil.CaseInsensitiveLikeExpr(h.db, "name"), pattern)
	}
	if activeQ := strings.TrimSpace(c.Query("active")); activeQ == "true" || activeQ == "1" {
		q = q.Where("active = ?", true)
	}

	var rows []models.Professional
	if errFind := q.Order("name ASC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list professionals failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, h.formatProfessional(&row))
	}
	c.JSON(http.StatusOK, gin.H{"professionals": out})
}

// updateProfessionalRequest captures optional fields for updates.
type updateProfessionalRequest struct {
	Name      *string `json:"name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Specialty *string `json:"specialty"`
	Active    *bool   `json:"active"`
}

// Update applies field updates. Reactivating a professional re-checks the plan
// headcount limit.
func (h *ProfessionalFrontHandler) Update(c *gin.Context) {
	companyID := getCompanyID(c)
	if companyID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	professional, ok := h.findProfessional(c, companyID)
	if !ok {
		return
	}

	var body updateProfessionalRequest
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
	if body.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*body.Email))
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
	if body.Specialty != nil {
		updates["specialty"] = strings.TrimSpace(*body.Specialty)
	}
	if body.Active != nil {
		if *body.Active && !professional.Active {
			resolver, errLoad := loadResolver(c, h.db, companyID)
			if errLoad != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "load plan failed"})
				return
			}
			if errLimit := resolver.CheckAddProfessional(); errLimit != nil {
				var limitErr *entitlement.LimitReachedError
				if errors.As(errLimit, &limitErr) {
					c.JSON(http.StatusConflict, gin.H{
						"error":   "professional limit reached",
						"limit":   limitErr.Limit,
						"current": limitErr.Current,
					})
					return
				}
				c.JSON(http.StatusForbidden, gin.H{"error": "feature disabled"})
				return
			}
		}
		updates["active"] = *body.Active
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.Professional{}).
		Where("id = ?", professional.ID).Updates(updates).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Delete deactivates a professional. Appointments keep their history, so the
// row is never hard-deleted.
func (h *ProfessionalFrontHandler) Delete(c *gin.Context) {
	companyID := getCompanyID(c)
	if companyID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	professional, ok := h.findProfessional(c, companyID)
	if !ok {
		return
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.Professional{}).
		Where("id = ?", professional.ID).
		Updates(map[string]any{"active": false, "updated_at": time.Now().UTC()}).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// findProfessional resolves the :id path param within the tenant scope.
func (h *ProfessionalFrontHandler) findProfessional(c *gin.Context, companyID uint64) (*models.Professional, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return nil, false
	}
	var professional models.Professional
	errFind := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND company_id = ?", id, companyID).
		First(&professional).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return nil, false
	}
	return &professional, true
}

// formatProfessional converts a professional into a response payload.
func (h *ProfessionalFrontHandler) formatProfessional(p *models.Professional) gin.H {
	return gin.H{
		"id":         p.ID,
		"name":       p.Name,
		"email":      p.Email,
		"phone":      p.Phone,
		"specialty":  p.Specialty,
		"active":     p.Active,
		"created_at": p.CreatedAt,
		"updated_at": p.UpdatedAt,
	}
}
