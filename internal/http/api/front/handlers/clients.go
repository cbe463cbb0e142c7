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
)

// ClientFrontHandler manages a tenant's client records.
type ClientFrontHandler struct {
	db *gorm.DB
}

// NewClientFrontHandler constructs a ClientFrontHandler.
func NewClientFrontHandler(db *gorm.DB) *ClientFrontHandler {
	return &ClientFrontHandler{db: db}
}

// createClientRequest captures the payload for adding a client.
type createClientRequest struct {
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	BirthDate *time.Time `json:"birth_date"`
	Notes     string     `json:"notes"`
}

// Create adds a client. Phone numbers are normalized so WhatsApp campaigns can
// rely on a consistent format.
func (h *ClientFrontHandler) Create(c *gin.Context) {
	companyID := getCompanyID(c)
	if companyID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body createClientRequest
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

	now := time.Now().UTC()
	client := models.Client{
		CompanyID: companyID,
		Name:      name,
		Email:     strings.ToLower(strings.TrimSpace(body.Email)),
		Phone:     normalizedPhone,
		BirthDate: body.BirthDate,
		Notes:     body.Notes,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&client).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create client failed"})
		return
	}
	c.JSON(http.StatusCreated, h.formatClient(&client))
}

// List returns the tenant's clients with optional search over name and phone.
func (h *ClientFrontHandler) List(c *gin.Context) {
	companyID := getCompanyID(c)
	if companyID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	q := h.db.WithContext(c.Request.Context()).Model(&models.Client{}).Where("company_id = ?", companyID)
	if searchQ := strings.TrimSpace(c.Query("search")); searchQ != "" {
		pattern := dbutil.NormalizeLikePattern(h.db, "%"+searchQ+"%")
		q = q.Where(
			dbutil.CaseInsensitiveLikeExpr(h.db, "name")+" OR "+
				dbutil.CaseInsensitiveLikeExpr(h.db, "phone"),
			pattern,
			pattern,
		)
	}
	if activeQ := strings.TrimSpace(c.Query("active")); activeQ == "true" || activeQ == "1" {
		q = q.Where("active = ?", true)
	}

	var rows []models.Client
	if errFind := q.Order("name ASC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list clients failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, h.formatClient(&row))
	}
	c.JSON(http.StatusOK, gin.H{"clients": out})
}

// Get fetches a client by ID within the tenant scope.
func (h *ClientFrontHandler) Get(c *gin.Context) {
	companyID := getCompanyID(c)
	if companyID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	client, ok := h.findClient(c, companyID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.formatClient(client))
}

// updateClientRequest captures optional fields for client updates.
type updateClientRequest struct {
	Name      *string    `json:"name"`
	Email     *string    `json:"email"`
	Phone     *string    `json:"phone"`
	BirthDate *time.Time `json:"birth_date"`
	Notes     *string    `json:"notes"`
	Points    *int       `json:"points"`
	Active    *bool      `json:"active"`
}

// Update applies client field updates.
func (h *ClientFrontHandler) Update(c *gin.Context) {
	companyID := getCompanyID(c)
	if companyID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	client, ok := h.findClient(c, companyID)
	if !ok {
		return
	}

	var body updateClientRequest
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
	if body.BirthDate != nil {
		updates["birth_date"] = *body.BirthDate
	}
	if body.Notes != nil {
		updates["notes"] = *body.Notes
	}
	if body.Points != nil {
		if *body.Points < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "points cannot be negative"})
			return
		}
		updates["points"] = *body.Points
	}
	if body.Active != nil {
		updates["active"] = *body.Active
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.Client{}).
		Where("id = ?", client.ID).Updates(updates).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Delete deactivates a client, keeping appointment history intact.
func (h *ClientFrontHandler) Delete(c *gin.Context) {
	companyID := getCompanyID(c)
	if companyID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	client, ok := h.findClient(c, companyID)
	if !ok {
		return
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.Client{}).
		Where("id = ?", client.ID).
		Updates(map[string]any{"active": false, "updated_at": time.Now().UTC()}).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// findClient resolves the :id path param within the tenant scope.
func (h *ClientFrontHandler) findClient(c *gin.Context, companyID uint64) (*models.Client, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return nil, false
	}
	var client models.Client
	errFind := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND company_id = ?", id, companyID).
		First(&client).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return nil, false
	}
	return &client, true
}

// formatClient converts a client into a response payload.
func (h *ClientFrontHandler) formatClient(cl *models.Client) gin.H {
	return gin.H{
		"id":         cl.ID,
		"name":       cl.Name,
		"email":      cl.Email,
		"phone":      cl.Phone,
		"birth_date": cl.BirthDate,
		"notes":      cl.Notes,
		"points":     cl.Points,
		"active":     cl.Active,
		"created_at": cl.CreatedAt,
		"updated_at": cl.UpdatedAt,
	}
}
