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
)

// ServiceFrontHandler manages a tenant's service catalog.
type ServiceFrontHandler struct {
	db *gorm.DB
}

// NewServiceFrontHandler constructs a ServiceFrontHandler.
func NewServiceFrontHandler(db *gorm.DB) *ServiceFrontHandler {
	return &ServiceFrontHandler{db: db}
}

// createServiceRequest captures the payload for adding a service.
type createServiceRequest struct {
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	Price           float64 `json:"price"`
	DurationMinutes int     `json:"duration_minutes"`
}

// Create adds a service to the catalog.
func (h *ServiceFrontHandler) Create(c *gin.Context) {
	companyID := getCompanyID(c)
	if companyID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body createServiceRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	if body.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price cannot be negative"})
		return
	}
	duration := body.DurationMinutes
	if duration <= 0 {
		duration = 30
	}

	now := time.Now().UTC()
	service := models.Service{
		CompanyID:       companyID,
		Name:            name,
		Description:     body.Description,
		Price:           body.Price,
		DurationMinutes: duration,
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&service).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create service failed"})
		return
	}
	c.JSON(http.StatusCreated, h.formatService(&service))
}

// List returns the tenant's services with optional search.
func (h *ServiceFrontHandler) List(c *gin.Context) {
	companyID := getCompanyID(c)
	if companyID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	q := h.db.WithContext(c.Request.Context()).Model(&models.Service{}).Where("company_id = ?", companyID)
	if searchQ := strings.TrimSpace(c.Query("search")); searchQ != "" {
		pattern := dbutil.NormalizeLikePattern(h.db, "%"+searchQ+"%")
		q = q.Where(dbutil.CaseInsensitiveLikeExpr(h.db, "name"), pattern)
	}
	if activeQ := strings.TrimSpace(c.Query("active")); activeQ == "true" || activeQ == "1" {
		q = q.Where("active = ?", true)
	}

	var rows []models.Service
	if errFind := q.Order("name ASC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list services failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, h.formatService(&row))
	}
	c.JSON(http.StatusOK, gin.H{"services": out})
}

// updateServiceRequest captures optional fields for service updates.
type updateServiceRequest struct {
	Name            *string  `json:"name"`
	Description     *string  `json:"description"`
	Price           *float64 `json:"price"`
	DurationMinutes *int     `json:"duration_minutes"`
	Active          *bool    `json:"active"`
}

// Update applies service field updates.
func (h *ServiceFrontHandler) Update(c *gin.Context) {
	companyID := getCompanyID(c)
	if companyID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	service, ok := h.findService(c, companyID)
	if !ok {
		return
	}

	var body updateServiceRequest
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
	if body.Description != nil {
		updates["description"] = *body.Description
	}
	if body.Price != nil {
		if *body.Price < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price cannot be negative"})
			return
		}
		updates["price"] = *body.Price
	}
	if body.DurationMinutes != nil {
		if *body.DurationMinutes <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "duration must be positive"})
			return
		}
		updates["duration_minutes"] = *body.DurationMinutes
	}
	if body.Active != nil {
		updates["active"] = *body.Active
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.Service{}).
		Where("id = ?", service.ID).Updates(updates).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Delete deactivates a service, keeping appointment history intact.
func (h *ServiceFrontHandler) Delete(c *gin.Context) {
	companyID := getCompanyID(c)
	if companyID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	service, ok := h.findService(c, companyID)
	if !ok {
		return
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.Service{}).
		Where("id = ?", service.ID).
		Updates(map[string]any{"active": false, "updated_at": time.Now().UTC()}).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// findService resolves the :id path param within the tenant scope.
func (h *ServiceFrontHandler) findService(c *gin.Context, companyID uint64) (*models.Service, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return nil, false
	}
	var service models.Service
	errFind := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND company_id = ?", id, companyID).
		First(&service).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return nil, false
	}
	return &service, true
}

// formatService converts a service into a response payload.
func (h *ServiceFrontHandler) formatService(s *models.Service) gin.H {
	return gin.H{
		"id":               s.ID,
		"name":             s.Name,
		"description":      s.Description,
		"price":            s.Price,
		"duration_minutes": s.DurationMinutes,
		"active":           s.Active,
		"created_at":       s.CreatedAt,
		"updated_at":       s.UpdatedAt,
	}
}
