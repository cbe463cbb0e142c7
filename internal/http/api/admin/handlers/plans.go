package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	dbutil "github.com/salonkit/salonkit-server/internal/db"
	"github.com/salonkit/salonkit-server/internal/models"
	"github.com/salonkit/salonkit-server/internal/permissions"
)

// PlanHandler manages admin CRUD endpoints for plans.
type PlanHandler struct {
	db *gorm.DB // Database handle for plan records.
}

// NewPlanHandler constructs a plan handler.
func NewPlanHandler(db *gorm.DB) *PlanHandler {
	return &PlanHandler{db: db}
}

// normalizePlanPermissions validates and normalizes the permissions payload.
// Every known feature key ends up present; unknown keys are rejected.
func normalizePlanPermissions(raw map[string]bool) (datatypes.JSON, error) {
	if errValidate := permissions.ValidateKeys(raw); errValidate != nil {
		return nil, errValidate
	}
	data, errMarshal := permissions.FromRequest(raw).Marshal()
	if errMarshal != nil {
		return nil, errMarshal
	}
	return datatypes.JSON(data), nil
}

// createPlanRequest captures the payload for creating a plan.
type createPlanRequest struct {
	Name             string          `json:"name"`              // Plan name.
	MonthPrice       float64         `json:"month_price"`       // Monthly price.
	YearPrice        float64         `json:"year_price"`        // Annual price.
	Description      string          `json:"description"`       // Plan description.
	TrialDays        int             `json:"trial_days"`        // Free trial length.
	MaxProfessionals int             `json:"max_professionals"` // Headcount limit, 0 for unlimited.
	Permissions      map[string]bool `json:"permissions"`       // Feature permission map.
	SortOrder        int             `json:"sort_order"`        // Display order.
	IsEnabled        *bool           `json:"is_enabled"`        // Optional active flag.
	IsPublic         *bool           `json:"is_public"`         // Optional public pricing flag.
}

// Create validates input and inserts a new plan.
func (h *PlanHandler) Create(c *gin.Context) {
	var body createPlanRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if strings.TrimSpace(body.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	if body.TrialDays < 0 || body.MaxProfessionals < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limits"})
		return
	}

	perms, errPerms := normalizePlanPermissions(body.Permissions)
	if errPerms != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errPerms.Error()})
		return
	}

	isEnabled := true
	if body.IsEnabled != nil {
		isEnabled = *body.IsEnabled
	}
	isPublic := true
	if body.IsPublic != nil {
		isPublic = *body.IsPublic
	}

	now := time.Now().UTC()
	plan := models.Plan{
		Name:             strings.TrimSpace(body.Name),
		MonthPrice:       body.MonthPrice,
		YearPrice:        body.YearPrice,
		Description:      body.Description,
		TrialDays:        body.TrialDays,
		MaxProfessionals: body.MaxProfessionals,
		Permissions:      perms,
		SortOrder:        body.SortOrder,
		IsEnabled:        isEnabled,
		IsPublic:         isPublic,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if errCreate := h.db.WithContext(c.Request.Context()).Create(&plan).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create plan failed"})
		return
	}
	c.JSON(http.StatusCreated, h.formatPlan(&plan))
}

// List returns all plans, optionally filtered by enabled flag or by a granted
// feature key.
func (h *PlanHandler) List(c *gin.Context) {
	enabledQ := strings.TrimSpace(c.Query("is_enabled"))
	permissionQ := strings.TrimSpace(c.Query("permission"))

	q := h.db.WithContext(c.Request.Context()).Model(&models.Plan{})
	if enabledQ != "" {
		if enabledQ == "true" || enabledQ == "1" {
			q = q.Where("is_enabled = ?", true)
		} else if enabledQ == "false" || enabledQ == "0" {
			q = q.Where("is_enabled = ?", false)
		}
	}
	if permissionQ != "" {
		if !permissions.Valid(permissions.Feature(permissionQ)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid permission key"})
			return
		}
		q = q.Where(
			dbutil.JSONExtractTextExpr(h.db, "permissions", permissionQ)+" = ?",
			dbutil.JSONBoolValue(h.db, true),
		)
	}

	var rows []models.Plan
	if errFind := q.Order("sort_order ASC, created_at DESC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list plans failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, h.formatPlan(&row))
	}
	c.JSON(http.StatusOK, gin.H{"plans": out})
}

// Get fetches a plan by ID.
func (h *PlanHandler) Get(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var plan models.Plan
	if errFind := h.db.WithContext(c.Request.Context()).First(&plan, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, h.formatPlan(&plan))
}

// updatePlanRequest captures optional fields for plan updates.
type updatePlanRequest struct {
	Name             *string          `json:"name"`              // Optional name update.
	MonthPrice       *float64         `json:"month_price"`       // Optional monthly price.
	YearPrice        *float64         `json:"year_price"`        // Optional annual price.
	Description      *string          `json:"description"`       // Optional description.
	TrialDays        *int             `json:"trial_days"`        // Optional trial length.
	MaxProfessionals *int             `json:"max_professionals"` // Optional headcount limit.
	Permissions      *map[string]bool `json:"permissions"`       // Optional permission map.
	SortOrder        *int             `json:"sort_order"`        // Optional display order.
	IsEnabled        *bool            `json:"is_enabled"`        // Optional active flag.
	IsPublic         *bool            `json:"is_public"`         // Optional public pricing flag.
}

// Update validates and applies plan field updates.
func (h *PlanHandler) Update(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body updatePlanRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	var existing models.Plan
	if errFind := h.db.WithContext(c.Request.Context()).First(&existing, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
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
	if body.MonthPrice != nil {
		updates["month_price"] = *body.MonthPrice
	}
	if body.YearPrice != nil {
		updates["year_price"] = *body.YearPrice
	}
	if body.Description != nil {
		updates["description"] = *body.Description
	}
	if body.TrialDays != nil {
		if *body.TrialDays < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trial_days"})
			return
		}
		updates["trial_days"] = *body.TrialDays
	}
	if body.MaxProfessionals != nil {
		if *body.MaxProfessionals < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid max_professionals"})
			return
		}
		updates["max_professionals"] = *body.MaxProfessionals
	}
	if body.Permissions != nil {
		perms, errPerms := normalizePlanPermissions(*body.Permissions)
		if errPerms != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errPerms.Error()})
			return
		}
		updates["permissions"] = perms
	}
	if body.SortOrder != nil {
		updates["sort_order"] = *body.SortOrder
	}
	if body.IsEnabled != nil {
		updates["is_enabled"] = *body.IsEnabled
	}
	if body.IsPublic != nil {
		updates["is_public"] = *body.IsPublic
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.Plan{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Delete removes a plan by ID. Plans referenced by companies are kept.
func (h *PlanHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var referencing int64
	if errCount := h.db.WithContext(c.Request.Context()).Model(&models.Company{}).
		Where("plan_id = ?", id).Count(&referencing).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if referencing > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "plan is assigned to companies"})
		return
	}

	res := h.db.WithContext(c.Request.Context()).Delete(&models.Plan{}, id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Enable marks a plan as enabled.
func (h *PlanHandler) Enable(c *gin.Context) {
	h.setEnabled(c, true)
}

// Disable marks a plan as disabled.
func (h *PlanHandler) Disable(c *gin.Context) {
	h.setEnabled(c, false)
}

// setEnabled toggles the enabled state for a plan.
func (h *PlanHandler) setEnabled(c *gin.Context, enabled bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	now := time.Now().UTC()
	res := h.db.WithContext(c.Request.Context()).Model(&models.Plan{}).Where("id = ?", id).
		Updates(map[string]any{"is_enabled": enabled, "updated_at": now})
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

// formatPlan converts a plan model into a response payload.
func (h *PlanHandler) formatPlan(p *models.Plan) gin.H {
	return gin.H{
		"id":                p.ID,
		"name":              p.Name,
		"month_price":       p.MonthPrice,
		"year_price":        p.YearPrice,
		"description":       p.Description,
		"trial_days":        p.TrialDays,
		"max_professionals": p.MaxProfessionals,
		"permissions":       permissions.ParseSet(p.Permissions).Normalize(),
		"sort_order":        p.SortOrder,
		"is_enabled":        p.IsEnabled,
		"is_public":         p.IsPublic,
		"created_at":        p.CreatedAt,
		"updated_at":        p.UpdatedAt,
	}
}
