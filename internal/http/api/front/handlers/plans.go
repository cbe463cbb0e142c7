package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/salonkit/salonkit-server/internal/models"
	"github.com/salonkit/salonkit-server/internal/permissions"
)

// PlanFrontHandler serves the public pricing page.
type PlanFrontHandler struct {
	db *gorm.DB
}

// NewPlanFrontHandler constructs a PlanFrontHandler.
func NewPlanFrontHandler(db *gorm.DB) *PlanFrontHandler {
	return &PlanFrontHandler{db: db}
}

// List returns enabled public plans in display order.
func (h *PlanFrontHandler) List(c *gin.Context) {
	var plans []models.Plan
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("is_enabled = ? AND is_public = ?", true, true).
		Order("sort_order ASC, created_at DESC").
		Find(&plans).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list plans failed"})
		return
	}

	out := make([]gin.H, 0, len(plans))
	for _, plan := range plans {
		out = append(out, gin.H{
			"id":                plan.ID,
			"name":              plan.Name,
			"month_price":       plan.MonthPrice,
			"year_price":        plan.YearPrice,
			"description":       plan.Description,
			"trial_days":        plan.TrialDays,
			"max_professionals": plan.MaxProfessionals,
			"permissions":       permissions.ParseSet(plan.Permissions).Normalize(),
			"sort_order":        plan.SortOrder,
		})
	}

	c.JSON(http.StatusOK, gin.H{"plans": out})
}
