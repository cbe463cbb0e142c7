package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/salonkit/salonkit-server/internal/models"
)

// DashboardHandler serves the admin overview metrics.
type DashboardHandler struct {
	db *gorm.DB
}

// NewDashboardHandler constructs a DashboardHandler.
func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{db: db}
}

// Summary aggregates platform-wide counts and the current MRR.
func (h *DashboardHandler) Summary(c *gin.Context) {
	db := h.db.WithContext(c.Request.Context())

	var totalCompanies, blockedCompanies int64
	if errCount := db.Model(&models.Company{}).Count(&totalCompanies).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if errCount := db.Model(&models.Company{}).Where("blocked = ?", true).Count(&blockedCompanies).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	byStatus := map[string]int64{}
	for _, status := range []string{
		models.SubscriptionStatusActive,
		models.SubscriptionStatusTrialing,
		models.SubscriptionStatusPastDue,
		models.SubscriptionStatusPaymentFailed,
		models.SubscriptionStatusCancelled,
	} {
		var n int64
		if errCount := db.Model(&models.Company{}).
			Where("subscription_status = ?", status).Count(&n).Error; errCount != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}
		byStatus[status] = n
	}

	mrr, errMRR := h.monthlyRecurringRevenue(c)
	if errMRR != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	var openTickets, totalAffiliates, totalPlans int64
	if errCount := db.Model(&models.SupportTicket{}).
		Where("status = ?", models.TicketStatusOpen).Count(&openTickets).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if errCount := db.Model(&models.Affiliate{}).Count(&totalAffiliates).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if errCount := db.Model(&models.Plan{}).Count(&totalPlans).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"companies": gin.H{
			"total":     totalCompanies,
			"blocked":   blockedCompanies,
			"by_status": byStatus,
		},
		"mrr":          mrr.StringFixed(2),
		"open_tickets": openTickets,
		"affiliates":   totalAffiliates,
		"plans":        totalPlans,
	})
}

// monthlyRecurringRevenue sums the monthly plan price of every active, paying
// company. Trialing companies are excluded until they convert.
func (h *DashboardHandler) monthlyRecurringRevenue(c *gin.Context) (decimal.Decimal, error) {
	var rows []models.Company
	errFind := h.db.WithContext(c.Request.Context()).Preload("Plan").
		Where("subscription_status = ? AND blocked = ? AND plan_id IS NOT NULL",
			models.SubscriptionStatusActive, false).
		Find(&rows).Error
	if errFind != nil {
		return decimal.Zero, errFind
	}

	total := decimal.Zero
	for _, row := range rows {
		if row.Plan == nil {
			continue
		}
		total = total.Add(decimal.NewFromFloat(row.Plan.MonthPrice))
	}
	return total, nil
}
