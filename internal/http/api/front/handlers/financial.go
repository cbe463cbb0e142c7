package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/salonkit/salonkit-server/internal/models"
)

// FinancialFrontHandler summarizes a tenant's appointment revenue.
type FinancialFrontHandler struct {
	db *gorm.DB
}

// NewFinancialFrontHandler constructs a FinancialFrontHandler.
func NewFinancialFrontHandler(db *gorm.DB) *FinancialFrontHandler {
	return &FinancialFrontHandler{db: db}
}

// Summary aggregates revenue over a date range, defaulting to the current
// month. Only completed appointments count as revenue.
func (h *FinancialFrontHandler) Summary(c *gin.Context) {
	companyID := getCompanyID(c)
	if companyID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	if fromQ := strings.TrimSpace(c.Query("from")); fromQ != "" {
		if parsed, errParse := time.Parse(time.RFC3339, fromQ); errParse == nil {
			from = parsed
		}
	}
	if toQ := strings.TrimSpace(c.Query("to")); toQ != "" {
		if parsed, errParse := time.Parse(time.RFC3339, toQ); errParse == nil {
			to = parsed
		}
	}

	var rows []models.Appointment
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("company_id = ? AND starts_at >= ? AND starts_at < ?", companyID, from, to).
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	revenue := decimal.Zero
	scheduled := decimal.Zero
	var completedCount, scheduledCount, cancelledCount int
	for _, row := range rows {
		price := decimal.NewFromFloat(row.Price)
		switch row.Status {
		case models.AppointmentStatusCompleted:
			revenue = revenue.Add(price)
			completedCount++
		case models.AppointmentStatusScheduled:
			scheduled = scheduled.Add(price)
			scheduledCount++
		case models.AppointmentStatusCancelled:
			cancelledCount++
		}
	}

	averageTicket := decimal.Zero
	if completedCount > 0 {
		averageTicket = revenue.Div(decimal.NewFromInt(int64(completedCount))).Round(2)
	}

	c.JSON(http.StatusOK, gin.H{
		"from":              from,
		"to":                to,
		"revenue":           revenue.StringFixed(2),
		"projected_revenue": revenue.Add(scheduled).StringFixed(2),
		"average_ticket":    averageTicket.StringFixed(2),
		"completed":         completedCount,
		"scheduled":         scheduledCount,
		"cancelled":         cancelledCount,
	})
}
