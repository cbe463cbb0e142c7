package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/salonkit/salonkit-server/internal/models"
)

// DashboardFrontHandler serves the tenant overview.
type DashboardFrontHandler struct {
	db *gorm.DB
}

// NewDashboardFrontHandler constructs a DashboardFrontHandler.
func NewDashboardFrontHandler(db *gorm.DB) *DashboardFrontHandler {
	return &DashboardFrontHandler{db: db}
}

// Summary aggregates today's appointments and this month's numbers.
func (h *DashboardFrontHandler) Summary(c *gin.Context) {
	companyID := getCompanyID(c)
	if companyID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	db := h.db.WithContext(c.Request.Context())
	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var todayAppointments int64
	if errCount := db.Model(&models.Appointment{}).
		Where("company_id = ? AND starts_at >= ? AND starts_at < ? AND status = ?",
			companyID, dayStart, dayEnd, models.AppointmentStatusScheduled).
		Count(&todayAppointments).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	var activeClients, activeProfessionals, openTasks int64
	if errCount := db.Model(&models.Client{}).
		Where("company_id = ? AND active = ?", companyID, true).Count(&activeClients).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if errCount := db.Model(&models.Professional{}).
		Where("company_id = ? AND active = ?", companyID, true).Count(&activeProfessionals).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if errCount := db.Model(&models.Task{}).
		Where("company_id = ? AND done = ?", companyID, false).Count(&openTasks).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	var completed []models.Appointment
	if errFind := db.
		Where("company_id = ? AND starts_at >= ? AND status = ?",
			companyID, monthStart, models.AppointmentStatusCompleted).
		Find(&completed).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	monthRevenue := decimal.Zero
	for _, row := range completed {
		monthRevenue = monthRevenue.Add(decimal.NewFromFloat(row.Price))
	}

	c.JSON(http.StatusOK, gin.H{
		"today_appointments":   todayAppointments,
		"active_clients":       activeClients,
		"active_professionals": activeProfessionals,
		"open_tasks":           openTasks,
		"month_revenue":        monthRevenue.StringFixed(2),
	})
}
