package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/salonkit/salonkit-server/internal/models"
)

// AppointmentFrontHandler manages a tenant's appointment book.
type AppointmentFrontHandler struct {
	db *gorm.DB
}

// NewAppointmentFrontHandler constructs an AppointmentFrontHandler.
func NewAppointmentFrontHandler(db *gorm.DB) *AppointmentFrontHandler {
	return &AppointmentFrontHandler{db: db}
}

// createAppointmentRequest captures the payload for booking an appointment.
type createAppointmentRequest struct {
	ClientID       uint64    `json:"client_id"`
	ProfessionalID uint64    `json:"professional_id"`
	ServiceID      uint64    `json:"service_id"`
	StartsAt       time.Time `json:"starts_at"`
	Notes          string    `json:"notes"`
}

// Create books an appointment. Price and duration are copied from the service
// at booking time so later catalog edits do not rewrite history.
func (h *AppointmentFrontHandler) Create(c *gin.Context) {
	companyID := getCompanyID(c)
	if companyID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body createAppointmentRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.ClientID == 0 || body.ProfessionalID == 0 || body.ServiceID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "client_id, professional_id and service_id are required"})
		return
	}
	if body.StartsAt.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "starts_at is required"})
		return
	}

	ctx := c.Request.Context()
	var client models.Client
	if errFind := h.db.WithContext(ctx).
		Where("id = ? AND company_id = ? AND active = ?", body.ClientID, companyID, true).
		First(&client).Error; errFind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "client not found"})
		return
	}
	var professional models.Professional
	if errFind := h.db.WithContext(ctx).
		Where("id = ? AND company_id = ? AND active = ?", body.ProfessionalID, companyID, true).
		First(&professional).Error; errFind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "professional not found"})
		return
	}
	var service models.Service
	if errFind := h.db.WithContext(ctx).
		Where("id = ? AND company_id = ? AND active = ?", body.ServiceID, companyID, true).
		First(&service).Error; errFind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "service not found"})
		return
	}

	// Refuse double-booking the professional for an overlapping slot. Interval
	// math differs between dialects, so candidates in the surrounding window
	// are checked here instead of in SQL.
	slotStart := body.StartsAt.UTC()
	slotEnd := slotStart.Add(time.Duration(service.DurationMinutes) * time.Minute)
	var candidates []models.Appointment
	if errFind := h.db.WithContext(ctx).
		Where("company_id = ? AND professional_id = ? AND status = ?",
			companyID, body.ProfessionalID, models.AppointmentStatusScheduled).
		Where("starts_at < ? AND starts_at > ?", slotEnd, slotStart.Add(-24*time.Hour)).
		Find(&candidates).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	for _, other := range candidates {
		otherEnd := other.StartsAt.Add(time.Duration(other.DurationMinutes) * time.Minute)
		if other.StartsAt.Before(slotEnd) && otherEnd.After(slotStart) {
			c.JSON(http.StatusConflict, gin.H{"error": "professional already booked for this slot"})
			return
		}
	}

	now := time.Now().UTC()
	appointment := models.Appointment{
		CompanyID:       companyID,
		ClientID:        body.ClientID,
		ProfessionalID:  body.ProfessionalID,
		ServiceID:       body.ServiceID,
		StartsAt:        body.StartsAt.UTC(),
		DurationMinutes: service.DurationMinutes,
		Price:           service.Price,
		Status:          models.AppointmentStatusScheduled,
		Notes:           body.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if errCreate := h.db.WithContext(ctx).Create(&appointment).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create appointment failed"})
		return
	}
	c.JSON(http.StatusCreated, h.formatAppointment(&appointment))
}

// List returns appointments with optional date range and status filters.
func (h *AppointmentFrontHandler) List(c *gin.Context) {
	companyID := getCompanyID(c)
	if companyID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	q := h.db.WithContext(c.Request.Context()).Model(&models.Appointment{}).Where("company_id = ?", companyID)
	if fromQ := strings.TrimSpace(c.Query("from")); fromQ != "" {
		if from, errParse := time.Parse(time.RFC3339, fromQ); errParse == nil {
			q = q.Where("starts_at >= ?", from)
		}
	}
	if toQ := strings.TrimSpace(c.Query("to")); toQ != "" {
		if to, errParse := time.Parse(time.RFC3339, toQ); errParse == nil {
			q = q.Where("starts_at <= ?", to)
		}
	}
	if statusQ := strings.TrimSpace(c.Query("status")); statusQ != "" {
		q = q.Where("status = ?", statusQ)
	}
	if professionalQ := strings.TrimSpace(c.Query("professional_id")); professionalQ != "" {
		if id, errParse := strconv.ParseUint(professionalQ, 10, 64); errParse == nil {
			q = q.Where("professional_id = ?", id)
		}
	}

	var rows []models.Appointment
	if errFind := q.Preload("Client").Preload("Professional").Preload("Service").
		Order("starts_at ASC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list appointments failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, h.formatAppointment(&row))
	}
	c.JSON(http.StatusOK, gin.H{"appointments": out})
}

// updateAppointmentRequest captures optional fields for rescheduling.
type updateAppointmentRequest struct {
	StartsAt *time.Time `json:"starts_at"`
	Notes    *string    `json:"notes"`
}

// Update reschedules or annotates an appointment. Only scheduled appointments
// can change.
func (h *AppointmentFrontHandler) Update(c *gin.Context) {
	companyID := getCompanyID(c)
	if companyID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	appointment, ok := h.findAppointment(c, companyID)
	if !ok {
		return
	}
	if appointment.Status != models.AppointmentStatusScheduled {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only scheduled appointments can change"})
		return
	}

	var body updateAppointmentRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{
		"updated_at": time.Now().UTC(),
	}
	if body.StartsAt != nil {
		if body.StartsAt.IsZero() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "starts_at cannot be zero"})
			return
		}
		updates["starts_at"] = body.StartsAt.UTC()
	}
	if body.Notes != nil {
		updates["notes"] = *body.Notes
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.Appointment{}).
		Where("id = ?", appointment.ID).Updates(updates).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Complete marks a scheduled appointment done and credits loyalty points.
func (h *AppointmentFrontHandler) Complete(c *gin.Context) {
	h.transition(c, models.AppointmentStatusCompleted)
}

// Cancel marks a scheduled appointment cancelled.
func (h *AppointmentFrontHandler) Cancel(c *gin.Context) {
	h.transition(c, models.AppointmentStatusCancelled)
}

// transition moves a scheduled appointment to a terminal status. Completing an
// appointment credits one loyalty point per whole currency unit spent.
func (h *AppointmentFrontHandler) transition(c *gin.Context, status string) {
	companyID := getCompanyID(c)
	if companyID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	appointment, ok := h.findAppointment(c, companyID)
	if !ok {
		return
	}
	if appointment.Status != models.AppointmentStatusScheduled {
		c.JSON(http.StatusBadRequest, gin.H{"error": "appointment already " + appointment.Status})
		return
	}

	now := time.Now().UTC()
	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if errUpdate := tx.Model(&models.Appointment{}).Where("id = ?", appointment.ID).
			Updates(map[string]any{"status": status, "updated_at": now}).Error; errUpdate != nil {
			return errUpdate
		}
		if status == models.AppointmentStatusCompleted {
			points := int(appointment.Price)
			if points > 0 {
				return tx.Model(&models.Client{}).Where("id = ?", appointment.ClientID).
					Updates(map[string]any{
						"points":     gorm.Expr("points + ?", points),
						"updated_at": now,
					}).Error
			}
		}
		return nil
	})
	if errTx != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// findAppointment resolves the :id path param within the tenant scope.
func (h *AppointmentFrontHandler) findAppointment(c *gin.Context, companyID uint64) (*models.Appointment, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return nil, false
	}
	var appointment models.Appointment
	errFind := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND company_id = ?", id, companyID).
		First(&appointment).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return nil, false
	}
	return &appointment, true
}

// formatAppointment converts an appointment into a response payload.
func (h *AppointmentFrontHandler) formatAppointment(a *models.Appointment) gin.H {
	out := gin.H{
		"id":               a.ID,
		"client_id":        a.ClientID,
		"professional_id":  a.ProfessionalID,
		"service_id":       a.ServiceID,
		"starts_at":        a.StartsAt,
		"duration_minutes": a.DurationMinutes,
		"price":            a.Price,
		"status":           a.Status,
		"notes":            a.Notes,
		"created_at":       a.CreatedAt,
		"updated_at":       a.UpdatedAt,
	}
	if a.Client.ID != 0 {
		out["client_name"] = a.Client.Name
	}
	if a.Professional.ID != 0 {
		out["professional_name"] = a.Professional.Name
	}
	if a.Service.ID != 0 {
		out["service_name"] = a.Service.Name
	}
	return out
}
