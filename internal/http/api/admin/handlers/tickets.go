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

// TicketHandler serves the staff side of support tickets.
type TicketHandler struct {
	db *gorm.DB
}

// NewTicketHandler constructs a TicketHandler.
func NewTicketHandler(db *gorm.DB) *TicketHandler {
	return &TicketHandler{db: db}
}

// List returns tickets across all tenants, optionally filtered by status.
func (h *TicketHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&models.SupportTicket{})
	if statusQ := strings.TrimSpace(c.Query("status")); statusQ != "" {
		q = q.Where("status = ?", statusQ)
	}

	var rows []models.SupportTicket
	if errFind := q.Preload("Company").Order("updated_at DESC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list tickets failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, h.formatTicket(&row, false))
	}
	c.JSON(http.StatusOK, gin.H{"tickets": out})
}

// Get fetches a ticket with its full message history.
func (h *TicketHandler) Get(c *gin.Context) {
	ticket, ok := h.findTicket(c, true)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.formatTicket(ticket, true))
}

// replyTicketRequest carries a staff reply body.
type replyTicketRequest struct {
	Body string `json:"body"`
}

// Reply appends a staff message and marks the ticket answered.
func (h *TicketHandler) Reply(c *gin.Context) {
	ticket, ok := h.findTicket(c, false)
	if !ok {
		return
	}
	if ticket.Status == models.TicketStatusClosed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ticket is closed"})
		return
	}

	var body replyTicketRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	text := strings.TrimSpace(body.Body)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body cannot be empty"})
		return
	}

	now := time.Now().UTC()
	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		message := models.TicketMessage{
			TicketID:   ticket.ID,
			AuthorType: models.TicketAuthorAdmin,
			Body:       text,
			CreatedAt:  now,
		}
		if errCreate := tx.Create(&message).Error; errCreate != nil {
			return errCreate
		}
		return tx.Model(&models.SupportTicket{}).Where("id = ?", ticket.ID).
			Updates(map[string]any{"status": models.TicketStatusAnswered, "updated_at": now}).Error
	})
	if errTx != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reply failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Close marks a ticket resolved.
func (h *TicketHandler) Close(c *gin.Context) {
	ticket, ok := h.findTicket(c, false)
	if !ok {
		return
	}
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.SupportTicket{}).
		Where("id = ?", ticket.ID).
		Updates(map[string]any{"status": models.TicketStatusClosed, "updated_at": time.Now().UTC()}).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// findTicket resolves the :id path param to a ticket.
func (h *TicketHandler) findTicket(c *gin.Context, withMessages bool) (*models.SupportTicket, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return nil, false
	}

	q := h.db.WithContext(c.Request.Context()).Preload("Company")
	if withMessages {
		q = q.Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		})
	}
	var ticket models.SupportTicket
	if errFind := q.First(&ticket, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return nil, false
	}
	return &ticket, true
}

// formatTicket converts a ticket into a response payload.
func (h *TicketHandler) formatTicket(t *models.SupportTicket, withMessages bool) gin.H {
	out := gin.H{
		"id":           t.ID,
		"reference":    t.Reference,
		"subject":      t.Subject,
		"status":       t.Status,
		"company_id":   t.CompanyID,
		"company_name": t.Company.Name,
		"created_at":   t.CreatedAt,
		"updated_at":   t.UpdatedAt,
	}
	if withMessages {
		messages := make([]gin.H, 0, len(t.Messages))
		for _, m := range t.Messages {
			messages = append(messages, gin.H{
				"id":          m.ID,
				"author_type": m.AuthorType,
				"body":        m.Body,
				"created_at":  m.CreatedAt,
			})
		}
		out["messages"] = messages
	}
	return out
}
