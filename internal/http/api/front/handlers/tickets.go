package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/salonkit/salonkit-server/internal/models"
)

// TicketFrontHandler serves the tenant side of support tickets. Support is
// always reachable, even for blocked companies.
type TicketFrontHandler struct {
	db *gorm.DB
}

// NewTicketFrontHandler constructs a TicketFrontHandler.
func NewTicketFrontHandler(db *gorm.DB) *TicketFrontHandler {
	return &TicketFrontHandler{db: db}
}

// createTicketRequest opens a new support conversation.
type createTicketRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Create opens a ticket with its first message.
func (h *TicketFrontHandler) Create(c *gin.Context) {
	companyID := getCompanyID(c)
	if companyID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body createTicketRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	subject := strings.TrimSpace(body.Subject)
	text := strings.TrimSpace(body.Body)
	if subject == "" || text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subject and body are required"})
		return
	}

	now := time.Now().UTC()
	ticket := models.SupportTicket{
		CompanyID: companyID,
		Reference: uuid.NewString(),
		Subject:   subject,
		Status:    models.TicketStatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if errCreate := tx.Create(&ticket).Error; errCreate != nil {
			return errCreate
		}
		message := models.TicketMessage{
			TicketID:   ticket.ID,
			AuthorType: models.TicketAuthorCompany,
			Body:       text,
			CreatedAt:  now,
		}
		return tx.Create(&message).Error
	})
	if errTx != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create ticket failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":        ticket.ID,
		"reference": ticket.Reference,
		"subject":   ticket.Subject,
		"status":    ticket.Status,
	})
}

// List returns the tenant's tickets.
func (h *TicketFrontHandler) List(c *gin.Context) {
	companyID := getCompanyID(c)
	if companyID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var rows []models.SupportTicket
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("company_id = ?", companyID).
		Order("updated_at DESC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list tickets failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			"id":         row.ID,
			"reference":  row.Reference,
			"subject":    row.Subject,
			"status":     row.Status,
			"created_at": row.CreatedAt,
			"updated_at": row.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"tickets": out})
}

// Get fetches one ticket with its conversation.
func (h *TicketFrontHandler) Get(c *gin.Context) {
	companyID := getCompanyID(c)
	if companyID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	ticket, ok := h.findTicket(c, companyID, true)
	if !ok {
		return
	}

	messages := make([]gin.H, 0, len(ticket.Messages))
	for _, m := range ticket.Messages {
		messages = append(messages, gin.H{
			"id":          m.ID,
			"author_type": m.AuthorType,
			"body":        m.Body,
			"created_at":  m.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"id":         ticket.ID,
		"reference":  ticket.Reference,
		"subject":    ticket.Subject,
		"status":     ticket.Status,
		"messages":   messages,
		"created_at": ticket.CreatedAt,
		"updated_at": ticket.UpdatedAt,
	})
}

// replyTicketFrontRequest carries a tenant reply body.
type replyTicketFrontRequest struct {
	Body string `json:"body"`
}

// Reply appends a tenant message and reopens the ticket for staff.
func (h *TicketFrontHandler) Reply(c *gin.Context) {
	companyID := getCompanyID(c)
	if companyID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	ticket, ok := h.findTicket(c, companyID, false)
	if !ok {
		return
	}
	if ticket.Status == models.TicketStatusClosed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ticket is closed"})
		return
	}

	var body replyTicketFrontRequest
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
			AuthorType: models.TicketAuthorCompany,
			Body:       text,
			CreatedAt:  now,
		}
		if errCreate := tx.Create(&message).Error; errCreate != nil {
			return errCreate
		}
		return tx.Model(&models.SupportTicket{}).Where("id = ?", ticket.ID).
			Updates(map[string]any{"status": models.TicketStatusOpen, "updated_at": now}).Error
	})
	if errTx != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reply failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// findTicket resolves the :id path param within the tenant scope.
func (h *TicketFrontHandler) findTicket(c *gin.Context, companyID uint64, withMessages bool) (*models.SupportTicket, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return nil, false
	}

	q := h.db.WithContext(c.Request.Context()).Where("company_id = ?", companyID)
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
