// Package webhooks receives billing gateway callbacks and applies subscription
// state transitions to companies.
package webhooks

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/salonkit/salonkit-server/internal/models"
)

// Gateway event types and the subscription status each one applies.
var eventStatus = map[string]string{
	"subscription.activated":      models.SubscriptionStatusActive,
	"subscription.renewed":        models.SubscriptionStatusActive,
	"subscription.past_due":       models.SubscriptionStatusPastDue,
	"subscription.payment_failed": models.SubscriptionStatusPaymentFailed,
	"subscription.cancelled":      models.SubscriptionStatusCancelled,
}

// BillingHandler processes billing gateway webhooks.
type BillingHandler struct {
	db    *gorm.DB
	token string
}

// NewBillingHandler constructs a BillingHandler. An empty token disables the
// endpoint.
func NewBillingHandler(db *gorm.DB, token string) *BillingHandler {
	return &BillingHandler{db: db, token: token}
}

// RegisterBillingWebhook mounts the webhook route.
func RegisterBillingWebhook(r *gin.Engine, db *gorm.DB, token string) {
	if r == nil || db == nil {
		return
	}
	handler := NewBillingHandler(db, token)
	r.POST("/v0/webhooks/billing", handler.Handle)
}

// billingEvent is the gateway payload.
type billingEvent struct {
	EventID        string     `json:"event_id"`
	Type           string     `json:"type"`
	SubscriptionID string     `json:"subscription_id"`
	CompanyID      uint64     `json:"company_id"`
	NextDueDate    *time.Time `json:"next_due_date"`
}

// Handle authenticates, deduplicates, and applies one gateway event. Replayed
// events acknowledge without reapplying.
func (h *BillingHandler) Handle(c *gin.Context) {
	if h.token == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "webhook disabled"})
		return
	}
	provided := strings.TrimSpace(c.GetHeader("X-Webhook-Token"))
	if subtle.ConstantTimeCompare([]byte(provided), []byte(h.token)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook token"})
		return
	}

	raw, errRead := c.GetRawData()
	if errRead != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read body failed"})
		return
	}
	var event billingEvent
	if errDecode := json.Unmarshal(raw, &event); errDecode != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(event.EventID) == "" || strings.TrimSpace(event.Type) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event_id and type are required"})
		return
	}

	status, known := eventStatus[event.Type]
	if !known {
		// Unknown event types acknowledge so the gateway stops retrying.
		log.WithField("type", event.Type).Warn("ignoring unknown billing event type")
		c.JSON(http.StatusOK, gin.H{"ok": true, "ignored": true})
		return
	}

	company, errFind := h.findCompany(c, &event)
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "company not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	now := time.Now().UTC()
	duplicate := false
	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		// The unique event index makes replays fail the insert, which rolls
		// back before any state change.
		record := models.WebhookEvent{
			EventID:     event.EventID,
			Type:        event.Type,
			Payload:     datatypes.JSON(raw),
			ProcessedAt: now,
			CreatedAt:   now,
		}
		if errCreate := tx.Create(&record).Error; errCreate != nil {
			if errors.Is(errCreate, gorm.ErrDuplicatedKey) || isUniqueViolation(errCreate) {
				duplicate = true
				return nil
			}
			return errCreate
		}

		updates := map[string]any{
			"subscription_status": status,
			"updated_at":          now,
		}
		if strings.TrimSpace(event.SubscriptionID) != "" {
			updates["billing_subscription_id"] = strings.TrimSpace(event.SubscriptionID)
		}
		if event.NextDueDate != nil {
			updates["next_due_date"] = *event.NextDueDate
		}
		return tx.Model(&models.Company{}).Where("id = ?", company.ID).Updates(updates).Error
	})
	if errTx != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "apply event failed"})
		return
	}
	if duplicate {
		c.JSON(http.StatusOK, gin.H{"ok": true, "duplicate": true})
		return
	}

	log.WithFields(log.Fields{
		"event_id":   event.EventID,
		"type":       event.Type,
		"company_id": company.ID,
		"status":     status,
	}).Info("applied billing event")
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// findCompany resolves the target company by ID or by subscription ID.
func (h *BillingHandler) findCompany(c *gin.Context, event *billingEvent) (*models.Company, error) {
	var company models.Company
	q := h.db.WithContext(c.Request.Context())
	if event.CompanyID != 0 {
		if err := q.First(&company, event.CompanyID).Error; err != nil {
			return nil, err
		}
		return &company, nil
	}
	subscriptionID := strings.TrimSpace(event.SubscriptionID)
	if subscriptionID == "" {
		return nil, gorm.ErrRecordNotFound
	}
	if err := q.Where("billing_subscription_id = ?", subscriptionID).First(&company).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

// isUniqueViolation matches duplicate-key errors across both supported
// dialects.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
