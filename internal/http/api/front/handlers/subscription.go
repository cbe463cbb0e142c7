package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/salonkit/salonkit-server/internal/models"
	"github.com/salonkit/salonkit-server/internal/subscriptiongate"
)

// SubscriptionFrontHandler reports the tenant's subscription gate state. It is
// exempt from the gate itself so a blocked company can still see why.
type SubscriptionFrontHandler struct {
	db *gorm.DB
}

// NewSubscriptionFrontHandler constructs a SubscriptionFrontHandler.
func NewSubscriptionFrontHandler(db *gorm.DB) *SubscriptionFrontHandler {
	return &SubscriptionFrontHandler{db: db}
}

// Status returns the gate evaluation plus the billing fields behind it.
func (h *SubscriptionFrontHandler) Status(c *gin.Context) {
	companyID := getCompanyID(c)
	if companyID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var company models.Company
	errFind := h.db.WithContext(c.Request.Context()).Preload("Plan").First(&company, companyID).Error
	result := subscriptiongate.EvaluateSnapshot(&company, errFind)

	out := gin.H{
		"state":     result.State.String(),
		"retryable": result.Retryable,
	}
	if result.State == subscriptiongate.StateBlocked {
		out["reason"] = string(result.Reason)
	}
	if errFind == nil {
		out["subscription_status"] = company.SubscriptionStatus
		out["trial_ends_at"] = company.TrialEndsAt
		out["next_due_date"] = company.NextDueDate
		if company.Plan != nil {
			out["plan"] = gin.H{
				"id":          company.Plan.ID,
				"name":        company.Plan.Name,
				"month_price": company.Plan.MonthPrice,
			}
		}
	}
	c.JSON(http.StatusOK, out)
}
