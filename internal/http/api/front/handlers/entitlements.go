package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// EntitlementFrontHandler exposes the resolved feature grants for the tenant.
// Exempt from the subscription gate so the UI can render its navigation while
// blocked.
type EntitlementFrontHandler struct {
	db *gorm.DB
}

// NewEntitlementFrontHandler constructs an EntitlementFrontHandler.
func NewEntitlementFrontHandler(db *gorm.DB) *EntitlementFrontHandler {
	return &EntitlementFrontHandler{db: db}
}

// Get returns the permission map and the professional headcount limit.
func (h *EntitlementFrontHandler) Get(c *gin.Context) {
	companyID := getCompanyID(c)
	if companyID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	resolver, errLoad := loadResolver(c, h.db, companyID)
	if errLoad != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load entitlements failed"})
		return
	}

	out := gin.H{
		"permissions": resolver.PermissionMap(),
	}
	if info := resolver.ProfessionalsLimitInfo(); info != nil {
		out["professionals_limit"] = info
	}
	c.JSON(http.StatusOK, out)
}
