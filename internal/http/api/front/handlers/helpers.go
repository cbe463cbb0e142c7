package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/salonkit/salonkit-server/internal/entitlement"
	"github.com/salonkit/salonkit-server/internal/models"
)

// getCompanyID reads the company ID set by the auth middleware.
func getCompanyID(c *gin.Context) uint64 {
	return c.GetUint64("companyID")
}

// loadResolver builds an entitlement resolver for a company from its plan and
// active professional headcount.
func loadResolver(c *gin.Context, db *gorm.DB, companyID uint64) (*entitlement.Resolver, error) {
	var company models.Company
	if errFind := db.WithContext(c.Request.Context()).Preload("Plan").First(&company, companyID).Error; errFind != nil {
		return nil, errFind
	}

	var activeProfessionals int64
	if errCount := db.WithContext(c.Request.Context()).Model(&models.Professional{}).
		Where("company_id = ? AND active = ?", companyID, true).
		Count(&activeProfessionals).Error; errCount != nil {
		return nil, errCount
	}

	return entitlement.NewResolver(company.Plan, int(activeProfessionals)), nil
}
