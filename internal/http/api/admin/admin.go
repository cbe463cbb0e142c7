package admin

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/salonkit/salonkit-server/internal/config"
	handlers "github.com/salonkit/salonkit-server/internal/http/api/admin/handlers"
	"github.com/salonkit/salonkit-server/internal/models"
	"github.com/salonkit/salonkit-server/internal/security"
)

// RegisterAdminRoutes registers admin routes, middleware, and handlers.
func RegisterAdminRoutes(r *gin.Engine, db *gorm.DB, jwtCfg config.JWTConfig) {
	if r == nil || db == nil {
		return
	}

	healthHandler := handlers.NewHealthHandler(db)
	r.GET("/healthz", healthHandler.Healthz)

	adminGroup := r.Group("/v0/admin")

	authHandler := handlers.NewAuthHandler(db, jwtCfg)
	adminGroup.POST("/login", authHandler.Login)
	adminGroup.POST("/login/totp", authHandler.LoginTOTP)

	authed := adminGroup.Group("")
	authed.Use(adminAuthMiddleware(db, jwtCfg))

	mfaHandler := handlers.NewMFAHandler(db)
	authed.GET("/mfa/status", mfaHandler.Status)
	authed.POST("/mfa/totp/prepare", mfaHandler.PrepareTOTP)
	authed.POST("/mfa/totp/confirm", mfaHandler.ConfirmTOTP)
	authed.POST("/mfa/totp/disable", mfaHandler.DisableTOTP)

	planHandler := handlers.NewPlanHandler(db)
	authed.POST("/plans", planHandler.Create)
	authed.GET("/plans", planHandler.List)
	authed.GET("/plans/:id", planHandler.Get)
	authed.PUT("/plans/:id", planHandler.Update)
	authed.DELETE("/plans/:id", planHandler.Delete)
	authed.POST("/plans/:id/enable", planHandler.Enable)
	authed.POST("/plans/:id/disable", planHandler.Disable)

	companyHandler := handlers.NewCompanyHandler(db)
	authed.POST("/companies", companyHandler.Create)
	authed.GET("/companies", companyHandler.List)
	authed.GET("/companies/:id", companyHandler.Get)
	authed.PUT("/companies/:id", companyHandler.Update)
	authed.POST("/companies/:id/block", companyHandler.Block)
	authed.POST("/companies/:id/unblock", companyHandler.Unblock)
	authed.PUT("/companies/:id/plan", companyHandler.SetPlan)
	authed.POST("/companies/:id/status", companyHandler.SetStatus)

	couponHandler := handlers.NewCouponHandler(db)
	authed.POST("/coupons", couponHandler.Create)
	authed.GET("/coupons", couponHandler.List)
	authed.GET("/coupons/:id", couponHandler.Get)
	authed.PUT("/coupons/:id", couponHandler.Update)
	authed.DELETE("/coupons/:id", couponHandler.Delete)
	authed.POST("/coupons/:id/enable", couponHandler.Enable)
	authed.POST("/coupons/:id/disable", couponHandler.Disable)
	authed.GET("/coupons/:id/preview", couponHandler.Preview)

	affiliateHandler := handlers.NewAffiliateHandler(db)
	authed.POST("/affiliates", affiliateHandler.Create)
	authed.GET("/affiliates", affiliateHandler.List)
	authed.GET("/affiliates/:id", affiliateHandler.Get)
	authed.PUT("/affiliates/:id", affiliateHandler.Update)
	authed.DELETE("/affiliates/:id", affiliateHandler.Delete)

	adminAccountHandler := handlers.NewAdminAccountHandler(db)
	authed.POST("/admins", adminAccountHandler.Create)
	authed.GET("/admins", adminAccountHandler.List)
	authed.PUT("/admins/:id", adminAccountHandler.Update)
	authed.DELETE("/admins/:id", adminAccountHandler.Delete)
	authed.PUT("/password", adminAccountHandler.ChangePassword)

	settingsHandler := handlers.NewSettingsHandler(db)
	authed.GET("/settings", settingsHandler.List)
	authed.PUT("/settings", settingsHandler.Update)

	ticketHandler := handlers.NewTicketHandler(db)
	authed.GET("/tickets", ticketHandler.List)
	authed.GET("/tickets/:id", ticketHandler.Get)
	authed.POST("/tickets/:id/reply", ticketHandler.Reply)
	authed.POST("/tickets/:id/close", ticketHandler.Close)

	dashboardHandler := handlers.NewDashboardHandler(db)
	authed.GET("/dashboard/summary", dashboardHandler.Summary)
}

// adminAuthMiddleware validates admin JWTs and loads admin context.
func adminAuthMiddleware(db *gorm.DB, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		claims, errJWT := security.ParseAdminToken(jwtCfg.Secret, token)
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		var admin models.Admin
		if errFind := db.WithContext(c.Request.Context()).First(&admin, claims.AdminID).Error; errFind != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin not found"})
			return
		}
		if !admin.Active {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin disabled"})
			return
		}

		c.Set("adminID", admin.ID)
		c.Set("adminUsername", admin.Username)
		c.Set("adminIsSuperAdmin", admin.IsSuperAdmin)
		c.Next()
	}
}
