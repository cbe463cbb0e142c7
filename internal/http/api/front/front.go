package front

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/salonkit/salonkit-server/internal/config"
	"github.com/salonkit/salonkit-server/internal/entitlement"
	handlers "github.com/salonkit/salonkit-server/internal/http/api/front/handlers"
	"github.com/salonkit/salonkit-server/internal/models"
	"github.com/salonkit/salonkit-server/internal/permissions"
	"github.com/salonkit/salonkit-server/internal/security"
	"github.com/salonkit/salonkit-server/internal/subscriptiongate"
)

// RegisterFrontRoutes registers public and tenant-facing routes.
func RegisterFrontRoutes(r *gin.Engine, db *gorm.DB, jwtCfg config.JWTConfig) {
	if r == nil || db == nil {
		return
	}

	planHandler := handlers.NewPlanFrontHandler(db)
	r.GET("/v0/public/plans", planHandler.List)

	companyGroup := r.Group("/v0/company")

	authHandler := handlers.NewAuthFrontHandler(db, jwtCfg)
	companyGroup.POST("/login", authHandler.Login)
	companyGroup.POST("/register", authHandler.Register)

	authed := companyGroup.Group("")
	authed.Use(companyAuthMiddleware(db, jwtCfg))

	// Exempt from the subscription gate: a blocked tenant must still see its
	// status, entitlements, and the support channel.
	subscriptionHandler := handlers.NewSubscriptionFrontHandler(db)
	authed.GET("/subscription-status", subscriptionHandler.Status)

	entitlementHandler := handlers.NewEntitlementFrontHandler(db)
	authed.GET("/entitlements", entitlementHandler.Get)

	ticketHandler := handlers.NewTicketFrontHandler(db)
	authed.POST("/tickets", ticketHandler.Create)
	authed.GET("/tickets", ticketHandler.List)
	authed.GET("/tickets/:id", ticketHandler.Get)
	authed.POST("/tickets/:id/reply", ticketHandler.Reply)

	gated := authed.Group("")
	gated.Use(subscriptionGateMiddleware())

	dashboardHandler := handlers.NewDashboardFrontHandler(db)
	gated.GET("/dashboard/summary",
		requireFeature(db, permissions.FeatureDashboard), dashboardHandler.Summary)

	professionalHandler := handlers.NewProfessionalFrontHandler(db)
	professionalsGated := gated.Group("", requireFeature(db, permissions.FeatureProfessionals))
	professionalsGated.POST("/professionals", professionalHandler.Create)
	professionalsGated.GET("/professionals", professionalHandler.List)
	professionalsGated.PUT("/professionals/:id", professionalHandler.Update)
	professionalsGated.DELETE("/professionals/:id", professionalHandler.Delete)

	clientHandler := handlers.NewClientFrontHandler(db)
	clientsGated := gated.Group("", requireFeature(db, permissions.FeatureClients))
	clientsGated.POST("/clients", clientHandler.Create)
	clientsGated.GET("/clients", clientHandler.List)
	clientsGated.GET("/clients/:id", clientHandler.Get)
	clientsGated.PUT("/clients/:id", clientHandler.Update)
	clientsGated.DELETE("/clients/:id", clientHandler.Delete)

	serviceHandler := handlers.NewServiceFrontHandler(db)
	servicesGated := gated.Group("", requireFeature(db, permissions.FeatureServices))
	servicesGated.POST("/services", serviceHandler.Create)
	servicesGated.GET("/services", serviceHandler.List)
	servicesGated.PUT("/services/:id", serviceHandler.Update)
	servicesGated.DELETE("/services/:id", serviceHandler.Delete)

	appointmentHandler := handlers.NewAppointmentFrontHandler(db)
	appointmentsGated := gated.Group("", requireFeature(db, permissions.FeatureAppointments))
	appointmentsGated.POST("/appointments", appointmentHandler.Create)
	appointmentsGated.GET("/appointments", appointmentHandler.List)
	appointmentsGated.PUT("/appointments/:id", appointmentHandler.Update)
	appointmentsGated.POST("/appointments/:id/complete", appointmentHandler.Complete)
	appointmentsGated.POST("/appointments/:id/cancel", appointmentHandler.Cancel)

	taskHandler := handlers.NewTaskFrontHandler(db)
	tasksGated := gated.Group("", requireFeature(db, permissions.FeatureTasks))
	tasksGated.POST("/tasks", taskHandler.Create)
	tasksGated.GET("/tasks", taskHandler.List)
	tasksGated.PUT("/tasks/:id", taskHandler.Update)
	tasksGated.DELETE("/tasks/:id", taskHandler.Delete)

	campaignHandler := handlers.NewCampaignFrontHandler(db)
	campaignsGated := gated.Group("", requireFeature(db, permissions.FeatureMessages))
	campaignsGated.POST("/campaigns", campaignHandler.Create)
	campaignsGated.GET("/campaigns", campaignHandler.List)
	campaignsGated.POST("/campaigns/:id/queue", campaignHandler.Queue)
	campaignsGated.DELETE("/campaigns/:id", campaignHandler.Delete)

	couponHandler := handlers.NewCouponFrontHandler(db)
	couponsGated := gated.Group("", requireFeature(db, permissions.FeatureCoupons))
	couponsGated.POST("/coupons", couponHandler.Create)
	couponsGated.GET("/coupons", couponHandler.List)
	couponsGated.PUT("/coupons/:id", couponHandler.Update)
	couponsGated.DELETE("/coupons/:id", couponHandler.Delete)
	couponsGated.POST("/coupons/apply", couponHandler.Apply)

	financialHandler := handlers.NewFinancialFrontHandler(db)
	gated.GET("/financial/summary",
		requireFeature(db, permissions.FeatureFinancial), financialHandler.Summary)
}

// companyAuthMiddleware validates company JWTs, loads the company row, and
// stores the gate evaluation for downstream middleware. Authentication never
// blocks on subscription state.
func companyAuthMiddleware(db *gorm.DB, jwtCfg config.JWTConfig) gin.HandlerFunc {
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

		claims, errJWT := security.ParseCompanyToken(jwtCfg.Secret, token)
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		var company models.Company
		errFind := db.WithContext(c.Request.Context()).First(&company, claims.CompanyID).Error
		if errFind != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "company not found"})
			return
		}

		c.Set("companyID", company.ID)
		c.Set("gateResult", subscriptiongate.Evaluate(&company))
		c.Next()
	}
}

// subscriptionGateMiddleware rejects requests from blocked tenants. The gate
// never fails open: without a stored evaluation the request is refused.
func subscriptionGateMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get("gateResult")
		result, ok := value.(subscriptiongate.Result)
		if !exists || !ok {
			result = subscriptiongate.EvaluateSnapshot(nil, nil)
		}
		if result.State != subscriptiongate.StateAllowed {
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{
				"error":     "subscription blocked",
				"reason":    string(result.Reason),
				"retryable": result.Retryable,
			})
			return
		}
		c.Next()
	}
}

// requireFeature rejects requests for features the tenant's plan does not
// grant. Missing or unknown keys deny.
func requireFeature(db *gorm.DB, feature permissions.Feature) gin.HandlerFunc {
	return func(c *gin.Context) {
		companyID := c.GetUint64("companyID")
		if companyID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var company models.Company
		errFind := db.WithContext(c.Request.Context()).Preload("Plan").First(&company, companyID).Error
		if errFind != nil {
			// A failed load denies; the client can retry.
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "feature unavailable"})
			return
		}

		resolver := entitlement.NewResolver(company.Plan, 0)
		if !resolver.HasPermission(feature) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "feature disabled",
				"feature": string(feature),
			})
			return
		}
		c.Next()
	}
}
