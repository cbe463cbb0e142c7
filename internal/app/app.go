// Package app wires configuration, database, and HTTP routes into a runnable
// server.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/salonkit/salonkit-server/internal/config"
	"github.com/salonkit/salonkit-server/internal/db"
	adminapi "github.com/salonkit/salonkit-server/internal/http/api/admin"
	"github.com/salonkit/salonkit-server/internal/http/api/front"
	"github.com/salonkit/salonkit-server/internal/http/api/webhooks"
)

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	return db.Migrate(conn)
}

// RunServer boots the API server with database-backed components.
func RunServer(ctx context.Context, cfg config.AppConfig, defaultPort int) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	if errSeed := EnsureAdmin(conn); errSeed != nil {
		return errSeed
	}

	jwtConfig, errJWT := config.LoadJWTConfig(configPath)
	if errJWT != nil {
		return errJWT
	}
	webhookToken := config.LoadBillingWebhookToken(configPath)
	if webhookToken == "" {
		log.Warn("billing webhook token not configured; webhook endpoint disabled")
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogMiddleware())

	adminapi.RegisterAdminRoutes(engine, conn, jwtConfig)
	front.RegisterFrontRoutes(engine, conn, jwtConfig)
	webhooks.RegisterBillingWebhook(engine, conn, webhookToken)

	port := config.LoadPort(configPath)
	if port <= 0 {
		port = defaultPort
	}
	if port <= 0 {
		port = 8318
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() {
		if errListen := srv.ListenAndServe(); errListen != nil && errListen != http.ErrServerClosed {
			errCh <- errListen
			return
		}
		errCh <- nil
	}()

	log.Infof("starting server on :%d with config=%s", port, cfg.ConfigPath)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if errShutdown := srv.Shutdown(shutdownCtx); errShutdown != nil {
			log.Errorf("server shutdown error: %v", errShutdown)
		}
		return <-errCh
	case errRun := <-errCh:
		return errRun
	}
}

// requestLogMiddleware logs each request with its status and latency.
func requestLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Debug("request")
	}
}
