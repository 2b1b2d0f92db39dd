package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/coffee-order/config"
	"github.com/yeremiapane/coffee-order/feed"
	"github.com/yeremiapane/coffee-order/models"
	"github.com/yeremiapane/coffee-order/router"
	"github.com/yeremiapane/coffee-order/services"
	"github.com/yeremiapane/coffee-order/utils"
)

func main() {
	cfg := config.Load()

	utils.InitLogger()
	utils.SetLogLevel(cfg.LogLevel)
	utils.SetJWTSecret(cfg.JWTSecret)

	for _, key := range cfg.Warnings() {
		utils.InfoLogger.Warnf("Warning: environment variable %s is not set", key)
	}

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := config.InitDB(ctx, cfg)
	cancel()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := models.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Info("AutoMigrate completed.")

	gateway := services.NewGatewayClient(&services.GatewayConfig{
		SecretKey: cfg.GatewaySecretKey,
		BaseURL:   cfg.GatewayBaseURL,
		Currency:  cfg.GatewayCurrency,
	})
	if err := gateway.ValidateConfig(); err != nil {
		utils.InfoLogger.Warnf("Payment gateway is not ready: %v", err)
	}

	mailer := services.NewSMTPMailer(services.MailConfig{
		Host:         cfg.SMTPHost,
		Port:         cfg.SMTPPort,
		Username:     cfg.SMTPUsername,
		Password:     cfg.SMTPPassword,
		From:         cfg.MailFrom,
		StaffAddress: cfg.StaffEmail,
	})

	r := router.SetupRouter(db, router.Options{
		Gateway:           gateway,
		Mailer:            mailer,
		Hub:               feed.NewHub(),
		Currency:          cfg.GatewayCurrency,
		CORSOrigin:        cfg.CORSOrigin,
		ShopName:          cfg.ShopName,
		RequestsPerSecond: 50,
	})
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		utils.ErrorLogger.Errorf("Error setting trusted proxies: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.InfoLogger.Infof("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.InfoLogger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.ErrorLogger.Errorf("Server forced to shutdown: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	utils.InfoLogger.Info("Server exited")
}
