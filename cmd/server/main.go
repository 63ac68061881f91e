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
	"go.uber.org/zap"

	"github.com/youruser/staffbadge/internal/api"
	"github.com/youruser/staffbadge/internal/config"
	imagepkg "github.com/youruser/staffbadge/internal/image"
	"github.com/youruser/staffbadge/internal/logger"
	"github.com/youruser/staffbadge/internal/mailer"
	"github.com/youruser/staffbadge/internal/service"
	"github.com/youruser/staffbadge/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("CRITICAL: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.Server.LogLevel)
	if err != nil {
		os.Stderr.WriteString("CRITICAL: Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	assets, err := imagepkg.LoadAssets(context.Background(), imagepkg.AssetSources{
		Background:  cfg.Assets.Background,
		Logo:        cfg.Assets.Logo,
		BoldFont:    cfg.Assets.BoldFont,
		RegularFont: cfg.Assets.RegularFont,
	}, log)
	if err != nil {
		log.Fatal("Failed to load badge assets", zap.Error(err))
	}

	store, err := storage.NewLocalStore(cfg.Badge.OutputDir, log)
	if err != nil {
		log.Fatal("Failed to prepare output directory", zap.Error(err))
	}

	if !cfg.SMTP.Enabled() {
		log.Warn("SENDER_EMAIL/SENDER_PASSWORD not set, badges will not be emailed")
	}

	composer := imagepkg.NewComposer(assets, imagepkg.WithQRStamp(cfg.Badge.QREnabled))
	sender := mailer.NewSMTPSender(cfg.SMTP, cfg.Badge.InstitutionName)
	badges := service.NewBadgeService(composer, store, sender, cfg.SMTP.Timeout, log)

	gin.SetMode(gin.ReleaseMode)
	h := api.NewHandler(badges, cfg.Badge.InstitutionName, cfg.Limits.MaxUploadSize, log)
	limiter := api.NewIPRateLimiter(cfg.Limits.SubmitRatePerMinute, cfg.Limits.SubmitRateBurst, log)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           api.NewRouter(h, limiter, store.Dir(), log),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go limiter.RunSweeper(ctx, time.Minute, 10*time.Minute)

	go func() {
		log.Info("Starting server", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}
