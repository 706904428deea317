package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/colegiosync/colegiosync/internal/backup"
	"github.com/colegiosync/colegiosync/internal/database"
	"github.com/colegiosync/colegiosync/internal/logging"
	"github.com/colegiosync/colegiosync/internal/server"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	godotenv.Load()

	logger := logging.Setup(os.Getenv("LOG_LEVEL"))

	port := envOr("PORT", "3000")
	dbPath := envOr("DB_PATH", "colegiosync.db")

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		slog.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	db, err := database.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	backupHour, err := strconv.Atoi(envOr("BACKUP_HOUR", "3"))
	if err != nil {
		slog.Error("invalid BACKUP_HOUR", "error", err)
		os.Exit(1)
	}

	cfg := server.Config{
		JWTSecret:       secret,
		CORSOrigins:     splitOrigins(os.Getenv("CORS_ORIGINS")),
		VAPIDPublicKey:  os.Getenv("VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("VAPID_PRIVATE_KEY"),
		Backup: backup.Config{
			S3: backup.S3Config{
				Endpoint:  os.Getenv("BACKUP_S3_ENDPOINT"),
				Bucket:    os.Getenv("BACKUP_S3_BUCKET"),
				Region:    envOr("BACKUP_S3_REGION", "auto"),
				AccessKey: os.Getenv("BACKUP_S3_ACCESS_KEY"),
				SecretKey: os.Getenv("BACKUP_S3_SECRET_KEY"),
			},
			DBPath:     dbPath,
			Passphrase: os.Getenv("BACKUP_PASSPHRASE"),
			Hour:       backupHour,
		},
	}

	srv := server.New(db, cfg, logger)

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	if sched := srv.PushScheduler(); sched != nil {
		sched.Start(bgCtx)
		defer sched.Stop()
	} else {
		slog.Info("push notifications disabled: VAPID keys not configured")
	}

	if mgr := srv.BackupManager(); mgr.Enabled() {
		mgr.Start(bgCtx)
		defer mgr.Stop()
	} else {
		slog.Info("nightly backups disabled: S3 credentials or passphrase not configured")
	}

	// Hourly rate limiter cleanup
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			case <-bgCtx.Done():
				return
			}
		}
	}()

	httpServer := &http.Server{
		Addr:              ":" + port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("colegiosync starting", "addr", ":"+port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	bgCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

func splitOrigins(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}
