package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/net/netutil"

	httpapi "clubforms-backend/internal/api/http"
	"clubforms-backend/internal/config"
	"clubforms-backend/internal/domain"
	"clubforms-backend/internal/events"
	"clubforms-backend/internal/logger"
	"clubforms-backend/internal/repository"
	"clubforms-backend/internal/repository/memory"
	"clubforms-backend/internal/repository/postgres"
	"clubforms-backend/internal/security"
	"clubforms-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	bootstrapClub := flag.String("bootstrap-club", "", "Register a club admin on startup, as email:password:name")
	flag.Parse()

	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Ignoring .env: %v", err)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Club Forms Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "public_base_url", cfg.Server.PublicBaseURL)

	// Initialize storage
	store, closeStore := openStore(cfg)
	defer closeStore()

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.AccessTokenTTL())

	// Initialize event publisher
	publisher := events.NewNoopPublisher()
	if cfg.Events.NATSURL != "" {
		publisher, err = events.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.SubjectPrefix)
		if err != nil {
			logger.Error("Failed to connect to NATS", "url", cfg.Events.NATSURL, "error", err)
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		logger.Info("Publishing form events to NATS", "url", cfg.Events.NATSURL, "prefix", cfg.Events.SubjectPrefix)
	}
	defer publisher.Close()

	// Initialize Email Service
	emailSvc := service.NewNoopEmailService()
	if cfg.Email.SendGridAPIKey != "" {
		emailSvc = service.NewSendGridEmailService(cfg.Email.SendGridAPIKey, cfg.Email.FromAddress, cfg.Email.FromName)
		logger.Info("Confirmation emails enabled", "from", cfg.Email.FromAddress)
	}

	// Initialize Services
	formSvc := service.NewFormService(store.Clubs, store.Events, store.Forms, publisher)
	directorySvc := service.NewDirectoryService(store.Clubs, store.Events, formSvc)
	submissionSvc := service.NewSubmissionService(store.Forms, store.Submissions, directorySvc, emailSvc, publisher)
	exportSvc := service.NewExportService(store.Forms, store.Submissions, directorySvc)
	authSvc := service.NewAuthService(store.Clubs, tokenManager)

	if *bootstrapClub != "" {
		if err := registerBootstrapClub(authSvc, *bootstrapClub); err != nil {
			logger.Error("Failed to register bootstrap club", "error", err)
			log.Fatalf("Failed to register bootstrap club: %v", err)
		}
	}

	// Set up HTTP server
	handler := httpapi.NewHandler(formSvc, submissionSvc, exportSvc, directorySvc, authSvc, tokenManager, cfg.Server.PublicBaseURL)
	srv := &http.Server{
		Handler:           httpapi.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Get().Handler(), slog.LevelError),
	}

	lis, err := net.Listen("tcp", cfg.GetServerAddress())
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetServerAddress())
		log.Fatalf("Failed to listen: %v", err)
	}
	lis = netutil.LimitListener(lis, cfg.Server.MaxConnections)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress(), "max_connections", cfg.Server.MaxConnections)
		serveErr <- srv.Serve(lis)
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down HTTP server...", "timeout", cfg.ShutdownTimeout())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown failed", "error", err)
		}
		logger.Info("HTTP server stopped")
	}
}

// openStore returns the configured backend and a function that releases it.
func openStore(cfg *config.Config) (*repository.Store, func()) {
	if cfg.Database.Driver == config.DriverMemory {
		logger.Warn("Using in-memory storage; data is lost on restart")
		return &memory.NewStore().Store, func() {}
	}

	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	pg := postgres.NewStore(db)
	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := pg.Migrate(migrateCtx); err != nil {
		logger.Error("Failed to apply schema", "error", err)
		log.Fatalf("Failed to apply schema: %v", err)
	}
	return &pg.Store, func() { db.Close() }
}

func registerBootstrapClub(auth service.AuthService, value string) error {
	parts := strings.SplitN(value, ":", 3)
	if len(parts) != 3 {
		return fmt.Errorf("bootstrap club must be email:password:name")
	}
	club := &domain.Club{Email: parts[0], Name: parts[2]}
	err := auth.RegisterClub(context.Background(), club, parts[1])
	if domain.IsValidation(err) && strings.Contains(err.Error(), "already registered") {
		logger.Info("Bootstrap club already registered", "email", club.Email)
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("Bootstrap club registered", "id", club.ID, "email", club.Email)
	return nil
}
