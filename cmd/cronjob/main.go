package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"clubforms-backend/internal/config"
	"clubforms-backend/internal/events"
	"clubforms-backend/internal/jobs"
	"clubforms-backend/internal/logger"
	"clubforms-backend/internal/repository/postgres"
	"clubforms-backend/internal/scheduler"
	"clubforms-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'close-expired-forms', 'all-daily')")
	flag.Parse()

	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Club Forms Cronjob Runner...", "log_level", cfg.Log.Level)

	// The in-memory backend lives inside the server process
	if cfg.Database.Driver != config.DriverPostgres {
		log.Fatalf("Cronjob runner needs the postgres driver, got %q", cfg.Database.Driver)
	}

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	publisher := events.NewNoopPublisher()
	if cfg.Events.NATSURL != "" {
		if publisher, err = events.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.SubjectPrefix); err != nil {
			logger.Error("Failed to connect to NATS", "error", err)
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
	}
	defer publisher.Close()

	// Initialize Services
	formService := service.NewFormService(store.Clubs, store.Events, store.Forms, publisher)

	jobServices := &jobs.Services{
		Forms: formService,
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(&store.Store, jobServices, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		log.Fatalf("Failed to schedule jobs: %v", err)
	}

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "close-expired-forms":
		jobRunner.CloseExpiredEventForms()
	case "all-daily":
		jobRunner.RunAllDailyJobs()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - close-expired-forms\n")
		fmt.Printf("  - all-daily\n")
		os.Exit(1)
	}
}
