package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/talk-to-your-terms/tosapi/internal/api/handlers"
	"github.com/talk-to-your-terms/tosapi/internal/config"
	"github.com/talk-to-your-terms/tosapi/internal/database"
	"github.com/talk-to-your-terms/tosapi/internal/gateway"
	"github.com/talk-to-your-terms/tosapi/internal/repository"
	"github.com/talk-to-your-terms/tosapi/internal/server"
	"github.com/talk-to-your-terms/tosapi/internal/service"
	"github.com/talk-to-your-terms/tosapi/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the ToS analysis API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "3000", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "3000" {
		cfg.Port = portFlag
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	provider, err := gateway.New(cfg.LLMProvider, cfg.GatewayAPIKey())
	if err != nil {
		return fmt.Errorf("failed to create gateway provider: %w", err)
	}
	log.Printf("gateway provider %q ready (baseline model %s)", cfg.LLMProvider, provider.BaselineModel())

	feedbackRepo := repository.NewFeedbackRepository(pool)
	usageRepo := repository.NewUsageRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	analysisSvc := service.NewAnalysisService(provider, usageRepo)
	feedbackSvc := service.NewFeedbackService(feedbackRepo, usageRepo)
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret)

	routerCfg := server.RouterConfig{
		TokenVerifier:   authSvc,
		AnalysisHandler: handlers.NewAnalysisHandler(analysisSvc, feedbackSvc),
		FeedbackHandler: handlers.NewFeedbackHandler(feedbackSvc),
		AuthHandler:     handlers.NewAuthHandler(authSvc),
		CORSOrigins:     cfg.CORSOrigins,
		RateLimitMax:    cfg.RateLimitMax,
		RateLimitWindow: cfg.RateLimitWindow,
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	upErr := m.Up()
	if upErr != nil && upErr != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", upErr)
	}

	version, dirty, versionErr := m.Version()
	msg, err := migrationOutcome(upErr, version, dirty, versionErr)
	if err != nil {
		return err
	}
	log.Println(msg)

	return nil
}

// migrationOutcome turns the results of Up and Version into either the
// message to log or a hard error. upErr is nil or migrate.ErrNoChange by
// the time this runs.
func migrationOutcome(upErr error, version uint, dirty bool, versionErr error) (string, error) {
	if versionErr == migrate.ErrNilVersion {
		return "migrations: database is up to date (no migrations applied)", nil
	}
	if versionErr != nil {
		return "", fmt.Errorf("failed to get migration version: %w", versionErr)
	}
	if dirty {
		return "", fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	}
	if upErr == migrate.ErrNoChange {
		return fmt.Sprintf("migrations: database is up to date (version %d)", version), nil
	}
	return fmt.Sprintf("migrations: applied successfully (version %d)", version), nil
}
