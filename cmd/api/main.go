package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	"github.com/taiki-yokoyama/2025winterHackathonH/internal/auth"
	"github.com/taiki-yokoyama/2025winterHackathonH/internal/config"
	"github.com/taiki-yokoyama/2025winterHackathonH/internal/database"
	"github.com/taiki-yokoyama/2025winterHackathonH/internal/email"
	"github.com/taiki-yokoyama/2025winterHackathonH/internal/feedback"
	"github.com/taiki-yokoyama/2025winterHackathonH/internal/goodmore"
	httpServer "github.com/taiki-yokoyama/2025winterHackathonH/internal/http"
	"github.com/taiki-yokoyama/2025winterHackathonH/internal/logging"
	"github.com/taiki-yokoyama/2025winterHackathonH/internal/ratelimit"
	"github.com/taiki-yokoyama/2025winterHackathonH/internal/retrospective"
	"github.com/taiki-yokoyama/2025winterHackathonH/internal/task"
	"github.com/taiki-yokoyama/2025winterHackathonH/internal/top"
	"github.com/taiki-yokoyama/2025winterHackathonH/internal/user"
)

// @title           Team Productivity API
// @version         1.0
// @description     Session-based authentication plus team dashboards, retrospectives, feedback and Good&More peer recognition.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey SessionAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session id.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	// Initialize database connection and run migrations
	db, err := initDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db.DB); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize Redis connection
	redisClient, err := initRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	// Initialize repositories
	userRepo := user.NewRepository(db)
	sessionRepo := auth.NewSessionRepository(db)
	passwordResetRepo := auth.NewPasswordResetRepository(db)
	taskRepo := task.NewRepository(db)
	retroRepo := retrospective.NewRepository(db)
	feedbackRepo := feedback.NewRepository(db)
	goodMoreRepo := goodmore.NewRepository(db)
	topRepo := top.NewRepository(db)

	// Initialize rate limiter
	rateLimiter := ratelimit.NewLimiter(redisClient)

	// Initialize email service
	emailService := email.NewService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FrontendURL,
	)

	// Initialize auth service
	authService := auth.NewService(
		userRepo,
		sessionRepo,
		passwordResetRepo,
		emailService,
		&cfg.Teams,
		logger,
	)

	// Initialize HTTP handlers
	handlers := httpServer.Handlers{
		Auth: auth.NewHandler(
			authService,
			userRepo,
			rateLimiter,
			logger,
			cfg.Session.CookieName,
			cfg.Session.CookieMaxAge,
			!cfg.Server.IsDevelopment(), // isProduction
		),
		Task:          task.NewHandler(taskRepo, logger),
		Retrospective: retrospective.NewHandler(retroRepo, logger),
		Feedback:      feedback.NewHandler(feedbackRepo, logger),
		GoodMore:      goodmore.NewHandler(goodMoreRepo, logger),
		Top:           top.NewHandler(topRepo, logger),
	}
	sessionMiddleware := auth.NewMiddleware(authService, cfg.Session.CookieName)

	// Initialize router
	router := httpServer.NewRouter(cfg, handlers, sessionMiddleware, logger)

	// Initialize HTTP server
	serverAddr := ":" + cfg.Server.Port
	server := httpServer.NewServer(
		serverAddr,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Printf("Received signal: %v", sig)

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initDB initializes the database connection and returns a Bun DB instance
func initDB(cfg config.DatabaseConfig) (*bun.DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return database.NewBunDB(sqlDB), nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verify connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
