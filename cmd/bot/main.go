package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jarvis/internal/actionlog"
	"jarvis/internal/adapter/currency"
	"jarvis/internal/adapter/llm"
	"jarvis/internal/adapter/weather"
	"jarvis/internal/config"
	"jarvis/internal/handler"
	"jarvis/internal/health"
	"jarvis/internal/middleware"
	"jarvis/internal/repository"
	"jarvis/internal/repository/jsonfile"
	"jarvis/internal/repository/postgres"
	"jarvis/internal/repository/voicefs"
	"jarvis/internal/service"

	"github.com/golang-migrate/migrate/v4"
	postgresdb "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	tele "gopkg.in/telebot.v3"
)

// stateStore is what the bot needs from a persistence backend
type stateStore interface {
	repository.StateStore
	health.Pinger
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Jarvis Bot",
		zap.String("store", cfg.Storage.Driver),
		zap.String("llm_provider", cfg.LLM.Provider),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize state store
	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open state store", zap.Error(err))
	}
	defer closeStore()

	logger.Info("State store ready")

	voices := voicefs.NewArchive(cfg.Storage.VoiceDir)

	// Initialize external adapters
	currencyClient := currency.NewClient(cfg.Currency.APIKey, cfg.Currency.BaseURL, cfg.AdapterTimeout)
	weatherClient := weather.NewClient(cfg.Weather.APIKey, cfg.Weather.BaseURL, cfg.AdapterTimeout)

	model, err := llm.New(ctx, llm.Config{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
		Model:    cfg.LLM.Model,
		Timeout:  cfg.LLM.Timeout,
	})
	if err != nil {
		logger.Fatal("Failed to initialize language model", zap.Error(err))
	}
	defer model.Close()

	if cfg.LLM.APIKey == "" {
		logger.Warn("LLM_API_KEY is not set, assistant replies are disabled")
	}

	actions := actionlog.New(cfg.LogFile)
	defer actions.Sync()

	// Initialize Telegram bot
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.BotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			logger.Error("Unhandled bot error", zap.Error(err))
		},
	})
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	bot.Use(middleware.Recover(logger), middleware.ActionLog(actions, logger))

	logger.Info("Telegram bot initialized")

	// Initialize services
	botService := service.NewBotService(
		store,
		voices,
		handler.NewFileFetcher(bot),
		currencyClient,
		weatherClient,
		model,
		service.Options{
			Trigger:      cfg.LLM.Trigger,
			SystemPrompt: cfg.LLM.SystemPrompt,
		},
		logger,
	)

	// Initialize handler
	h := handler.NewHandler(ctx, bot, botService, logger)
	h.RegisterHandlers()
	if err := h.PublishCommands(); err != nil {
		logger.Warn("Failed to publish command list", zap.Error(err))
	}

	logger.Info("Handlers registered")

	var healthServer *health.Server
	if cfg.HealthAddr != "" {
		healthServer = health.NewServer(cfg.HealthAddr, store, logger)
		healthServer.Start()
	}

	// Start bot in background
	go func() {
		logger.Info("Bot started successfully")
		bot.Start()
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	logger.Info("Shutdown signal received, stopping bot...")

	// Graceful shutdown
	bot.Stop()
	cancel()

	if healthServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := healthServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Failed to stop health server", zap.Error(err))
		}
		shutdownCancel()
	}

	logger.Info("Bot stopped gracefully")
}

// newLogger builds a production logger at the configured level
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(lvl)
	return zapCfg.Build()
}

// openStore returns the configured state store and a function releasing it
func openStore(cfg *config.Config, logger *zap.Logger) (stateStore, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		db, err := connectDatabase(cfg.DSN(), logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		logger.Info("Database connection established")

		if err := runMigrations(db, logger); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}

		return postgres.NewUserRepo(db), func() { db.Close() }, nil
	default:
		return jsonfile.NewStore(cfg.Storage.DataFile, logger), func() {}, nil
	}
}

// connectDatabase connects to PostgreSQL with retries
func connectDatabase(dsn string, logger *zap.Logger) (*sqlx.DB, error) {
	var db *sqlx.DB
	var err error

	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = sqlx.Connect("postgres", dsn)
		if err != nil {
			logger.Warn("Failed to connect to database",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			time.Sleep(retryDelay)
			continue
		}

		// Connection successful
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		return db, nil
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}

// runMigrations runs database migrations
func runMigrations(db *sqlx.DB, logger *zap.Logger) error {
	driver, err := postgresdb.WithInstance(db.DB, &postgresdb.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply")
	} else {
		logger.Info("Migrations applied successfully")
	}

	return nil
}
