// main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"seat-reservation/cmd"
	"seat-reservation/internal/data/repository"
	"seat-reservation/internal/wire"
	"seat-reservation/pkg/cache"
	"seat-reservation/pkg/database"
	"seat-reservation/pkg/mailer"
	"seat-reservation/pkg/receipt"
	"seat-reservation/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Name, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
		zap.String("store", config.Database.Driver),
		zap.String("email_driver", config.Email.Driver),
	)

	if config.JWT.Secret == "" {
		logger.Fatal("JWT_SECRET is required to verify identities")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, closeStore := openStore(ctx, config, logger)
	defer closeStore()

	rdb := cache.NewRedisClient(config.Redis, logger)
	if rdb != nil {
		defer rdb.Close()
	}

	renderer, err := receipt.NewTextRenderer(config.Receipt.Dir)
	if err != nil {
		logger.Fatal("Failed to init receipt renderer", zap.Error(err))
	}

	notifier, closeNotifier := openNotifier(config, logger)
	defer closeNotifier()

	// Wire all dependencies
	app := wire.Wiring(repos, wire.Collaborators{
		Renderer: renderer,
		Notifier: notifier,
		Redis:    rdb,
	}, config, logger)

	if config.Venue.Seed {
		inserted, err := app.Service.Venue.SeedVenue(ctx, config.Venue.Rows, config.Venue.SeatsPerRow)
		if err != nil {
			logger.Fatal("Failed to seed venue", zap.Error(err))
		}
		logger.Info("Venue ready", zap.Int("seats_inserted", inserted))
	}

	if err := cmd.APIServer(ctx, app.Router, config.App.Port, config.App.ShutdownTimeout, logger); err != nil {
		logger.Error("Server stopped", zap.Error(err))
	}
}

func openStore(ctx context.Context, config *utils.Config, logger *zap.Logger) (*repository.Repository, func()) {
	if config.Database.Driver == "memory" {
		logger.Warn("Using in-memory store, reservations are lost on restart")
		return repository.NewMemoryRepository(repository.NewMemoryStore()), func() {}
	}

	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	logger.Info("Database connected successfully")

	if err := database.InitSchema(ctx, db); err != nil {
		db.Close()
		logger.Fatal("Failed to apply schema", zap.Error(err))
	}

	return repository.NewRepository(db, logger), db.Close
}

func openNotifier(config *utils.Config, logger *zap.Logger) (mailer.Notifier, func()) {
	switch config.Email.Driver {
	case "smtp":
		return mailer.NewSMTPNotifier(config.Email), func() {}
	case "queue":
		n := mailer.NewQueueNotifier(config.Queue.URL, config.Queue.Name, logger)
		return n, func() { _ = n.Close() }
	case "outbox":
		n, err := mailer.NewOutboxNotifier(config.Email.OutboxDir)
		if err != nil {
			logger.Fatal("Failed to init email outbox", zap.Error(err))
		}
		return n, func() {}
	default:
		logger.Fatal("Unknown EMAIL_DRIVER", zap.String("driver", config.Email.Driver))
		return nil, nil
	}
}
