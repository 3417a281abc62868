// main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"passwordless-auth/cmd"
	"passwordless-auth/internal/data/repository"
	"passwordless-auth/internal/wire"
	"passwordless-auth/pkg/database"
	"passwordless-auth/pkg/mailer"
	"passwordless-auth/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig(".env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("env", config.App.Env),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.InitDB(ctx, config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	if config.Database.AutoMigrate {
		if err := database.Migrate(ctx, config.Database); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		logger.Info("Database migrations applied")
	}

	// Email delivery
	sender, err := mailer.New(config.Email, logger)
	if err != nil {
		logger.Fatal("Failed to configure mailer", zap.Error(err))
	}
	if config.App.IsProduction() && config.Email.Provider == mailer.ProviderLog {
		logger.Warn("Login codes are written to the log instead of being emailed")
	}
	if config.Cron.Secret == "" {
		logger.Warn("CRON_SECRET is empty, cleanup endpoints will reject every request")
	}

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Wire all dependencies
	app := wire.Wiring(db, repos, sender, config, logger)

	if interval := config.Cron.SweepInterval(); interval > 0 {
		go cmd.RunSweeper(ctx, interval, []cmd.Sweeper{app.Service.OTP, app.Service.Session}, logger)
	}

	// Start server
	if err := cmd.APIServer(ctx, app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server error", zap.Error(err))
	}
}
