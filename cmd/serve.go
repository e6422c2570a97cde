package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bilgisen/weeklyissue/internal/api"
	"github.com/bilgisen/weeklyissue/internal/cache"
	"github.com/bilgisen/weeklyissue/internal/config"
	"github.com/bilgisen/weeklyissue/internal/generator"
	"github.com/bilgisen/weeklyissue/internal/logger"
	"github.com/bilgisen/weeklyissue/internal/middleware"
	"github.com/bilgisen/weeklyissue/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the latest issue and an admin trigger over HTTP",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	log := logger.Get()
	log.Info().Msg("Starting application...")

	// Without Redis, runs of this process share an in-memory history
	memory := cache.NewMemoryHistory(cfg.HistoryTTL)

	// Each triggered run wires its own collaborators from the overridden config
	run := func(ctx context.Context, runCfg *config.Config) generator.Result {
		deps, cleanup, err := buildDeps(ctx, runCfg, memory)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize dependencies")
			return generator.Result{Outcome: generator.FatalConfig, Status: generator.FatalConfig.String(), Err: err, Error: err.Error()}
		}
		defer cleanup()
		return generator.New(runCfg, deps).Run(ctx)
	}
	handlers := api.NewHandlers(cfg, storage.NewStorage(cfg.PagePath, cfg.JSONPath), run)

	// Create Fiber app with custom config
	app := fiber.New(fiber.Config{
		ReadTimeout:           cfg.HTTPTimeout,
		WriteTimeout:          cfg.HTTPTimeout,
		IdleTimeout:           120 * time.Second,
		ErrorHandler:          middleware.ErrorHandler,
		DisableStartupMessage: true,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(middleware.RequestLogger())

	api.SetupRoutes(app, handlers, cfg.AdminAPIKey)

	// Start server in a goroutine
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		errCh <- app.Listen(":" + cfg.Port)
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Error().Err(err).Msg("Server error")
		return err
	case <-quit:
	}

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	handlers.Wait()

	log.Info().Msg("Server exited properly")
	return nil
}
