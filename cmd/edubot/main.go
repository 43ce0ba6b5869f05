package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"edubot/internal/api"
	"edubot/internal/api/handlers"
	"edubot/internal/repository"
	"edubot/internal/seed"
	"edubot/internal/service"
	"edubot/pkg/config"
	"edubot/pkg/database"
	"edubot/pkg/logger"

	"go.uber.org/zap"
)

//go:generate swag init --dir ../.. --generalInfo cmd/edubot/main.go --output ../../docs

// @title Sri Lankan Education Assistant API
// @version 1.0
// @description FAQ responder for the Sri Lankan education system, Grade 1 to Graduate level

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting education assistant", zap.Object("completion", cfg.Completion))

	ctx := context.Background()
	db, err := database.Open(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	staticRepo := repository.NewStaticResponseRepository(db, appLogger)
	factRepo := repository.NewEducationFactRepository(db, appLogger)
	conversationRepo := repository.NewConversationRepository(db, appLogger)

	seedData, err := seed.Load(cfg.Seed.File)
	if err != nil {
		appLogger.Fatal("Failed to load seed data", zap.String("file", cfg.Seed.File), zap.Error(err))
	}
	if _, err := service.NewSeedService(staticRepo, factRepo, appLogger).Seed(ctx, seedData); err != nil {
		appLogger.Fatal("Failed to seed knowledge base", zap.Error(err))
	}

	chatModel := service.NewChatModel(&cfg.Completion, appLogger)
	if closer, ok := chatModel.(io.Closer); ok {
		defer closer.Close()
	}
	completionService := service.NewCompletionService(chatModel, appLogger)

	resolver := service.NewResolver(
		service.DefaultMatchers(staticRepo, factRepo, completionService, appLogger),
		service.NewConversationLogger(conversationRepo, appLogger),
		appLogger,
	)
	conversationService := service.NewConversationService(conversationRepo, appLogger)

	chatHandler := handlers.NewChatHandler(resolver, appLogger)
	conversationHandler := handlers.NewConversationHandler(conversationService, appLogger)
	healthHandler := handlers.NewHealthHandler(db, appLogger)

	app := api.SetupRouter(&cfg.Server, chatHandler, conversationHandler, healthHandler, appLogger)

	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
