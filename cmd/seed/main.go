package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"edubot/internal/repository"
	"edubot/internal/seed"
	"edubot/internal/service"
	"edubot/pkg/config"
	"edubot/pkg/database"
	"edubot/pkg/logger"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var (
		seedFile string
		list     bool
	)

	flagSet := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	flagSet.StringVarP(&seedFile, "file", "f", "", "YAML knowledge base to load (default: built-in data, or SEED_FILE)")
	flagSet.BoolVar(&list, "list", false, "print the knowledge base after seeding")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if seedFile == "" {
		seedFile = cfg.Seed.File
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	db, err := database.Open(ctx, &cfg.Database, appLogger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	staticRepo := repository.NewStaticResponseRepository(db, appLogger)
	factRepo := repository.NewEducationFactRepository(db, appLogger)

	data, err := seed.Load(seedFile)
	if err != nil {
		return err
	}

	appLogger.Info("Starting database seeding...", zap.String("file", seedFile))
	result, err := service.NewSeedService(staticRepo, factRepo, appLogger).Seed(ctx, data)
	if err != nil {
		return err
	}
	fmt.Printf("static responses inserted: %d\neducation facts inserted: %d\n", result.StaticInserted, result.FactsInserted)

	if list {
		return printKnowledgeBase(ctx, staticRepo, factRepo)
	}
	return nil
}

func printKnowledgeBase(ctx context.Context, staticRepo *repository.StaticResponseRepository, factRepo *repository.EducationFactRepository) error {
	responses, err := staticRepo.List(ctx)
	if err != nil {
		return err
	}
	facts, err := factRepo.List(ctx)
	if err != nil {
		return err
	}

	fmt.Println("\nStatic responses:")
	for _, r := range responses {
		fmt.Printf("  %-16s %s\n", r.Question, r.Answer)
	}
	fmt.Println("\nEducation facts:")
	for _, f := range facts {
		fmt.Printf("  [%d] %s (%s)\n      %s\n", f.ID, f.Topic, f.Level, f.Information)
	}
	return nil
}
