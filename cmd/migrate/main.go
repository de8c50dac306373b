package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/nmw-hr/payroll-backend-go/internal/config"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/database"
)

func main() {
	down := flag.Int("down", 0, "roll back this many migrations instead of applying")
	flag.Parse()

	if err := run(*down); err != nil {
		slog.Error("Migration failed", "error", err)
		os.Exit(1)
	}
}

func run(down int) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.UsesMemory() {
		return fmt.Errorf("APP_STORAGE=memory has nothing to migrate")
	}

	db, err := database.NewPostgreSQLDB(context.Background(), cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if down > 0 {
		if err := database.RollbackMigrations(db.SQL(), down); err != nil {
			return err
		}
		slog.Info("Migrations rolled back", "steps", down)
		return nil
	}
	return database.RunMigrations(db.SQL())
}
