// Command seed writes the default department rules as explicit overrides so
// operators can edit them in place.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/nmw-hr/payroll-backend-go/internal/config"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/department"
	"github.com/nmw-hr/payroll-backend-go/internal/fixtures"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/database"
	"github.com/nmw-hr/payroll-backend-go/internal/repository/postgresql"
)

func main() {
	overwrite := flag.Bool("overwrite", false, "replace rules that already have an override")
	flag.Parse()

	if err := run(*overwrite); err != nil {
		slog.Error("Seed failed", "error", err)
		os.Exit(1)
	}
}

func run(overwrite bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.UsesMemory() {
		return fmt.Errorf("APP_STORAGE=memory has nothing to seed")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db.SQL()); err != nil {
		return err
	}

	defaults, err := fixtures.DefaultDepartmentRules()
	if err != nil {
		return err
	}

	repo := postgresql.NewRuleRepository(db)
	for _, dept := range department.All {
		if !overwrite {
			_, err := repo.Get(ctx, dept)
			if err == nil {
				slog.Info("Rule already overridden, skipping", "department", dept)
				continue
			}
			if !errors.Is(err, department.ErrRuleNotFound) {
				return fmt.Errorf("failed to read %s: %w", dept, err)
			}
		}

		rule := defaults[dept]
		rule.IsDefault = false
		if _, err := repo.Upsert(ctx, rule); err != nil {
			return fmt.Errorf("failed to seed %s: %w", dept, err)
		}
		slog.Info("Rule seeded", "department", dept)
	}
	return nil
}
