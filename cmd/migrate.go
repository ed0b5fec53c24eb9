package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/frahmantamala/vacation-management/db"
	"github.com/frahmantamala/vacation-management/internal"
	"github.com/frahmantamala/vacation-management/pkg/logger"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "run the sql migrations embedded from db/migrations",
		Long: `Run the embedded goose migrations against PostgreSQL. SQLite and MySQL
databases get their schema from the data models instead.`,
	}
	migrateRollback bool
	migrateStatus   bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
	migrateCmd.Flags().BoolVar(&migrateStatus, "status", false, "print the migration status and exit")
}

func runMigration(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	setupLogger(cfg)

	gormDB, sqlxDB, err := initDB(cfg.Database, logger.L())
	if err != nil {
		return err
	}
	defer sqlxDB.Close()

	if cfg.Database.Driver != internal.DriverPostgres {
		if migrateRollback {
			return fmt.Errorf("rollback is only supported for %s", internal.DriverPostgres)
		}
		if err := autoMigrate(gormDB); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		color.Green("schema migrated from data models (%s)", cfg.Database.Driver)
		return nil
	}

	goose.SetBaseFS(db.Migrations)
	goose.SetTableName("schema_migrations")
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	switch {
	case migrateStatus:
		return goose.StatusContext(ctx, sqlxDB.DB, db.MigrationsDir)
	case migrateRollback:
		if err := goose.DownContext(ctx, sqlxDB.DB, db.MigrationsDir); err != nil {
			return fmt.Errorf("goose down: %w", err)
		}
		color.Yellow("rolled back the latest migration")
	default:
		if err := goose.UpContext(ctx, sqlxDB.DB, db.MigrationsDir); err != nil {
			return fmt.Errorf("goose up: %w", err)
		}
		color.Green("migrations applied")
	}
	return nil
}
