package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/frahmantamala/vacation-management/db"
	"github.com/frahmantamala/vacation-management/internal"
	"github.com/frahmantamala/vacation-management/pkg/logger"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with the sample users and vacation requests from db/seed/seed.yml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		setupLogger(cfg)

		gormDB, sqlxDB, err := initDB(cfg.Database, logger.L())
		if err != nil {
			return fmt.Errorf("failed to init db: %w", err)
		}
		defer sqlxDB.Close()

		if cfg.Database.Driver != internal.DriverPostgres || cfg.Database.AutoMigrate {
			if err := autoMigrate(gormDB); err != nil {
				return fmt.Errorf("failed to migrate schema: %w", err)
			}
		}

		fixture, err := db.LoadSeed()
		if err != nil {
			return err
		}
		return seed(cmd.Context(), sqlxDB, cfg.Database.Driver, fixture, clearData)
	},
}

func seed(ctx context.Context, sqlxDB *sqlx.DB, driver string, fixture *db.Seed, clear bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	tx, err := sqlxDB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if clear {
		for _, table := range []string{"vacation_requests", "users"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		color.Yellow("cleared users and vacation requests")
	}

	now := time.Now().UTC()

	for _, u := range fixture.Users {
		var exists int
		err := tx.GetContext(ctx, &exists, tx.Rebind("SELECT COUNT(*) FROM users WHERE id = ?"), u.ID)
		if err != nil {
			return fmt.Errorf("failed to look up user %d: %w", u.ID, err)
		}
		if exists > 0 {
			fmt.Printf("user %d (%s) already exists, skipping\n", u.ID, u.Email)
			continue
		}

		_, err = tx.ExecContext(ctx, tx.Rebind(
			"INSERT INTO users (id, name, email, role, manager_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)"),
			u.ID, u.Name, u.Email, u.Role, u.ManagerID, now, now)
		if err != nil {
			return fmt.Errorf("failed to insert user %s: %w", u.Email, err)
		}
		color.Green("seeded %s user: %s", u.Role, u.Email)
	}

	var requests int
	if err := tx.GetContext(ctx, &requests, "SELECT COUNT(*) FROM vacation_requests"); err != nil {
		return fmt.Errorf("failed to count vacation requests: %w", err)
	}
	if requests == 0 {
		for _, r := range fixture.VacationRequests {
			start, _ := time.Parse("2006-01-02", r.StartDate)
			end, _ := time.Parse("2006-01-02", r.EndDate)
			_, err := tx.ExecContext(ctx, tx.Rebind(
				"INSERT INTO vacation_requests (user_id, start_date, end_date, status, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)"),
				r.UserID, start, end, r.Status, r.Description, now, now)
			if err != nil {
				return fmt.Errorf("failed to insert vacation request for user %d: %w", r.UserID, err)
			}
		}
		color.Green("seeded %d vacation requests", len(fixture.VacationRequests))
	} else {
		fmt.Printf("%d vacation requests already present, skipping\n", requests)
	}

	// Explicit ids leave the serial sequence behind.
	if driver == internal.DriverPostgres {
		if _, err := tx.ExecContext(ctx,
			"SELECT setval(pg_get_serial_sequence('users', 'id'), (SELECT COALESCE(MAX(id), 1) FROM users))"); err != nil {
			return fmt.Errorf("failed to reset users sequence: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	color.Cyan("seeding complete")
	return nil
}
