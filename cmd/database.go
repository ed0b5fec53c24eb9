package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/vacation-management/internal"
	userDatamodel "github.com/frahmantamala/vacation-management/internal/core/datamodel/user"
	vacationDatamodel "github.com/frahmantamala/vacation-management/internal/core/datamodel/vacation"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// sqlxDriverNames maps config drivers to the database/sql driver names sqlx
// uses to pick a bind style.
var sqlxDriverNames = map[string]string{
	internal.DriverPostgres: "pgx",
	internal.DriverMySQL:    "mysql",
	internal.DriverSQLite:   "sqlite3",
}

func dialectorFor(cfg internal.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case internal.DriverPostgres:
		return postgres.Open(cfg.GetDSN()), nil
	case internal.DriverMySQL:
		return mysql.Open(cfg.GetDSN()), nil
	case internal.DriverSQLite:
		return sqlite.Open(cfg.GetDSN()), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

// initDB opens the gorm handle used by the repositories and an sqlx view of
// the same pool for raw queries.
func initDB(cfg internal.DatabaseConfig, lg *slog.Logger) (*gorm.DB, *sqlx.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, nil, err
	}

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(
			slog.NewLogLogger(lg.Handler(), slog.LevelWarn),
			gormlogger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return gormDB, sqlx.NewDb(sqlDB, sqlxDriverNames[cfg.Driver]), nil
}

// autoMigrate creates the schema from the data models. PostgreSQL deployments
// use the goose migrations instead, which also install the overlap constraint.
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&userDatamodel.User{}, &vacationDatamodel.VacationRequest{})
}
