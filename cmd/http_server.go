package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/vacation-management/internal"
	"github.com/frahmantamala/vacation-management/internal/core/events"
	"github.com/frahmantamala/vacation-management/internal/notification"
	"github.com/frahmantamala/vacation-management/internal/transport/openapi"
	"github.com/frahmantamala/vacation-management/internal/transport/rest"
	"github.com/frahmantamala/vacation-management/internal/user"
	userPostgres "github.com/frahmantamala/vacation-management/internal/user/postgres"
	"github.com/frahmantamala/vacation-management/internal/vacation"
	vacationPostgres "github.com/frahmantamala/vacation-management/internal/vacation/postgres"
	"github.com/frahmantamala/vacation-management/pkg/logger"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Router   *chi.Mux
	EventBus *events.EventBus
	Hub      *notification.Hub
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "driver", deps.Config.Database.Driver)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		deps.EventBus.Wait()
		if deps.Hub != nil {
			deps.Hub.Close()
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	setupLogger(config)
	lg := logger.L()

	gormDB, db, err := initDB(config.Database, lg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if config.Database.AutoMigrate {
		if err := autoMigrate(gormDB); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	bus := events.NewEventBus(lg)
	bus.Subscribe(events.AllEvents, events.LogHandler(lg))

	userService := user.NewService(userPostgres.NewUserRepository(gormDB), bus, lg)
	vacationService := vacation.NewService(
		vacationPostgres.NewVacationRepository(gormDB),
		userService,
		bus,
		config.Vacation,
		lg,
	)

	var (
		hub                 *notification.Hub
		notificationHandler *notification.Handler
	)
	if config.Notification.Enabled {
		hub = notification.NewHub(config.Notification.ClientQueueSize, lg)
		hub.Subscribe(bus)
		notificationHandler = notification.NewHandler(hub, config.Notification, config.Server.Origins(), lg)
	}

	var validator *openapi.Validator
	if config.Server.ValidateRequests {
		doc, err := openapi.Load(context.Background())
		if err != nil {
			return nil, err
		}
		validator, err = openapi.NewValidator(doc, lg)
		if err != nil {
			return nil, err
		}
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, rest.Dependencies{
		DB:                  db,
		Driver:              config.Database.Driver,
		AllowedOrigins:      config.Server.Origins(),
		UserHandler:         user.NewHandler(userService),
		VacationHandler:     vacation.NewHandler(vacationService),
		NotificationHandler: notificationHandler,
		Validator:           validator,
		Logger:              lg,
	})

	return &Dependencies{
		Config:   config,
		DB:       db,
		Router:   router,
		EventBus: bus,
		Hub:      hub,
		Logger:   lg,
	}, nil
}
