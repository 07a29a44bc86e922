package main

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"

	"github.com/fatali-fataliyev/monthly_budget/api"
	"github.com/fatali-fataliyev/monthly_budget/internal/auth"
	"github.com/fatali-fataliyev/monthly_budget/internal/budget"
	"github.com/fatali-fataliyev/monthly_budget/internal/config"
	"github.com/fatali-fataliyev/monthly_budget/internal/storage"
	"github.com/fatali-fataliyev/monthly_budget/logging"
	"github.com/google/uuid"
	"github.com/rs/cors"
)

func main() {
	if err := run(); err != nil {
		logging.Logger.Errorf("application stopped: %v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logging.Init(cfg.LogLevel, cfg.IsProduction(), cfg.LogDir); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	logging.Logger.Info("application starting...")

	storageInstance, db, err := openStorage(cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	secret := cfg.JWTSecret
	if secret == "" {
		// only reachable with the memory driver, tokens die with the process anyway
		secret = uuid.New().String()
		logging.Logger.Warn("JWT_SECRET not set, using a random secret for this run")
	}
	tokens := auth.NewTokenManager(secret, cfg.TokenTTL, nil)

	bt := budget.NewBudgetTracker(storageInstance, tokens)
	logging.Logger.Infof("using %s storage", bt.StorageType)

	corsConf := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", api.TRACE_HEADER},
		ExposedHeaders:   []string{api.TRACE_HEADER},
		AllowCredentials: true,
	})

	handler := api.NewApi(bt, cfg.DisplayLocale).Routes()

	logging.Logger.Infof("Starting server on port: %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, corsConf.Handler(handler)); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func openStorage(cfg *config.Config) (budget.Storage, *sql.DB, error) {
	switch cfg.DBDriver {
	case config.DriverMemory:
		return storage.NewInMemoryStorage(), nil, nil
	case config.DriverMySQL:
		db, err := storage.Init(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return storage.NewMySQLStorage(db), db, nil
	case config.DriverSQLite:
		db, err := storage.Init(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return storage.NewSQLiteStorage(db), db, nil
	default:
		return nil, nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
	}
}
