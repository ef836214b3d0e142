package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"

	ratecache "github.com/fxmirror/fxmirror/internal/adapters/cache/memory"
	"github.com/fxmirror/fxmirror/internal/adapters/database/pgsql"
	"github.com/fxmirror/fxmirror/internal/adapters/feed/ecb"
	portssvc "github.com/fxmirror/fxmirror/internal/core/ports/services"
	"github.com/fxmirror/fxmirror/internal/core/services"
	"github.com/fxmirror/fxmirror/internal/handlers"
	"github.com/fxmirror/fxmirror/internal/middleware"
	"github.com/fxmirror/fxmirror/internal/platform/config"
	"github.com/fxmirror/fxmirror/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	limitermem "github.com/ulule/limiter/v3/drivers/store/memory"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// @title fxmirror API
// @version 1.0
// @description FX rate service mirroring the ECB reference feed, with manual overrides and currency conversion.

// @host localhost:8080
// @BasePath /api/v1
func main() {
	dumpRates := flag.Bool("dump-rates", false, "fetch the upstream feed once, print the snapshot and exit")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	feed := ecb.NewClient(ecb.Options{FeedURL: cfg.FeedURL, Timeout: cfg.FeedTimeout})

	if *dumpRates {
		if err := dumpSnapshot(feed); err != nil {
			logger.Error("Failed to fetch rate snapshot", slog.String("error", err.Error()))
			os.Exit(1)
		}
		return
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
		logger.Error("Failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsConfig))

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		logger.Error("Invalid RATE_LIMIT value", slog.String("error", err.Error()))
		os.Exit(1)
	}
	r.Use(middleware.RateLimit(limiter.New(limitermem.NewStore(), rate)))

	currencyService := services.NewCurrencyService(
		pgsql.NewCurrencyRepository(dbPool),
		feed,
		ratecache.NewRateSetCache(cfg.CacheTTL),
		services.CurrencyServiceOptions{
			BaseCurrency:  cfg.BaseCurrency,
			RetentionDays: cfg.RetentionDays,
		},
	)

	container := &portssvc.ServiceContainer{Currency: currencyService}
	handlers.RegisterRoutes(r, cfg, container)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// runMigrations applies all pending up migrations from the migrations
// directory using a temporary database/sql connection.
func runMigrations(databaseURL string, logger *slog.Logger) error {
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer migrationDB.Close()

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}

// dumpSnapshot fetches the feed once and prints it, mirroring what the
// reconciler would ingest. Useful for eyeballing upstream data.
func dumpSnapshot(feed *ecb.Client) error {
	snapshot, err := feed.FetchSnapshot(context.Background())
	if err != nil {
		return err
	}

	codes := make([]string, 0, len(snapshot.Rates))
	for code := range snapshot.Rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	fmt.Printf("as of %s\n", snapshot.AsOf.Format("2006-01-02"))
	for _, code := range codes {
		fmt.Printf("%s\t%s\n", code, snapshot.Rates[code].StringFixed(7))
	}
	return nil
}
