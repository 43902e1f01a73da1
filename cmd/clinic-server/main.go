package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/clinic/clinic/internal/config"
	"github.com/clinic/clinic/internal/domain/appointment"
	"github.com/clinic/clinic/internal/domain/doctor"
	"github.com/clinic/clinic/internal/domain/medication"
	"github.com/clinic/clinic/internal/domain/patient"
	"github.com/clinic/clinic/internal/domain/payment"
	"github.com/clinic/clinic/internal/domain/recipe"
	"github.com/clinic/clinic/internal/nlquery"
	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/internal/platform/docstore"
	"github.com/clinic/clinic/internal/platform/docstore/memstore"
	"github.com/clinic/clinic/internal/platform/docstore/mongostore"
	"github.com/clinic/clinic/internal/platform/docstore/pgstore"
	"github.com/clinic/clinic/internal/platform/docstore/sqlitestore"
	"github.com/clinic/clinic/internal/platform/middleware"
)

const appName = "clinic-server"

func main() {
	rootCmd := &cobra.Command{
		Use:          appName,
		Short:        "Clinic records API with natural-language patient search",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(queryCmd())
	rootCmd.AddCommand(vocabularyCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the document tables of the SQL store drivers",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.OutOrStdout(), func(ctx context.Context, m *db.Migrator) error {
				count, err := m.Up(ctx)
				if err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.OutOrStdout(), func(ctx context.Context, m *db.Migrator) error {
				statuses, err := m.Status(ctx)
				if err != nil {
					return fmt.Errorf("failed to get migration status: %w", err)
				}
				printStatus(cmd.OutOrStdout(), statuses)
				return nil
			})
		},
	})

	return cmd
}

// withMigrator opens the configured SQL store just long enough to run fn.
// Document drivers without a schema have nothing to migrate.
func withMigrator(out io.Writer, fn func(ctx context.Context, m *db.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := db.NewPool(ctx, poolConfig(cfg))
		if err != nil {
			return err
		}
		defer pool.Close()
		files, err := db.Migrations(config.DriverPostgres)
		if err != nil {
			return err
		}
		return fn(ctx, db.NewMigrator(db.PostgresTarget{Pool: pool}, files))
	case config.DriverSQLite:
		store, err := sqlitestore.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return err
		}
		defer store.Close(ctx)
		return fn(ctx, store.Migrator())
	default:
		fmt.Fprintf(out, "Store driver %q has no schema to migrate.\n", cfg.StoreDriver)
		return nil
	}
}

func printStatus(out io.Writer, statuses []db.MigrationStatus) {
	fmt.Fprintf(out, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
	fmt.Fprintln(out, "---------- ---------------------------------------- ---------- --------------------")
	for _, s := range statuses {
		status := "pending"
		appliedAt := ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(out, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
	}
}

func queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query [text]",
		Short: "Translate a sentence into a patient filter without touching the store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			applyTranslatorFlags(cmd, cfg)
			tr, err := newTranslator(cfg)
			if err != nil {
				return err
			}
			return printFilter(cmd.OutOrStdout(), tr.Translate(strings.Join(args, " ")))
		},
	}
	addTranslatorFlags(cmd)
	return cmd
}

func vocabularyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vocabulary",
		Short: "Print the active query vocabulary as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			applyTranslatorFlags(cmd, cfg)
			v, err := loadVocabulary(cfg)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(v)
		},
	}
	addTranslatorFlags(cmd)
	return cmd
}

func addTranslatorFlags(cmd *cobra.Command) {
	cmd.Flags().String("mode", "", "Field matching mode: phrase or single-token (default from QUERY_MATCH_MODE)")
	cmd.Flags().String("vocabulary", "", "YAML vocabulary file (default from QUERY_VOCABULARY_FILE)")
}

func applyTranslatorFlags(cmd *cobra.Command, cfg *config.Config) {
	if mode, _ := cmd.Flags().GetString("mode"); mode != "" {
		cfg.QueryMatchMode = mode
	}
	if file, _ := cmd.Flags().GetString("vocabulary"); file != "" {
		cfg.QueryVocabularyFile = file
	}
}

func printFilter(out io.Writer, f nlquery.Filter) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(f)
}

func loadVocabulary(cfg *config.Config) (*nlquery.Vocabulary, error) {
	if cfg.QueryVocabularyFile == "" {
		return nlquery.DefaultVocabulary(), nil
	}
	return nlquery.LoadVocabulary(cfg.QueryVocabularyFile)
}

func newTranslator(cfg *config.Config) (*nlquery.Translator, error) {
	v, err := loadVocabulary(cfg)
	if err != nil {
		return nil, err
	}
	mode, err := cfg.MatchMode()
	if err != nil {
		return nil, err
	}
	return nlquery.New(v, nlquery.WithMatchMode(mode))
}

func newLogger(cfg *config.Config) zerolog.Logger {
	var out io.Writer = os.Stdout
	if cfg.IsDev() {
		out = zerolog.ConsoleWriter{Out: os.Stdout}
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	return zerolog.New(out).Level(level).With().Timestamp().Str("app", appName).Logger()
}

func poolConfig(cfg *config.Config) db.PoolConfig {
	return db.PoolConfig{
		URL:             cfg.DatabaseURL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		ApplicationName: appName,
	}
}

// openStore connects the configured driver. The postgres driver applies
// pending migrations before returning; sqlite does so when opened.
func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (docstore.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		s, err := mongostore.Open(ctx, mongostore.Config{
			URI:      cfg.MongoURI,
			Host:     cfg.MongoHost,
			User:     cfg.MongoUser,
			Pass:     cfg.MongoPass,
			Database: cfg.MongoDatabase,
		}, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverPostgres:
		pool, err := db.NewPool(ctx, poolConfig(cfg))
		if err != nil {
			return nil, err
		}
		files, err := db.Migrations(config.DriverPostgres)
		if err != nil {
			pool.Close()
			return nil, err
		}
		count, err := db.NewMigrator(db.PostgresTarget{Pool: pool}, files).Up(ctx)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		logger.Info().Int("applied", count).Msg("postgres migrations checked")
		return pgstore.New(pool), nil
	case config.DriverSQLite:
		s, err := sqlitestore.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverMemory:
		logger.Warn().Msg("using in-memory store, data is lost on restart")
		return memstore.New(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// newServer builds the HTTP server with every service mounted on store.
func newServer(cfg *config.Config, store docstore.Store, tr *nlquery.Translator, logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders(middleware.SecurityHeadersConfig{HSTS: cfg.IsProduction()}))
	e.Use(middleware.Sanitize(logger))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, middleware.RequestIDHeader},
	}))

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	limiter := middleware.RateLimit(rateLimitCfg)
	timeout := middleware.RequestTimeout(cfg.RequestTimeout)

	apiV1 := e.Group("/api/v1", limiter, timeout)
	recipeAPI := e.Group("/recipe-api/v1", limiter, timeout)

	// Health
	e.GET("/healthcheck", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "up"})
	})
	e.GET("/health/store", db.HealthHandler(store))

	// Services
	patientSvc := patient.NewService(patient.NewStoreRepo(store), tr, cfg.QueryMaxLength, logger)
	patient.NewHandler(patientSvc).RegisterRoutes(apiV1)

	doctorSvc := doctor.NewService(doctor.NewStoreRepo(store), logger)
	doctor.NewHandler(doctorSvc).RegisterRoutes(apiV1)

	medicationSvc := medication.NewService(medication.NewStoreRepo(store), logger)
	medication.NewHandler(medicationSvc).RegisterRoutes(apiV1)

	paymentSvc := payment.NewService(payment.NewStoreRepo(store), logger)
	payment.NewHandler(paymentSvc).RegisterRoutes(apiV1)

	appointmentSvc := appointment.NewService(appointment.NewStoreRepo(store), logger)
	appointment.NewHandler(appointmentSvc).RegisterRoutes(apiV1)

	recipeSvc := recipe.NewService(recipe.NewStoreRepo(store), medicationSvc, logger)
	recipe.NewHandler(recipeSvc).RegisterRoutes(recipeAPI)

	return e
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return err
	}

	tr, err := newTranslator(cfg)
	if err != nil {
		logger.Error().Err(err).Msg("failed to build query translator")
		return err
	}

	ctx := context.Background()
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open store")
		return err
	}
	defer store.Close(context.Background())
	logger.Info().Str("driver", store.Driver()).Str("match_mode", tr.Mode().String()).Msg("store ready")

	e := newServer(cfg, store, tr, logger)

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
