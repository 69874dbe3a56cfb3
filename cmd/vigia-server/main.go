package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vigia/vigia/internal/config"
	"github.com/vigia/vigia/internal/platform/auth"
	"github.com/vigia/vigia/internal/platform/db"
	"github.com/vigia/vigia/internal/platform/middleware"
	"github.com/vigia/vigia/internal/platform/notification"
	"github.com/vigia/vigia/internal/risk"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "vigia-server",
		Short: "Medical risk scoring and escalation API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(tablesCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the risk assessment API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

// tablesCmd prints the effective scoring tables so operators can verify an
// override file before deploying it.
func tablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "Validate and print the effective risk scoring tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := risk.LoadTables(os.Getenv("RISK_TABLES_FILE"))
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(tables)
		},
	}
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Scoring tables. A bad override file is fatal at startup, never at
	// assessment time.
	tables, err := risk.LoadTables(cfg.RiskTablesFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load risk tables")
	}
	engine, err := risk.NewEngine(tables)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid risk tables")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	if err := risk.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("failed to ensure schema")
	}

	// Services
	repo := risk.NewAssessmentRepoPG(pool)
	svc := risk.NewService(engine, repo)

	sender := &notification.LogSender{Log: logger}
	dispatcher := notification.NewDispatcher(sender, notification.NewTemplateEngine(), cfg.AlertRecipient)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	if cfg.ResolvedAuthMode() == "development" {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.Config{
			Secret:   cfg.AuthSecret,
			Issuer:   cfg.AuthIssuer,
			Audience: cfg.AuthAudience,
		}))
	}

	// API group
	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	handler := risk.NewHandler(svc, noticeAdapter{dispatcher}, logger)
	handler.RegisterRoutes(apiV1)

	// Graceful shutdown
	addr := ":" + cfg.Port
	go func() {
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// noticeAdapter narrows the dispatcher to the handler's interface, discarding
// the stored notice record.
type noticeAdapter struct {
	d *notification.Dispatcher
}

func (a noticeAdapter) DispatchDecision(ctx context.Context, assessment *risk.CompositeRiskAssessment, decision *risk.EscalationDecision) error {
	_, err := a.d.DispatchDecision(ctx, assessment, decision)
	return err
}
