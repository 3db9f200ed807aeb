package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"github.com/mtlprog/cartservice/internal/config"
	"github.com/mtlprog/cartservice/internal/database"
	"github.com/mtlprog/cartservice/internal/handler"
	"github.com/mtlprog/cartservice/internal/logger"
	"github.com/mtlprog/cartservice/internal/middleware"
	"github.com/mtlprog/cartservice/internal/server"
)

func main() {
	// Flags read their EnvVars while parsing, so the env file must be loaded first.
	if err := config.LoadEnvFile(config.EnvFilePath()); err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	app := newApp(runServe, runMigrate)

	if err := app.Run(os.Args); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// newApp builds the CLI. Serve flags are app-level; the serve command reads them through the context lineage.
func newApp(serve, migrate cli.ActionFunc) *cli.App {
	return &cli.App{
		Name:  "cartservice",
		Usage: "Shopping cart HTTP service",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:     "database-url",
				Aliases:  []string{"d"},
				Value:    config.DefaultDatabaseURL,
				Usage:    "PostgreSQL database URL",
				EnvVars:  []string{"DATABASE_URL"},
				Required: true,
			},
		}, serveFlags()...),
		Before: func(c *cli.Context) error {
			logger.Setup(logger.ParseLevel(c.String("log-level")))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the web server",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "Apply database migrations and exit",
				Action: migrate,
			},
		},
		Action: serve,
	}
}

func serveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Value:   config.DefaultPort,
			Usage:   "HTTP server port",
			EnvVars: []string{"PORT"},
		},
		&cli.StringFlag{
			Name:    "cors-origins",
			Value:   config.DefaultCORSOrigins,
			Usage:   "Comma-separated allowed origins, * for any",
			EnvVars: []string{"CORS_ORIGINS"},
		},
		&cli.Int64Flag{
			Name:    "body-limit",
			Value:   config.DefaultBodyLimit,
			Usage:   "Maximum parsed request body size in bytes",
			EnvVars: []string{"BODY_LIMIT"},
		},
	}
}

func loadConfig(c *cli.Context) (config.Config, error) {
	port, err := config.ResolvePort(c.String("port"))
	if err != nil {
		return config.Config{}, err
	}

	cfg := config.Config{
		Port:            port,
		DatabaseURL:     c.String("database-url"),
		LogLevel:        c.String("log-level"),
		CORSOrigins:     config.ParseOrigins(c.String("cors-origins")),
		BodyLimit:       c.Int64("body-limit"),
		ShutdownTimeout: config.DefaultShutdownTimeout,
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func runServe(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db.Pool()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	h := handler.New(db.Pool())

	router := server.NewRouter(
		server.RouterOptions{
			Logger:      slog.Default(),
			CORSOrigins: cfg.CORSOrigins,
			BodyLimit:   cfg.BodyLimit,
			Metrics:     middleware.NewMetrics(registry),
		},
		server.Route{Prefix: "/cart", Handler: h.CartRoutes()},
		server.Route{Prefix: "/healthz", Handler: handler.Healthz(db)},
		server.Route{Prefix: "/metrics", Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{})},
	)

	return server.New(router, cfg.Port, cfg.ShutdownTimeout, slog.Default()).Run(ctx)
}

func runMigrate(c *cli.Context) error {
	ctx := c.Context
	databaseURL := c.String("database-url")

	db, err := database.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db.Pool()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
