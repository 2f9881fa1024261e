package hireflow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"hireflow/internal/api"
	"hireflow/internal/app"
	"hireflow/internal/cli"
	"hireflow/internal/config"
	"hireflow/internal/database"
	apphttp "hireflow/internal/http"
	"hireflow/internal/http/handlers"
	"hireflow/internal/http/metrics"
	httpmw "hireflow/internal/http/middleware"
	"hireflow/internal/http/response"
	"hireflow/internal/logging"
	"hireflow/internal/session"
	"hireflow/internal/storage"
	"hireflow/internal/storage/pgstore"
	"hireflow/internal/storage/redisstore"
)

// Run wires the client from the environment, executes one command line and
// returns the process exit code.
func Run(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return cli.ExitError
	}

	logger := logging.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient := connectRedis(ctx, cfg, logger)
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error("redis close failed", slog.String("error", err.Error()))
			}
		}()
	}

	store, closeStore, err := openStore(ctx, cfg, redisClient, logger)
	if err != nil {
		logger.Error("credential store unavailable", slog.String("driver", cfg.StoreDriver), slog.String("error", err.Error()))
		fmt.Fprintln(os.Stderr, "error: could not open the credential store")
		return cli.ExitError
	}
	defer closeStore()

	// Establish navigates to the role home through the console app, which is
	// built once the client exists.
	var console *cli.App
	sessions := session.NewService(store, session.Options{
		Logger:           logger,
		BootstrapTimeout: cfg.BootstrapTimeout,
		Navigate: func(path string) {
			if console != nil {
				console.Navigate(path)
			}
		},
	})
	sessions.Bootstrap(ctx)

	client := api.NewClient(cfg.APIBaseURL, sessions,
		api.WithTimeout(cfg.APITimeout),
		api.WithLogger(logger),
		api.WithUnauthorizedHandler(sessions.HandleUnauthorized),
	)

	console = cli.New(cli.Dependencies{
		Backend:  client,
		Sessions: sessions,
		Serve: func(ctx context.Context) error {
			return serve(ctx, cfg, client, sessions, redisClient, logger)
		},
		In:     os.Stdin,
		Out:    os.Stdout,
		Err:    os.Stderr,
		Logger: logger,
	})
	return console.Run(ctx, args)
}

func connectRedis(ctx context.Context, cfg config.Config, logger *slog.Logger) *redis.Client {
	if cfg.RedisURL == "" {
		return nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Error("redis url parse failed", slog.String("error", err.Error()))
		return nil
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Error("redis ping failed", slog.String("error", err.Error()))
		_ = client.Close()
		return nil
	}
	return client
}

func openStore(ctx context.Context, cfg config.Config, redisClient *redis.Client, logger *slog.Logger) (storage.CredentialStore, func(), error) {
	noop := func() {}
	switch cfg.StoreDriver {
	case config.StoreMemory:
		logger.Warn("memory credential store in use, sessions end with the process")
		return storage.NewMemoryStore(), noop, nil
	case config.StoreRedis:
		if redisClient == nil {
			return nil, noop, errors.New("redis is not reachable")
		}
		return redisstore.New(redisClient, cfg.StoreKeyPrefix), noop, nil
	case config.StorePostgres:
		db, err := database.NewPostgres(ctx, database.PostgresConfig{
			Driver:          cfg.DBDriver,
			DSN:             cfg.DatabaseURL,
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxIdle:     cfg.DBConnMaxIdle,
			ConnMaxLifetime: cfg.DBConnMaxLife,
		}, logger)
		if err != nil {
			return nil, noop, err
		}
		closeDB := func() { closeQuietly(db, logger) }
		store := pgstore.New(db, cfg.StoreKeyPrefix)
		if err := store.EnsureSchema(ctx); err != nil {
			closeDB()
			return nil, noop, err
		}
		return store, closeDB, nil
	default:
		return storage.NewFileStore(cfg.StorePath), noop, nil
	}
}

func closeQuietly(db *sql.DB, logger *slog.Logger) {
	if err := db.Close(); err != nil {
		logger.Error("database close failed", slog.String("error", err.Error()))
	}
}

// serve runs the local console until ctx is cancelled.
func serve(ctx context.Context, cfg config.Config, client *api.Client, sessions *session.Service, redisClient *redis.Client, logger *slog.Logger) error {
	collector := metrics.NewCollector()
	response.SetErrorCollector(collector)

	var limiter httpmw.Limiter = httpmw.NewLoginThrottle()
	if redisClient != nil {
		limiter = httpmw.NewSharedLoginThrottle(redisClient, cfg.StoreKeyPrefix+":login", logger)
	}

	router := apphttp.NewRouter(apphttp.RouterDependencies{
		AuthHandler: handlers.NewAuthHandler(app.NewAuthService(client, sessions, logger), sessions),
		DashboardHandler: handlers.NewDashboardHandler(handlers.DashboardDependencies{
			Jobs:     client,
			Reviews:  client,
			Analyzer: client,
			Mine:     client,
			Catalog:  client,
			Logger:   logger,
		}),
		MetricsHandler: metrics.NewHandler(collector),
		Sessions:       sessions,
		Limiter:        limiter,
		Metrics:        collector,
		RequestTimeout: cfg.RequestTimeout,
		LoginPerMin:    cfg.LoginPerMin,
	})
	server := &http.Server{
		Addr:              ":" + cfg.ConsolePort,
		Handler:           router,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	errs := make(chan error, 1)
	go func() {
		logger.Info("console listening", slog.String("port", cfg.ConsolePort), slog.String("api", client.BaseURL()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err, ok := <-errs:
		if ok {
			return fmt.Errorf("console server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("console shutdown error", slog.String("error", err.Error()))
	}
	return nil
}
