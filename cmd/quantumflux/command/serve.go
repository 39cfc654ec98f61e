package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"quantumflux/database"
	"quantumflux/internal/cache"
	"quantumflux/internal/config"
	"quantumflux/internal/http-api/routes"
	"quantumflux/internal/observability"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, log, db, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if err := database.Close(db); err != nil {
				log.Error("database_close_failed", "error", err)
			}
		}()

		if migrateOnStart {
			if err := database.Migrate(ctx, db, log); err != nil {
				return err
			}
		}
		return serve(ctx, cfg, log, db)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply schema migrations before serving")
}

// serve runs the API until ctx is cancelled, then drains in-flight requests
// for at most cfg.ShutdownTimeout.
func serve(ctx context.Context, cfg *config.Config, log *slog.Logger, db *gorm.DB) error {
	var listing *cache.ListingCache
	if cfg.CacheEnabled() {
		c, err := cache.NewListingCache(ctx, cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			// listings still work uncached
			log.Warn("cache_unavailable", "error", err)
		} else {
			listing = c
			defer listing.Close()
			log.Info("cache_connected", "ttl", cfg.CacheTTL.String())
		}
	}

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics()
	}

	router := routes.SetupRouter(routes.Deps{
		Config:  cfg,
		DB:      db,
		Cache:   listing,
		Metrics: metrics,
		Logger:  log,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("http_server_starting", "addr", srv.Addr, "env", cfg.GoEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err, ok := <-errChan:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("received_shutdown_signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info("server_stopped_gracefully")
	return nil
}
