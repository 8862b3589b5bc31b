package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/yourorg/neighborhoods-api/attom"
	"github.com/yourorg/neighborhoods-api/google"
	"github.com/yourorg/neighborhoods-api/internal/cached"
	"github.com/yourorg/neighborhoods-api/internal/config"
	"github.com/yourorg/neighborhoods-api/internal/demography"
	"github.com/yourorg/neighborhoods-api/internal/events"
	"github.com/yourorg/neighborhoods-api/internal/neighborhood"
	"github.com/yourorg/neighborhoods-api/internal/redisx"
	"github.com/yourorg/neighborhoods-api/internal/runlog"
	"github.com/yourorg/neighborhoods-api/internal/store"
)

func main() {
	if err := run(); err != nil {
		zap.L().Error("neighborhoods-api exited", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := config.InitLogger(cfg.Log); err != nil {
		return err
	}
	defer zap.L().Sync() //nolint:errcheck
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g := google.NewClient(cfg.Google.APIKey, google.WithRateLimit(cfg.Google.RateLimitRPS))
	providers := neighborhood.Providers{
		Geocoder:  g,
		Places:    g,
		Reverse:   g,
		Commutes:  g,
		Amenities: g,
		Photos:    g,
	}

	var demo neighborhood.DemographicsSource
	if cfg.Attom.APIKey != "" {
		a := attom.NewClient(cfg.Attom.APIKey)
		providers.Prices = a
		demo = a
	} else {
		zap.L().Warn("attom.api_key not set; price estimates and demographics disabled")
	}

	if cfg.Redis.Addr != "" {
		rc := redisx.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer rc.Close() //nolint:errcheck
		if err := rc.Ping(ctx); err != nil {
			zap.L().Warn("redis unreachable; caches will bypass", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		providers.Geocoder = &cached.Geocoder{Next: g, KV: rc, TTL: cfg.Redis.GeocodeTTL}
		if demo != nil {
			demo = &cached.Demographics{Next: demo, KV: rc, TTL: cfg.Redis.DemographicsTTL}
		}
	}
	providers.Demographics = demo

	engine, err := neighborhood.NewEngine(providers, engineConfig(cfg))
	if err != nil {
		return err
	}

	var pub events.Publisher
	if cfg.Postgres.DSN != "" {
		st, err := store.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return err
		}
		pub = events.NewInMemory(256)
		go (&runlog.Recorder{Pub: pub, Store: st}).Run(ctx)
	}

	deps := RouterDeps{
		Engine:        engine,
		Pub:           pub,
		RatePerMinute: cfg.Server.RateLimitPerMinute,
	}
	if demo != nil {
		deps.Demography = &demography.Service{Source: demo, Concurrency: 8}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           BuildRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("neighborhoods-api listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zap.L().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Engine.MaxWait+5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func engineConfig(cfg *config.Config) neighborhood.Config {
	ec := neighborhood.DefaultConfig()
	ec.SettleDelay = cfg.Engine.SettleDelay
	ec.Quorum = cfg.Engine.Quorum
	ec.MaxWait = cfg.Engine.MaxWait
	ec.MaxPhotos = cfg.Engine.MaxPhotos
	ec.CommuteMode = cfg.Engine.CommuteMode
	ec.DiscoveryConcurrency = cfg.Discovery.Concurrency
	ec.Demographics = cfg.Enrich.Demographics
	return ec
}
