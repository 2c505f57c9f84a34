package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httplog"
	"github.com/marcelsud/n8n-gateway/config"
	"github.com/marcelsud/n8n-gateway/endpoints"
	"github.com/marcelsud/n8n-gateway/gateway"
	"github.com/marcelsud/n8n-gateway/image"
	"github.com/marcelsud/n8n-gateway/image/filesystem"
	"github.com/marcelsud/n8n-gateway/internal/http/chi"
	"github.com/marcelsud/n8n-gateway/metrics"
	"github.com/marcelsud/n8n-gateway/preference"
	prefredis "github.com/marcelsud/n8n-gateway/preference/redis"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"
)

const TIMEOUT = 30 * time.Second

// imagePath is where stored images are served for download
const imagePath = "/download-image"

/*
 * main wires the packages together: config, registry, Redis, the gateway
 * components and the HTTP layer. Imports only go downwards.
 */

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Println(err)
		return
	}
	logger := httplog.NewLogger("n8n-gateway", httplog.Options{
		JSON:     cfg.LogJSON,
		LogLevel: cfg.LogLevel,
		Concise:  true,
	})

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
	defer stop()

	registry, err := endpoints.Load(cfg.WebhooksFile, endpoints.Overrides{
		ProductionURL: cfg.N8NWebhookURL,
		TestURL:       cfg.N8NWebhookTestURL,
	})
	if err != nil {
		logger.Error().Err(err).Msg("loading webhook registry")
		return
	}
	if !registry.Exists(cfg.ProbeEndpoint) {
		logger.Error().Str("endpoint", cfg.ProbeEndpoint).Msg("PROBE_ENDPOINT is not a registered webhook")
		return
	}

	redisClient, err := prefredis.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Error().Err(err).Msg("connecting to Redis")
		return
	}

	collector := metrics.NewRedisCollector(redisClient, registry, logger)
	exporter, err := metrics.NewOTelExporter(collector)
	if err != nil {
		logger.Error().Err(err).Msg("creating metrics exporter")
		redisClient.Close()
		return
	}

	// No client Timeout: the forwarder applies the per-endpoint deadline
	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			DialContext:         (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
			TLSHandshakeTimeout: 10 * time.Second,
			MaxIdleConnsPerHost: 16,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	forwarder := gateway.NewForwarder(registry, httpClient)
	prober := gateway.NewProber(registry, httpClient, cfg.ProbeTimeout(), cfg.ProbeEndpoint)
	images := image.NewService(filesystem.NewStore(cfg.ImagesDir), imagePath)
	gw := gateway.NewService(registry, forwarder, prober, images, collector, logger, cfg.EnableDemoFallback)
	prefs := preference.NewService(prefredis.NewRepository(redisClient, cfg.PreferenceTTL()))

	r := chi.Handlers(ctx, chi.Options{
		Gateway:            gw,
		Images:             images,
		Preferences:        prefs,
		Registry:           registry,
		Stats:              collector,
		Metrics:            exporter.ServeHTTP(),
		Logger:             logger,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		MaxUploadBytes:     cfg.MaxUploadBytes,
		PublicBaseURL:      cfg.PublicBaseURL,
	})
	srv := &http.Server{
		ReadTimeout: 30 * time.Second,
		// A forward may run for the longest endpoint timeout or the largest override
		WriteTimeout: max(registry.MaxTimeout(), gateway.MaxCallTimeout) + TIMEOUT,
		Addr:         ":" + cfg.Port,
		Handler:      r,
	}

	if cfg.ImageRetention() > 0 {
		go janitor(ctx, images, cfg.ImageRetention(), cfg.ImageSweepInterval(), logger)
	}

	errShutdown := make(chan error, 1)
	go shutdown(srv, ctx, errShutdown)
	logger.Info().
		Str("port", cfg.Port).
		Int("endpoints", len(registry.List())).
		Bool("demo_fallback", cfg.EnableDemoFallback).
		Msg("listening")
	err = srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("serving")
		stop()
	}
	err = multierr.Combine(
		<-errShutdown,
		exporter.Shutdown(context.Background()),
		redisClient.Close(),
	)
	if err != nil {
		logger.Error().Err(err).Msg("shutting down")
		return
	}
	logger.Info().Msg("stopped")
}

func shutdown(server *http.Server, ctxShutdown context.Context, errShutdown chan error) {
	<-ctxShutdown.Done()

	ctxTimeout, stop := context.WithTimeout(context.Background(), TIMEOUT)
	defer stop()

	err := server.Shutdown(ctxTimeout)
	switch err {
	case nil:
		fmt.Printf("\nShutting down server...\n")
		errShutdown <- nil
	case context.DeadlineExceeded:
		errShutdown <- fmt.Errorf("Forcing closing the server")
	default:
		errShutdown <- fmt.Errorf("Forcing closing the server")
	}
}

// janitor removes stored images older than retention once per interval
func janitor(ctx context.Context, images image.UseCase, retention, interval time.Duration, logger zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := images.Sweep(ctx, retention)
			if err != nil {
				logger.Warn().Err(err).Msg("sweeping images")
				continue
			}
			if n > 0 {
				logger.Info().Int("removed", n).Msg("swept expired images")
			}
		}
	}
}
