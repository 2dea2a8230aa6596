package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Arwin-j/rouTU/internal/auth"
	"github.com/Arwin-j/rouTU/internal/config"
	"github.com/Arwin-j/rouTU/internal/gemini"
	httptransport "github.com/Arwin-j/rouTU/internal/http"
	"github.com/Arwin-j/rouTU/internal/http/handler"
	httpmiddleware "github.com/Arwin-j/rouTU/internal/http/middleware"
	"github.com/Arwin-j/rouTU/internal/schedule"
	"github.com/Arwin-j/rouTU/internal/server"
	"github.com/Arwin-j/rouTU/internal/telemetry"
)

func main() {
	app := fx.New(
		fx.Provide(
			newConfig,
			newLogger,
			newTelemetry,
			newKeySetCache,
			newVerifier,
			newGeminiClient,
			newScheduleService,
			newAPIHandler,
			newAuthMiddleware,
			httptransport.NewRouter,
			server.NewHTTPServer,
		),
		fx.Invoke(useTelemetry, startHTTPServer),
	)

	app.Run()
}

func newConfig() (config.Config, error) {
	return config.Load()
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Environment == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

func newTelemetry(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*telemetry.Provider, error) {
	provider, err := telemetry.New(context.Background(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("telemetry init: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return provider.Shutdown(stopCtx)
		},
	})

	return provider, nil
}

func newKeySetCache(cfg config.Config, logger *zap.Logger) *auth.KeySetCache {
	return auth.NewKeySetCache(&http.Client{Timeout: 10 * time.Second}, cfg.JWKSURL(), logger)
}

func newVerifier(cache *auth.KeySetCache, cfg config.Config) *auth.Verifier {
	return auth.NewVerifier(cache, cfg.Auth0Audience, cfg.Issuer(), cfg.AllowedAlgorithms, cfg.ClockSkew)
}

func newGeminiClient(cfg config.Config, logger *zap.Logger) *gemini.Client {
	return gemini.NewClient(&http.Client{Timeout: cfg.GeminiTimeout}, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
}

func newScheduleService(client *gemini.Client, logger *zap.Logger) *schedule.Service {
	return schedule.NewService(client, logger)
}

func newAPIHandler(scheduleSvc *schedule.Service, logger *zap.Logger) *handler.APIHandler {
	return handler.NewAPIHandler(scheduleSvc, logger)
}

func newAuthMiddleware(verifier *auth.Verifier) *httpmiddleware.Auth {
	return &httpmiddleware.Auth{Verifier: verifier}
}

func startHTTPServer(lc fx.Lifecycle, srv *server.HTTPServer, cfg config.Config, logger *zap.Logger) {
	addr := ":" + cfg.HTTPPort
	var (
		cancel context.CancelFunc
		done   chan struct{}
	)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			runCtx, stop := context.WithCancel(context.Background())
			cancel = stop
			done = make(chan struct{})

			go func() {
				if err := srv.Run(runCtx, addr); err != nil {
					logger.Error("http server stopped", zap.Error(err))
				}
				close(done)
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
			}
			if done == nil {
				return nil
			}
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

func useTelemetry(*telemetry.Provider) {}
