package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/i474232898/climate-chat/internal/api/http"
	"github.com/i474232898/climate-chat/internal/chat"
	"github.com/i474232898/climate-chat/internal/config"
	"github.com/i474232898/climate-chat/internal/genai"
	"github.com/i474232898/climate-chat/internal/paramstore"
	"github.com/i474232898/climate-chat/internal/scheduler"
	"github.com/i474232898/climate-chat/internal/store"
	"github.com/i474232898/climate-chat/internal/weather"
	"github.com/i474232898/climate-chat/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Credentials from Parameter Store take precedence over the environment.
	if cfg.ParamPrefix != "" {
		secrets, err := paramstore.NewFromEnvironment(ctx, cfg.ParamPrefix)
		if err != nil {
			slog.Error("failed to init parameter store", "err", err)
			os.Exit(1)
		}
		if err := cfg.ApplySecrets(ctx, secrets); err != nil {
			slog.Error("failed to load secrets", "prefix", cfg.ParamPrefix, "err", err)
			os.Exit(1)
		}
	}

	if cfg.TracingEnabled {
		tp, err := initTracing(ctx)
		if err != nil {
			slog.Error("failed to init tracing", "err", err)
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				slog.Warn("tracer shutdown failed", "err", err)
			}
		}()
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// In-memory store with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	// Conditions provider with resilience (backoff + circuit breaker).
	var gateway weather.Gateway
	switch cfg.WeatherProvider {
	case config.ProviderWeatherAPI:
		gateway = providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIKey)
	default:
		gateway = providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey)
	}
	if cfg.ProviderKey() == "" {
		slog.Warn("weather provider has no api key; weather lookups will fail", "provider", gateway.Name())
	}

	var climate weather.ClimateGateway
	switch cfg.ClimateSource {
	case config.ClimateOpenMeteo:
		climate = providers.NewOpenMeteoClimateProvider(httpClient)
	default:
		climate = weather.NewSyntheticClimate(nil, cfg.ClimateLatency)
	}

	// Core service orchestrating gateways and store.
	service := weather.NewService(memStore, gateway, climate, cfg.Home)

	gemini := genai.NewClient(cfg.GeminiAPIKey,
		genai.WithModel(cfg.GeminiModel),
		genai.WithTimeout(2*cfg.HTTPTimeout),
	)
	if !gemini.Available() {
		slog.Info("no generative credential configured; using canned replies")
	}

	sessions := chat.NewSessions(cfg.SessionIdleTTL)
	router := chat.NewRouter(service, gemini, chat.WithContextDelay(cfg.ClimateContextDelay))

	// Scheduler that keeps the home panel fresh and prunes idle sessions.
	sched := scheduler.New(service, cfg.PanelRefreshInterval, sessions, 0)
	if err := sched.Start(); err != nil {
		slog.Error("failed to start scheduler", "err", err)
		os.Exit(1)
	}
	defer sched.Stop()

	app := httpapi.NewApp(true)
	httpapi.RegisterRoutes(app, service, httpapi.Conversation{
		Router:   router,
		Sessions: sessions,
	})

	go func() {
		slog.Info("listening", "port", cfg.Port, "provider", gateway.Name(), "climate", cfg.ClimateSource)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("fiber server stopped", "err", err)
			stop()
		}
	}()

	// Wait for termination signal
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("error during shutdown", "err", err)
	}
}
