package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JeanGrandez/mcfrontend-v1-sub000/internal/api"
	"github.com/JeanGrandez/mcfrontend-v1-sub000/internal/backoff"
	"github.com/JeanGrandez/mcfrontend-v1-sub000/internal/config"
	"github.com/JeanGrandez/mcfrontend-v1-sub000/internal/connection"
	"github.com/JeanGrandez/mcfrontend-v1-sub000/internal/credential"
	"github.com/JeanGrandez/mcfrontend-v1-sub000/internal/dispatch"
	"github.com/JeanGrandez/mcfrontend-v1-sub000/internal/status"
	"github.com/JeanGrandez/mcfrontend-v1-sub000/internal/version"
	"github.com/JeanGrandez/mcfrontend-v1-sub000/internal/view"
)

func main() {
	configPath := flag.String("config", "configs/dashboard.local.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting dashboard client",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"rest_url", cfg.Server.RestURL,
		"ws_url", cfg.Server.WSURL,
		"channels", cfg.Connection.Channels,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Credential store, optionally seeded from config or environment
	creds := credential.NewStore()
	if cfg.Server.Token != "" {
		creds.Set(cfg.Server.Token)
	}

	// REST client reads its bearer token from the store so it follows
	// logins and revocations
	apiClient := api.NewClient(
		cfg.Server.RestURL,
		"",
		api.WithCredentials(creds),
		api.WithLogger(logger),
		api.WithTimeout(30*time.Second),
		api.WithRetries(3, time.Second),
	)

	// Connection manager with linear backoff
	mgrCfg := connection.ManagerConfig{
		WSURL:            cfg.Server.WSURL,
		Channels:         cfg.Connection.Channels,
		Backoff:          backoff.NewLinear(cfg.Connection.ReconnectBaseDelay, cfg.Connection.MaxReconnectAttempts),
		HandshakeTimeout: cfg.Connection.HandshakeTimeout,
		WriteTimeout:     cfg.Connection.WriteTimeout,
		PingInterval:     cfg.Connection.PingInterval,
		PingTimeout:      cfg.Connection.PingTimeout,
		MessageBuffer:    cfg.Connection.MessageBuffer,
	}
	manager := connection.NewManager(mgrCfg, creds, logger)
	defer manager.Close()

	// Dispatcher and pump route inbound pushes to typed handlers
	dispatcher := dispatch.NewDispatcher(logger)
	pump := dispatch.NewPump(manager.Events(), dispatcher, logger)
	pump.Start(ctx)
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		pump.Stop(stopCtx)
	}()

	// View adapters hold the latest snapshot each surface renders from
	orderBook := view.NewOrderBookAdapter(dispatcher, manager, logger)
	orderBook.Attach()
	defer orderBook.Close()

	balance := view.NewBalanceAdapter(dispatcher, logger)
	balance.Attach()
	defer balance.Close()

	orderEvents := view.NewOrderEventsAdapter(dispatcher, logger)
	orderEvents.Attach()
	defer orderEvents.Close()

	marketStatus := view.NewMarketStatusAdapter(dispatcher, manager, logger)
	marketStatus.Attach()
	defer marketStatus.Close()

	ranking := view.NewRankingAdapter(dispatcher, logger)
	ranking.Attach()
	defer ranking.Close()

	// Status reporter for the banner and health endpoint
	reporter := status.NewReporter(manager)
	defer reporter.Close()
	unsubStatus := reporter.OnChange(func(s status.Status) {
		logger.Info("connection status", "status", string(s))
	})
	defer unsubStatus()

	// Refresh REST snapshots on every transition into Connected; the
	// stream only pushes on change, so state from the outage is stale
	// until refetched.
	unsubRefresh := manager.OnStateChange(func(t connection.Transition) {
		if t.To != connection.StateConnected {
			return
		}
		go refreshSnapshots(ctx, apiClient, balance, ranking, logger)
	})
	defer unsubRefresh()

	// Health server
	healthPort := cfg.Health.Port
	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", healthPort),
		Handler: createHealthHandler(reporter, orderBook, balance, ranking, logger),
	}

	go func() {
		logger.Info("starting health server", "port", healthPort)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	// Initial snapshot fetch before the stream connects
	refreshSnapshots(ctx, apiClient, balance, ranking, logger)

	// Open the streaming connection
	manager.Connect()

	logger.Info("dashboard client running",
		"health_url", fmt.Sprintf("http://localhost:%d/healthz", healthPort),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	healthServer.Shutdown(shutdownCtx)

	logger.Info("dashboard client stopped")
}

// refreshSnapshots pulls the REST snapshots that have no
// connected-gated adapter. The order book and market status reset to
// unknown on disconnect and are replaced by the first push instead.
func refreshSnapshots(ctx context.Context, apiClient *api.Client, balance *view.BalanceAdapter, ranking *view.RankingAdapter, logger *slog.Logger) {
	fetchCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if profile, err := apiClient.GetProfile(fetchCtx); err != nil {
		logger.Warn("profile snapshot fetch failed", "error", err)
	} else {
		balance.Seed(profile.Balance)
	}

	if r, err := apiClient.GetRanking(fetchCtx); err != nil {
		logger.Warn("ranking snapshot fetch failed", "error", err)
	} else {
		ranking.Seed(r)
	}
}

// createHealthHandler creates the HTTP handler for health checks.
func createHealthHandler(reporter *status.Reporter, orderBook *view.OrderBookAdapter, balance *view.BalanceAdapter, ranking *view.RankingAdapter, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		st := reporter.Status()

		health := struct {
			Status     string         `json:"status"`
			Connection string         `json:"connection"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Connection: string(st),
			Components: make(map[string]any),
		}

		if st == status.StatusError {
			health.Status = "unhealthy"
		} else if st != status.StatusConnected {
			health.Status = "degraded"
		}

		if _, ok := orderBook.Current(); ok {
			health.Components["order_book"] = "fresh"
		} else {
			health.Components["order_book"] = "unknown"
		}
		if _, ok := balance.Current(); ok {
			health.Components["balance"] = "fresh"
		} else {
			health.Components["balance"] = "unknown"
		}
		if _, ok := ranking.Current(); ok {
			health.Components["ranking"] = "fresh"
		} else {
			health.Components["ranking"] = "unknown"
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	return mux
}
