package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/click2print/orderdesk/internal/auth"
	"github.com/click2print/orderdesk/internal/connection"
	"github.com/click2print/orderdesk/internal/livechannel"
	"github.com/click2print/orderdesk/internal/metrics"
	"github.com/click2print/orderdesk/internal/monitoring"
	"github.com/click2print/orderdesk/internal/router"
	"github.com/click2print/orderdesk/internal/version"
)

func newMonitorCommand(a *app) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Follow the device monitoring feed and serve /health and /metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runMonitor(cmd, quiet)
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print device updates")
	return cmd
}

func (a *app) runMonitor(cmd *cobra.Command, quiet bool) error {
	ctx := cmd.Context()
	logger := a.logger

	st, release, err := a.openStorage(ctx)
	if err != nil {
		return err
	}
	defer release()

	var tokens auth.TokenSource = auth.NewStorageTokenSource(st, a.cfg.Auth.TokenKey)
	if a.cfg.Auth.Token != "" {
		tokens = auth.StaticToken(a.cfg.Auth.Token)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	ch := livechannel.New(a.channelConfig(), tokens,
		livechannel.WithLogger(logger),
		livechannel.WithMetrics(m),
	)

	out := cmd.OutOrStdout()
	board := monitoring.NewBoard(logger, func(eventType string, d monitoring.Device) {
		if quiet {
			return
		}
		line, err := json.Marshal(struct {
			Event  string            `json:"event"`
			Device monitoring.Device `json:"device"`
		}{eventType, d})
		if err != nil {
			return
		}
		fmt.Fprintln(out, string(line))
	})
	detach := board.Attach(ch)
	defer detach()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Metrics.Port),
		Handler:           newHTTPHandler(ch, board, reg, a.cfg.Metrics.Path, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting monitor",
		"version", version.Get().Version,
		"api_url", a.cfg.API.BaseURL,
		"health_url", fmt.Sprintf("http://localhost:%d/health", a.cfg.Metrics.Port),
	)

	if err := ch.Start(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("health server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		for err := range ch.Errors() {
			if errors.Is(err, livechannel.ErrAuthenticationFailed) {
				logger.Error("monitoring feed needs a valid token; run `orderdesk token set`", "error", err)
				continue
			}
			logger.Warn("monitoring feed error", "error", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("health server shutdown", "error", err)
		}
		return ch.Close()
	})

	err = g.Wait()
	logger.Info("monitor stopped", "devices", len(board.Devices()))
	return err
}

// channelConfig maps the config file onto the live channel settings.
func (a *app) channelConfig() livechannel.Config {
	c := a.cfg.Channel
	return livechannel.Config{
		BaseURL:            a.cfg.API.BaseURL,
		Path:               a.cfg.API.WSPath,
		ReconnectBaseDelay: c.ReconnectBaseDelay,
		ReconnectMaxDelay:  c.ReconnectMaxDelay,
		Client: connection.ClientConfig{
			HandshakeTimeout: c.HandshakeTimeout,
			PingInterval:     c.PingInterval,
			PingTimeout:      c.PingTimeout,
			WriteTimeout:     c.WriteTimeout,
			BufferSize:       c.BufferSize,
		},
	}
}

// channelStatus is the part of a live channel the health endpoint reports on.
type channelStatus interface {
	Status() livechannel.State
	RouterStats() router.Stats
}

// newHTTPHandler serves /health, /devices and the metrics endpoint.
func newHTTPHandler(ch channelStatus, board *monitoring.Board, gatherer prometheus.Gatherer, metricsPath string, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		health := struct {
			Status     string         `json:"status"`
			Version    version.Info   `json:"version"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Version:    version.Get(),
			Components: make(map[string]any),
		}

		state := ch.Status()
		stats := ch.RouterStats()
		health.Components["live_channel"] = map[string]any{
			"state":             state,
			"messages_received": stats.MessagesReceived,
			"messages_routed":   stats.MessagesRouted,
			"parse_errors":      stats.ParseErrors,
			"unknown_messages":  stats.UnknownMessages,
			"handler_panics":    stats.HandlerPanics,
		}
		switch state {
		case livechannel.StateOpen:
		case livechannel.StateStopped:
			health.Status = "unhealthy"
		default:
			health.Status = "degraded"
		}

		health.Components["devices"] = map[string]any{
			"count": len(board.Devices()),
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		if err := json.NewEncoder(w).Encode(health); err != nil {
			logger.Debug("failed to write health response", "error", err)
		}
	})

	mux.HandleFunc("/devices", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(board.Devices()); err != nil {
			logger.Debug("failed to write devices response", "error", err)
		}
	})

	mux.Handle(metricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return mux
}
