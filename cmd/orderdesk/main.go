// Command orderdesk manages the shared order draft and follows the device
// monitoring socket.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/click2print/orderdesk/internal/config"
	"github.com/click2print/orderdesk/internal/database"
	"github.com/click2print/orderdesk/internal/storage"
	"github.com/click2print/orderdesk/internal/version"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app is the state shared by every subcommand.
type app struct {
	configPath string
	ephemeral  bool

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "orderdesk",
		Short:         "Order draft and device monitoring client for the print shop CRM",
		Version:       version.Get().Version,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to a YAML or TOML config file")
	root.PersistentFlags().BoolVar(&a.ephemeral, "ephemeral", false, "keep state in memory only")

	root.AddCommand(
		newOrderCommand(a),
		newMonitorCommand(a),
		newTokenCommand(a),
		newVersionCommand(),
	)
	return root
}

// init loads the config and sets up logging.
func (a *app) init() error {
	cfg := config.Default()
	if a.configPath != "" {
		loaded, err := config.LoadAndValidate(a.configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if a.ephemeral {
		cfg.Store.Backend = config.BackendMemory
	}

	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return err
	}
	opts := &slog.HandlerOptions{Level: level}

	// Logs go to stderr; stdout carries command output.
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	a.logger = slog.New(handler)
	slog.SetDefault(a.logger)

	a.cfg = cfg
	a.logger.Debug("configuration loaded",
		"config", a.configPath,
		"backend", cfg.Store.Backend,
		"api_url", cfg.API.BaseURL,
	)
	return nil
}

// openStorage returns the configured backend and a function releasing it.
func (a *app) openStorage(ctx context.Context) (storage.Storage, func(), error) {
	switch a.cfg.Store.Backend {
	case config.BackendMemory:
		return storage.NewMemory(), func() {}, nil

	case config.BackendPostgres:
		db := a.cfg.Database.Postgres
		a.logger.Info("connecting to database",
			"host", db.Host,
			"port", db.Port,
			"database", db.Name,
		)
		pool, err := database.Connect(ctx, db)
		if err != nil {
			return nil, nil, err
		}
		slots := database.NewSlotStore(pool, db.Table, a.logger)
		if err := slots.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return slots, pool.Close, nil

	default:
		return storage.NewFileStorage(a.cfg.Store.Dir, a.logger), func() {}, nil
	}
}
