package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pixelmesh/gomarketd/internal/config"
	"github.com/pixelmesh/gomarketd/internal/core/market"
	"github.com/pixelmesh/gomarketd/internal/core/typeddata"
	"github.com/pixelmesh/gomarketd/internal/server"
	"github.com/pixelmesh/gomarketd/internal/storage/history"
	"github.com/pixelmesh/gomarketd/internal/storage/pebble"
)

var listenOverride string

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the marketplace daemon",
	Long: `Start the marketd server: the engine over its persistent store, the
HTTP JSON-RPC API, the websocket event stream and the trade index.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)
	rootCmd.RunE = runServer

	serverCmd.Flags().StringVar(&listenOverride, "listen", "", "listen address override")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if listenOverride != "" {
		cfg.Listen = listenOverride
	}

	logger, err := buildLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()
	log := logger.Sugar()

	store, err := pebble.Open(cfg.DataDir, pebble.Options{Compress: cfg.Compress})
	if err != nil {
		return err
	}
	defer store.Close()

	var hist *history.Index
	if cfg.HistoryPath != "" {
		hist, err = history.Open(cfg.HistoryPath)
		if err != nil {
			return err
		}
		defer hist.Close()
	}

	engine := market.New(store, market.Config{
		Admin: cfg.AdminAddress(),
		Domain: typeddata.Domain{
			Name:    cfg.DomainName,
			Version: cfg.DomainVersion,
			ChainID: cfg.ChainID,
		},
	})

	srv, err := server.New(engine, hist, log, Version)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infow("marketd starting", "version", Version, "data_dir", cfg.DataDir, "admin", cfg.Admin)
	return srv.Run(ctx, cfg.Listen)
}

func buildLogger(level string) (*zap.Logger, error) {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(parsed)
	return zcfg.Build()
}
