package main

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/gamereview"
	"github.com/discochess/gamereview/fx/analyzerfx"
	"github.com/discochess/gamereview/internal/config"
	"github.com/discochess/gamereview/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP analysis service",
	Long: `Start an HTTP server exposing game analysis, single-position
evaluation, health and prometheus metrics endpoints.

Configuration comes from GAMEREVIEW_-prefixed environment variables or
an optional config file; flags take precedence.

Examples:
  # Serve on the default port
  gamereview serve

  # Custom address and opening book
  gamereview serve --addr :9090 --book-dir ./books`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveAddr   string
	serveConfig string
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveConfig, "config", "", "path to a config file")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(serveConfig)
	if err != nil {
		return err
	}
	applyFlagOverrides(cfg)

	app := fx.New(
		fx.Supply(cfg),
		fx.Provide(
			newServeLogger,
			server.New,
		),
		analyzerfx.Module,
		fx.Invoke(startServer),
	)

	app.Run()
	return nil
}

// applyFlagOverrides lets CLI flags win over file and environment
// configuration.
func applyFlagOverrides(cfg *config.Config) {
	if serveAddr != "" {
		cfg.ServerAddr = serveAddr
	}
	if enginePath != "" {
		cfg.EnginePath = enginePath
	}
	if bookDir != "" {
		cfg.BookDir = bookDir
	}
	if noDownload {
		cfg.DisableDownload = true
	}
	if verbose {
		cfg.Verbose = true
	}
}

func newServeLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// startServer binds the HTTP server to the fx lifecycle.
func startServer(lc fx.Lifecycle, cfg *config.Config, srv *server.Server, analyzer *gamereview.Analyzer, logger *zap.Logger) {
	httpSrv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: srv.Router(),
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", cfg.ServerAddr)
			if err != nil {
				return err
			}
			logger.Info("server listening",
				zap.String("addr", cfg.ServerAddr),
				zap.Int("depth", cfg.Depth),
				zap.Int("bookPrefixes", analyzer.Book().Len()),
			)
			go func() {
				if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return httpSrv.Shutdown(ctx)
		},
	})
}
