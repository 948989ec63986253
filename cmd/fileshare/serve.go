package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/yourname/fileshare/internal/app/sharehttp"
	"github.com/yourname/fileshare/internal/config"
	"github.com/yourname/fileshare/internal/logging"
	"github.com/yourname/fileshare/internal/metrics"
	"github.com/yourname/fileshare/internal/offload"
	"github.com/yourname/fileshare/internal/upload"
	"golang.org/x/sync/errgroup"
)

const readHeaderTimeout = 10 * time.Second

type serveFlags struct {
	directory string
	port      int
	config    string
}

func bindServeFlags(cmd *cobra.Command, f *serveFlags) {
	cmd.Flags().StringVarP(&f.directory, "directory", "d", config.DefaultDirectory, "Directory to serve and store uploads in")
	cmd.Flags().IntVarP(&f.port, "port", "p", config.DefaultPort, "Port to listen on")
	cmd.Flags().StringVar(&f.config, "config", "", "Path to a YAML config file (default $CONFIG_PATH or ./fileshare.yaml)")
}

func serveCmd() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the file server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, flags)
		},
	}
	bindServeFlags(cmd, &flags)

	return cmd
}

// resolveConfig layers flags that were set explicitly over file and ENV
// configuration.
func resolveConfig(cmd *cobra.Command, f serveFlags) (config.Config, error) {
	cfg, err := config.Load(f.config)
	if err != nil {
		return config.Config{}, err
	}
	if cmd.Flags().Changed("directory") {
		cfg.Directory = f.directory
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = f.port
	}

	return cfg.Normalize()
}

// runServe поднимает HTTP-сервер и корректно завершает его по SIGINT/SIGTERM.
func runServe(cmd *cobra.Command, f serveFlags) error {
	cfg, err := resolveConfig(cmd, f)
	if err != nil {
		return err
	}

	log, logCloser, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer logCloser.Close()
	slog.SetDefault(log)

	// Bind first so port 0 resolves to the port actually in use.
	ln, port, err := listen(cfg.ListenAddr())
	if err != nil {
		return err
	}

	pool := offload.New(cfg.Workers, offload.OSFS{})
	m := metrics.New(pool)

	handler := sharehttp.New(sharehttp.Deps{
		Root: cfg.Directory,
		Ingester: upload.New(upload.Options{
			Root:      cfg.Directory,
			Pool:      pool,
			ChunkSize: cfg.ChunkSize,
			Logger:    log.With("component", "upload"),
		}),
		MaxUploadBytes: cfg.MaxUploadBytes,
		Metrics:        m,
		Gatherer:       prometheus.DefaultGatherer,
		Logger:         log.With("component", "http"),
	})

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelError),
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting file web server", "addr", ln.Addr().String(), "workers", cfg.Workers)
	fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on port %d\n", cfg.Directory, port)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	// Сценарий graceful shutdown: по сигналу или при падении Serve.
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown", "err", err)
			return err
		}
		return nil
	})

	err = g.Wait()
	// Воркеры закрываем только после того, как все обработчики вернулись.
	if closeErr := pool.Close(); closeErr != nil {
		log.Error("offload pool close", "err", closeErr)
	}
	log.Info("server stopped")

	return err
}

// listen binds addr and reports the TCP port the listener got.
func listen(addr string) (net.Listener, int, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, 0, fmt.Errorf("listen %s: %w", addr, err)
	}
	tcp, ok := ln.Addr().(*net.TCPAddr)
	if !ok {
		_ = ln.Close()
		return nil, 0, fmt.Errorf("listen %s: unexpected address %s", addr, ln.Addr())
	}

	return ln, tcp.Port, nil
}
