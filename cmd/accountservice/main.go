package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/la2go/internal/accountservice"
	"github.com/udisondev/la2go/internal/config"
	"github.com/udisondev/la2go/internal/dataservice"
	"github.com/udisondev/la2go/internal/netutil"
	"github.com/udisondev/la2go/internal/security"
	"github.com/udisondev/la2go/internal/store"
)

const defaultConfigPath = "config/accountservice.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := defaultConfigPath
	if p := os.Getenv("LA2GO_ACCOUNTSERVICE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadAccountService(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Info("accountservice starting", "bind", cfg.BindAddress, "port", cfg.Port)

	data, err := dataservice.Dial(cfg.DataServiceAddr)
	if err != nil {
		return fmt.Errorf("dialing dataservice at %s: %w", cfg.DataServiceAddr, err)
	}
	defer data.Close()

	storeClient, err := store.New(cfg.Store.Addr, cfg.Store.Password, cfg.Store.DB)
	if err != nil {
		return fmt.Errorf("connecting to store: %w", err)
	}
	defer storeClient.Close()
	if err := storeClient.Ping(ctx); err != nil {
		return fmt.Errorf("pinging store: %w", err)
	}

	signer := security.NewTokenSigner(
		cfg.Security.TokenSecret, cfg.Security.TokenIssuer,
		time.Duration(cfg.Security.TokenTTLSeconds)*time.Second,
	)

	handler := accountservice.NewHandler(
		data, storeClient, signer,
		time.Duration(cfg.CharacterCacheTTLSeconds)*time.Second,
		cfg.WorldServiceTCPAddr, cfg.WorldServiceUDPAddr, slog.Default(),
	)

	limiter := netutil.NewConnLimiter(cfg.Connections.MaxTotalConnections, cfg.Connections.MaxPerAddress)
	srv := accountservice.NewServer(handler, limiter, time.Duration(cfg.Connections.IdleTimeoutSeconds)*time.Second, slog.Default())

	addr := net.JoinHostPort(cfg.BindAddress, fmt.Sprintf("%d", cfg.Port))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("serving TCP", "addr", addr)
		return srv.Serve(gctx, addr)
	})
	return g.Wait()
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
