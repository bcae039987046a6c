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

	"github.com/udisondev/la2go/internal/config"
	"github.com/udisondev/la2go/internal/dataservice"
	"github.com/udisondev/la2go/internal/store"
)

const defaultConfigPath = "config/dataservice.yaml"

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
	if p := os.Getenv("LA2GO_DATASERVICE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadDataService(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Info("dataservice starting", "bind", cfg.BindAddress, "port", cfg.Port)

	if err := dataservice.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("migrations applied")

	db, err := dataservice.NewDB(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	storeClient, err := store.New(cfg.Store.Addr, cfg.Store.Password, cfg.Store.DB)
	if err != nil {
		return fmt.Errorf("connecting to store: %w", err)
	}
	defer storeClient.Close()
	if err := storeClient.Ping(ctx); err != nil {
		return fmt.Errorf("pinging store: %w", err)
	}

	accounts := dataservice.NewAccountData(db)
	characters := dataservice.NewCharacterData(db)
	inventory := dataservice.NewInventoryData(db)
	gamedata := dataservice.NewGameData(db)

	rpcServer, err := dataservice.NewServer(accounts, characters, inventory, gamedata)
	if err != nil {
		return fmt.Errorf("creating RPC server: %w", err)
	}

	addr := net.JoinHostPort(cfg.BindAddress, fmt.Sprintf("%d", cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	defer ln.Close()

	writeback := dataservice.NewWriteback(
		storeClient, characters,
		time.Duration(cfg.WritebackIntervalSeconds)*time.Second,
		slog.Default(),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("serving RPC", "addr", addr)
		rpcServer.Serve(ln)
		return nil
	})

	g.Go(func() error {
		writeback.Run(gctx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		_ = ln.Close()
		return nil
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
