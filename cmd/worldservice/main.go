package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/la2go/internal/config"
	"github.com/udisondev/la2go/internal/dataservice"
	"github.com/udisondev/la2go/internal/model"
	"github.com/udisondev/la2go/internal/netutil"
	"github.com/udisondev/la2go/internal/security"
	"github.com/udisondev/la2go/internal/store"
	"github.com/udisondev/la2go/internal/worldserver"
)

const defaultConfigPath = "config/worldservice.yaml"

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
	if p := os.Getenv("LA2GO_WORLDSERVICE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadWorldService(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Info("worldservice starting", "bind", cfg.BindAddress, "tcp_port", cfg.TCPPort, "udp_port", cfg.UDPPort)

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

	metrics := worldserver.NewMetrics(prometheus.DefaultRegisterer)

	saveCharacter := func(ctx context.Context, rec model.CharacterRecord) error {
		return data.SaveCharacter(rec)
	}

	monsterTemplates, err := data.GetAllMonsters()
	if err != nil {
		return fmt.Errorf("loading monster templates: %w", err)
	}
	spawnPoints, err := data.GetAllSpawns()
	if err != nil {
		return fmt.Errorf("loading spawn points: %w", err)
	}
	skillTemplates, err := data.GetAllSkills()
	if err != nil {
		return fmt.Errorf("loading skill templates: %w", err)
	}
	spawnMgr := worldserver.NewSpawnManager(monsterTemplates, spawnPoints, slog.Default())
	skillCatalog := worldserver.NewSkillCatalog(skillTemplates)

	world := worldserver.NewWorld(worldserver.WorldConfig{
		TickRateHz:             cfg.TickRateHz,
		MaxPlayersPerChannel:   cfg.MaxPlayersPerChannel,
		PersistIntervalSeconds: cfg.PersistIntervalSeconds,
		ShutdownBudgetSeconds:  cfg.ShutdownBudgetSeconds,
	}, storeClient, metrics, slog.Default(), saveCharacter, spawnMgr, skillCatalog)

	tcpLimiter := netutil.NewConnLimiter(cfg.Connections.MaxTotalConnections, cfg.Connections.MaxPerAddress)
	tcpAddr := net.JoinHostPort(cfg.BindAddress, fmt.Sprintf("%d", cfg.TCPPort))
	tcpSrv := worldserver.NewServer(
		world, signer, storeClient, tcpLimiter, net.JoinHostPort(cfg.BindAddress, fmt.Sprintf("%d", cfg.UDPPort)),
		time.Duration(cfg.Connections.IdleTimeoutSeconds)*time.Second, slog.Default(),
	)

	floodGuard := netutil.NewUDPFloodGuard(cfg.UDPPacketsPerSecond, time.Minute)
	udpAddr := net.JoinHostPort(cfg.BindAddress, fmt.Sprintf("%d", cfg.UDPPort))
	udpListener, err := worldserver.NewUDPListener(udpAddr, floodGuard, world.Secrets(), world.InputQueue(), world.ResolveSession, slog.Default())
	if err != nil {
		return fmt.Errorf("starting udp listener: %w", err)
	}
	defer udpListener.Close()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{Addr: ":9100", Handler: mux}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		world.Run(gctx)
		return nil
	})

	g.Go(func() error {
		slog.Info("serving TCP", "addr", tcpAddr)
		return tcpSrv.Serve(gctx, tcpAddr)
	})

	g.Go(func() error {
		slog.Info("serving UDP", "addr", udpAddr)
		udpListener.Serve(gctx)
		return nil
	})

	g.Go(func() error {
		slog.Info("serving metrics", "addr", metricsSrv.Addr)
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		world.Stop()
		_ = metricsSrv.Close()
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
