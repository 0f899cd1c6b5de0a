// Command execengine runs the low-latency execution engine: it parses
// inbound orders off an ingress socket, dispatches them through a
// venue-keyed adapter router, and publishes reports/fills to an egress
// socket, with a signer subprocess handling all private-key operations.
//
// Architecture:
//
//	main.go              — entry point: loads config, wires adapters, starts the engine, waits for SIGINT/SIGTERM
//	internal/config      — viper-backed Config with LATENTSPEED_* env overrides
//	internal/core        — the Receiver/Publisher/Stats engine (§5)
//	internal/tracker     — Pending/Processed order lifecycle maps
//	internal/router      — venue-key → adapter lookup
//	internal/adapter      — the venue integration contract
//	internal/venue/hyperliquid — the reference venue adapter
//	internal/signer      — out-of-process signing client
//	internal/transport    — ingress/egress TCP sockets
//	internal/health       — per-venue error-rate watchdog
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/latentspeed/execengine/internal/adapter"
	"github.com/latentspeed/execengine/internal/clock"
	"github.com/latentspeed/execengine/internal/config"
	"github.com/latentspeed/execengine/internal/core"
	"github.com/latentspeed/execengine/internal/health"
	"github.com/latentspeed/execengine/internal/normalize"
	"github.com/latentspeed/execengine/internal/router"
	"github.com/latentspeed/execengine/internal/signer"
	"github.com/latentspeed/execengine/internal/transport"
	"github.com/latentspeed/execengine/internal/venue/hyperliquid"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "path to config file")
	venueFlag := flag.String("venue", "hyperliquid", "venue to connect (currently: hyperliquid)")
	testnetFlag := flag.Bool("testnet", false, "override venues.<venue>.use_testnet")
	flag.Parse()

	if p := os.Getenv("LATENTSPEED_CONFIG"); p != "" {
		*cfgPath = p
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err, "path", *cfgPath)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Logging.Level)}
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)

	venueCfg, ok := cfg.Venues[*venueFlag]
	if !ok {
		logger.Error("unknown venue", "venue", *venueFlag)
		os.Exit(1)
	}
	if *testnetFlag {
		venueCfg.UseTestnet = true
	}

	ingress, err := transport.Listen(cfg.Transport.IngressBind, logger)
	if err != nil {
		logger.Error("failed to start ingress listener", "error", err)
		os.Exit(1)
	}
	defer ingress.Close()

	egress, err := transport.ListenBroadcast(cfg.Transport.EgressBind, logger)
	if err != nil {
		logger.Error("failed to start egress broadcaster", "error", err)
		os.Exit(1)
	}
	defer egress.Close()

	var signerCli *signer.Client
	if cfg.Signer.Command != "" {
		signerCli = signer.New(signer.Config{
			Command:        cfg.Signer.Command,
			Args:           cfg.Signer.Args,
			RequestTimeout: cfg.Signer.RequestTimeout,
		}, logger)
		signerCli.Start()
		defer signerCli.Stop()
	}

	r := router.New()
	var venueAdapter adapter.Adapter
	switch *venueFlag {
	case "hyperliquid":
		hl := hyperliquid.New(logger, signerCli)
		if _, err := hl.Initialize(venueCfg.UserAddress, venueCfg.PrivateKey, venueCfg.UseTestnet); err != nil {
			logger.Error("failed to initialize hyperliquid adapter", "error", err)
			os.Exit(1)
		}
		venueAdapter = hl
	default:
		logger.Error("no adapter implementation for venue", "venue", *venueFlag)
		os.Exit(1)
	}
	r.RegisterAdapter(venueAdapter)

	connectCtx, connectCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if _, err := venueAdapter.Connect(connectCtx); err != nil {
		connectCancel()
		logger.Error("failed to connect venue adapter", "venue", venueAdapter.Name(), "error", err)
		os.Exit(1)
	}
	connectCancel()
	defer venueAdapter.Disconnect()

	watchdog := health.NewManager(health.Config{}, logger)
	watchdogCtx, watchdogCancel := context.WithCancel(context.Background())
	go watchdog.Run(watchdogCtx)
	defer watchdogCancel()

	engineCfg := core.Config{
		PendingCapacity:    cfg.Engine.PendingCapacity,
		ProcessedCapacity:  cfg.Engine.ProcessedCapacity,
		OrderPoolCapacity:  cfg.Engine.OrderPoolCapacity,
		PublishQueueCap:    cfg.Engine.PublishQueueCap,
		CallbackQueueCap:   cfg.Engine.CallbackQueueCap,
		StatsInterval:      cfg.Engine.StatsInterval,
		CallTimeout:        cfg.Engine.CallTimeout,
		PublisherDrainWait: cfg.Engine.PublisherDrainWait,
		PinThreads:         cfg.Engine.PinThreads,
		PinReceiverCore:    cfg.Engine.PinReceiverCore,
		PinPublisherCore:   cfg.Engine.PinPublisherCore,
		RealtimePriority:   cfg.Engine.RealtimePriority,
	}
	if cfg.Engine.PinThreads {
		clock.LockAllMemory(logger)
	}
	eng := core.New(engineCfg, ingress, egress, r, logger)
	eng.RegisterVenueCallbacks(venueAdapter)

	// Replace the logging-only error callback RegisterVenueCallbacks just
	// wired: every adapter-reported error is still logged, and also counts as
	// a network_error outcome for the per-venue tripwire.
	venueAdapter.SetErrorCallback(func(msg string) {
		watchdog.Report(health.Outcome{
			Venue:     venueAdapter.Name(),
			Reason:    normalize.ReasonNetworkError,
			Timestamp: time.Now(),
		})
		logger.Warn("venue adapter error", "venue", venueAdapter.Name(), "error", msg)
	})

	if cfg.Snapshot.Enabled {
		snap, err := core.OpenSnapshotWriter(cfg.Snapshot.Dir)
		if err != nil {
			logger.Error("failed to open snapshot writer", "error", err)
			os.Exit(1)
		}
		eng.SetSnapshotWriter(snap)
	}

	rehydrateCtx, rehydrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
	eng.RehydrateFromVenue(rehydrateCtx, venueAdapter)
	rehydrateCancel()

	eng.Start()
	logger.Info("execution engine started",
		"venue", venueAdapter.Name(),
		"testnet", venueCfg.UseTestnet,
		"ingress", cfg.Transport.IngressBind,
		"egress", cfg.Transport.EgressBind,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received shutdown signal", "signal", sig.String())

	eng.Stop()
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
