package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/fiximulator/fiximulator/config"
	"github.com/fiximulator/fiximulator/pkg/audit"
	"github.com/fiximulator/fiximulator/pkg/instrument"
	"github.com/fiximulator/fiximulator/pkg/logging"
	"github.com/fiximulator/fiximulator/pkg/metrics"
	"github.com/fiximulator/fiximulator/pkg/simulator"
	fixgateway "github.com/fiximulator/fiximulator/pkg/simulator/fix"

	postgres_wrapper "github.com/fiximulator/fiximulator/pkg/infra/postgres"
)

func main() {
	var (
		configFile    string
		logLevel      string
		startExecutor bool
		execDelayMs   int
		execPartials  int
		startIOIs     bool
		ioiDelayMs    int
	)
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.StringVar(&logLevel, "log-level", "info", "Log level")
	flag.BoolVar(&startExecutor, "executor", false, "Start the auto executor")
	flag.IntVar(&execDelayMs, "executor-delay-ms", 0, "Delay between partial fills")
	flag.IntVar(&execPartials, "executor-partials", 1, "Partial fills per order")
	flag.BoolVar(&startIOIs, "ioi-sender", false, "Start the IOI sender")
	flag.IntVar(&ioiDelayMs, "ioi-delay-ms", 5000, "Delay between IOIs")
	flag.Parse()

	logger := logging.Init(logging.ParseLevel(logLevel))
	defer logger.Sync() // nolint

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	settings, err := simulator.LoadSettings(cfg.SettingsFile)
	if err != nil {
		panic(err)
	}

	catalog, err := instrument.LoadCatalog(cfg.InstrumentsFile)
	if err != nil {
		panic(err)
	}
	zap.S().Infof("loaded %d instruments", catalog.Size())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	sink := fixgateway.MessageSink(fixgateway.NewZapSink())
	var store *audit.Store
	if cfg.AuditDB != nil {
		db := postgres_wrapper.InitPostgresWithBackoff(cfg.AuditDB)
		store = audit.NewStore(audit.NewMessageSQLRepo(db))
		sink = fixgateway.CombineSinks(sink, store)
	}

	sim := simulator.NewSimulator(settings, catalog, nil)
	gateway := fixgateway.NewGateway(cfg.FixConfig, sim, sim.Policy(), sink)
	sim.AddGateway(gateway)

	if err := sim.Start(ctx); err != nil {
		zap.S().Errorf("start fix acceptor: %v", err)
		os.Exit(1)
	}

	if cfg.MetricsAddr != "" {
		metrics.StartServer(cfg.MetricsAddr)
	}

	executor := simulator.NewExecutor(sim, time.Duration(execDelayMs)*time.Millisecond, execPartials)
	if startExecutor {
		executor.Start()
	}

	ioiSender := simulator.NewIOISender(sim, time.Duration(ioiDelayMs)*time.Millisecond)
	if startIOIs {
		ioiSender.Start()
	}

	fmt.Println("FIXimulator started. Press Ctrl+C to exit.")

	<-sigs
	fmt.Println("Shutting down...")

	ioiSender.Stop()
	sim.Stop()
	if store != nil {
		store.Close()
	}
	cancel()

	fmt.Println("Exited cleanly.")
}
