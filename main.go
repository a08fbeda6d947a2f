package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cargo-build/cargo-sdk-go/chains"
	"github.com/cargo-build/cargo-sdk-go/chains/eth"
	chainstypes "github.com/cargo-build/cargo-sdk-go/chains/types"
	"github.com/cargo-build/cargo-sdk-go/config"
	"github.com/cargo-build/cargo-sdk-go/core"
	"github.com/cargo-build/cargo-sdk-go/database"
	"github.com/cargo-build/cargo-sdk-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sisu-network/lib/log"
)

func loadConfig(path string) config.Cargo {
	if path == "" {
		cfg := config.Default()
		if err := config.ApplyEnv(&cfg); err != nil {
			panic(err)
		}
		if err := cfg.Validate(); err != nil {
			panic(err)
		}

		return cfg
	}

	cfg, err := config.Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

func initialize(cfg *config.Cargo, registry *prometheus.Registry) (database.Database, *chains.TxProcessor) {
	// Connect DB and run migrations.
	db := database.NewDb(cfg)
	if err := db.Init(); err != nil {
		panic(err)
	}

	poll, err := eth.NewPollTx(eth.NewRpcClient(cfg.Rpcs), eth.PollTxConfig{
		Interval:           cfg.PollInterval(),
		RpcTimeout:         cfg.RpcTimeout(),
		Depth:              cfg.ConfirmationDepth,
		MaxAttempts:        cfg.MaxPollAttempts,
		MaxDuration:        cfg.MaxPollDuration(),
		CompletedCacheSize: cfg.CompletedCacheSize,
		Registerer:         registry,
	})
	if err != nil {
		panic(err)
	}

	poll.OnFunc(chainstypes.EventCompleted, func(event string, payload interface{}) {
		update := payload.(*chainstypes.TrackUpdate)
		log.Infof("Tx %s completed at block %d, %d pending", update.Hash.Hex(), update.BlockHeight, len(update.Pending))
	})
	poll.OnFunc(chainstypes.EventTimeout, func(event string, payload interface{}) {
		update := payload.(*chainstypes.TrackUpdate)
		log.Warnf("Tx %s timed out, %d pending", update.Hash.Hex(), len(update.Pending))
	})

	processor := chains.NewTxProcessor(poll, db)
	if err := processor.Start(); err != nil {
		panic(err)
	}

	return db, processor
}

// enableWallet connects the configured key wallet so that its session is ready for SDK calls.
func enableWallet(cfg *config.Cargo, db database.Database, watcher chains.TxWatcher) {
	cargo, err := core.NewDefaultCargo(cfg, db, watcher)
	if err != nil {
		log.Error("Cannot create cargo client, err = ", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RpcTimeout())
	defer cancel()

	if err := cargo.Enable(ctx); err != nil {
		log.Error("Cannot enable wallet, err = ", err)
		return
	}

	if _, err := cargo.GetSignature(ctx); err != nil {
		log.Error("Cannot get login signature, err = ", err)
	}
}

func main() {
	configPath := flag.String("config", "", "path of the toml config file")
	flag.Parse()

	cfg := loadConfig(*configPath)
	log.Infof("Network = %s, backend = %s", cfg.Network, cfg.RequestUrl())

	registry := prometheus.NewRegistry()
	db, processor := initialize(&cfg, registry)

	if cfg.PrivateKey != "" {
		enableWallet(&cfg, db, processor)
	}

	handler, err := server.NewRpcServer(server.NewApi(processor))
	if err != nil {
		panic(err)
	}

	srv := server.NewServer(handler, registry, cfg.ServerPort)
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("Server stopped, err = ", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Stop(ctx); err != nil {
		log.Error("Cannot stop server, err = ", err)
	}
	processor.Stop()
	if err := db.Close(); err != nil {
		log.Error("Cannot close db, err = ", err)
	}
}
