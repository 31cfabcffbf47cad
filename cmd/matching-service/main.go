package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	app "github.com/kahshiuhtang/Sticker-Market/internal/app/engine"
	orderreader "github.com/kahshiuhtang/Sticker-Market/internal/usecase/order-reader"
	orderbook "github.com/kahshiuhtang/Sticker-Market/internal/usecase/orderbook"
	snapshot "github.com/kahshiuhtang/Sticker-Market/internal/usecase/snapshot"
	tradepublisher "github.com/kahshiuhtang/Sticker-Market/internal/usecase/trade-publisher"
	"github.com/kahshiuhtang/Sticker-Market/pkg/config"
	"github.com/kahshiuhtang/Sticker-Market/pkg/logger"
	"github.com/kahshiuhtang/Sticker-Market/pkg/redis"
)

var cfg *config.Config
var log *logger.Logger

func init() {
	var err error
	cfg = &config.Config{}
	err = config.Load(cfg)
	if err != nil {
		panic(err)
	}

	logger, err := logger.NewLogger()
	if err != nil {
		panic(err)
	}

	log = logger
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	redisConfig := redis.DefaultConfig()
	redisConfig.Addrs = []string{cfg.RedisConfig.Addrs}
	redisConfig.Password = cfg.RedisConfig.Password
	redisConfig.Username = cfg.RedisConfig.Username
	redisConfig.DB = cfg.RedisConfig.DB

	rclient := redis.NewClient(log, redisConfig)
	if err := rclient.Connect(ctx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "connect_redis",
		})
		return
	}

	// Initialize components
	registry := orderbook.NewOrderbook()
	oReader := orderreader.NewReader(cfg.KafkaConfig, *log)
	tPublisher := tradepublisher.NewPublisher(cfg.TradePublisherConfig, *log)
	snapshotStore := snapshot.NewSnapshotStore(rclient, cfg.SnapshotKey, log)
	engine := app.NewEngine(
		registry,
		oReader,
		tPublisher,
		snapshotStore,
		log,
		cfg,
	)

	if err := engine.Start(ctx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "start_engine",
		})
		return
	}

	log.Info("Matching service started successfully")

	// Wait for shutdown signal
	sig := <-sigChan
	log.Info("Received shutdown signal", logger.Field{
		Key:   "signal",
		Value: sig.String(),
	})

	cancel()

	// Create a timeout context for graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := engine.Stop(shutdownCtx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "stop_engine",
		})
	}

	if err := rclient.Disconnect(shutdownCtx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "disconnect_redis",
		})
	}

	log.Info("Matching service shutdown complete")
}
