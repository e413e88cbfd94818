// Package main boots the EcoMarket central consumer: the durable-channel
// reader that reconciles branch sales into the central inventory, plus the
// HTTP ingestion endpoint that bridges notifications into the channel.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/ecomarket-sync/internal/aggregate"
	"github.com/fairyhunter13/ecomarket-sync/internal/channel"
	"github.com/fairyhunter13/ecomarket-sync/internal/config"
	"github.com/fairyhunter13/ecomarket-sync/internal/consumer"
	"github.com/fairyhunter13/ecomarket-sync/internal/dedup"
	httpapi "github.com/fairyhunter13/ecomarket-sync/internal/http"
	"github.com/fairyhunter13/ecomarket-sync/internal/model"
	"github.com/fairyhunter13/ecomarket-sync/internal/obs"
)

func main() {
	obs.InitLogger()
	cfg, err := config.Load()
	if err != nil {
		obs.Logger.Error("config_error", "error", err)
		os.Exit(1)
	}
	obs.Logger.Info("service_starting", "queue", cfg.QueueName)

	agg := aggregate.New(model.CentralSeed())

	var seen dedup.Recorder
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		seen = dedup.NewRedis(client, cfg.DedupTTL)
		obs.Logger.Info("dedup_store", "kind", "redis", "addr", cfg.RedisAddr)
	} else {
		seen = dedup.NewMemory()
		obs.Logger.Warn("dedup_store_volatile", "kind", "memory")
	}

	conn, ch, err := channel.Setup(cfg.AMQPURL)
	if err != nil {
		obs.Logger.Error("amqp_setup_error", "error", err)
		os.Exit(1)
	}
	defer conn.Close()
	defer ch.Close()
	if err := channel.DeclareTopology(ch, cfg.QueueName, cfg.DeadLetterQueue, cfg.MessageTTL); err != nil {
		obs.Logger.Error("amqp_topology_error", "error", err)
		os.Exit(1)
	}

	proc := consumer.New(agg, seen)
	cons := channel.NewConsumer(ch, cfg.QueueName, proc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	consumerDone := make(chan error, 1)
	go func() { consumerDone <- cons.Run(ctx) }()

	pub := channel.NewPublisher(ch, cfg.QueueName)
	app := httpapi.NewCentralApp(cfg, agg, pub)
	mux := httpapi.NewCentralRouter(app)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		obs.Logger.Info("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			obs.Logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sigc:
		obs.Logger.Info("shutdown_signal", "signal", s.String())
	case err := <-consumerDone:
		obs.Logger.Error("consumer_stopped", "error", err)
	}

	ctxSrv, cancelSrv := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelSrv()
	if err := srv.Shutdown(ctxSrv); err != nil {
		obs.Logger.Error("http_shutdown_error", "error", err)
	}
	cancel()
	select {
	case <-consumerDone:
	case <-time.After(cfg.ShutdownTimeout):
		obs.Logger.Warn("consumer_shutdown_timeout")
	}
	obs.Logger.Info("service_stopped")
}
