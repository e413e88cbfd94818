// Package main boots the EcoMarket branch API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fairyhunter13/ecomarket-sync/internal/channel"
	"github.com/fairyhunter13/ecomarket-sync/internal/config"
	httpapi "github.com/fairyhunter13/ecomarket-sync/internal/http"
	"github.com/fairyhunter13/ecomarket-sync/internal/ledger"
	"github.com/fairyhunter13/ecomarket-sync/internal/model"
	"github.com/fairyhunter13/ecomarket-sync/internal/notifier"
	"github.com/fairyhunter13/ecomarket-sync/internal/obs"
)

func main() {
	obs.InitLogger()
	cfg, err := config.Load()
	if err != nil {
		obs.Logger.Error("config_error", "error", err)
		os.Exit(1)
	}
	obs.Logger.Info("service_starting", "branch_id", cfg.BranchID)

	l := ledger.New(cfg.BranchID, model.BranchSeed())

	var pub notifier.Publisher
	var closeTransport func()
	switch cfg.NotifyMode {
	case "amqp":
		conn, ch, err := channel.Setup(cfg.AMQPURL)
		if err != nil {
			obs.Logger.Error("amqp_setup_error", "error", err)
			os.Exit(1)
		}
		if err := channel.DeclareTopology(ch, cfg.QueueName, cfg.DeadLetterQueue, cfg.MessageTTL); err != nil {
			obs.Logger.Error("amqp_topology_error", "error", err)
			os.Exit(1)
		}
		pub = channel.NewPublisher(ch, cfg.QueueName)
		closeTransport = func() { _ = ch.Close(); _ = conn.Close() }
	case "http":
		pub = notifier.NewHTTPPublisher(cfg.CentralURL, cfg.NotifyTimeout)
		closeTransport = func() {}
	default:
		obs.Logger.Warn("notify_disabled", "mode", cfg.NotifyMode)
		pub = notifier.Noop{}
		closeTransport = func() {}
	}

	n := notifier.New(pub, cfg.BranchID, cfg.NotifyTimeout)
	app := httpapi.NewBranchApp(cfg, l, n)
	mux := httpapi.NewBranchRouter(app)

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
	s := <-sigc
	obs.Logger.Info("shutdown_signal", "signal", s.String())

	ctxSrv, cancelSrv := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelSrv()
	if err := srv.Shutdown(ctxSrv); err != nil {
		obs.Logger.Error("http_shutdown_error", "error", err)
	}

	// Let in-flight sale notifications finish before dropping the transport.
	ctxDrain, cancelDrain := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelDrain()
	if drained := n.Drain(ctxDrain); !drained {
		obs.Logger.Warn("notifier_drain_timeout")
	} else {
		obs.Logger.Info("notifier_drain_complete")
	}
	closeTransport()
	obs.Logger.Info("service_stopped")
}
