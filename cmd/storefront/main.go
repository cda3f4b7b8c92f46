package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"WonderFarm/internal/checkout"
	"WonderFarm/internal/config"
	"WonderFarm/internal/localstore"
	"WonderFarm/internal/notify"
	"WonderFarm/internal/storefront"
	"WonderFarm/pkg/kit"
)

const service = "storefront"

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	log, err := kit.NewLogger(service, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("storefront stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, err := storefront.OpenSources(ctx, cfg, log.Named("source"))
	if err != nil {
		return err
	}
	defer src.Close()

	snaps, err := localstore.Open(cfg.Snapshot.Backend, cfg.Snapshot.Path)
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}
	defer func() { _ = snaps.Close() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	sess := storefront.NewSession(ctx, storefront.SessionDeps{
		Sources:   src,
		Snapshots: snaps,
		User:      cfg.User.Wallet(),
		Metrics:   checkout.NewMetrics(reg),
		Log:       log,
	})
	defer sess.Close()

	unsubscribe := sess.Notifier.Subscribe(func(n notify.Notification) {
		log.Info("notification", zap.String("message", n.Message), zap.Bool("visible", n.Visible))
	})
	defer unsubscribe()

	h := storefront.NewHandler(sess, storefront.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: true,
		MetricsToken:   cfg.MetricsToken,
	})

	log.Info("storefront configured",
		zap.String("data_source", src.Kind),
		zap.String("snapshot_backend", cfg.Snapshot.Backend),
		zap.Int("cart_lines", sess.Cart.LineCount()),
		zap.Int64("coins", sess.Wallet.Balance()),
	)

	return kit.RunHTTPServer(ctx, cfg.RunAddress, h, log)
}
