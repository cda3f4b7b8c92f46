// Command seed exports the built-in catalog into the remote products
// collection.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"WonderFarm/internal/catalog"
	"WonderFarm/internal/docstore"
	"WonderFarm/pkg/kit"
)

type options struct {
	DatabaseURI string `env:"DATABASE_URI"`
	Parallel    int    `env:"SEED_PARALLEL"`
}

func main() {
	log, err := kit.NewLogger("seed", os.Getenv("LOG_LEVEL"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()

	var opts options
	flag.StringVar(&opts.DatabaseURI, "d", "", "database URI")
	flag.IntVar(&opts.Parallel, "p", 4, "concurrent inserts")
	flag.Parse()

	if err := env.Parse(&opts); err != nil {
		log.Fatal("parse env", zap.Error(err))
	}
	if opts.DatabaseURI == "" {
		log.Fatal("DATABASE_URI or -d is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := seed(ctx, opts, log)
	if err != nil {
		log.Fatal("seed failed", zap.Int("exported", n), zap.Error(err))
	}
	log.Info("catalog exported", zap.Int("products", n))
}

func seed(ctx context.Context, opts options, log *zap.Logger) (int, error) {
	docs, err := docstore.Open(ctx, opts.DatabaseURI)
	if err != nil {
		return 0, err
	}
	defer docs.Close()

	store := catalog.NewDocStore(docs)
	products := catalog.DefaultProducts()
	ids := make([]string, len(products))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, opts.Parallel))
	for i, p := range products {
		g.Go(func() error {
			id, err := store.Export(gctx, p)
			if err != nil {
				return err
			}
			ids[i] = id
			log.Debug("product exported", zap.String("title", p.Title), zap.String("id", id))
			return nil
		})
	}

	err = g.Wait()
	count := 0
	for _, id := range ids {
		if id != "" {
			count++
		}
	}
	return count, err
}
