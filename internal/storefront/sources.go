package storefront

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"WonderFarm/internal/catalog"
	"WonderFarm/internal/config"
	"WonderFarm/internal/docstore"
	"WonderFarm/internal/order"
)

// Sources are the catalog and order data sources picked by configuration.
type Sources struct {
	Kind    string
	Catalog catalog.Store
	Orders  order.Store

	close func()
}

// OpenSources is the only place that looks at the configured data source.
func OpenSources(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Sources, error) {
	switch cfg.DataSource {
	case config.SourceMock:
		products := catalog.DefaultProducts()
		cl, ol := catalog.Latency{}, order.Latency{}
		if cfg.MockLatency {
			cl, ol = catalog.DefaultLatency(), order.DefaultLatency()
		}
		return &Sources{
			Kind:    config.SourceMock,
			Catalog: catalog.NewMemStore(products, cl),
			Orders:  order.NewMemStore(products, ol, log),
		}, nil

	case config.SourceRemote:
		docs, err := docstore.Open(ctx, cfg.DatabaseURI)
		if err != nil {
			return nil, fmt.Errorf("open document store: %w", err)
		}
		return &Sources{
			Kind:    config.SourceRemote,
			Catalog: catalog.NewDocStore(docs),
			Orders:  order.NewDocStore(docs),
			close:   docs.Close,
		}, nil

	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidDataSource, cfg.DataSource)
	}
}

func (s *Sources) Ping(ctx context.Context) error {
	return errors.Join(s.Catalog.Ping(ctx), s.Orders.Ping(ctx))
}

func (s *Sources) Close() {
	if s.close != nil {
		s.close()
	}
}
