package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/parentmap/ingest-cli/internal/extract"
	"github.com/parentmap/ingest-cli/internal/fetcher"
	"github.com/parentmap/ingest-cli/internal/store"
)

// openStore opens the configured backend. Callers own the Close.
func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.Pool.MaxConns,
			MinConns: cfg.Store.Pool.MinConns,
		})
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// newFetcher builds the scheme-dispatching fetcher from config.
func newFetcher() *fetcher.Dispatcher {
	timeout := time.Duration(cfg.Fetch.TimeoutSecs) * time.Second
	return fetcher.NewDispatcher(
		fetcher.HTTPOptions{Timeout: timeout, MaxRetries: cfg.Fetch.MaxRetries},
		fetcher.FTPOptions{Timeout: timeout},
	)
}

// newExtractor builds the facility extractor, merging the operator keyword
// file when one is configured.
func newExtractor() (*extract.Extractor, error) {
	e := extract.New()
	if cfg.Ingest.KeywordFile != "" {
		if err := e.ExtendFromFile(cfg.Ingest.KeywordFile); err != nil {
			return nil, err
		}
	}
	return e, nil
}
