// Package app assembles stores, mail sources and services from configuration.
// Both the HTTP server and the CLI start here.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vanshika/bnpltrace/backend/internal/config"
	"github.com/vanshika/bnpltrace/backend/internal/extract"
	"github.com/vanshika/bnpltrace/backend/internal/graph"
	"github.com/vanshika/bnpltrace/backend/internal/logging"
	"github.com/vanshika/bnpltrace/backend/internal/mailbox"
	"github.com/vanshika/bnpltrace/backend/internal/repository"
	"github.com/vanshika/bnpltrace/backend/internal/server"
	"github.com/vanshika/bnpltrace/backend/internal/service"
	"github.com/vanshika/bnpltrace/backend/internal/store"
	"github.com/vanshika/bnpltrace/backend/internal/store/postgres"
	"github.com/vanshika/bnpltrace/backend/internal/store/sqlite"
)

// OpenStore opens the record store selected by cfg.Store.Driver. The caller
// owns the returned store and must Close it.
func OpenStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (store.Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logging.Component(logger, "store").With(slog.String("driver", cfg.Store.Driver))

	switch cfg.Store.Driver {
	case config.DriverSQLite:
		st, err := sqlite.Open(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Debug("opened sqlite store", "path", cfg.Store.SQLitePath)
		return st, nil

	case config.DriverPostgres:
		st, err := postgres.Open(ctx, cfg.Store.PostgresDSN)
		if err != nil {
			return nil, err
		}
		logger.Debug("opened postgres store")
		return st, nil

	case config.DriverGraph:
		client, err := graph.NewNeo4jClient(ctx, graph.Options{
			URI:            cfg.Graph.URI,
			Database:       cfg.Graph.Database,
			Username:       cfg.Graph.Username,
			Password:       cfg.Graph.Password,
			MaxConnections: cfg.Graph.MaxConnections,
		})
		if err != nil {
			return nil, err
		}
		repo := repository.New(client)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = repo.Close()
			return nil, err
		}
		logger.Debug("opened graph store", "uri", cfg.Graph.URI)
		return repo, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// NewGmailSource builds the Gmail mail source from OAuth settings.
func NewGmailSource(ctx context.Context, cfg config.GmailConfig, logger *slog.Logger) (*mailbox.Gmail, error) {
	client, err := mailbox.NewOAuthClient(ctx, mailbox.OAuthConfig{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RefreshToken: cfg.RefreshToken,
		TokenURL:     cfg.TokenURL,
		Timeout:      cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return mailbox.NewGmail(client, mailbox.GmailOptions{
		APIBase: cfg.APIBase,
		Query:   cfg.Query,
	}, logger), nil
}

// NewServices wires every application service over st.
func NewServices(st store.Store, cfg config.SyncConfig, logger *slog.Logger) server.Services {
	return server.Services{
		Sync:     service.NewSyncService(st, extract.New(), cfg.Workers, logger),
		Analysis: service.NewAnalysisService(st),
		Records:  service.NewRecordService(st),
		Profiles: service.NewProfileService(st),
	}
}
