package app

import (
	"context"
	"log/slog"

	"github.com/vanshika/bnpltrace/backend/internal/config"
	"github.com/vanshika/bnpltrace/backend/internal/logging"
	"github.com/vanshika/bnpltrace/backend/internal/mailbox"
	"github.com/vanshika/bnpltrace/backend/internal/server"
)

// Serve runs the HTTP API until ctx is cancelled, then shuts down within
// cfg.HTTP.ShutdownTimeout. Gmail sync is enabled only when credentials are
// configured.
func Serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	st, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("closing store failed", "error", err)
		}
	}()

	var source mailbox.Source
	if cfg.Gmail.Configured() {
		gmail, err := NewGmailSource(ctx, cfg.Gmail, logging.Component(logger, "gmail"))
		if err != nil {
			return err
		}
		source = gmail
	} else {
		logger.Info("gmail credentials not configured; POST /sync is disabled")
	}

	apiHandlers := server.NewAPIHandlers(logger, NewServices(st, cfg.Sync, logger), source, cfg.Sync.MaxResults)
	router := server.NewRouter(logger, server.RouterDependencies{
		Health:           server.StoreHealthService{Store: st},
		API:              apiHandlers,
		AllowedOrigins:   cfg.HTTP.AllowedOrigins(),
		AllowCredentials: true,
	})

	srv := server.New(logger, cfg.HTTP, router)
	if err := srv.Run(ctx); err != nil {
		logger.Error("http server stopped", "error", err)
		return err
	}
	return nil
}
