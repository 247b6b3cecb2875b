package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/chatvault/chatvault/internal/domain/repository"
	"github.com/chatvault/chatvault/internal/infrastructure/config"
	"github.com/chatvault/chatvault/internal/infrastructure/persistence/memory"
	"github.com/chatvault/chatvault/internal/infrastructure/persistence/sqlite"
)

// NewMessageStore builds the archive backend selected by the config.
// The returned closer is nil for backends with nothing to close.
func NewMessageStore(cfg *config.Config, logger *slog.Logger) (repository.MessageStore, io.Closer, error) {
	retention := cfg.Storage.Retention

	switch cfg.Storage.Type {
	case "sqlite":
		db, err := sqlite.NewDB(cfg.Storage.SQLite.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite init: %w", err)
		}
		if err := db.Migrate(context.Background()); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("sqlite migration: %w", err)
		}

		logger.Info("SQLite storage initialized",
			"path", cfg.Storage.SQLite.Path,
		)
		return sqlite.NewMessageStore(db.DB, retention.MaxMessages, retention.MaxDeletedPerChannel), db, nil

	case "memory", "":
		logger.Info("in-memory storage initialized")
		return memory.NewMessageStore(retention.MaxMessages, retention.MaxDeletedPerChannel), nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage type: %s", cfg.Storage.Type)
	}
}
