package reportstorage

import (
	"context"
	"fmt"
	"time"

	"coordination-api/apiconfig"
	"coordination-api/coordination/types"
	"coordination-api/logging"
)

const pgRetryInterval = 240 * time.Second

// NewReportStorage builds a ReportStorage from configuration. The hybrid
// variant tolerates PostgreSQL being down at startup and reconnects lazily
// on Store.
func NewReportStorage(ctx context.Context, cfg apiconfig.ReportsConfig) (ReportStorage, error) {
	switch cfg.Type {
	case "file":
		logging.Info("Using file report storage", types.Storage, "dir", cfg.FileDir)
		return NewFileStorage(cfg.FileDir), nil

	case "postgres":
		pg, err := NewPostgresStorage(ctx, cfg.PostgresUrl)
		if err != nil {
			return nil, err
		}
		logging.Info("Using PostgreSQL report storage", types.Storage)
		return pg, nil

	case "hybrid":
		fileStorage := NewFileStorage(cfg.FileDir)
		pg, err := NewPostgresStorage(ctx, cfg.PostgresUrl)
		if err != nil {
			logging.Warn("PostgreSQL connection failed, will retry lazily on Store", types.Storage, "error", err)
			return NewHybridStorage(nil, cfg.PostgresUrl, fileStorage, pgRetryInterval), nil
		}
		logging.Info("Using PostgreSQL with file fallback", types.Storage)
		return NewHybridStorage(pg, cfg.PostgresUrl, fileStorage, pgRetryInterval), nil

	default:
		return nil, fmt.Errorf("unknown report storage type %q", cfg.Type)
	}
}
