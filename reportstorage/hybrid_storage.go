package reportstorage

import (
	"context"
	"errors"
	"sync"
	"time"

	"coordination-api/coordination/types"
	"coordination-api/logging"
)

const pgConnectTimeout = 2 * time.Second

// HybridStorage uses PostgreSQL as primary storage with file-based fallback.
// Store: tries PG first (with lazy reconnection), falls back to file on error.
// Retrieve: tries PG first, on error or not found also checks the file tree.
type HybridStorage struct {
	pg            *PostgresStorage
	pgUrl         string
	file          *FileStorage
	mu            sync.Mutex
	lastRetry     time.Time
	retryInterval time.Duration
}

func NewHybridStorage(pg *PostgresStorage, pgUrl string, file *FileStorage, retryInterval time.Duration) *HybridStorage {
	return &HybridStorage{pg: pg, pgUrl: pgUrl, file: file, retryInterval: retryInterval}
}

// shouldAttemptConnect reports whether a reconnection attempt is due. When it
// returns true, lastRetry has been advanced and the caller owns the attempt.
func (h *HybridStorage) shouldAttemptConnect() (bool, *PostgresStorage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.pg != nil {
		return false, h.pg
	}
	if time.Since(h.lastRetry) < h.retryInterval {
		return false, nil
	}
	h.lastRetry = time.Now()
	return true, nil
}

func (h *HybridStorage) saveConnection(pg *PostgresStorage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	logging.Info("PostgreSQL connection established", types.Storage)
	h.pg = pg
}

// getOrConnectPg returns the current PostgresStorage or attempts to
// reconnect, rate-limited to one attempt per retryInterval.
func (h *HybridStorage) getOrConnectPg(ctx context.Context) *PostgresStorage {
	shouldAttempt, pg := h.shouldAttemptConnect()
	if !shouldAttempt {
		return pg
	}

	connectCtx, cancel := context.WithTimeout(ctx, pgConnectTimeout)
	defer cancel()

	newPg, err := NewPostgresStorage(connectCtx, h.pgUrl)
	if err != nil {
		logging.Debug("PostgreSQL reconnect failed", types.Storage, "error", err)
		return nil
	}

	h.saveConnection(newPg)
	return newPg
}

// currentPg never blocks for reconnection. Used by Retrieve.
func (h *HybridStorage) currentPg() *PostgresStorage {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pg
}

func (h *HybridStorage) Store(ctx context.Context, report []byte) (string, error) {
	if pg := h.getOrConnectPg(ctx); pg != nil {
		pointer, err := pg.Store(ctx, report)
		if err == nil {
			return pointer, nil
		}
		logging.Warn("PostgreSQL store failed, falling back to file", types.Storage, "error", err)
	}
	return h.file.Store(ctx, report)
}

func (h *HybridStorage) Retrieve(ctx context.Context, pointer string) ([]byte, error) {
	if pg := h.currentPg(); pg != nil {
		report, err := pg.Retrieve(ctx, pointer)
		if err == nil {
			return report, nil
		}

		// On any error, also check the file tree: the report may have been
		// written there during a PG outage.
		if !errors.Is(err, ErrNotFound) {
			logging.Debug("PostgreSQL retrieve failed, checking file", types.Storage,
				"pointer", pointer, "error", err)
		}
		report, fileErr := h.file.Retrieve(ctx, pointer)
		if fileErr == nil {
			return report, nil
		}
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	report, fileErr := h.file.Retrieve(ctx, pointer)
	if fileErr == nil {
		return report, nil
	}

	// The report might exist in PG from a previous session.
	if pg := h.getOrConnectPg(ctx); pg != nil {
		report, pgErr := pg.Retrieve(ctx, pointer)
		if pgErr == nil {
			return report, nil
		}
		if errors.Is(pgErr, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, pgErr
	}
	return nil, fileErr
}

var _ ReportStorage = (*HybridStorage)(nil)
