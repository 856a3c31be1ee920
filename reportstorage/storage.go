package reportstorage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("report not found")

// ReportStorage keeps the full MEV insight report documents off the ledger.
// Reports are content-addressed: Store returns the pointer that goes into the
// insight record, Retrieve resolves it back to the document.
type ReportStorage interface {
	Store(ctx context.Context, report []byte) (pointer string, err error)
	Retrieve(ctx context.Context, pointer string) ([]byte, error)
}
