package reportstorage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"coordination-api/coordination/types"
	"coordination-api/logging"
)

// Directory structure: {baseDir}/{digest[:2]}/{digest}. The two-character
// fan-out keeps directories small when many reports accumulate.
type FileStorage struct {
	baseDir string
}

func NewFileStorage(baseDir string) *FileStorage {
	return &FileStorage{baseDir: baseDir}
}

func (f *FileStorage) pathFor(digest string) string {
	return filepath.Join(f.baseDir, digest[:2], digest)
}

// Atomic write: temp file + rename.
func (f *FileStorage) Store(ctx context.Context, report []byte) (string, error) {
	pointer := ComputePointer(report)
	digest, err := parsePointer(pointer)
	if err != nil {
		return "", err
	}

	targetPath := f.pathFor(digest)
	if err := os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	tempPath := targetPath + ".tmp"
	if err := os.WriteFile(tempPath, report, 0644); err != nil {
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tempPath, targetPath); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("rename to target: %w", err)
	}

	logging.Debug("Stored report file", types.Storage, "pointer", pointer)
	return pointer, nil
}

func (f *FileStorage) Retrieve(ctx context.Context, pointer string) ([]byte, error) {
	digest, err := parsePointer(pointer)
	if err != nil {
		return nil, ErrNotFound
	}

	report, err := os.ReadFile(f.pathFor(digest))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read report file: %w", err)
	}
	return report, nil
}

var _ ReportStorage = (*FileStorage)(nil)
