package reportstorage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgresContainer(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:18.1-bookworm",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { container.Terminate(ctx) })

	connUrl, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return connUrl
}

func TestPostgresStorage_StoreAndRetrieve(t *testing.T) {
	connUrl := setupPostgresContainer(t)
	ctx := context.Background()

	storage, err := NewPostgresStorage(ctx, connUrl)
	require.NoError(t, err)
	defer storage.Close()

	report := []byte(`{"pool":"eth-usdc","sandwiches":3}`)
	pointer, err := storage.Store(ctx, report)
	require.NoError(t, err)
	assert.Equal(t, ComputePointer(report), pointer)

	got, err := storage.Retrieve(ctx, pointer)
	require.NoError(t, err)
	assert.Equal(t, report, got)

	_, err = storage.Retrieve(ctx, ComputePointer([]byte("never stored")))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresStorage_SchemaAutoCreation(t *testing.T) {
	connUrl := setupPostgresContainer(t)
	ctx := context.Background()

	// First connection creates the schema, second reuses it.
	storage1, err := NewPostgresStorage(ctx, connUrl)
	require.NoError(t, err)
	storage1.Close()

	storage2, err := NewPostgresStorage(ctx, connUrl)
	require.NoError(t, err)
	defer storage2.Close()

	report := []byte(`{"test":"data"}`)
	pointer, err := storage2.Store(ctx, report)
	require.NoError(t, err)
	got, err := storage2.Retrieve(ctx, pointer)
	require.NoError(t, err)
	assert.Equal(t, report, got)
}

func TestPostgresStorage_IdempotentStore(t *testing.T) {
	connUrl := setupPostgresContainer(t)
	ctx := context.Background()

	storage, err := NewPostgresStorage(ctx, connUrl)
	require.NoError(t, err)
	defer storage.Close()

	report := []byte(`{"pool":"eth-usdc"}`)
	p1, err := storage.Store(ctx, report)
	require.NoError(t, err)
	p2, err := storage.Store(ctx, report)
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
}

func TestHybridStorage_FileFallbackOnRetrieve(t *testing.T) {
	connUrl := setupPostgresContainer(t)
	ctx := context.Background()
	tempDir := t.TempDir()

	fileStorage := NewFileStorage(tempDir)
	report := []byte(`{"file":"data"}`)
	pointer, err := fileStorage.Store(ctx, report)
	require.NoError(t, err)

	pgStorage, err := NewPostgresStorage(ctx, connUrl)
	require.NoError(t, err)
	defer pgStorage.Close()

	hybrid := NewHybridStorage(pgStorage, connUrl, fileStorage, 240*time.Second)

	// Not in PG, but in the file tree.
	got, err := hybrid.Retrieve(ctx, pointer)
	require.NoError(t, err)
	assert.Equal(t, report, got)
}

func TestHybridStorage_PGPrimary(t *testing.T) {
	connUrl := setupPostgresContainer(t)
	ctx := context.Background()
	tempDir := t.TempDir()

	pgStorage, err := NewPostgresStorage(ctx, connUrl)
	require.NoError(t, err)
	defer pgStorage.Close()

	fileStorage := NewFileStorage(tempDir)
	hybrid := NewHybridStorage(pgStorage, connUrl, fileStorage, 240*time.Second)

	report := []byte(`{"pg":"data"}`)
	pointer, err := hybrid.Store(ctx, report)
	require.NoError(t, err)

	got, err := hybrid.Retrieve(ctx, pointer)
	require.NoError(t, err)
	assert.Equal(t, report, got)

	// The file tree must not have it: PG is the primary.
	_, err = fileStorage.Retrieve(ctx, pointer)
	assert.ErrorIs(t, err, ErrNotFound)
}
