package sqlstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/KoBrAIbrahim/originalBrand/internal/domain"
	"github.com/KoBrAIbrahim/originalBrand/internal/store"
	"github.com/KoBrAIbrahim/originalBrand/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupSQLite(t *testing.T) *Store {
	t.Helper()
	st, err := OpenSQLite(filepath.Join(t.TempDir(), "storefront.db"))
	require.NoError(t, err)
	require.NoError(t, st.RunMigrations("./migrations/sqlite"))
	t.Cleanup(func() { st.Close() })
	return st
}

func setupPostgres(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	creds := &Credentials{
		Host:              host,
		Port:              port.Int(),
		User:              "testuser",
		Password:          "testpass",
		DBName:            "testdb",
		MigrationsDirPath: "./migrations/postgres",
	}

	st, err := OpenPostgres(creds)
	require.NoError(t, err)
	require.NoError(t, st.RunMigrations(creds.MigrationsDirPath))
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSQLite_Contract(t *testing.T) {
	storetest.Run(t, setupSQLite(t))
}

func TestSQLite_MigrationsAreIdempotent(t *testing.T) {
	st := setupSQLite(t)
	assert.NoError(t, st.RunMigrations("./migrations/sqlite"))
}

func TestSQLite_TimestampsAtMillisecondPrecision(t *testing.T) {
	st := setupSQLite(t)
	fixed := time.Date(2026, 4, 1, 9, 30, 0, 123456789, time.UTC)
	st.now = func() time.Time { return fixed }

	product := storetest.NewProduct("ts-1")
	require.NoError(t, st.WithTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		return tx.CreateProduct(ctx, product)
	}))

	got, err := st.GetProduct(context.Background(), "ts-1")
	require.NoError(t, err)
	assert.Equal(t, fixed.Truncate(time.Millisecond), got.CreatedAt)
	assert.Equal(t, product.CreatedAt, got.CreatedAt)
}

func TestSQLite_CancelledContext(t *testing.T) {
	st := setupSQLite(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := st.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.CreateOrder(ctx, storetest.NewOrder("o-1", domain.OrderStatusPending))
	})
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)
}

func TestPostgres_Contract(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	storetest.Run(t, setupPostgres(t))
}
