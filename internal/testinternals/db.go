package testinternals

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/caminemosjuntos/counseling/internal/db"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// NewTestDBPool connects to the postgres given by POSTGRES_HOST / POSTGRES_PORT / POSTGRES_DB
// (localhost:5432/caminemos_juntos by default) and applies the schema.
// Used by the repo tests behind the integration_test build tag.
func NewTestDBPool(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	host := envOr("POSTGRES_HOST", "localhost")
	t.Logf("using postgres host: %s", host)

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:     host,
		DBPort:     envOr("POSTGRES_PORT", "5432"),
		DBName:     envOr("POSTGRES_DB", "caminemos_juntos"),
		DBPassword: os.Getenv("POSTGRES_PASSWORD"),
	})
	require.NoError(t, err)
	require.NoError(t, dbPool.Ping(ctx))
	require.NoError(t, db.Migrate(ctx, dbPool))

	return dbPool, dbPool.Close
}
