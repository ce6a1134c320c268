package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/prop-calibrator/internal/config"
)

func TestConnString(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "calibrator",
		Password: "secret",
		Name:     "props",
		SSLMode:  "disable",
	}

	assert.Equal(t,
		"host=localhost port=5432 user=calibrator password=secret dbname=props sslmode=disable",
		ConnString(cfg))
}

func TestOpenRejectsMalformedDSN(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := Open(ctx, "postgres://%zz", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse database config")
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := SetupTestDB(t)
	defer TeardownTestDB(t, db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, db.HealthCheck(ctx))
}
