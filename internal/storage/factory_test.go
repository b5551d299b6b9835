package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LENAX/job-processing/pkg/storage"
)

func TestNewJobRepository_SQLite(t *testing.T) {
	repo, err := NewJobRepository("sqlite", ":memory:", storage.PoolConfig{})
	require.NoError(t, err)
	defer repo.Close()

	require.NoError(t, repo.Ping(context.Background()))
}

func TestNewJobRepository_Unsupported(t *testing.T) {
	_, err := NewJobRepository("oracle", "dsn", storage.PoolConfig{})
	assert.ErrorContains(t, err, "unsupported database type")
}
