package repository

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	path := filepath.Join(t.TempDir(), "assessments.db")
	store, err := NewSQLiteStore(path, logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()
	want := testResult()

	require.NoError(t, store.Save(ctx, want))

	got, err := store.Get(ctx, want.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Parameters, got.Parameters)
	assert.Equal(t, want.Advisories, got.Advisories)
	assert.Equal(t, want.Quality, got.Quality)
	assert.Equal(t, want.Probability, got.Probability)
	assert.Equal(t, want.RiskLevel, got.RiskLevel)
	assert.Equal(t, want.RiskMessage, got.RiskMessage)
	assert.Equal(t, want.RiskFactors, got.RiskFactors)
	assert.Equal(t, want.Recommendations, got.Recommendations)
	assert.Equal(t, want.VitalStatus, got.VitalStatus)
	assert.Equal(t, want.ModelVersion, got.ModelVersion)
	assert.Equal(t, want.ProcessingTime, got.ProcessingTime)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "created_at should survive the round trip")
}

func TestSQLiteStoreGetNotFound(t *testing.T) {
	store := newSQLiteStore(t)

	got, err := store.Get(context.Background(), "no-such-id")

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStoreListAndCount(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		result := testResult()
		result.ID = uuid.New().String()
		result.CreatedAt = result.CreatedAt.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.Save(ctx, result))
		ids = append(ids, result.ID)
	}

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	results, err := store.List(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	// Newest first.
	assert.Equal(t, ids[2], results[0].ID)
	assert.Equal(t, ids[1], results[1].ID)

	rest, err := store.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, ids[0], rest[0].ID)
}
