package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RecordAndRead(t *testing.T) {
	ctx := context.Background()
	store := New()

	got, err := store.LastAccepted(ctx, "k")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	at := time.Now()
	require.NoError(t, store.Record(ctx, "k", at, time.Minute))

	got, err = store.LastAccepted(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, at, got)
}

func TestStore_ExpiredEntryReadsAsZero(t *testing.T) {
	ctx := context.Background()
	store := New()

	// Recorded in the past with a TTL that has already lapsed.
	at := time.Now().Add(-2 * time.Minute)
	require.NoError(t, store.Record(ctx, "k", at, time.Minute))

	got, err := store.LastAccepted(ctx, "k")
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}
