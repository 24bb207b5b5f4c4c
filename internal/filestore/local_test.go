package filestore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	store, err := newLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	payload := []byte("<html><body>archived page</body></html>")
	require.NoError(t, store.Save(ctx, "acts/abc123.html", payload))

	reader, err := store.Open(ctx, "acts/abc123.html")
	require.NoError(t, err)
	defer reader.Close()
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.Equal(t, payload, data)
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	store, err := newLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.Error(t, store.Save(ctx, "../escape.html", []byte("x")))
	_, err = store.Open(ctx, "a/../../escape.html")
	require.Error(t, err)
}
