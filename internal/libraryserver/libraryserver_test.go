package libraryserver

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sunerpy/mlm/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "test.db"), zap.NewNop())
	require.NoError(t, err)
	return st
}

type fakeAdapter struct {
	calls int
	id    string
	err   error
}

func (f *fakeAdapter) CreateMetadata(ctx context.Context, t store.Torrent) (string, error) {
	f.calls++
	return f.id, f.err
}

func TestRunNoopWithoutAdapter(t *testing.T) {
	st := newTestStore(t)
	r := New(st, nil, zap.NewNop())
	require.NoError(t, r.Run(context.Background()))
}

func TestRunRegistersLinkedTorrentMissingForeignID(t *testing.T) {
	st := newTestStore(t)
	libPath := "/library/hobbit"
	require.NoError(t, st.DB().Create(&store.Torrent{
		ID:          "abcd1234",
		IDIsHash:    true,
		LibraryPath: &libPath,
		Meta:        store.TorrentMeta{Title: "The Hobbit"},
	}).Error)

	adapter := &fakeAdapter{id: "abs-42"}
	r := New(st, adapter, zap.NewNop())
	require.NoError(t, r.Run(context.Background()))
	require.Equal(t, 1, adapter.calls)

	got, err := st.TorrentByID(context.Background(), "abcd1234")
	require.NoError(t, err)
	require.Equal(t, "abs-42", got.ForeignIDs["abs"])

	// a second pass must not call the adapter again.
	require.NoError(t, r.Run(context.Background()))
	require.Equal(t, 1, adapter.calls)
}
