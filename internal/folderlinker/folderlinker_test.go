package folderlinker

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sunerpy/mlm/internal/linkfs"
	"github.com/sunerpy/mlm/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "test.db"), zap.NewNop())
	require.NoError(t, err)
	return st
}

func writeLibationFolder(t *testing.T, dir string, meta libationMeta, audioNames []string) string {
	t.Helper()
	folder := filepath.Join(dir, meta.ASIN)
	require.NoError(t, os.MkdirAll(folder, 0o755))
	raw, err := json.Marshal(meta)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(folder, "metadata.json"), raw, 0o644))
	for _, name := range audioNames {
		require.NoError(t, os.WriteFile(filepath.Join(folder, name), []byte("audio"), 0o644))
	}
	return folder
}

func TestLinkFolderImportsNewBook(t *testing.T) {
	st := newTestStore(t)
	dir := t.TempDir()
	ripDir := filepath.Join(dir, "rip")
	require.NoError(t, os.MkdirAll(ripDir, 0o755))
	libDir := filepath.Join(dir, "library")

	writeLibationFolder(t, ripDir, libationMeta{
		ASIN:    "B0TEST123",
		Title:   "The Hobbit",
		Authors: []libationName{{Name: "J.R.R. Tolkien"}},
	}, []string{"book.m4b"})

	lib := Library{
		Name:        "libation",
		RipDir:      ripDir,
		LibraryDir:  libDir,
		AudioTypes:  []string{"m4b"},
		LinkMethods: []linkfs.Method{linkfs.MethodHardlink},
	}
	r := New(st, Config{Libraries: []Library{lib}}, zap.NewNop())

	require.NoError(t, r.Run(context.Background()))

	var got store.Torrent
	require.NoError(t, st.DB().First(&got, "id = ?", "B0TEST123").Error)
	require.False(t, got.IDIsHash)
	require.NotNil(t, got.LibraryPath)
	require.Contains(t, *got.LibraryPath, filepath.Join("Tolkien", "The Hobbit"))

	_, err := os.Stat(filepath.Join(*got.LibraryPath, "book.m4b"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(*got.LibraryPath, "metadata.json"))
	require.NoError(t, err)

	var events []store.Event
	require.NoError(t, st.DB().Find(&events).Error)
	require.Len(t, events, 1)
	require.Equal(t, store.EventLinked, events[0].Kind)
}

func TestLinkFolderSkipsAlreadyImported(t *testing.T) {
	st := newTestStore(t)
	dir := t.TempDir()
	ripDir := filepath.Join(dir, "rip")
	require.NoError(t, os.MkdirAll(ripDir, 0o755))

	require.NoError(t, st.DB().Create(&store.Torrent{
		ID:   "B0TEST123",
		Meta: store.TorrentMeta{Title: "The Hobbit", Authors: []string{"J.R.R. Tolkien"}},
	}).Error)

	writeLibationFolder(t, ripDir, libationMeta{
		ASIN:    "B0TEST123",
		Title:   "The Hobbit",
		Authors: []libationName{{Name: "J.R.R. Tolkien"}},
	}, []string{"book.m4b"})

	lib := Library{
		Name:        "libation",
		RipDir:      ripDir,
		LibraryDir:  filepath.Join(dir, "library"),
		AudioTypes:  []string{"m4b"},
		LinkMethods: []linkfs.Method{linkfs.MethodHardlink},
	}
	r := New(st, Config{Libraries: []Library{lib}}, zap.NewNop())
	require.NoError(t, r.Run(context.Background()))

	var events []store.Event
	require.NoError(t, st.DB().Find(&events).Error)
	require.Len(t, events, 0)
}

func TestParseSeriesFromTitle(t *testing.T) {
	name, num, ok := parseSeriesFromTitle("The Fellowship of the Ring, Book 1")
	require.True(t, ok)
	require.Equal(t, "The Fellowship of the Ring", name)
	require.Equal(t, "1", num)

	_, _, ok = parseSeriesFromTitle("A Standalone Novel")
	require.False(t, ok)
}

func TestBuildMetaMarksAbridged(t *testing.T) {
	meta := buildMeta(libationMeta{
		Title:      "Short Story",
		FormatType: "abridged",
	}, nil, nil, t.TempDir())
	require.NotZero(t, meta.Flags&store.FlagAbridged)
}
