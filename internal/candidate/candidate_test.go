package candidate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sunerpy/mlm/internal/store"
	"github.com/sunerpy/mlm/internal/tracker"
)

func newHarness(t *testing.T, handler http.HandlerFunc) (*Selector, *store.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "test.db"), zap.NewNop())
	require.NoError(t, err)

	tc, err := tracker.New(context.Background(), tracker.Config{BaseURL: srv.URL, MAMID: "seed"}, st, zap.NewNop())
	require.NoError(t, err)

	return New(st, tc, zap.NewNop()), st
}

func searchRecord(rec map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/tor/js/loadSearchJSONbasic.php") {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"perpage": 1, "start": 0, "total": 1, "found": 1,
				"data": []map[string]any{rec},
			})
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func baseRecord() map[string]any {
	return map[string]any{
		"id":            uint64(1001),
		"title":         "The Fellowship of the Ring",
		"author_info":   map[string]string{"1": "J.R.R. Tolkien"},
		"narrator_info": map[string]string{},
		"series_info":   map[string][2]string{},
		"mediatype":     1,
		"lang_code":     "en",
		"filetype":      "epub",
		"size":          "1048576",
		"dl":            "abc123",
	}
}

func TestRunAutograbSelectsMatchingCandidate(t *testing.T) {
	sel, st := newHarness(t, searchRecord(baseRecord()))

	err := sel.RunAutograb(context.Background(), Rule{
		Name:                "fantasy",
		PreferredEbookTypes: []string{"epub", "mobi"},
	})
	require.NoError(t, err)

	var rows []store.SelectedTorrent
	require.NoError(t, st.DB().Find(&rows).Error)
	require.Len(t, rows, 1)
	require.Equal(t, uint64(1001), rows[0].MAMID)
	require.Equal(t, "fantasy", rows[0].Grabber)
}

func TestRunAutogradSkipsRecordWithNoPreferredFormat(t *testing.T) {
	sel, st := newHarness(t, searchRecord(baseRecord()))

	err := sel.RunAutograb(context.Background(), Rule{
		Name:                "fantasy",
		PreferredEbookTypes: []string{"pdf"},
	})
	require.NoError(t, err)

	var rows []store.SelectedTorrent
	require.NoError(t, st.DB().Find(&rows).Error)
	require.Empty(t, rows)
}

func TestRunAutograbSupersedesWorseExistingSelection(t *testing.T) {
	sel, st := newHarness(t, searchRecord(baseRecord()))

	existing := store.SelectedTorrent{
		MAMID:       42,
		TitleSearch: "the fellowship of the ring",
		Meta: store.TorrentMeta{
			Title:     "The Fellowship of the Ring",
			MediaType: store.MediaEbook,
			Language:  "en",
			Authors:   []string{"J.R.R. Tolkien"},
			Filetypes: []string{"pdf"},
		},
	}
	require.NoError(t, st.DB().Create(&existing).Error)

	err := sel.RunAutograb(context.Background(), Rule{
		Name:                "fantasy",
		PreferredEbookTypes: []string{"epub", "pdf"},
	})
	require.NoError(t, err)

	var rows []store.SelectedTorrent
	require.NoError(t, st.DB().Find(&rows).Error)
	require.Len(t, rows, 1)
	require.Equal(t, uint64(1001), rows[0].MAMID)
}

func TestRunAutograbRecordsDuplicateAgainstLinkedTorrent(t *testing.T) {
	sel, st := newHarness(t, searchRecord(baseRecord()))

	linked := store.Torrent{
		ID:          "existing-hash",
		TitleSearch: "the fellowship of the ring",
		LibraryPath: strPtr("/library/fellowship"),
		Meta: store.TorrentMeta{
			Title:     "The Fellowship of the Ring",
			MediaType: store.MediaEbook,
			Language:  "en",
			Authors:   []string{"J.R.R. Tolkien"},
		},
	}
	require.NoError(t, st.DB().Create(&linked).Error)

	err := sel.RunAutograb(context.Background(), Rule{
		Name:                "fantasy",
		PreferredEbookTypes: []string{"epub"},
	})
	require.NoError(t, err)

	var selected []store.SelectedTorrent
	require.NoError(t, st.DB().Find(&selected).Error)
	require.Empty(t, selected)

	var dups []store.DuplicateTorrent
	require.NoError(t, st.DB().Find(&dups).Error)
	require.Len(t, dups, 1)
	require.Equal(t, "existing-hash", *dups[0].DuplicateOf)
}

func TestRunWishlistImportSelectsClosestFuzzyMatch(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/tor/js/loadSearchJSONbasic.php") {
			close := baseRecord()
			far := baseRecord()
			far["id"] = uint64(2002)
			far["title"] = "An Unrelated Cookbook"
			far["author_info"] = map[string]string{"1": "Nobody"}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"perpage": 2, "start": 0, "total": 2, "found": 2,
				"data": []map[string]any{close, far},
			})
			return
		}
		w.WriteHeader(http.StatusOK)
	}
	sel, st := newHarness(t, handler)

	item := WishlistItem{
		ID:     "gr-1",
		ListID: "goodreads-main",
		Title:  "The Fellowship of the Ring",
		Authors: []string{"J.R.R. Tolkien"},
	}
	err := sel.RunWishlistImport(context.Background(), item, nil, []string{"epub"})
	require.NoError(t, err)

	var rows []store.SelectedTorrent
	require.NoError(t, st.DB().Find(&rows).Error)
	require.Len(t, rows, 1)
	require.Equal(t, uint64(1001), rows[0].MAMID)
}

func TestDeriveCostPrefersVIPOverFallback(t *testing.T) {
	rec := tracker.Record{VIP: 1}
	require.Equal(t, store.CostVIP, deriveCost(rec, store.CostRatio))
}

func TestDeriveCostFallsBackWhenNoDiscount(t *testing.T) {
	rec := tracker.Record{}
	require.Equal(t, store.CostRatio, deriveCost(rec, ""))
	require.Equal(t, store.CostUseWedge, deriveCost(rec, store.CostUseWedge))
}
