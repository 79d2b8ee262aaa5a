package grab

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sunerpy/mlm/internal/store"
	"github.com/sunerpy/mlm/internal/tracker"
	"github.com/sunerpy/mlm/mocks"
	"github.com/sunerpy/mlm/thirdpart/downloader"
)

func userInfoHandler(t *testing.T, unsatCount, unsatLimit int, uploaded, downloaded int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/jsonLoad.php":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"uid":        1,
				"uploaded":   uploaded,
				"downloaded": downloaded,
				"unsat":      map[string]any{"count": unsatCount, "limit": unsatLimit},
				"wedges":     5,
			})
		case strings.HasPrefix(r.URL.Path, "/tor/download.php"):
			w.Write(minimalTorrentBytes(t))
		default:
			w.WriteHeader(http.StatusOK)
		}
	}
}

// minimalTorrentBytes is a well-formed single-file bencoded dictionary with
// an "info" key, enough for tracker.InfoHash to succeed.
func minimalTorrentBytes(t *testing.T) []byte {
	t.Helper()
	return []byte("d8:announce4:xxxx4:infod6:lengthi10e4:name5:book112:piece lengthi16384e6:pieces20:aaaaaaaaaaaaaaaaaaaaee")
}

func newHarness(t *testing.T, handler http.HandlerFunc, cfg Config) (*Runner, *store.Store, *mocks.MockDownloader) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "test.db"), zap.NewNop())
	require.NoError(t, err)

	tc, err := tracker.New(context.Background(), tracker.Config{BaseURL: srv.URL, MAMID: "seed"}, st, zap.NewNop())
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	client := mocks.NewMockDownloader(ctrl)

	return New(st, tc, client, cfg, zap.NewNop()), st, client
}

func TestRunSkipsWhenUnsatBudgetExhausted(t *testing.T) {
	r, st, client := newHarness(t, userInfoHandler(t, 5, 5, 0, 0), Config{MinRatio: 2})

	sel := store.SelectedTorrent{MAMID: 1, DLLink: "abc", Cost: store.CostRatio, TitleSearch: "book one"}
	require.NoError(t, st.DB().Create(&sel).Error)

	client.EXPECT().GetTorrent(gomock.Any()).Times(0)

	require.NoError(t, r.Run(context.Background()))

	var rows []store.SelectedTorrent
	require.NoError(t, st.DB().Find(&rows).Error)
	require.Len(t, rows, 1)
	require.Nil(t, rows[0].StartedAt)
}

func TestRunGrabsRatioSelectionAndWritesEvent(t *testing.T) {
	r, st, client := newHarness(t, userInfoHandler(t, 0, 5, 1_000_000, 0), Config{MinRatio: 1})

	sel := store.SelectedTorrent{
		MAMID: 2, DLLink: "abc", Cost: store.CostRatio, TitleSearch: "book two",
		Meta: store.TorrentMeta{Title: "Book Two", SizeBytes: 1000},
	}
	require.NoError(t, st.DB().Create(&sel).Error)

	client.EXPECT().GetTorrent(gomock.Any()).Return(downloader.Torrent{}, downloader.ErrTorrentNotFound)
	client.EXPECT().AddTorrentFileEx(gomock.Any(), gomock.Any()).Return(downloader.AddTorrentResult{Success: true, ID: "x"}, nil)

	require.NoError(t, r.Run(context.Background()))

	var torrents []store.Torrent
	require.NoError(t, st.DB().Find(&torrents).Error)
	require.Len(t, torrents, 1)

	var events []store.Event
	require.NoError(t, st.DB().Find(&events).Error)
	require.Len(t, events, 1)
	require.Equal(t, store.EventGrabbed, events[0].Kind)
}

func TestApplyCostPolicyFailsWhenWedgesExhausted(t *testing.T) {
	r, _, _ := newHarness(t, userInfoHandler(t, 0, 5, 0, 0), Config{})
	sel := store.SelectedTorrent{MAMID: 3, Cost: store.CostUseWedge, WedgeBuffer: int64Ptr(5)}
	info := &tracker.UserInfo{Wedges: 5}

	wedged, err := r.applyCostPolicy(context.Background(), sel, info)
	require.False(t, wedged)
	require.ErrorIs(t, err, ErrWedgeExhausted)
}

func TestApplyCostPolicyTryWedgeDegradesSilently(t *testing.T) {
	r, _, _ := newHarness(t, userInfoHandler(t, 0, 5, 0, 0), Config{})
	sel := store.SelectedTorrent{MAMID: 4, Cost: store.CostTryWedge, WedgeBuffer: int64Ptr(5)}
	info := &tracker.UserInfo{Wedges: 5}

	wedged, err := r.applyCostPolicy(context.Background(), sel, info)
	require.NoError(t, err)
	require.False(t, wedged)
}

func int64Ptr(v int64) *int64 { return &v }
