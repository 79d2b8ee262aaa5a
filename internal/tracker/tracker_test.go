package tracker

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
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "test.db"), zap.NewNop())
	require.NoError(t, err)
	return st
}

func TestNewUsesConfiguredCredentialWhenNoPersistedCookie(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "mam_id=seed-cookie", r.Header.Get("Cookie"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	st := newTestStore(t)
	c, err := New(context.Background(), Config{BaseURL: srv.URL, MAMID: "seed-cookie"}, st, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, "seed-cookie", c.cookie)
}

func TestNewFallsBackToConfigWhenPersistedCookieRejected(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Header.Get("Cookie") == "mam_id=stale" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	st := newTestStore(t)
	require.NoError(t, st.SaveTrackerCookie(context.Background(), "stale"))

	c, err := New(context.Background(), Config{BaseURL: srv.URL, MAMID: "fresh"}, st, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, "fresh", c.cookie)
	require.Equal(t, 2, calls)
}

func TestUserInfoCachesWithinTTL(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/jsonLoad.php" {
			calls++
			_ = json.NewEncoder(w).Encode(map[string]any{
				"uid": 42, "uploaded": 100, "downloaded": 10,
				"unsat":      map[string]any{"count": 1, "limit": 5},
				"wedges":     3,
				"seedbonus":  500,
				"class_name": "VIP",
			})
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	st := newTestStore(t)
	c, err := New(context.Background(), Config{BaseURL: srv.URL, MAMID: "seed"}, st, zap.NewNop())
	require.NoError(t, err)

	info, err := c.UserInfo(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 42, info.UID)
	require.EqualValues(t, 1, info.Unsat.Count)

	_, err = c.UserInfo(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, calls, "second call should hit the 60s cache, not the network")
}

func TestAddUnsatBumpsCachedValue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/jsonLoad.php" {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"uid": 1, "unsat": map[string]any{"count": 2, "limit": 10},
			})
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	st := newTestStore(t)
	c, err := New(context.Background(), Config{BaseURL: srv.URL, MAMID: "seed"}, st, zap.NewNop())
	require.NoError(t, err)

	_, err = c.UserInfo(context.Background())
	require.NoError(t, err)
	c.AddUnsat(1)

	info, err := c.UserInfo(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 3, info.Unsat.Count)
}

func TestDoTranslates429ToRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/json/checkCookie.php" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	st := newTestStore(t)
	c, err := New(context.Background(), Config{BaseURL: srv.URL, MAMID: "seed"}, st, zap.NewNop())
	require.NoError(t, err)

	_, err = c.do(context.Background(), http.MethodGet, srv.URL+"/tor/download.php/abc", nil)
	require.ErrorIs(t, err, RateLimited{})
}

func TestWedgeAlreadyVIPIsTypedAndNotFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/json/bonusBuy.php") {
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "This Torrent is VIP"})
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	st := newTestStore(t)
	c, err := New(context.Background(), Config{BaseURL: srv.URL, MAMID: "seed"}, st, zap.NewNop())
	require.NoError(t, err)

	err = c.Wedge(context.Background(), 99)
	require.Error(t, err)
	var wedgeErr *WedgeError
	require.ErrorAs(t, err, &wedgeErr)
	require.Equal(t, WedgeAlreadyVIP, wedgeErr.Kind)
}

func TestWedgeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/json/bonusBuy.php") {
			_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	st := newTestStore(t)
	c, err := New(context.Background(), Config{BaseURL: srv.URL, MAMID: "seed"}, st, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, c.Wedge(context.Background(), 99))
}

func TestSearchEmptyResultIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/tor/js/loadSearchJSONbasic.php") {
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "Nothing returned, out of 0"})
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	st := newTestStore(t)
	c, err := New(context.Background(), Config{BaseURL: srv.URL, MAMID: "seed"}, st, zap.NewNop())
	require.NoError(t, err)

	page, err := c.Search(context.Background(), Query{Text: "nothing matches this"})
	require.NoError(t, err)
	require.Empty(t, page.Data)
}

func TestSearchDecodesAuthorAndSeriesInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/tor/js/loadSearchJSONbasic.php") {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"perpage": 1, "start": 0, "total": 1, "found": 1,
				"data": []map[string]any{
					{
						"id":            123,
						"title":         "A Fine Book",
						"author_info":   map[string]string{"1": "Jane Doe"},
						"narrator_info": map[string]string{},
						"series_info":   map[string][2]string{"1": {"A Series", "2"}},
						"size":          "1048576",
						"filetype":      "epub",
					},
				},
			})
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	st := newTestStore(t)
	c, err := New(context.Background(), Config{BaseURL: srv.URL, MAMID: "seed"}, st, zap.NewNop())
	require.NoError(t, err)

	page, err := c.Search(context.Background(), Query{Text: "fine book"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.Equal(t, "Jane Doe", page.Data[0].AuthorInfo["1"])
	require.Equal(t, [2]string{"A Series", "2"}, page.Data[0].SeriesInfo["1"])
}
