// Package grab implements the download admission controller: it turns
// queued SelectedTorrent rows into submissions to the torrent client under
// a global economy budget (unsat slots and upload/download ratio), with
// cost-tier policy (freeleech re-verification, wedge purchase).
//
// Grounded on spec section 4.5; the teacher's thirdpart/downloader package
// supplies the torrent-client adapter unchanged.
package grab

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sunerpy/mlm/internal/store"
	"github.com/sunerpy/mlm/internal/tracker"
	"github.com/sunerpy/mlm/thirdpart/downloader"
)

// interGrabSleep paces tracker/client calls between successive grabs, per
// spec section 5's task-pacing table.
var interGrabSleep = time.Second

// Config carries the economy knobs not derived from tracker user_info.
type Config struct {
	MinRatio          float64
	AddTorrentsPaused bool
}

// Runner drives one admission pass over the queued SelectedTorrent rows.
type Runner struct {
	store   *store.Store
	tracker *tracker.Client
	client  downloader.Downloader
	cfg     Config
	log     *zap.Logger
}

func New(st *store.Store, tc *tracker.Client, client downloader.Downloader, cfg Config, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{store: st, tracker: tc, client: client, cfg: cfg, log: log}
}

// Run processes every queued SelectedTorrent row once, stopping early once
// the economy budget for this pass is exhausted.
func (r *Runner) Run(ctx context.Context) error {
	info, err := r.tracker.UserInfo(ctx)
	if err != nil {
		return fmt.Errorf("grab: user info: %w", err)
	}

	inFlightRows, err := r.store.InFlightSelections(ctx)
	if err != nil {
		return fmt.Errorf("grab: in-flight selections: %w", err)
	}
	var inFlight int64
	for _, sel := range inFlightRows {
		inFlight += sel.Meta.SizeBytes
	}

	queued, err := r.store.QueuedSelections(ctx)
	if err != nil {
		return fmt.Errorf("grab: queued selections: %w", err)
	}

	maxTorrents := info.Unsat.Limit - info.Unsat.Count
	remainingBuffer := int64(0)
	if r.cfg.MinRatio > 0 {
		remainingBuffer = int64(float64(info.Uploaded-info.Downloaded-inFlight) / r.cfg.MinRatio)
	}

	snatchedSoFar := int64(0)
	for _, sel := range queued {
		unsatBuffer := int64(0)
		if sel.UnsatBuffer != nil {
			unsatBuffer = *sel.UnsatBuffer
		}
		if maxTorrents-unsatBuffer-snatchedSoFar <= 0 {
			continue
		}
		if remainingBuffer-sel.Meta.SizeBytes <= 0 {
			continue
		}

		grabbed, err := r.grabOne(ctx, sel, info)
		if err != nil {
			r.log.Warn("grab: row failed", zap.Uint64("mam_id", sel.MAMID), zap.Error(err))
			continue
		}
		if grabbed {
			snatchedSoFar++
			remainingBuffer -= sel.Meta.SizeBytes
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interGrabSleep):
			}
		}
	}
	return nil
}

// grabOne runs the convergence check, cost policy, and client submission
// for a single SelectedTorrent row. It reports whether a grab actually
// happened (so the caller can charge the per-pass budget and sleep).
func (r *Runner) grabOne(ctx context.Context, sel store.SelectedTorrent, info *tracker.UserInfo) (bool, error) {
	fileBytes, err := r.fetchTorrentFileWithRetry(ctx, sel.DLLink)
	if err != nil {
		return false, fmt.Errorf("fetch torrent file: %w", err)
	}
	hash, err := tracker.InfoHash(fileBytes)
	if err != nil {
		return false, fmt.Errorf("info hash: %w", err)
	}

	existing, err := r.clientTorrent(hash)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, r.adoptConverged(ctx, sel, *existing, hash)
	}

	if t, err := r.store.TorrentByID(ctx, hash); err == nil && t.LibraryPath != nil {
		return false, r.store.RWTx(ctx, func(tx *gorm.DB) error {
			return tx.Delete(&store.SelectedTorrent{}, "mam_id = ?", sel.MAMID).Error
		})
	}

	wedged, err := r.applyCostPolicy(ctx, sel, info)
	if err != nil {
		return false, err
	}

	result, err := r.client.AddTorrentFileEx(fileBytes, downloader.AddTorrentOptions{
		AddAtPaused: r.cfg.AddTorrentsPaused,
		Category:    sel.Category,
		Tags:        joinTags(sel.Tags),
	})
	if err != nil || !result.Success {
		return false, fmt.Errorf("client add torrent: %w (%v)", err, result.Message)
	}

	r.tracker.AddUnsat(1)
	now := time.Now()
	return true, r.store.RWTx(ctx, func(tx *gorm.DB) error {
		t := &store.Torrent{
			ID:          hash,
			IDIsHash:    true,
			MAMID:       &sel.MAMID,
			TitleSearch: sel.TitleSearch,
			CreatedAt:   now,
			Category:    sel.Category,
			Meta:        sel.Meta,
			Grabber:     sel.Grabber,
		}
		if err := tx.Create(t).Error; err != nil {
			return err
		}
		if err := tx.Model(&store.SelectedTorrent{}).
			Where("mam_id = ?", sel.MAMID).
			Updates(map[string]any{"started_at": now}).Error; err != nil {
			return err
		}
		return store.AppendEvent(tx, &store.Event{
			ID:        fmt.Sprintf("grabbed:%s", hash),
			Kind:      store.EventGrabbed,
			TorrentID: &hash,
			MAMID:     &sel.MAMID,
			Grabber:   sel.Grabber,
			Cost:      sel.Cost,
			Wedged:    wedged,
		})
	})
}

// adoptConverged handles the case where the torrent client already holds
// this hash: adopt a seeding/complete copy into Store and drop the queued
// selection, or merely mark the selection started and let a later pass
// re-check convergence.
func (r *Runner) adoptConverged(ctx context.Context, sel store.SelectedTorrent, t downloader.Torrent, hash string) error {
	return r.store.RWTx(ctx, func(tx *gorm.DB) error {
		if t.IsCompleted || t.State == downloader.TorrentSeeding {
			row := &store.Torrent{
				ID:          hash,
				IDIsHash:    true,
				MAMID:       &sel.MAMID,
				TitleSearch: sel.TitleSearch,
				CreatedAt:   time.Now(),
				Category:    sel.Category,
				Meta:        sel.Meta,
				Grabber:     sel.Grabber,
			}
			if err := tx.Create(row).Error; err != nil && !errors.As(err, new(*store.ErrDuplicateKey)) {
				return err
			}
			return tx.Delete(&store.SelectedTorrent{}, "mam_id = ?", sel.MAMID).Error
		}
		now := time.Now()
		return tx.Model(&store.SelectedTorrent{}).
			Where("mam_id = ?", sel.MAMID).
			Updates(map[string]any{"started_at": now}).Error
	})
}

func (r *Runner) clientTorrent(hash string) (*downloader.Torrent, error) {
	t, err := r.client.GetTorrent(hash)
	if err != nil {
		if errors.Is(err, downloader.ErrTorrentNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("client get torrent: %w", err)
	}
	return &t, nil
}

// fetchTorrentFileWithRetry retries on the tracker's typed rate-limit error,
// waiting tracker.RateLimitWait between attempts, for at most three attempts.
func (r *Runner) fetchTorrentFileWithRetry(ctx context.Context, dlLink string) ([]byte, error) {
	const maxAttempts = 3
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		data, err := r.tracker.FetchTorrentFile(ctx, dlLink)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !errors.Is(err, tracker.RateLimited{}) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(tracker.RateLimitWait):
		}
	}
	return nil, lastErr
}

// ErrWedgeExhausted is the typed failure for a UseWedge grab with no
// spendable wedges left, surfaced without ever calling the network.
var ErrWedgeExhausted = errors.New("grab: insufficient wedges")

// applyCostPolicy enforces the cost-tier rule for sel.Cost before the
// torrent is submitted to the client, returning whether a wedge was spent.
func (r *Runner) applyCostPolicy(ctx context.Context, sel store.SelectedTorrent, info *tracker.UserInfo) (bool, error) {
	switch sel.Cost {
	case store.CostVIP, store.CostGlobalFreeleech, store.CostPersonalFreeleech:
		rec, err := r.tracker.TorrentInfoByID(ctx, sel.MAMID)
		if err != nil {
			return false, fmt.Errorf("re-verify free status: %w", err)
		}
		if !rec.IsFree() {
			return false, fmt.Errorf("grab: %d is no longer free", sel.MAMID)
		}
		return false, nil
	case store.CostUseWedge:
		buffer := int64(0)
		if sel.WedgeBuffer != nil {
			buffer = *sel.WedgeBuffer
		}
		if info.Wedges <= buffer {
			return false, ErrWedgeExhausted
		}
		if err := r.tracker.Wedge(ctx, sel.MAMID); err != nil {
			var wedgeErr *tracker.WedgeError
			if errors.As(err, &wedgeErr) && wedgeErr.Kind != tracker.WedgeOther {
				return true, nil // already discounted some other way: treat as success
			}
			return false, fmt.Errorf("wedge purchase: %w", err)
		}
		return true, nil
	case store.CostTryWedge:
		buffer := int64(0)
		if sel.WedgeBuffer != nil {
			buffer = *sel.WedgeBuffer
		}
		if info.Wedges <= buffer {
			return false, nil // degrade to ratio silently
		}
		if err := r.tracker.Wedge(ctx, sel.MAMID); err != nil {
			return false, nil // degrade to ratio on any wedge failure
		}
		return true, nil
	default: // CostRatio
		return false, nil
	}
}

func joinTags(tags []string) string {
	out := ""
	for i, t := range tags {
		if i > 0 {
			out += ","
		}
		out += t
	}
	return out
}
