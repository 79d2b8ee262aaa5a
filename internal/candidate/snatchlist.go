package candidate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sunerpy/mlm/internal/store"
	"github.com/sunerpy/mlm/internal/titlenorm"
	"github.com/sunerpy/mlm/internal/tracker"
)

// SnatchlistRule configures one snatchlist-refresh pass: which owned-
// torrent view to page through and whether rows with no Store match
// should be added as metadata-only placeholders.
type SnatchlistRule struct {
	Kind          tracker.SnatchlistKind
	AddUnknownRow bool
}

// RunSnatchlistSync pages the account's owned-torrent list and reconciles
// it against Store: known rows get their metadata refreshed (an Updated
// Event records what changed), unknown rows are optionally recorded as
// metadata-only Torrent rows. Grounded on
// original_source/mlm_core/src/snatchlist.rs's search_and_update_torrents
// loop.
func (s *Selector) RunSnatchlistSync(ctx context.Context, r SnatchlistRule) error {
	now := time.Now()
	for page := uint64(0); ; page++ {
		pg, err := s.tracker.Snatchlist(ctx, r.Kind, page, now)
		if err != nil {
			return fmt.Errorf("candidate: snatchlist page %d: %w", page, err)
		}
		if len(pg.Rows) == 0 {
			return nil
		}
		for _, row := range pg.Rows {
			if err := s.syncSnatchlistRow(ctx, row, r); err != nil {
				s.log.Warn("candidate: snatchlist row failed", zap.Uint64("mam_id", row.MAMID), zap.Error(err))
			}
		}
		if !pg.HasMore {
			return nil
		}
		time.Sleep(400 * time.Millisecond)
	}
}

func (s *Selector) syncSnatchlistRow(ctx context.Context, row tracker.SnatchlistRow, r SnatchlistRule) error {
	rec, err := s.tracker.TorrentInfoByID(ctx, row.MAMID)
	if err != nil {
		return fmt.Errorf("fetch torrent info: %w", err)
	}
	meta := metaFromRecord(*rec)
	titleSearch := titlenorm.Normalize(meta.Title)

	existing, err := s.store.TorrentByMAMID(ctx, row.MAMID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if existing == nil {
		if !r.AddUnknownRow {
			return nil
		}
		return s.store.RWTx(ctx, func(tx *gorm.DB) error {
			t := &store.Torrent{
				ID:          uuid.NewString(),
				IDIsHash:    false,
				MAMID:       &row.MAMID,
				TitleSearch: titleSearch,
				Meta:        meta,
				CreatedAt:   time.Now(),
			}
			if err := tx.Create(t).Error; err != nil {
				if errors.As(err, new(*store.ErrDuplicateKey)) {
					return nil
				}
				return err
			}
			return nil
		})
	}

	diff := diffMetaFields(existing.Meta, meta)
	if len(diff) == 0 {
		return nil
	}
	return s.store.RWTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Model(&store.Torrent{}).Where("id = ?", existing.ID).
			Updates(map[string]any{"meta": meta, "title_search": titleSearch}).Error; err != nil {
			return err
		}
		return store.AppendEvent(tx, &store.Event{
			ID:            fmt.Sprintf("updated:%s:%d", existing.ID, time.Now().UnixNano()),
			Kind:          store.EventUpdated,
			TorrentID:     &existing.ID,
			MAMID:         &row.MAMID,
			Diff:          diff,
			UpdatedSource: string(store.MetaSourceTracker),
		})
	})
}

// diffMetaFields reports which top-level TorrentMeta fields changed
// between a stored row and a freshly-fetched tracker record, the set
// recorded on the resulting Updated Event.
func diffMetaFields(old, latest store.TorrentMeta) []string {
	var diff []string
	if old.Title != latest.Title {
		diff = append(diff, "title")
	}
	if old.Language != latest.Language {
		diff = append(diff, "language")
	}
	if old.SizeBytes != latest.SizeBytes {
		diff = append(diff, "size_bytes")
	}
	if !stringSlicesEqual(old.Filetypes, latest.Filetypes) {
		diff = append(diff, "filetypes")
	}
	if !stringSlicesEqual(old.Tags, latest.Tags) {
		diff = append(diff, "tags")
	}
	if old.Flags != latest.Flags {
		diff = append(diff, "flags")
	}
	return diff
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
