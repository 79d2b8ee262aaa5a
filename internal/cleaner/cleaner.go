// Package cleaner implements the library-deduplication pass: it scans
// linked Torrent rows, groups consecutive title-equivalent rows, keeps the
// best-ranked one per group, and removes the losers' library files.
//
// Grounded on original_source/mlm_core/src/cleaner.rs's
// run_library_cleaner/process_batch/clean_torrent/remove_library_files
// flow; ranking reuses internal/rank, the same Ranker the Linker and
// CandidateSelector already exercise.
package cleaner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sunerpy/mlm/internal/rank"
	"github.com/sunerpy/mlm/internal/store"
	"github.com/sunerpy/mlm/thirdpart/downloader"
)

// OnCleaned optionally applies a client-side category/tags change to a
// removed torrent still known to the client, mirroring the teacher's
// on_cleaned qBittorrent hook but expressed against the portable
// downloader.Downloader interface instead of a client-specific API.
type OnCleaned struct {
	Category string
	Tags     []string
}

// LibraryServerAdapter lets an external library server (e.g. an
// audiobookshelf-style catalog) be told to drop a removed book's record.
// No concrete adapter ships in this repo yet; Config.Adapter is nil unless
// a caller wires one in.
type LibraryServerAdapter interface {
	DeleteBook(ctx context.Context, foreignID string) error
}

// Config carries the knobs the Cleaner needs beyond what's already on the
// Torrent rows.
type Config struct {
	OnCleaned OnCleaned
	Adapter   LibraryServerAdapter
	// PreferredFiletypes orders the Ranker's format-preference tiebreak,
	// the same list Linker/FolderLinker libraries configure.
	PreferredFiletypes []string
}

// Runner drives one Cleaner pass.
type Runner struct {
	store  *store.Store
	client downloader.Downloader
	cfg    Config
	log    *zap.Logger
}

func New(st *store.Store, client downloader.Downloader, cfg Config, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{store: st, client: client, cfg: cfg, log: log}
}

// Run implements spec section 4.8's four steps: scan, group, rank, clean.
func (r *Runner) Run(ctx context.Context) error {
	linked, err := r.store.LinkedTorrents(ctx)
	if err != nil {
		return fmt.Errorf("cleaner: linked torrents: %w", err)
	}

	var batch []store.Torrent
	for _, t := range linked {
		if len(batch) > 0 && !batch[0].Meta.Matches(t.Meta) {
			if err := r.processBatch(ctx, batch); err != nil {
				r.log.Warn("cleaner: process batch failed", zap.Error(err))
			}
			batch = batch[:0]
		}
		batch = append(batch, t)
	}
	if err := r.processBatch(ctx, batch); err != nil {
		r.log.Warn("cleaner: process batch failed", zap.Error(err))
	}
	return nil
}

// processBatch ranks one title-equivalence group and cleans every loser.
// A singleton group has nothing to clean, which is what makes repeat runs
// idempotent once a group is down to its keeper.
func (r *Runner) processBatch(ctx context.Context, batch []store.Torrent) error {
	if len(batch) <= 1 {
		return nil
	}

	candidates := make([]rank.Candidate, len(batch))
	for i, t := range batch {
		candidates[i] = rank.Candidate{
			Filetypes:    t.Meta.Filetypes,
			ObservedSize: observedSize(t),
		}
	}
	order := rank.Rank(candidates, r.cfg.PreferredFiletypes)
	keeper := batch[order[0]]

	for _, idx := range order[1:] {
		loser := batch[idx]
		if err := r.cleanTorrent(ctx, loser, keeper); err != nil {
			r.log.Warn("cleaner: clean torrent failed", zap.String("id", loser.ID), zap.Error(err))
		}
	}
	return nil
}

// cleanTorrent implements clean_torrent: optional client-side
// category/tags update, file removal, row update, and a Cleaned Event.
func (r *Runner) cleanTorrent(ctx context.Context, loser, keeper store.Torrent) error {
	if loser.IDIsHash && r.client != nil {
		if r.cfg.OnCleaned.Category != "" {
			if err := r.client.SetTorrentCategory(loser.ID, r.cfg.OnCleaned.Category); err != nil {
				r.log.Warn("cleaner: set category failed", zap.String("id", loser.ID), zap.Error(err))
			}
		}
		if len(r.cfg.OnCleaned.Tags) > 0 {
			if err := r.client.SetTorrentTags(loser.ID, joinTags(r.cfg.OnCleaned.Tags)); err != nil {
				r.log.Warn("cleaner: set tags failed", zap.String("id", loser.ID), zap.Error(err))
			}
		}
	}

	deleteInABS := keeper.LibraryPath != nil && (loser.LibraryPath == nil || *keeper.LibraryPath != *loser.LibraryPath)
	if err := r.removeLibraryFiles(ctx, loser, deleteInABS); err != nil {
		return fmt.Errorf("remove library files: %w", err)
	}

	oldPath := ""
	oldFiles := loser.LibraryFiles
	if loser.LibraryPath != nil {
		oldPath = *loser.LibraryPath
	}
	keeperID := keeper.ID
	now := time.Now()

	return r.store.RWTx(ctx, func(tx *gorm.DB) error {
		updates := map[string]any{
			"library_path":     nil,
			"library_files":    []string{},
			"library_mismatch": nil,
			"replaced_with_id": keeperID,
			"replaced_with_at": now,
		}
		if err := tx.Model(&store.Torrent{}).Where("id = ?", loser.ID).Updates(updates).Error; err != nil {
			return err
		}
		if oldPath == "" {
			return nil
		}
		return store.AppendEvent(tx, &store.Event{
			ID:          fmt.Sprintf("cleaned:%s:%d", loser.ID, now.UnixNano()),
			Kind:        store.EventCleaned,
			TorrentID:   &loser.ID,
			MAMID:       loser.MAMID,
			LibraryPath: oldPath,
			Files:       oldFiles,
		})
	})
}

// removeLibraryFiles deletes each known file (tolerating an already-missing
// file), its now-possibly-empty parent directory, then — only if every
// remaining entry in the library dir is a leftover cover.jpg/metadata.json
// — those leftovers and the directory itself. Every removal targets a path
// already recorded on the row (library_files holds absolute paths, removed
// as stored) or a sidecar inside the row's library directory.
func (r *Runner) removeLibraryFiles(ctx context.Context, loser store.Torrent, deleteInABS bool) error {
	if deleteInABS && r.cfg.Adapter != nil {
		if abs, ok := loser.ForeignIDs["abs"]; ok && abs != "" {
			if err := r.cfg.Adapter.DeleteBook(ctx, abs); err != nil {
				r.log.Warn("cleaner: delete book in library server failed", zap.String("id", loser.ID), zap.Error(err))
			}
		}
	}

	if loser.LibraryPath == nil {
		return nil
	}
	libraryPath := *loser.LibraryPath

	for _, f := range loser.LibraryFiles {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", f, err)
		}
		dir := filepath.Dir(f)
		if dir != libraryPath && dir != "." {
			_ = os.Remove(dir) // best-effort: only succeeds if now empty
		}
	}

	removeLeftoverDir(libraryPath)
	return nil
}

// removeLeftoverDir mirrors the teacher's read_dir-then-conditionally-clean
// sweep: if everything left in dir is a cover.jpg/metadata.json sidecar,
// delete those too, then the now-empty directory. Any other surviving entry
// (a file from a different, still-linked torrent sharing the directory)
// aborts the sweep and leaves the directory alone.
func removeLeftoverDir(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	leftovers := make([]fs.DirEntry, 0, len(entries))
	for _, e := range entries {
		if e.Name() == "cover.jpg" || e.Name() == "metadata.json" {
			leftovers = append(leftovers, e)
			continue
		}
		return // something else still lives here, leave the directory
	}
	for _, e := range leftovers {
		_ = os.Remove(filepath.Join(dir, e.Name()))
	}
	_ = os.Remove(dir)
}

// observedSize sums on-disk library file sizes when known, else falls back
// to the declared size (the Ranker's "sum of library files if present"
// rule).
func observedSize(t store.Torrent) int64 {
	if len(t.LibraryFiles) == 0 {
		return t.Meta.SizeBytes
	}
	var sum int64
	for _, f := range t.LibraryFiles {
		if fi, err := os.Stat(f); err == nil {
			sum += fi.Size()
		}
	}
	if sum == 0 {
		return t.Meta.SizeBytes
	}
	return sum
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
