// Package store implements the on-disk data model: a single SQLite
// database accessed through gorm, guarded by a process-wide write mutex so
// that every mutating transaction observes a consistent view of the other
// components' pending writes.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"gorm.io/gorm"
	"moul.io/zapgorm2"
)

// Store wraps the database handle together with the single-writer
// semaphore that every mutating transaction must hold. Reads never take
// the semaphore: sqlite's WAL mode lets readers proceed concurrently with
// an in-flight writer.
type Store struct {
	db       *gorm.DB
	writeSem *semaphore.Weighted
	log      *zap.Logger
}

// Open creates (if necessary) and migrates the database at path, in WAL
// mode, logging through log and through a gorm logger adapter built on the
// same sink.
func Open(path string, log *zap.Logger) (*Store, error) {
	gormLog := zapgorm2.New(log)
	gormLog.SetAsDefault()

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Exec("PRAGMA journal_mode=WAL;").Error; err != nil {
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if err := db.Exec("PRAGMA foreign_keys=ON;").Error; err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{
		db:       db,
		writeSem: semaphore.NewWeighted(1),
		log:      log,
	}
	if err := NewSchemaManager(log).Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

// DB exposes the underlying handle for read-only queries that don't need
// the write mutex (every component builder below is preferred over using
// this directly, but folder-scan style bulk reads use it).
func (s *Store) DB() *gorm.DB { return s.db }

// RWTx blocks until the write mutex is free, then runs fn inside a single
// gorm transaction, releasing the mutex when fn returns (whether it
// errors or not). Use this for all multi-row mutations.
func (s *Store) RWTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if err := s.writeSem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire write lock: %w", err)
	}
	defer s.writeSem.Release(1)
	return s.db.WithContext(ctx).Transaction(fn)
}

// ErrWriteLocked is returned by TryRWTx when another component currently
// holds the write mutex.
var ErrWriteLocked = fmt.Errorf("store: write lock held by another operation")

// TryRWTx attempts the same operation as RWTx but returns ErrWriteLocked
// immediately instead of blocking if the mutex is currently held. It serves
// callers that would rather skip a tick than queue behind a long-running
// write; the scheduler and the components all write through the blocking
// RWTx.
func (s *Store) TryRWTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if !s.writeSem.TryAcquire(1) {
		return ErrWriteLocked
	}
	defer s.writeSem.Release(1)
	return s.db.WithContext(ctx).Transaction(fn)
}

// TorrentsByTitlePrefix returns every Torrent whose title_search value
// begins with the normalized prefix, the basis of duplicate-detection and
// candidate-matching scans. Callers pass an already-normalized prefix
// (see titlenorm.Normalize).
func (s *Store) TorrentsByTitlePrefix(ctx context.Context, normalizedPrefix string) ([]Torrent, error) {
	var out []Torrent
	err := s.db.WithContext(ctx).
		Where("title_search LIKE ? ESCAPE '\\'", escapeLike(normalizedPrefix)+"%").
		Order("created_at asc").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("torrents by title prefix: %w", err)
	}
	return out, nil
}

// TorrentsByTitlePrefixTx is TorrentsByTitlePrefix run against an open
// transaction, for callers (candidate selection) that must read and then
// mutate under the same RWTx.
func TorrentsByTitlePrefixTx(tx *gorm.DB, normalizedPrefix string) ([]Torrent, error) {
	var out []Torrent
	err := tx.Where("title_search LIKE ? ESCAPE '\\'", escapeLike(normalizedPrefix)+"%").Find(&out).Error
	return out, err
}

// SelectedTorrentsByTitlePrefixTx returns every SelectedTorrent whose
// title_search value begins with the normalized prefix, run against an
// open transaction.
func SelectedTorrentsByTitlePrefixTx(tx *gorm.DB, normalizedPrefix string) ([]SelectedTorrent, error) {
	var out []SelectedTorrent
	err := tx.Where("title_search LIKE ? ESCAPE '\\'", escapeLike(normalizedPrefix)+"%").Find(&out).Error
	return out, err
}

// TorrentByID looks up a Torrent by its primary key.
func (s *Store) TorrentByID(ctx context.Context, id string) (*Torrent, error) {
	var t Torrent
	err := s.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if err != nil {
		return nil, classifyWriteErr("torrents", id, err)
	}
	return &t, nil
}

// TorrentByMAMID looks up a Torrent by its tracker id, the snatchlist
// sync's only way to associate an owned-torrent row with its Store row
// before a hash is known.
func (s *Store) TorrentByMAMID(ctx context.Context, mamID uint64) (*Torrent, error) {
	var t Torrent
	err := s.db.WithContext(ctx).First(&t, "mam_id = ?", mamID).Error
	if err != nil {
		return nil, classifyWriteErr("torrents", fmt.Sprint(mamID), err)
	}
	return &t, nil
}

// SelectedByMAMID looks up a queued or in-flight SelectedTorrent.
func (s *Store) SelectedByMAMID(ctx context.Context, mamID uint64) (*SelectedTorrent, error) {
	var sel SelectedTorrent
	err := s.db.WithContext(ctx).First(&sel, "mam_id = ?", mamID).Error
	if err != nil {
		return nil, classifyWriteErr("selected_torrents", fmt.Sprint(mamID), err)
	}
	return &sel, nil
}

// QueuedSelections returns every SelectedTorrent still awaiting download,
// oldest first, the order the Downloader processes its budget in.
func (s *Store) QueuedSelections(ctx context.Context) ([]SelectedTorrent, error) {
	var out []SelectedTorrent
	err := s.db.WithContext(ctx).
		Where("started_at IS NULL AND removed_at IS NULL").
		Order("created_at asc").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("queued selections: %w", err)
	}
	return out, nil
}

// InFlightSelections returns every SelectedTorrent already submitted to the
// client but not yet soft-deleted, the basis of the Downloader's
// remaining_buffer computation (spec section 4.5 step 1).
func (s *Store) InFlightSelections(ctx context.Context) ([]SelectedTorrent, error) {
	var out []SelectedTorrent
	err := s.db.WithContext(ctx).
		Where("started_at IS NOT NULL AND removed_at IS NULL").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("in-flight selections: %w", err)
	}
	return out, nil
}

// TorrentsNeedingLink returns hash-identified Torrent rows not yet linked
// into the library, the Linker's work queue.
func (s *Store) TorrentsNeedingLink(ctx context.Context) ([]Torrent, error) {
	var out []Torrent
	err := s.db.WithContext(ctx).
		Where("id_is_hash = ? AND library_path IS NULL", true).
		Order("created_at asc").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("torrents needing link: %w", err)
	}
	return out, nil
}

// LinkedTorrents returns every Torrent row with a non-null library_path,
// ordered by title_search, the Cleaner's grouping scan.
func (s *Store) LinkedTorrents(ctx context.Context) ([]Torrent, error) {
	var out []Torrent
	err := s.db.WithContext(ctx).
		Where("library_path IS NOT NULL").
		Order("title_search asc").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("linked torrents: %w", err)
	}
	return out, nil
}

// WantedListItems returns every ListItem of the given list still awaiting
// reconciliation, the per-wishlist-import task's work queue.
func (s *Store) WantedListItems(ctx context.Context, listID string) ([]ListItem, error) {
	var out []ListItem
	err := s.db.WithContext(ctx).
		Where("list_id = ? AND status = ?", listID, ItemWanted).
		Order("created_at asc").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("wanted list items: %w", err)
	}
	return out, nil
}

// UpsertList creates or touches the List row a configured goodreads/notion
// source maps to, so ListItem rows have a stable foreign key to join
// against regardless of import order.
func (s *Store) UpsertList(ctx context.Context, id, name, kind string) error {
	now := time.Now()
	list := List{ID: id, Name: name, Kind: kind, CreatedAt: now, UpdatedAt: now}
	return s.db.WithContext(ctx).
		Where("id = ?", id).
		Assign(map[string]any{"name": name, "kind": kind, "updated_at": now}).
		FirstOrCreate(&list).Error
}

// RewriteTitleSearch recomputes title_search for every Torrent row under
// normalize, the `--update-search-title` one-shot's only job (§6's
// "Normalisation rewrite" edge case). Runs batched under RWTx so a large
// library doesn't hold the write lock for the whole pass; returns the
// count of rows actually changed.
func (s *Store) RewriteTitleSearch(ctx context.Context, normalize func(title string) string) (int, error) {
	var ids []string
	if err := s.db.WithContext(ctx).Model(&Torrent{}).Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("rewrite title search: list ids: %w", err)
	}

	changed := 0
	const batch = 200
	for i := 0; i < len(ids); i += batch {
		end := i + batch
		if end > len(ids) {
			end = len(ids)
		}
		err := s.RWTx(ctx, func(tx *gorm.DB) error {
			var rows []Torrent
			if err := tx.Where("id IN ?", ids[i:end]).Find(&rows).Error; err != nil {
				return err
			}
			for _, t := range rows {
				want := normalize(t.Meta.Title)
				if want == t.TitleSearch {
					continue
				}
				if err := tx.Model(&Torrent{}).Where("id = ?", t.ID).
					Update("title_search", want).Error; err != nil {
					return err
				}
				changed++
			}
			return nil
		})
		if err != nil {
			return changed, fmt.Errorf("rewrite title search: batch %d: %w", i, err)
		}
	}
	return changed, nil
}

// ProcessConfigRow returns the single process-config row, creating an empty
// one if it doesn't exist yet.
func (s *Store) ProcessConfigRow(ctx context.Context) (*ProcessConfig, error) {
	var pc ProcessConfig
	err := s.db.WithContext(ctx).FirstOrCreate(&pc, ProcessConfig{ID: 1}).Error
	if err != nil {
		return nil, fmt.Errorf("process config row: %w", err)
	}
	return &pc, nil
}

// SaveTrackerCookie persists a (possibly rotated) session cookie, the
// TrackerClient's write-back half of its session lifecycle.
func (s *Store) SaveTrackerCookie(ctx context.Context, cookie string) error {
	return s.RWTx(ctx, func(tx *gorm.DB) error {
		var pc ProcessConfig
		if err := tx.FirstOrCreate(&pc, ProcessConfig{ID: 1}).Error; err != nil {
			return err
		}
		return tx.Model(&ProcessConfig{}).
			Where("id = ?", 1).
			Updates(map[string]any{"tracker_cookie": cookie, "cookie_set_at": time.Now()}).Error
	})
}

// AppendEvent inserts a single audit-log row, stamping CreatedAt if unset.
// Callers are expected to call this from inside an RWTx alongside the
// state change the event records.
func AppendEvent(tx *gorm.DB, ev *Event) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	if err := tx.Create(ev).Error; err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// escapeLike escapes sqlite LIKE metacharacters in a value that will be
// used as a prefix match, so that titles containing literal '%' or '_'
// don't act as wildcards.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '%' || c == '_' || c == '\\' {
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	return string(out)
}
