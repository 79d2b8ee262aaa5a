// Package linker implements the library-materialisation step: it takes a
// fully-downloaded, hash-identified Torrent row and turns it into files on
// disk under the configured library tree, plus a metadata.json sidecar and
// a Linked Event. Grounded on original_source/src/linker.rs for the target
// directory template, the disc-subdirectory heuristic, and the
// metadata.json shape; the per-file materialisation itself is delegated to
// internal/linkfs, this package's equivalent of the teacher's own
// site-poll-then-act task shape (a Runner wrapping Store plus an external
// client behind a single Run(ctx) entry point, as in internal/grab).
package linker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sunerpy/mlm/internal/linkfs"
	"github.com/sunerpy/mlm/internal/store"
	"github.com/sunerpy/mlm/internal/tracker"
	"github.com/sunerpy/mlm/thirdpart/downloader"
)

// PathMapping rewrites a client-reported save path into a path this process
// can read directly (e.g. the client runs in a different container/host
// mount namespace). Deepest (longest) matching From prefix wins.
type PathMapping struct {
	From string
	To   string
}

// Library is one `[[library]]` ruleset: either rip-dir-rooted (matched
// against the mapped save path) or client-category-rooted.
type Library struct {
	Name           string
	RipDir         string
	ClientCategory string
	LibraryDir     string
	AudioTypes     []string
	EbookTypes     []string
	LinkMethods    []linkfs.Method
}

func (l Library) audioTypes(fallback []string) []string {
	if len(l.AudioTypes) > 0 {
		return l.AudioTypes
	}
	return fallback
}

func (l Library) ebookTypes(fallback []string) []string {
	if len(l.EbookTypes) > 0 {
		return l.EbookTypes
	}
	return fallback
}

// Config carries the knobs the Linker needs beyond what's already on the
// Torrent row.
type Config struct {
	PathMappings                []PathMapping
	Libraries                   []Library
	AudioTypes                  []string
	EbookTypes                  []string
	ExcludeNarratorInLibraryDir bool
}

var discPattern = regexp.MustCompile(`(?i:CD|Disc|Disk)\s*(\d+)`)

// Runner drives one Linker pass.
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

// Run links every eligible Torrent row once, then re-checks already-linked
// rows for library mismatches (config changes that would now place them
// elsewhere). Neither phase touches a row it doesn't need to: the first
// phase's query already excludes linked rows, which is what makes relinking
// idempotent.
func (r *Runner) Run(ctx context.Context) error {
	pending, err := r.store.TorrentsNeedingLink(ctx)
	if err != nil {
		return fmt.Errorf("linker: torrents needing link: %w", err)
	}
	for _, t := range pending {
		if err := r.linkOne(ctx, t); err != nil {
			r.log.Warn("linker: link failed", zap.String("id", t.ID), zap.Error(err))
		}
	}
	return r.checkMismatches(ctx)
}

// linkOne implements spec section 4.6's eight steps for a single Torrent.
func (r *Runner) linkOne(ctx context.Context, t store.Torrent) error {
	ct, err := r.client.GetTorrent(t.ID)
	if err != nil {
		if errors.Is(err, downloader.ErrTorrentNotFound) {
			return nil // not yet visible to the client, try again next pass
		}
		return fmt.Errorf("client get torrent: %w", err)
	}
	if ct.Progress < 1.0 {
		return nil
	}

	mappedPath := ApplyPathMapping(r.cfg.PathMappings, ct.SavePath)
	lib, ok := SelectLibrary(r.cfg.Libraries, mappedPath, ct.Category)
	if !ok {
		return fmt.Errorf("no matching library ruleset for save path %q category %q", mappedPath, ct.Category)
	}

	files, err := r.client.GetTorrentFiles(t.ID)
	if err != nil {
		return fmt.Errorf("client get torrent files: %w", err)
	}
	audioExt := SelectFormat(lib.audioTypes(r.cfg.AudioTypes), files)
	ebookExt := SelectFormat(lib.ebookTypes(r.cfg.EbookTypes), files)
	if audioExt == "" && ebookExt == "" {
		return fmt.Errorf("no wanted format present among %d files", len(files))
	}

	targetDir, err := ComputeTargetDir(t.Meta, lib, r.cfg.ExcludeNarratorInLibraryDir)
	if err != nil {
		return fmt.Errorf("compute target dir: %w", err)
	}

	libraryFiles := make([]string, 0, len(files))
	for _, f := range files {
		ext := strings.TrimPrefix(filepath.Ext(f.Name), ".")
		if !strings.EqualFold(ext, audioExt) && !strings.EqualFold(ext, ebookExt) {
			continue
		}
		dst := filepath.Join(targetDir, TargetRelPath(f.Name))
		src := filepath.Join(mappedPath, f.Name)
		if err := linkfs.Link(lib.LinkMethods, src, dst); err != nil {
			return fmt.Errorf("link %s: %w", f.Name, err)
		}
		libraryFiles = append(libraryFiles, dst)
	}
	if len(libraryFiles) == 0 {
		return fmt.Errorf("no files matched selected formats")
	}
	sort.Strings(libraryFiles)

	if err := r.writeMetadataSidecar(ctx, t, targetDir); err != nil {
		r.log.Warn("linker: metadata sidecar failed", zap.String("id", t.ID), zap.Error(err))
	}

	var audioFmt, ebookFmt *string
	if audioExt != "" {
		audioFmt = &audioExt
	}
	if ebookExt != "" {
		ebookFmt = &ebookExt
	}
	return r.store.RWTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Model(&store.Torrent{}).Where("id = ?", t.ID).Updates(map[string]any{
			"library_path":          targetDir,
			"library_files":         libraryFiles,
			"selected_audio_format": audioFmt,
			"selected_ebook_format": ebookFmt,
			"library_mismatch":      nil,
		}).Error; err != nil {
			return err
		}
		return store.AppendEvent(tx, &store.Event{
			ID:          fmt.Sprintf("linked:%s", t.ID),
			Kind:        store.EventLinked,
			TorrentID:   &t.ID,
			MAMID:       t.MAMID,
			Grabber:     t.Grabber,
			Linker:      "linker",
			LibraryPath: targetDir,
			Files:       libraryFiles,
		})
	})
}

// checkMismatches recomputes the target dir for every already-linked,
// hash-identified Torrent and flags (without touching files) any row whose
// current config would now place it elsewhere.
func (r *Runner) checkMismatches(ctx context.Context) error {
	linked, err := r.store.LinkedTorrents(ctx)
	if err != nil {
		return fmt.Errorf("linker: linked torrents: %w", err)
	}
	for _, t := range linked {
		if !t.IDIsHash {
			continue
		}
		mismatch := r.mismatchFor(t)
		current := ""
		if t.LibraryMismatch != nil {
			current = *t.LibraryMismatch
		}
		if mismatch == current {
			continue
		}
		var val any
		if mismatch != "" {
			val = mismatch
		}
		err := r.store.RWTx(ctx, func(tx *gorm.DB) error {
			return tx.Model(&store.Torrent{}).Where("id = ?", t.ID).
				Update("library_mismatch", val).Error
		})
		if err != nil {
			r.log.Warn("linker: mismatch update failed", zap.String("id", t.ID), zap.Error(err))
		}
	}
	return nil
}

func (r *Runner) mismatchFor(t store.Torrent) string {
	ct, err := r.client.GetTorrent(t.ID)
	if err != nil {
		return ""
	}
	mappedPath := ApplyPathMapping(r.cfg.PathMappings, ct.SavePath)
	lib, ok := SelectLibrary(r.cfg.Libraries, mappedPath, ct.Category)
	if !ok {
		return "no_library"
	}
	targetDir, err := ComputeTargetDir(t.Meta, lib, r.cfg.ExcludeNarratorInLibraryDir)
	if err != nil {
		return ""
	}
	if t.LibraryPath == nil || *t.LibraryPath != targetDir {
		return "relocate"
	}
	return ""
}

// ComputeTargetDir builds `author/[series/[series # N - ]]title[, edition][ {narrators}]`,
// sanitising every path segment, and applies the narrator-exclusion
// collision check. Exported so FolderLinker can reuse the exact same
// target-side logic against its own synthesised TorrentMeta.
func ComputeTargetDir(meta store.TorrentMeta, lib Library, excludeNarratorInLibraryDir bool) (string, error) {
	if len(meta.Authors) == 0 {
		return "", fmt.Errorf("torrent has no author")
	}
	author := SanitizeSegment(meta.Authors[0])

	title, _ := SplitTitleSubtitle(meta.Title) // subtitle goes into metadata.json, not the dir name
	titleSeg := title
	var seriesDir string
	if len(meta.Series) > 0 {
		s := meta.Series[0]
		seriesDir = SanitizeSegment(s.Name)
		if len(s.Entries) > 0 {
			titleSeg = fmt.Sprintf("%s #%s - %s", s.Name, s.Entries.String(), title)
		}
	}
	if meta.Edition != nil && meta.Edition.Label != "" {
		titleSeg += ", " + meta.Edition.Label
	}

	base := []string{author}
	if seriesDir != "" {
		base = append(base, seriesDir)
	}

	withoutNarrator := SanitizeSegment(titleSeg)
	withNarrator := withoutNarrator
	if len(meta.Narrators) > 0 {
		withNarrator = SanitizeSegment(titleSeg + " {" + strings.Join(meta.Narrators, ", ") + "}")
	}

	final := withNarrator
	if excludeNarratorInLibraryDir && withNarrator != withoutNarrator {
		candidate := filepath.Join(lib.LibraryDir, filepath.Join(append(append([]string{}, base...), withoutNarrator)...))
		if _, err := os.Stat(candidate); err == nil {
			final = withNarrator // collision: fall back to the disambiguated name
		} else {
			final = withoutNarrator
		}
	}

	segments := append(append([]string{}, base...), final)
	return filepath.Join(lib.LibraryDir, filepath.Join(segments...)), nil
}

// TargetRelPath reproduces the disc-subdirectory heuristic: a parent
// directory named "CD2"/"Disc 2"/"Disk2" becomes a flat "Disc 2"
// subdirectory under the target dir; everything else lands flat.
func TargetRelPath(torrentRelPath string) string {
	dir, file := filepath.Split(filepath.Clean(torrentRelPath))
	dir = strings.TrimSuffix(dir, string(filepath.Separator))
	if dir == "" || dir == "." {
		return file
	}
	parent := filepath.Base(dir)
	if m := discPattern.FindStringSubmatch(parent); m != nil {
		return filepath.Join("Disc "+m[1], file)
	}
	return file
}

func SplitTitleSubtitle(title string) (string, string) {
	parts := strings.SplitN(title, ":", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.TrimSpace(parts[1])
}

var unsafeSegmentChars = regexp.MustCompile(`[\\/:*?"<>|]`)

// SanitizeSegment strips characters illegal in filenames on common
// filesystems and trims the trailing dots/spaces Windows rejects.
func SanitizeSegment(s string) string {
	s = unsafeSegmentChars.ReplaceAllString(s, "")
	s = strings.TrimRight(s, " .")
	if s == "" {
		s = "untitled"
	}
	return s
}

// ApplyPathMapping rewrites path using the longest matching From prefix.
func ApplyPathMapping(mappings []PathMapping, path string) string {
	best := -1
	bestLen := -1
	for i, m := range mappings {
		if strings.HasPrefix(path, m.From) && len(m.From) > bestLen {
			best, bestLen = i, len(m.From)
		}
	}
	if best < 0 {
		return path
	}
	return mappings[best].To + strings.TrimPrefix(path, mappings[best].From)
}

// SelectLibrary finds the first Library whose rip-dir is a prefix of path,
// or whose client category matches, in configured order.
func SelectLibrary(libs []Library, path, clientCategory string) (Library, bool) {
	for _, l := range libs {
		if l.RipDir != "" && strings.HasPrefix(path, l.RipDir) {
			return l, true
		}
	}
	for _, l := range libs {
		if l.ClientCategory != "" && l.ClientCategory == clientCategory {
			return l, true
		}
	}
	return Library{}, false
}

// SelectFormat returns the first configured extension (bare, no leading
// dot) carried by at least one file, or "" if none match.
func SelectFormat(wanted []string, files []downloader.TorrentFile) string {
	for _, ext := range wanted {
		bare := strings.TrimPrefix(ext, ".")
		dotted := "." + bare
		for _, f := range files {
			if strings.HasSuffix(strings.ToLower(f.Name), strings.ToLower(dotted)) {
				return bare
			}
		}
	}
	return ""
}

type sidecarMeta struct {
	Authors     []string `json:"authors"`
	Narrators   []string `json:"narrators"`
	Series      []string `json:"series"`
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle,omitempty"`
	Description string   `json:"description,omitempty"`
	ISBN        string   `json:"isbn,omitempty"`
	ASIN        string   `json:"asin,omitempty"`
}

// writeMetadataSidecar re-fetches the tracker record for this torrent's
// description/isbn (not persisted on TorrentMeta) and writes the
// metadata.json sidecar, pretty-printed.
func (r *Runner) writeMetadataSidecar(ctx context.Context, t store.Torrent, targetDir string) error {
	title, subtitle := SplitTitleSubtitle(t.Meta.Title)
	sm := sidecarMeta{
		Authors:   t.Meta.Authors,
		Narrators: t.Meta.Narrators,
		Title:     title,
		Subtitle:  subtitle,
	}
	for _, s := range t.Meta.Series {
		if len(s.Entries) > 0 {
			sm.Series = append(sm.Series, fmt.Sprintf("%s #%s", s.Name, s.Entries.String()))
		} else {
			sm.Series = append(sm.Series, s.Name)
		}
	}
	if rec, err := r.tracker.TorrentInfoByHash(ctx, t.ID); err == nil && rec != nil {
		sm.Description = rec.Description
		sm.ISBN, sm.ASIN = tracker.ParseISBN(rec.ISBN)
	}

	f, err := os.Create(filepath.Join(targetDir, "metadata.json"))
	if err != nil {
		return fmt.Errorf("create metadata.json: %w", err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sm); err != nil {
		return fmt.Errorf("write metadata.json: %w", err)
	}
	return nil
}
