// Package folderlinker implements folder-based import: a rip-dir library
// whose subfolders are sidecar-metadata exports rather than torrent-client
// downloads. Each subfolder is expected to carry one JSON metadata file in
// the shape a Libation (audiobook purchase manager) export uses, alongside
// the audio/ebook files it describes.
//
// Grounded on original_source/mlm_core/src/linker/folder.rs: the Libation
// JSON schema, the skip-if-already-known check keyed by the sidecar's asin,
// and the skip-if-a-better-copy-already-exists duplicate check (reusing
// internal/rank the same way internal/candidate does). Target-directory
// computation and per-file linking reuse internal/linker's exported
// helpers unchanged, since spec section 4.7 calls for identical
// target-side behaviour.
package folderlinker

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
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sunerpy/mlm/internal/linker"
	"github.com/sunerpy/mlm/internal/linkfs"
	"github.com/sunerpy/mlm/internal/rank"
	"github.com/sunerpy/mlm/internal/store"
	"github.com/sunerpy/mlm/internal/titlenorm"
	"github.com/sunerpy/mlm/thirdpart/downloader"
)

// Library is one rip-dir-rooted `[[library]]` ruleset this linker scans.
type Library struct {
	Name        string
	RipDir      string
	LibraryDir  string
	AudioTypes  []string
	EbookTypes  []string
	LinkMethods []linkfs.Method
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

func (l Library) asLinkerLibrary() linker.Library {
	return linker.Library{
		Name:        l.Name,
		LibraryDir:  l.LibraryDir,
		AudioTypes:  l.AudioTypes,
		EbookTypes:  l.EbookTypes,
		LinkMethods: l.LinkMethods,
	}
}

// Config carries the knobs the FolderLinker needs beyond the per-library
// rulesets themselves.
type Config struct {
	Libraries                   []Library
	AudioTypes                  []string
	EbookTypes                  []string
	ExcludeNarratorInLibraryDir bool
}

// Runner drives one FolderLinker pass.
type Runner struct {
	store *store.Store
	cfg   Config
	log   *zap.Logger
}

func New(st *store.Store, cfg Config, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{store: st, cfg: cfg, log: log}
}

// Run scans every configured library's rip-dir for importable folders.
func (r *Runner) Run(ctx context.Context) error {
	for _, lib := range r.cfg.Libraries {
		if lib.RipDir == "" {
			continue
		}
		entries, err := os.ReadDir(lib.RipDir)
		if err != nil {
			return fmt.Errorf("folderlinker: read rip dir %q: %w", lib.RipDir, err)
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			folder := filepath.Join(lib.RipDir, e.Name())
			if err := r.linkFolder(ctx, lib, folder); err != nil {
				r.log.Warn("folderlinker: link folder failed", zap.String("folder", folder), zap.Error(err))
			}
		}
	}
	return nil
}

// linkFolder implements spec section 4.7: classify files by extension,
// parse the metadata sidecar, skip if already known or superseded by a
// better copy, then materialise via the same target-side logic Linker uses.
func (r *Runner) linkFolder(ctx context.Context, lib Library, folder string) error {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return fmt.Errorf("read folder: %w", err)
	}

	var audioFiles, ebookFiles []string
	var metadataFile string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
		switch {
		case ext == "json":
			metadataFile = name
		case containsFold(lib.audioTypes(r.cfg.AudioTypes), ext):
			audioFiles = append(audioFiles, name)
		case containsFold(lib.ebookTypes(r.cfg.EbookTypes), ext):
			ebookFiles = append(ebookFiles, name)
		}
	}
	if metadataFile == "" {
		return nil // no sidecar, not a recognised import folder
	}

	raw, err := os.ReadFile(filepath.Join(folder, metadataFile))
	if err != nil {
		return fmt.Errorf("read metadata file: %w", err)
	}
	var lib2 libationMeta
	if err := json.Unmarshal(raw, &lib2); err != nil {
		return nil // not a Libation export, leave it for an operator to handle
	}
	if lib2.ASIN == "" {
		return fmt.Errorf("metadata file has no asin")
	}

	switch _, err := r.store.TorrentByID(ctx, lib2.ASIN); {
	case err == nil:
		return nil // already imported
	case errors.Is(err, store.ErrNotFound):
		// fall through to import
	default:
		return fmt.Errorf("lookup existing torrent: %w", err)
	}

	meta := buildMeta(lib2, audioFiles, ebookFiles, folder)
	titleSearch := titlenorm.Normalize(meta.Title)

	skip, err := r.skipAsDuplicate(ctx, meta, titleSearch, lib)
	if err != nil {
		return err
	}
	if skip {
		return nil
	}

	audioExt := linker.SelectFormat(lib.audioTypes(r.cfg.AudioTypes), torrentFiles(audioFiles))
	ebookExt := linker.SelectFormat(lib.ebookTypes(r.cfg.EbookTypes), torrentFiles(ebookFiles))

	targetDir, err := linker.ComputeTargetDir(meta, lib.asLinkerLibrary(), r.cfg.ExcludeNarratorInLibraryDir)
	if err != nil {
		return fmt.Errorf("compute target dir: %w", err)
	}

	libraryFiles := make([]string, 0, len(audioFiles)+len(ebookFiles))
	link := func(name string) error {
		dst := filepath.Join(targetDir, linker.TargetRelPath(name))
		src := filepath.Join(folder, name)
		if err := linkfs.Link(lib.LinkMethods, src, dst); err != nil {
			return fmt.Errorf("link %s: %w", name, err)
		}
		libraryFiles = append(libraryFiles, dst)
		return nil
	}
	for _, name := range audioFiles {
		if err := link(name); err != nil {
			return err
		}
	}
	for _, name := range ebookFiles {
		if err := link(name); err != nil {
			return err
		}
	}
	sort.Strings(libraryFiles)

	if err := writeMetadataSidecar(meta, lib2.PublisherSummary, targetDir); err != nil {
		r.log.Warn("folderlinker: metadata sidecar failed", zap.String("asin", lib2.ASIN), zap.Error(err))
	}

	var audioFmt, ebookFmt *string
	if audioExt != "" {
		audioFmt = &audioExt
	}
	if ebookExt != "" {
		ebookFmt = &ebookExt
	}
	torrentRow := &store.Torrent{
		ID:                  lib2.ASIN,
		IDIsHash:            false,
		TitleSearch:         titleSearch,
		CreatedAt:           time.Now(),
		LibraryPath:         &targetDir,
		LibraryFiles:        libraryFiles,
		Linker:              lib.Name,
		SelectedAudioFormat: audioFmt,
		SelectedEbookFormat: ebookFmt,
		Meta:                meta,
	}
	return r.store.RWTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(torrentRow).Error; err != nil {
			return err
		}
		return store.AppendEvent(tx, &store.Event{
			ID:          fmt.Sprintf("linked:%s", torrentRow.ID),
			Kind:        store.EventLinked,
			TorrentID:   &torrentRow.ID,
			Linker:      lib.Name,
			LibraryPath: targetDir,
			Files:       libraryFiles,
		})
	})
}

// skipAsDuplicate implements the "skip if a better copy already exists"
// rule: gather every stored Torrent sharing this title's equivalence
// class, rank the candidate folder alongside them by format preference and
// observed size, and skip unless the folder itself ranks first.
func (r *Runner) skipAsDuplicate(ctx context.Context, meta store.TorrentMeta, titleSearch string, lib Library) (bool, error) {
	existing, err := r.store.TorrentsByTitlePrefix(ctx, titleSearch)
	if err != nil {
		return false, fmt.Errorf("title prefix scan: %w", err)
	}
	var matches []store.Torrent
	for _, t := range existing {
		if t.Meta.Matches(meta) {
			matches = append(matches, t)
		}
	}
	if len(matches) == 0 {
		return false, nil
	}

	preferred := make([]string, 0, len(lib.AudioTypes)+len(lib.EbookTypes))
	preferred = append(preferred, lib.audioTypes(r.cfg.AudioTypes)...)
	preferred = append(preferred, lib.ebookTypes(r.cfg.EbookTypes)...)

	candidates := make([]rank.Candidate, 0, len(matches)+1)
	for _, t := range matches {
		candidates = append(candidates, rank.Candidate{
			Filetypes:    t.Meta.Filetypes,
			ObservedSize: observedSize(t),
		})
	}
	candidates = append(candidates, rank.Candidate{
		Filetypes:    meta.Filetypes,
		ObservedSize: meta.SizeBytes,
	})
	best := rank.Best(candidates, preferred)
	return best != len(candidates)-1, nil
}

// observedSize sums linked library file sizes when known, else falls back
// to the declared size, the same rule rank.Candidate documents.
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

func containsFold(list []string, ext string) bool {
	for _, v := range list {
		if strings.EqualFold(strings.TrimPrefix(v, "."), ext) {
			return true
		}
	}
	return false
}

// torrentFiles adapts bare file names to the shape linker.SelectFormat
// expects, standing in for the torrent-client listing Linker itself reads.
func torrentFiles(names []string) []downloader.TorrentFile {
	out := make([]downloader.TorrentFile, len(names))
	for i, n := range names {
		out[i] = downloader.TorrentFile{Name: n}
	}
	return out
}

type libationName struct {
	Name string `json:"name"`
}

type libationSeries struct {
	Sequence string `json:"sequence"`
	Title    string `json:"title"`
}

// libationMeta mirrors the JSON sidecar Libation (an audiobook purchase
// manager) writes alongside an exported book's audio files.
type libationMeta struct {
	ASIN             string           `json:"asin"`
	Authors          []libationName   `json:"authors"`
	FormatType       string           `json:"format_type"`
	Language         string           `json:"language"`
	Narrators        []libationName   `json:"narrators"`
	PublisherSummary string           `json:"publisher_summary"`
	Series           []libationSeries `json:"series"`
	Subtitle         string           `json:"subtitle"`
	Title            string           `json:"title"`
}

func buildMeta(m libationMeta, audioFiles, ebookFiles []string, folder string) store.TorrentMeta {
	title := m.Title
	if m.Subtitle != "" {
		title = fmt.Sprintf("%s: %s", m.Title, m.Subtitle)
	}

	var series []store.Series
	for _, s := range m.Series {
		entries, err := store.ParseSeriesEntries(s.Sequence)
		if err != nil {
			continue
		}
		series = append(series, store.Series{Name: s.Title, Entries: entries})
	}
	if len(series) == 0 {
		if name, num, ok := parseSeriesFromTitle(title); ok {
			entries, _ := store.ParseSeriesEntries(num)
			series = append(series, store.Series{Name: name, Entries: entries})
		}
	}

	var flags store.FlagBits
	if strings.HasPrefix(strings.ToLower(m.FormatType), "abridged") {
		flags |= store.FlagAbridged
	}

	var size int64
	for _, name := range append(append([]string{}, audioFiles...), ebookFiles...) {
		if fi, err := os.Stat(filepath.Join(folder, name)); err == nil {
			size += fi.Size()
		}
	}

	return store.TorrentMeta{
		Title:      title,
		MediaType:  store.MediaAudiobook,
		Language:   m.Language,
		Flags:      flags,
		Filetypes:  []string{"m4b"},
		SizeBytes:  size,
		Authors:    names(m.Authors),
		Narrators:  names(m.Narrators),
		Series:     series,
		Source:     store.MetaSource{Kind: store.MetaSourceFile},
		UploadedAt: time.Now(),
	}
}

func names(ns []libationName) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.Name
	}
	return out
}

// seriesFromTitlePattern matches a trailing ", Book N" or "(Book N)" series
// marker on an otherwise plain title; titles that don't carry one of these
// common Libation/Audible conventions get no series at all, same as the
// upstream parser when it finds nothing to extract.
var seriesFromTitlePattern = regexp.MustCompile(`(?i)^(.*?),?\s*\(?Book\s+(\d+(?:\.\d+)?)\)?\s*$`)

func parseSeriesFromTitle(title string) (name string, num string, ok bool) {
	m := seriesFromTitlePattern.FindStringSubmatch(title)
	if m == nil {
		return "", "", false
	}
	return strings.TrimSpace(m[1]), m[2], true
}

func writeMetadataSidecar(meta store.TorrentMeta, description, targetDir string) error {
	type sidecarMeta struct {
		Authors     []string `json:"authors"`
		Narrators   []string `json:"narrators"`
		Series      []string `json:"series"`
		Title       string   `json:"title"`
		Description string   `json:"description,omitempty"`
	}
	sm := sidecarMeta{
		Authors:     meta.Authors,
		Narrators:   meta.Narrators,
		Title:       meta.Title,
		Description: description,
	}
	for _, s := range meta.Series {
		if len(s.Entries) > 0 {
			sm.Series = append(sm.Series, fmt.Sprintf("%s #%s", s.Name, s.Entries.String()))
		} else {
			sm.Series = append(sm.Series, s.Name)
		}
	}

	f, err := os.Create(filepath.Join(targetDir, "metadata.json"))
	if err != nil {
		return fmt.Errorf("create metadata.json: %w", err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(sm)
}
