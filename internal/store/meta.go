package store

import "time"

// MediaType classifies what kind of work a torrent carries.
type MediaType string

const (
	MediaAudiobook MediaType = "audiobook"
	MediaEbook     MediaType = "ebook"
	MediaComicBook MediaType = "comic_book"
	MediaMusic     MediaType = "music"
	MediaRadio     MediaType = "radio"
)

// compatible reports whether two media types should be treated as the same
// title-equivalence class. Ebook and comic-book are intentionally widened
// into one class; every other pair must match exactly.
func (m MediaType) compatible(o MediaType) bool {
	if m == o {
		return true
	}
	widened := func(a, b MediaType) bool {
		return a == MediaEbook && b == MediaComicBook
	}
	return widened(m, o) || widened(o, m)
}

// MetaSource tags where a TorrentMeta's fields were populated from.
type MetaSource struct {
	Kind       string // "tracker", "file", "manual", "match"
	ProviderID string // set only when Kind == "match"
}

const (
	MetaSourceTracker = "tracker"
	MetaSourceFile    = "file"
	MetaSourceManual  = "manual"
	MetaSourceMatch   = "match"
)

// Edition is an optional (label, ordinal) pair on TorrentMeta. Ordinal 0
// means "label only" and editions are then compared by label; a nonzero
// ordinal on both sides is compared by ordinal instead.
type Edition struct {
	Label   string
	Ordinal int
}

func (e *Edition) compatible(o *Edition) bool {
	if e == nil && o == nil {
		return true
	}
	if e == nil || o == nil {
		return false
	}
	if e.Ordinal != 0 && o.Ordinal != 0 {
		return e.Ordinal == o.Ordinal
	}
	return e.Label == o.Label
}

// FlagBits is a bitmask of tracker browse flags (freeleech, VIP-only,
// personal-freeleech, etc.), used by both the search query's hide/show
// mask and the per-torrent meta.
type FlagBits uint32

const (
	FlagFreeleech FlagBits = 1 << iota
	FlagPersonalFreeleech
	FlagVIP
	FlagDoubleUpload
	// FlagAbridged marks a folder-imported audiobook whose source metadata
	// reported an abridged format (the tracker itself carries no such
	// flag; this is only ever set by folder imports).
	FlagAbridged
)

// TorrentMeta is the embedded metadata record carried by Torrent,
// SelectedTorrent, DuplicateTorrent, and (optionally) ErroredTorrent.
type TorrentMeta struct {
	MAMID      uint64
	Title      string
	MediaType  MediaType
	MainCat    string
	Categories []string
	Tags       []string
	Language   string
	Flags      FlagBits
	Filetypes  []string
	SizeBytes  int64
	Authors    []string
	Narrators  []string
	Series     []Series
	Edition    *Edition
	Source     MetaSource
	UploadedAt time.Time
}

// Matches implements the title-equivalence predicate used throughout the
// system (candidate selection, cleaning, duplicate detection): media types
// compatible, language equal, edition compatible, author sets intersect,
// and narrator sets either both empty or intersecting.
func (m TorrentMeta) Matches(o TorrentMeta) bool {
	if !m.MediaType.compatible(o.MediaType) {
		return false
	}
	if m.Language != o.Language {
		return false
	}
	if !m.Edition.compatible(o.Edition) {
		return false
	}
	if !stringSetsIntersect(m.Authors, o.Authors) {
		return false
	}
	if len(m.Narrators) == 0 && len(o.Narrators) == 0 {
		return true
	}
	return stringSetsIntersect(m.Narrators, o.Narrators)
}

func stringSetsIntersect(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[normalizeForSet(v)] = struct{}{}
	}
	for _, v := range b {
		if _, ok := set[normalizeForSet(v)]; ok {
			return true
		}
	}
	return false
}

// normalizeForSet gives author/narrator comparisons the same ASCII-fold
// tolerance as title comparisons, without pulling the full title_search
// normalisation (which also strips spaces we want to keep for people's
// names) into this package's import graph. Lowercasing is enough here:
// trimming is the caller's responsibility via the data that arrives.
func normalizeForSet(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
