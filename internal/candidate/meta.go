package candidate

import (
	"strconv"
	"time"

	"github.com/sunerpy/mlm/internal/store"
	"github.com/sunerpy/mlm/internal/tracker"
)

// mamMediaTypes maps the tracker's numeric mediatype codes to the store's
// MediaType enum. MaM's own category tree is category-coded rather than
// mediatype-coded for audiobooks vs. ebooks vs. comics, so this table is
// intentionally small and only distinguishes what TorrentMeta.Matches cares
// about; an unrecognised code falls back to audiobook, the tracker's
// dominant catalog.
var mamMediaTypes = map[int]store.MediaType{
	0: store.MediaAudiobook,
	1: store.MediaEbook,
	2: store.MediaComicBook,
	3: store.MediaMusic,
	4: store.MediaRadio,
}

func metaFromRecord(rec tracker.Record) store.TorrentMeta {
	mt, ok := mamMediaTypes[rec.MediaType]
	if !ok {
		mt = store.MediaAudiobook
	}

	size, _ := strconv.ParseInt(rec.SizeBytes, 10, 64)

	authors := make([]string, 0, len(rec.AuthorInfo))
	for _, name := range rec.AuthorInfo {
		authors = append(authors, name)
	}
	narrators := make([]string, 0, len(rec.NarratorInfo))
	for _, name := range rec.NarratorInfo {
		narrators = append(narrators, name)
	}
	series := make([]store.Series, 0, len(rec.SeriesInfo))
	for name, pos := range rec.SeriesInfo {
		entries, err := store.ParseSeriesEntries(pos[1])
		if err != nil {
			continue
		}
		series = append(series, store.Series{Name: name, Entries: entries})
	}

	var flags store.FlagBits
	if rec.Free > 0 {
		flags |= store.FlagFreeleech
	}
	if rec.PersonalFreeleech > 0 {
		flags |= store.FlagPersonalFreeleech
	}
	if rec.VIP > 0 {
		flags |= store.FlagVIP
	}

	return store.TorrentMeta{
		MAMID:      rec.ID,
		Title:      rec.Title,
		MediaType:  mt,
		Language:   rec.LangCode,
		Flags:      flags,
		Filetypes:  []string{rec.Filetype},
		SizeBytes:  size,
		Authors:    authors,
		Narrators:  narrators,
		Series:     series,
		Source:     store.MetaSource{Kind: store.MetaSourceTracker},
		UploadedAt: time.Now(),
	}
}
