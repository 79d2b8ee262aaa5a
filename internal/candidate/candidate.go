// Package candidate implements the two entry paths that turn tracker
// catalog rows into SelectedTorrent rows: configured autograb rules
// (Path A) and external wishlist reconciliation (Path B). Both share the
// same title-equivalence and format-ranking checks against the Store.
// Grounded on original_source/src/autograbber.rs's autograb loop (rule
// filtering, old-selection supersession, title_search prefix scan) and,
// for Path B's fuzzy scoring, on the lithammer/fuzzysearch usage pattern
// pulled from the autobrr-qui pack member.
package candidate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sunerpy/mlm/internal/rank"
	"github.com/sunerpy/mlm/internal/store"
	"github.com/sunerpy/mlm/internal/titlenorm"
	"github.com/sunerpy/mlm/internal/tracker"
)

// Rule is one configured `[[autograb]]` entry.
type Rule struct {
	Name        string
	Query       string
	Cost        store.TorrentCost
	Categories  []int
	Languages   []int
	MinSizeByte uint64
	MaxSizeByte uint64
	MinSeeders  *uint64
	FreeOnly    bool

	UnsatBuffer *int64
	Category    string
	Tags        []string

	PreferredAudioTypes []string
	PreferredEbookTypes []string
}

// matches applies the rule's own filter predicate to a search record,
// beyond whatever the tracker query already narrowed server-side.
func (r Rule) matches(rec tracker.Record) bool {
	if r.FreeOnly && !rec.IsFree() {
		return false
	}
	if r.MinSeeders != nil && rec.Seeders < *r.MinSeeders {
		return false
	}
	return true
}

func (r Rule) preferredTypes(mt store.MediaType) []string {
	if mt == store.MediaEbook || mt == store.MediaComicBook {
		return r.PreferredEbookTypes
	}
	return r.PreferredAudioTypes
}

// WishlistItem is one entry of an external wishlist awaiting reconciliation.
type WishlistItem struct {
	ID        string
	ListID    string
	Title     string
	Authors   []string
	MediaType store.MediaType
}

// Selector runs both entry paths against a Store and a TrackerClient.
type Selector struct {
	store   *store.Store
	tracker *tracker.Client
	log     *zap.Logger
}

func New(st *store.Store, tc *tracker.Client, log *zap.Logger) *Selector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Selector{store: st, tracker: tc, log: log}
}

// RunAutograb executes Path A for one configured rule, paging the tracker
// search until a short page signals the result set is exhausted.
func (s *Selector) RunAutograb(ctx context.Context, r Rule) error {
	for page := uint64(0); ; page++ {
		q := tracker.Query{
			Text:         r.Query,
			Categories:   r.Categories,
			Languages:    r.Languages,
			MinSizeBytes: r.MinSizeByte,
			MaxSizeBytes: r.MaxSizeByte,
			Page:         page,
			PerPage:      100,
			WantDL:       true,
		}
		results, err := s.tracker.Search(ctx, q)
		if err != nil {
			return fmt.Errorf("candidate: autograb %q search: %w", r.Name, err)
		}
		for _, rec := range results.Data {
			if !r.matches(rec) {
				continue
			}
			if err := s.considerAutograbRecord(ctx, r, rec); err != nil {
				s.log.Warn("candidate: autograb record failed", zap.String("rule", r.Name), zap.Uint64("mam_id", rec.ID), zap.Error(err))
			}
		}
		if len(results.Data) < int(q.PerPage) {
			return nil
		}
	}
}

func (s *Selector) considerAutograbRecord(ctx context.Context, r Rule, rec tracker.Record) error {
	meta := metaFromRecord(rec)
	titleSearch := titlenorm.Normalize(meta.Title)
	preferred := r.preferredTypes(meta.MediaType)
	myPos := formatPosition(rank.Candidate{Filetypes: meta.Filetypes, ObservedSize: meta.SizeBytes}, preferred)
	if myPos < 0 {
		return nil // no preferred format matched, never selected
	}

	return s.store.RWTx(ctx, func(tx *gorm.DB) error {
		existingSelected, err := store.SelectedTorrentsByTitlePrefixTx(tx, titleSearch)
		if err != nil {
			return err
		}
		for _, old := range existingSelected {
			if !old.Meta.Matches(meta) {
				continue
			}
			oldPos := formatPosition(rank.Candidate{Filetypes: old.Meta.Filetypes, ObservedSize: old.Meta.SizeBytes}, preferred)
			if oldPos >= 0 && oldPos <= myPos {
				return nil // existing selection is equal-or-better, skip silently
			}
			// this candidate is strictly better: the old selection is superseded
			if err := tx.Delete(&old).Error; err != nil {
				return err
			}
		}

		existingTorrents, err := store.TorrentsByTitlePrefixTx(tx, titleSearch)
		if err != nil {
			return err
		}
		for _, old := range existingTorrents {
			if !old.Meta.Matches(meta) {
				continue
			}
			if old.LibraryPath != nil {
				dup := &store.DuplicateTorrent{
					MAMID:       rec.ID,
					DLLink:      strPtr(rec.DLHash),
					TitleSearch: titleSearch,
					Meta:        meta,
					CreatedAt:   time.Now(),
					DuplicateOf: &old.ID,
				}
				if err := tx.Create(dup).Error; err != nil {
					if errors.As(err, new(*store.ErrDuplicateKey)) {
						s.log.Warn("candidate: duplicate already recorded", zap.Uint64("mam_id", rec.ID))
						return nil
					}
					return err
				}
				return nil
			}
		}

		sel := &store.SelectedTorrent{
			MAMID:       rec.ID,
			DLLink:      rec.DLHash,
			Cost:        deriveCost(rec, r.Cost),
			UnsatBuffer: r.UnsatBuffer,
			Category:    r.Category,
			Tags:        r.Tags,
			Grabber:     r.Name,
			Meta:        meta,
			TitleSearch: titleSearch,
			CreatedAt:   time.Now(),
		}
		if err := tx.Create(sel).Error; err != nil {
			if errors.As(err, new(*store.ErrDuplicateKey)) {
				s.log.Warn("candidate: selected torrent already queued", zap.Uint64("mam_id", rec.ID))
				return nil
			}
			return err
		}
		return nil
	})
}

// RunWishlistImport executes Path B for one wishlist item: search, fuzzy
// score, re-rank, and select at most one SelectedTorrent per media type.
func (s *Selector) RunWishlistImport(ctx context.Context, item WishlistItem, audioTypes, ebookTypes []string) error {
	q := tracker.Query{Text: wishlistQuery(item), PerPage: 50, WantDL: true}
	page, err := s.tracker.Search(ctx, q)
	if err != nil {
		return fmt.Errorf("candidate: wishlist %q search: %w", item.Title, err)
	}
	if len(page.Data) == 0 {
		return nil
	}

	scored := make([]scoredRecord, 0, len(page.Data))
	maxScore := -1.0
	for _, rec := range page.Data {
		sc := scoreRecord(item, rec)
		scored = append(scored, scoredRecord{rec: rec, score: sc})
		if sc > maxScore {
			maxScore = sc
		}
	}

	const keepWithinOfBest = 0.5
	kept := scored[:0]
	for _, sr := range scored {
		if maxScore-sr.score <= keepWithinOfBest {
			kept = append(kept, sr)
		}
	}
	allTypes := make([]string, 0, len(audioTypes)+len(ebookTypes))
	allTypes = append(allTypes, audioTypes...)
	allTypes = append(allTypes, ebookTypes...)
	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i].rec, kept[j].rec
		pa := formatPosition(rank.Candidate{Filetypes: []string{a.Filetype}}, allTypes)
		pb := formatPosition(rank.Candidate{Filetypes: []string{b.Filetype}}, allTypes)
		if pa != pb {
			return pa < pb
		}
		if a.NumFiles != b.NumFiles {
			return a.NumFiles < b.NumFiles
		}
		sa, _ := strconv.ParseInt(a.SizeBytes, 10, 64)
		sb, _ := strconv.ParseInt(b.SizeBytes, 10, 64)
		return sa > sb
	})

	selectedByMedia := map[store.MediaType]bool{}
	for _, sr := range kept {
		meta := metaFromRecord(sr.rec)
		if selectedByMedia[meta.MediaType] {
			continue
		}
		preferred := audioTypes
		if meta.MediaType == store.MediaEbook || meta.MediaType == store.MediaComicBook {
			preferred = ebookTypes
		}
		if formatPosition(rank.Candidate{Filetypes: meta.Filetypes}, preferred) < 0 {
			continue
		}
		if err := s.considerAutograbRecord(ctx, Rule{
			Name:                item.ListID,
			PreferredAudioTypes: audioTypes,
			PreferredEbookTypes: ebookTypes,
		}, sr.rec); err != nil {
			s.log.Warn("candidate: wishlist record failed", zap.String("item", item.Title), zap.Error(err))
			continue
		}
		selectedByMedia[meta.MediaType] = true
	}
	return nil
}

type scoredRecord struct {
	rec   tracker.Record
	score float64
}

// closeness turns lithammer/fuzzysearch's RankMatchNormalizedFold distance
// (lower is a closer match, -1 means no subsequence match at all) into a
// score where higher is better, so every term in scoreRecord can just sum.
func closeness(a, b string) float64 {
	d := fuzzy.RankMatchNormalizedFold(a, b)
	if d < 0 {
		return 0
	}
	return 1 / (1 + float64(d))
}

func scoreRecord(item WishlistItem, rec tracker.Record) float64 {
	titleScore := closeness(item.Title, rec.Title)
	authorScore := 0.0
	for _, a := range item.Authors {
		for _, ra := range rec.AuthorInfo {
			if s := closeness(a, ra); s > authorScore {
				authorScore = s
			}
		}
	}
	seriesScore := 0.0
	for _, info := range rec.SeriesInfo {
		if s := closeness(item.Title, info[0]); s > seriesScore {
			seriesScore = s
		}
	}
	return 2*titleScore + 2*authorScore + seriesScore
}

func wishlistQuery(item WishlistItem) string {
	parts := []string{`"` + item.Title + `"`}
	if len(item.Authors) > 0 {
		parts = append(parts, item.Authors[0])
	}
	return strings.Join(parts, " ")
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// formatPosition returns -1 when no preferred filetype is carried by the
// candidate, matching Rank's "no match sorts last" rule but surfaced as a
// sentinel the selector can branch on directly.
func formatPosition(c rank.Candidate, preferred []string) int {
	best := -1
	for _, ft := range c.Filetypes {
		for i, p := range preferred {
			if strings.EqualFold(ft, p) {
				if best == -1 || i < best {
					best = i
				}
			}
		}
	}
	return best
}

// deriveCost maps the tracker's freeleech/VIP flags to a cost tag,
// falling back to the rule's configured default when no tracker-side
// discount applies.
func deriveCost(rec tracker.Record, fallback store.TorrentCost) store.TorrentCost {
	switch {
	case rec.VIP > 0:
		return store.CostVIP
	case rec.FLVIP > 0 || rec.Free > 0:
		return store.CostGlobalFreeleech
	case rec.PersonalFreeleech > 0:
		return store.CostPersonalFreeleech
	default:
		if fallback == "" {
			return store.CostRatio
		}
		return fallback
	}
}
