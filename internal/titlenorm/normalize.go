// Package titlenorm implements the title normalisation rule used to derive
// the title_search secondary index from a TorrentMeta title.
package titlenorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

var stripMarks = runes.Remove(runes.In(unicode.Mn))

// Normalize folds a title into the ASCII-ish lowercase form used for the
// title_search secondary index and for all prefix scans over it. Two
// titles that are "the same" after normalization share a common prefix in
// the index, which is what the duplicate-detection and ranking passes scan
// against.
//
// The transform chain is: Unicode width-fold (fullwidth/halfwidth forms to
// their canonical form) -> NFKD decomposition -> strip combining marks
// (diacritics) -> lowercase -> collapse everything that is not a letter or
// digit to a single space -> trim and collapse runs of spaces.
func Normalize(title string) string {
	t, _, err := transform.String(width.Fold, title)
	if err != nil {
		t = title
	}
	t, _, err = transform.String(norm.NFKD, t)
	if err != nil {
		t, _ = transform.String(norm.NFKD, title)
	}
	t, _, err = transform.String(stripMarks, t)
	if err != nil {
		// stripMarks should never fail on valid UTF-8; fall through with
		// whatever we already have rather than losing the title entirely.
		_ = err
	}
	t = strings.ToLower(t)

	var b strings.Builder
	b.Grow(len(t))
	lastWasSpace := true // trims leading space
	for _, r := range t {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastWasSpace = false
			continue
		}
		if !lastWasSpace {
			b.WriteByte(' ')
			lastWasSpace = true
		}
	}
	out := strings.TrimRight(b.String(), " ")
	return out
}

// HasPrefix reports whether the title_search value of a stored row (key)
// begins with the title_search value of a candidate title (prefix), the
// basis of all title-equivalence prefix scans.
func HasPrefix(key, prefix string) bool {
	return strings.HasPrefix(key, prefix)
}
