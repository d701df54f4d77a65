// Package normalize canonicalizes comment source text before it is validated and stored
// Pipeline order
// 1 Drop control bytes and invalid UTF-8
// 2 Unicode NFC composition
// 3 Remove format chars except the joiners scripts and emoji need
// 4 Unify line endings to \n
// 5 Trim trailing spaces per line and squash runs of blank lines
// 6 Trim the edges
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	zwnj = '\u200C'
	zwj  = '\u200D'
)

// Normalizer is concurrency safe when used with the pool below
type Normalizer struct {
	maxBlankLines int
}

// pool of fresh transformer chains
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFC,
			runes.Remove(runes.Predicate(func(r rune) bool {
				return unicode.Is(unicode.Cf, r) && r != zwj && r != zwnj
			})),
		)
	},
}

// New constructs a Normalizer keeping at most one blank line between paragraphs
func New() *Normalizer { return &Normalizer{maxBlankLines: 1} }

// Normalize returns the canonical form of s following the pipeline described above
// an input of only whitespace normalizes to ""
func (n *Normalizer) Normalize(s string) string {
	if s == "" {
		return ""
	}

	// 1 controls and invalid bytes
	s = Sanitize(s)

	// 2-3 transform via pooled chain then reset and return it
	tr := chainPool.Get().(transform.Transformer)
	ns, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		ns = s
	}

	// 4 line endings
	ns = strings.ReplaceAll(ns, "\r\n", "\n")
	ns = strings.ReplaceAll(ns, "\r", "\n")

	// 5-6
	return n.tidyLines(ns)
}

// tidyLines trims each line's trailing whitespace and caps consecutive blank lines
// leading indentation is kept since markup uses it
func (n *Normalizer) tidyLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := 0
	for _, ln := range lines {
		ln = strings.TrimRightFunc(ln, unicode.IsSpace)
		if ln == "" {
			blank++
			if blank > n.maxBlankLines {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, ln)
	}
	return strings.TrimFunc(strings.Join(out, "\n"), unicode.IsSpace)
}
