package nlp

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"
)

// Cleaner normalizes scraped post text before it is embedded: markup is
// stripped, compatibility forms are folded with NFKC, punctuation and symbols
// become token breaks and whitespace is collapsed.
type Cleaner struct {
	policy *bluemonday.Policy
}

func NewCleaner() *Cleaner {
	return &Cleaner{policy: bluemonday.StrictPolicy()}
}

// Clean returns text unchanged when nothing would be left after cleaning.
func (c *Cleaner) Clean(text string) string {
	stripped := html.UnescapeString(c.policy.Sanitize(text))
	folded := norm.NFKC.String(stripped)

	var b strings.Builder
	b.Grow(len(folded))
	pendingSpace := false
	for _, r := range folded {
		if unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsControl(r) {
			pendingSpace = b.Len() > 0
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}

	if b.Len() == 0 {
		return text
	}
	return b.String()
}
