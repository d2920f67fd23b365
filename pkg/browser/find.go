package browser

import (
	"regexp"
	"strings"
	"unicode"
)

const starMarker = "__STAR__"

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return !isWordRune(r) })
}

// normalizeText lowercases s and reduces it to its word tokens, each
// surrounded by single spaces.
func normalizeText(s string) string {
	return " " + strings.ToLower(strings.Join(splitWords(s), " ")) + " "
}

// compileFindQuery turns a find query into a pattern over normalized text.
// Punctuation is ignored, matching is case-insensitive and on whole tokens,
// and * matches any run of text. A query with no word tokens returns nil.
func compileFindQuery(query string) *regexp.Regexp {
	tokens := splitWords(strings.ReplaceAll(query, "*", starMarker))

	hasWord := false
	for _, tok := range tokens {
		if strings.ReplaceAll(tok, starMarker, "") != "" {
			hasWord = true
			break
		}
	}
	if !hasWord {
		return nil
	}

	joined := " " + strings.Join(tokens, " ") + " "
	joined = strings.ReplaceAll(joined, " "+starMarker+" ", starMarker+" ")

	parts := strings.Split(joined, starMarker)
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(strings.ToLower(part))
	}
	return regexp.MustCompile(strings.Join(parts, ".*"))
}

// findViewport returns the first viewport at or after start, wrapping to the
// beginning, whose normalized text matches query.
func (b *TextBrowser) findViewport(query string, start int) (int, bool) {
	re := compileFindQuery(query)
	if re == nil {
		return 0, false
	}

	n := len(b.pages)
	for offset := 0; offset < n; offset++ {
		i := (start + offset) % n
		r := b.pages[i]
		if re.MatchString(normalizeText(b.content[r.Start:r.End])) {
			return i, true
		}
	}
	return 0, false
}

// Find moves to the next viewport containing query, starting at the current
// one. Repeating the last query while standing on its match behaves like
// FindNext. It reports false when nothing matches.
func (b *TextBrowser) Find(query string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.hasFind && query == b.findQuery && b.findLast == b.current {
		return b.findNext()
	}

	b.findQuery = query
	b.hasFind = true
	idx, ok := b.findViewport(query, b.current)
	if !ok {
		b.findLast = -1
		return "", false
	}
	b.current = idx
	b.findLast = idx
	return b.viewport(), true
}

// FindNext continues the last Find after its previous match, wrapping around.
// It reports false when there was no previous query or nothing else matches.
func (b *TextBrowser) FindNext() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.findNext()
}

func (b *TextBrowser) findNext() (string, bool) {
	if !b.hasFind {
		return "", false
	}

	start := 0
	if b.findLast >= 0 {
		start = b.findLast + 1
		if start >= len(b.pages) {
			start = 0
		}
	}

	idx, ok := b.findViewport(b.findQuery, start)
	if !ok {
		b.findLast = -1
		return "", false
	}
	b.current = idx
	b.findLast = idx
	return b.viewport(), true
}

func (b *TextBrowser) clearFind() {
	b.hasFind = false
	b.findQuery = ""
	b.findLast = -1
}
