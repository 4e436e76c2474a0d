package index

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Trailing Korean particles stripped from noun candidates.
var particles = []string{
	"에서", "으로", "은", "는", "이", "가", "을", "를", "의", "에", "로", "와", "과", "도", "만",
}

// KeywordTokens composes the keyword-search text of a document: curated tags
// weighted double, then noun-like tokens mined from the free text. Tags come
// with a leading # from the extraction pipeline and are stored bare.
func KeywordTokens(tags []string, text string) string {
	var out []string

	for _, tag := range tags {
		t := strings.TrimPrefix(strings.TrimSpace(tag), "#")
		if t == "" {
			continue
		}
		out = append(out, t, t)
	}

	out = append(out, nounTokens(text)...)

	return strings.Join(out, " ")
}

// nounTokens extracts noun-like tokens from Korean text with a particle
// stripping heuristic: split on non-letter runes, trim one trailing particle,
// keep what is still at least two runes long.
func nounTokens(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var out []string
	for _, f := range fields {
		tok := stripParticle(f)
		if utf8.RuneCountInString(tok) >= 2 {
			out = append(out, tok)
		}
	}
	return out
}

func stripParticle(s string) string {
	for _, p := range particles {
		if strings.HasSuffix(s, p) && utf8.RuneCountInString(s) > utf8.RuneCountInString(p) {
			return strings.TrimSuffix(s, p)
		}
	}
	return s
}
