package extraction

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

type ContactInfo struct {
	Emails       []string `json:"emails"`
	PhoneNumbers []string `json:"phone_numbers"`
}

type TextStats struct {
	CharacterCount int `json:"character_count"`
	WordCount      int `json:"word_count"`
	LineCount      int `json:"line_count"`
}

var punctuationReplacer = strings.NewReplacer(
	"\u2018", "'", "\u2019", "'", "\u201a", "'", "\u201b", "'",
	"\u201c", `"`, "\u201d", `"`, "\u201e", `"`, "\u201f", `"`,
	"\u2013", "-", "\u2014", "-", "\u2212", "-",
	"\u2026", "...",
	"\u00ae", "(R)", "\u00a9", "(C)", "\u2122", "(TM)",
)

// invisible matches control characters that are not whitespace, plus
// format characters such as zero-width spaces and byte order marks.
var invisible = runes.Predicate(func(r rune) bool {
	if unicode.IsSpace(r) {
		return false
	}
	return unicode.IsControl(r) || unicode.Is(unicode.Cf, r)
})

// TextCleaner holds the compiled patterns used to tidy extracted text.
// It is safe for concurrent use.
type TextCleaner struct {
	emailPattern *regexp.Regexp
	phonePattern *regexp.Regexp
}

func NewTextCleaner() *TextCleaner {
	return &TextCleaner{
		emailPattern: regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`),
		phonePattern: regexp.MustCompile(`(?:\+?1[-.\s]?)?(?:\(?[0-9]{3}\)?[-.\s]?)?[0-9]{3}[-.\s]?[0-9]{4}`),
	}
}

// CleanText collapses every whitespace run into a single space and trims the ends.
func (c *TextCleaner) CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// CleanUnicodeText maps typographic punctuation and symbols to ASCII, drops
// invalid UTF-8 and invisible characters, then normalizes whitespace.
// Applying it twice gives the same result as applying it once.
func (c *TextCleaner) CleanUnicodeText(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ToValidUTF8(text, "")
	text = punctuationReplacer.Replace(text)
	if stripped, _, err := transform.String(runes.Remove(invisible), text); err == nil {
		text = stripped
	}
	return c.CleanText(text)
}

func (c *TextCleaner) ExtractContactInfo(text string) ContactInfo {
	info := ContactInfo{Emails: []string{}, PhoneNumbers: []string{}}
	if text == "" {
		return info
	}
	info.Emails = dedupe(c.emailPattern.FindAllString(text, -1))
	info.PhoneNumbers = dedupe(c.phonePattern.FindAllString(text, -1))
	return info
}

func (c *TextCleaner) GetTextStats(text string) TextStats {
	if text == "" {
		return TextStats{}
	}
	return TextStats{
		CharacterCount: utf8.RuneCountInString(text),
		WordCount:      len(strings.Fields(text)),
		LineCount:      countLines(text),
	}
}

// countLines counts lines the way str.splitlines does: every line boundary
// ends a line, \r\n counts once, and a trailing boundary adds no empty line.
func countLines(text string) int {
	lines := 0
	open := false
	prevCR := false
	for _, r := range text {
		if r == '\n' && prevCR {
			prevCR = false
			continue
		}
		prevCR = r == '\r'
		if isLineBoundary(r) {
			lines++
			open = false
			continue
		}
		open = true
	}
	if open {
		lines++
	}
	return lines
}

func isLineBoundary(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

func dedupe(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
