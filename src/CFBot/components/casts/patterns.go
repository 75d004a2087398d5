package casts

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxNameLength is the issuance service's documented ceiling for token names.
const MaxNameLength = 30

var castMintPhrases = []string{
	"mint this post",
	"mint this cast",
	"tokenize this post",
	"tokenize this cast",
	"turn this into a token",
	"create token from this",
	"coin this post",
	"coin this cast",
	"make this cast a token",
}

// IsCastMintRequest reports whether text asks to tokenize the cast itself
// rather than an attached image. The short form "mint this" only counts when
// the whole message is at most 4 tokens, so longer sentences that merely
// contain the substring do not trigger it.
func IsCastMintRequest(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range castMintPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	if strings.Contains(lower, "mint this") && len(strings.Fields(lower)) <= 4 {
		return true
	}
	return false
}

// Extraction rules are data: ordered (pattern, capture) pairs, first match
// wins. New phrasings get a new row, not new control flow.
var nameRules = []*regexp.Regexp{
	regexp.MustCompile(`(?i)mint this(?:\s+content)?\s*:\s*([^,\n]+)`),
	regexp.MustCompile(`(?i)\bname\s*:\s*([^,\n]+)`),
	regexp.MustCompile(`(?i)\b(?:token|coin)\s+called\s+"([^"]+)"`),
	regexp.MustCompile(`(?i)\b(?:token|coin)\s+called\s+([^",\n]+)`),
	regexp.MustCompile(`(?i)\bcall it\s+"([^"]+)"`),
	regexp.MustCompile(`(?i)\bcall it\s+([^",\n]+)`),
}

var symbolRules = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bticker\s*:?\s*\$?([A-Za-z0-9]{1,10})`),
	regexp.MustCompile(`(?i)\bsymbol\s*:?\s*\$?([A-Za-z0-9]{1,10})`),
	regexp.MustCompile(`(?:^|\s)\$([A-Za-z]{1,10})\b`),
}

var nameSanitizer = regexp.MustCompile(`[^\w\s\-.']`)

// ExtractExplicitName returns a user-stated token name, or empty when the
// text names nothing. Original case and spacing are preserved.
func ExtractExplicitName(text string) string {
	for _, rule := range nameRules {
		if m := rule.FindStringSubmatch(text); m != nil {
			name := sanitize(m[1])
			if name == "" {
				continue
			}
			return TruncateName(name)
		}
	}
	return ""
}

// ExtractExplicitSymbol returns a user-stated ticker, upper-cased, or empty.
func ExtractExplicitSymbol(text string) string {
	for _, rule := range symbolRules {
		if m := rule.FindStringSubmatch(text); m != nil {
			symbol := sanitize(m[1])
			if symbol == "" {
				continue
			}
			return strings.ToUpper(symbol)
		}
	}
	return ""
}

// GenerateSymbolFromName derives a ticker when the user gave a name but no
// symbol. Multi-word names become initials (max 10), single words are
// truncated to 4 characters.
func GenerateSymbolFromName(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return ""
	}
	if len(words) > 1 {
		var b strings.Builder
		for _, w := range words {
			r, _ := utf8.DecodeRuneInString(w)
			b.WriteRune(unicode.ToUpper(r))
		}
		return truncateRunes(b.String(), 10)
	}
	return truncateRunes(strings.ToUpper(words[0]), 4)
}

// TruncateName caps a name at MaxNameLength characters without splitting a
// multi-byte rune.
func TruncateName(name string) string {
	return strings.TrimSpace(truncateRunes(name, MaxNameLength))
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		return string(runes[:n])
	}
	return s
}

func sanitize(s string) string {
	return strings.TrimSpace(nameSanitizer.ReplaceAllString(s, ""))
}
