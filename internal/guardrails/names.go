// Package guardrails holds the deterministic text rules wrapped around the
// generation backend: introduction detection, prompt framing and reply
// sanitization.
package guardrails

import (
	"regexp"
	"strings"
	"unicode"
)

// nameSeparator matches Unicode whitespace, not just ASCII: \v, the
// \x1c-\x1f separators, NEL and every Z-category rune such as NBSP, em
// space and U+3000.
const nameSeparator = `[\s\v\x1c-\x1f\x85\p{Z}]+`

// introductionPatterns are tried in order; the first match wins.
// The capture runs to the end of the line, so "i am going home" yields
// "Going Home".
var introductionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)my name is` + nameSeparator + `(.+)`),
	regexp.MustCompile(`(?i)i am` + nameSeparator + `(.+)`),
	regexp.MustCompile(`(?i)i'm` + nameSeparator + `(.+)`),
}

const trailingNamePunctuation = ".!?"

// ExtractName looks for a self-introduction in text and returns the
// normalized name. ok is false when no pattern matches or nothing is left
// after normalization.
func ExtractName(text string) (name string, ok bool) {
	for _, pattern := range introductionPatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		name = strings.TrimFunc(match[1], isNameSpace)
		name = strings.TrimRight(name, trailingNamePunctuation)
		name = titleCase(name)
		return name, name != ""
	}
	return "", false
}

// isNameSpace reports whether r belongs to the same whitespace set as
// nameSeparator.
func isNameSpace(r rune) bool {
	return unicode.IsSpace(r) || unicode.In(r, unicode.Z) || (r >= 0x1c && r <= 0x1f)
}

// titleCase upper-cases the first letter of every run of letters and
// lower-cases the rest, so "o'neil" becomes "O'Neil".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inWord := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if inWord {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToTitle(r))
			}
			inWord = true
			continue
		}
		b.WriteRune(r)
		inWord = false
	}
	return b.String()
}
