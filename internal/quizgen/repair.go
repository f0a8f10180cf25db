package quizgen

import (
	"regexp"
	"strings"
)

// Structural repairs, applied on top of cleanText by the third recovery
// strategy. These go beyond cosmetics: they cut away prose around the
// document and put back punctuation the model forgot.

var (
	rxLineStartKey      = regexp.MustCompile(`(?m)^(\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
	rxAdjacentStrings   = regexp.MustCompile(`"(\s*\n\s*)"`)
	rxAdjacentObjects   = regexp.MustCompile(`\}(\s*)\{`)
	questionsKeyMarkers = []string{`"questions"`, "questions"}
)

// narrowToDocument discards leading and trailing prose: the working text
// becomes the span from the first { or [ preceding the questions key to the
// last } or ] in the whole blob. Returns the input unchanged when no such
// span exists.
func narrowToDocument(s string) string {
	idx := -1
	for _, marker := range questionsKeyMarkers {
		if i := strings.Index(s, marker); i >= 0 {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s
	}
	start := strings.LastIndexAny(s[:idx], "{[")
	if start < 0 {
		return s
	}
	end := strings.LastIndexAny(s, "}]")
	if end <= start {
		return s
	}
	return s[start : end+1]
}

// quoteLineStartKeys quotes bare keys that open a line, which the cheaper
// {-or-comma rule misses when a previous delimiter is also missing.
func quoteLineStartKeys(s string) string {
	return rxLineStartKey.ReplaceAllString(s, `$1"$2":`)
}

// insertMissingCommas restores commas between two quoted strings separated
// only by a newline, and between back-to-back object literals.
func insertMissingCommas(s string) string {
	s = rxAdjacentStrings.ReplaceAllString(s, `",$1"`)
	return rxAdjacentObjects.ReplaceAllString(s, `},$1{`)
}

// repairText is the full structural pipeline: cosmetic cleanup, then span
// narrowing, then the aggressive punctuation fixes. Bare values are quoted
// again after the line-start keys, since the value rule needs a quoted key
// to anchor on.
func repairText(s string) string {
	s = cleanText(s)
	s = narrowToDocument(s)
	s = quoteLineStartKeys(s)
	s = quoteBareValues(s)
	s = insertMissingCommas(s)
	return s
}
