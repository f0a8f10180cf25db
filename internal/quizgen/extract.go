package quizgen

import (
	"strings"

	"github.com/ramgerassy/ace-ai-sub000/internal/providers"
)

// ExtractText flattens a provider response into a single string. This step
// never fails: a plain string passes through untouched, a part list is the
// concatenation of its text parts in order, and anything else (the zero
// value) yields the empty string.
func ExtractText(r providers.RawResponse) string {
	if s, ok := r.AsText(); ok {
		return s
	}
	if parts, ok := r.AsParts(); ok {
		var b strings.Builder
		for _, p := range parts {
			if p.Kind == providers.PartText {
				b.WriteString(p.Value)
			}
		}
		return b.String()
	}
	return ""
}
