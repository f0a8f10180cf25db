package quizgen

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Cosmetic repair rules. Each rule is a pure string -> string function so it
// can be tested in isolation against known-bad model output. None of them
// understand JSON; they are heuristic rewrites that make near-JSON parseable.

var (
	rxCodeFence      = regexp.MustCompile("(?i)```(?:json)?")
	rxKVQuoteSpacing = regexp.MustCompile(`"\s*:\s*"`)
	rxElemSpacing    = regexp.MustCompile(`"\s*,\s*"`)
	rxTrailingComma  = regexp.MustCompile(`,\s*([}\]])`)
	rxBareKey        = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
	rxBareValue      = regexp.MustCompile(`"\s*:\s*([^"\s,{}\[\]][^,\]}\r\n]*)`)
)

func stripCodeFences(s string) string {
	return rxCodeFence.ReplaceAllString(s, "")
}

func normalizeQuoteSpacing(s string) string {
	s = rxKVQuoteSpacing.ReplaceAllString(s, `": "`)
	return rxElemSpacing.ReplaceAllString(s, `", "`)
}

func removeTrailingCommas(s string) string {
	return rxTrailingComma.ReplaceAllString(s, "$1")
}

func quoteBareKeys(s string) string {
	return rxBareKey.ReplaceAllString(s, `$1"$2":`)
}

// quoteBareValues wraps any remaining unquoted scalar value in quotes, unless
// it is exactly true, false, or a valid number. The match is anchored to the
// quote that closes the key, so a colon inside a quoted string value never
// fires the rule; bare keys have already been quoted by this point.
func quoteBareValues(s string) string {
	return rxBareValue.ReplaceAllStringFunc(s, func(m string) string {
		sub := rxBareValue.FindStringSubmatch(m)
		tok := strings.TrimSpace(sub[1])
		if tok == "true" || tok == "false" {
			return m
		}
		if _, err := strconv.ParseFloat(tok, 64); err == nil {
			return m
		}
		return m[:len(m)-len(sub[1])] + `"` + tok + `"`
	})
}

// cleanText applies the cosmetic repairs in their fixed order. Text that is
// already valid JSON once the fences are gone is returned as is; the rewrite
// rules are heuristics and must never touch a parseable document.
func cleanText(s string) string {
	s = stripCodeFences(s)
	s = strings.TrimSpace(s)
	if json.Valid([]byte(s)) {
		return s
	}
	s = normalizeQuoteSpacing(s)
	s = removeTrailingCommas(s)
	s = quoteBareKeys(s)
	s = quoteBareValues(s)
	return s
}
