package quizgen

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// Last-resort recovery: no parsing at all, just three independent regex
// sweeps over the raw blob. The i-th question text, options array body and
// correct-answer body are paired up; a malformed triple is skipped, never
// fatal. Capped at ten items regardless of the requested count — request
// validation keeps quiz sizes at or below the cap so it cannot truncate a
// legitimate ask.

const patternItemCap = 10

var (
	rxQuestionField = regexp.MustCompile(`"?question"?\s*:\s*"((?:[^"\\]|\\.)*)"`)
	rxAnswersField  = regexp.MustCompile(`"?possibleAnswers"?\s*:\s*\[([^\]]*)\]`)
	rxCorrectField  = regexp.MustCompile(`"?correctAnswer"?\s*:\s*\[([^\]]*)\]`)
)

func extractByPattern(raw string) (Batch, error) {
	texts := rxQuestionField.FindAllStringSubmatch(raw, patternItemCap)
	answers := rxAnswersField.FindAllStringSubmatch(raw, patternItemCap)
	corrects := rxCorrectField.FindAllStringSubmatch(raw, patternItemCap)

	n := len(texts)
	if len(answers) < n {
		n = len(answers)
	}
	if len(corrects) < n {
		n = len(corrects)
	}

	var batch Batch
	for i := 0; i < n; i++ {
		text := unescapeJSONString(texts[i][1])
		if strings.TrimSpace(text) == "" {
			continue
		}
		opts := splitArrayItems(answers[i][1])
		if len(opts) < OptionCount {
			continue
		}
		opts = opts[:OptionCount]
		idx := parseIndexList(corrects[i][1])
		if len(idx) == 0 {
			continue
		}
		batch = append(batch, Question{
			Text:           text,
			Options:        opts,
			CorrectIndices: idx,
		})
	}

	if len(batch) == 0 {
		return nil, errors.New("no question/answer/correct-index triples recognized")
	}
	return batch, nil
}

func unescapeJSONString(s string) string {
	if unq, err := strconv.Unquote(`"` + s + `"`); err == nil {
		return unq
	}
	return s
}

// splitArrayItems breaks an array body on commas and strips quotes and
// whitespace from each piece. Options containing literal commas are beyond
// what this sweep can recover.
func splitArrayItems(body string) []string {
	pieces := strings.Split(body, ",")
	out := make([]string, 0, len(pieces))
	for _, p := range pieces {
		p = strings.TrimSpace(p)
		p = strings.Trim(p, `"'`)
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseIndexList reads a comma-separated list of integers, dropping anything
// that is not a valid option index.
func parseIndexList(body string) []int {
	var out []int
	for _, p := range strings.Split(body, ",") {
		p = strings.Trim(strings.TrimSpace(p), `"'`)
		v, err := strconv.Atoi(p)
		if err != nil {
			continue
		}
		if v < 0 || v >= OptionCount {
			continue
		}
		out = append(out, v)
	}
	return normalizeIndices(out)
}
