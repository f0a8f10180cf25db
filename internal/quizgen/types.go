package quizgen

import (
	"sort"
	"strings"
)

type Level string

const (
	LevelEasy         Level = "easy"
	LevelIntermediate Level = "intermediate"
	LevelHard         Level = "hard"
)

func ParseLevel(s string) (Level, bool) {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case LevelEasy:
		return LevelEasy, true
	case LevelIntermediate:
		return LevelIntermediate, true
	case LevelHard:
		return LevelHard, true
	}
	return "", false
}

// Request describes one quiz to generate.
type Request struct {
	Subject string
	Topics  []string
	Level   Level
	Count   int
}

// OptionCount is fixed by the product: every question offers four choices.
const OptionCount = 4

// Question is one quiz item. The JSON keys are the wire shape the model is
// asked to produce and the shape the frontend consumes.
type Question struct {
	Ordinal        int      `json:"ordinal"`
	Text           string   `json:"question"`
	Options        []string `json:"possibleAnswers"`
	CorrectIndices []int    `json:"correctAnswer"`
	Explanation    string   `json:"explanation,omitempty"`
	Difficulty     int      `json:"difficulty,omitempty"`
	Topic          string   `json:"topic,omitempty"`
}

// Batch is the ordered output of one parse attempt. It may be shorter than
// the requested count; size sufficiency is the orchestrator's call.
type Batch []Question

// finalize assigns 1-based ordinals and normalizes each question in place:
// trimmed text and options, correct indices deduplicated and sorted. Ordinals
// from model output are never trusted.
func finalize(b Batch) Batch {
	for i := range b {
		q := &b[i]
		q.Ordinal = i + 1
		q.Text = strings.TrimSpace(q.Text)
		for j := range q.Options {
			q.Options[j] = strings.TrimSpace(q.Options[j])
		}
		q.CorrectIndices = normalizeIndices(q.CorrectIndices)
	}
	return b
}

func normalizeIndices(idx []int) []int {
	seen := map[int]bool{}
	out := make([]int, 0, len(idx))
	for _, v := range idx {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}
