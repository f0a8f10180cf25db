package quizgen

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// RecoveryError is raised when every recovery strategy failed on one raw
// blob. Reasons holds one entry per strategy, in cascade order.
type RecoveryError struct {
	Reasons []string
}

func (e *RecoveryError) Error() string {
	return "recovery exhausted: " + strings.Join(e.Reasons, "; ")
}

type recoveryStrategy struct {
	name string
	fn   func(string) (Batch, error)
}

// The cascade, cheapest first. Only the pattern sweep tolerates per-item
// loss; the first three accept nothing less than a fully valid batch.
var recoveryStrategies = []recoveryStrategy{
	{"direct", parseDirect},
	{"cleaned", parseCleaned},
	{"repaired", parseRepaired},
	{"pattern", extractByPattern},
}

// RecoverBatch runs the raw model text through the strategy cascade and
// returns the first accepted batch, normalized and with ordinals assigned.
func RecoverBatch(raw string) (Batch, error) {
	reasons := make([]string, 0, len(recoveryStrategies))
	for _, s := range recoveryStrategies {
		batch, err := s.fn(raw)
		if err == nil {
			return finalize(batch), nil
		}
		reasons = append(reasons, s.name+": "+err.Error())
	}
	return nil, &RecoveryError{Reasons: reasons}
}

func parseDirect(raw string) (Batch, error) {
	return parseQuestions(raw)
}

func parseCleaned(raw string) (Batch, error) {
	return parseQuestions(cleanText(raw))
}

func parseRepaired(raw string) (Batch, error) {
	return parseQuestions(repairText(raw))
}

func parseQuestions(s string) (Batch, error) {
	var doc struct {
		Questions []Question `json:"questions"`
	}
	if err := json.Unmarshal([]byte(s), &doc); err != nil {
		return nil, err
	}
	if err := plausibleBatch(doc.Questions); err != nil {
		return nil, err
	}
	return Batch(doc.Questions), nil
}

// plausibleBatch is the all-or-nothing gate for the parse-based strategies:
// at least one question, and every question individually well-formed. One bad
// item rejects the whole batch.
func plausibleBatch(qs []Question) error {
	if len(qs) == 0 {
		return errors.New("no questions in document")
	}
	for i, q := range qs {
		if issues := questionIssues(q); len(issues) > 0 {
			return fmt.Errorf("question %d: %s", i+1, strings.Join(issues, "; "))
		}
	}
	return nil
}
