package quizgen

import "fmt"

// questionIssues lists every invariant a single question violates. Empty
// means well-formed. Explanation, difficulty and topic are metadata and never
// make a question invalid.
func questionIssues(q Question) []string {
	var issues []string
	if trimmedEmpty(q.Text) {
		issues = append(issues, "empty question text")
	}
	if len(q.Options) != OptionCount {
		issues = append(issues, fmt.Sprintf("has %d options, want %d", len(q.Options), OptionCount))
	}
	if len(q.CorrectIndices) == 0 {
		issues = append(issues, "no correct answer index")
	}
	for _, idx := range q.CorrectIndices {
		if idx < 0 || idx >= OptionCount {
			issues = append(issues, fmt.Sprintf("correct index %d out of range", idx))
		}
	}
	return issues
}

// ValidateBatch reports whether every question in the batch is individually
// well-formed, with a human-readable reason per violation. It deliberately
// does not compare len(b) against target: a short batch can still be a valid
// partial result, and count sufficiency belongs to the orchestrator.
func ValidateBatch(b Batch, target int) (bool, []string) {
	var reasons []string
	if len(b) == 0 {
		reasons = append(reasons, "batch is empty")
	}
	for i, q := range b {
		for _, issue := range questionIssues(q) {
			reasons = append(reasons, fmt.Sprintf("question %d: %s", i+1, issue))
		}
	}
	return len(reasons) == 0, reasons
}

func trimmedEmpty(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
