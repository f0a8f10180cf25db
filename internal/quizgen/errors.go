package quizgen

import "fmt"

// InsufficientQuestionsError is the recoverable terminal outcome: no attempt
// reached the requested count, but the best attempt produced a usable partial
// batch. Callers are expected to surface Partial to the requester, not drop
// it. AttemptLog is diagnostic material for operators only.
type InsufficientQuestionsError struct {
	Requested  int
	Achieved   int
	Partial    Batch
	AttemptLog []string
}

func (e *InsufficientQuestionsError) Error() string {
	return fmt.Sprintf("generated %d of %d requested questions", e.Achieved, e.Requested)
}

// Hint is the user-facing remediation suggestion.
func (e *InsufficientQuestionsError) Hint() string {
	return "try a broader subject, fewer questions, or different topics"
}

// GenerationExhaustedError is the fatal terminal outcome: every attempt
// failed or produced nothing valid. There is no partial data to surface;
// the caller should ask the user to change parameters rather than retry
// automatically.
type GenerationExhaustedError struct {
	AttemptLog []string
}

func (e *GenerationExhaustedError) Error() string {
	return fmt.Sprintf("generation exhausted after %d attempts", len(e.AttemptLog))
}
