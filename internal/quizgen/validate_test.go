package quizgen

import (
	"strings"
	"testing"
)

func validQuestion() Question {
	return Question{
		Text:           "What does TCP stand for?",
		Options:        []string{"a", "b", "c", "d"},
		CorrectIndices: []int{0},
	}
}

func TestValidateBatchAcceptsShortBatch(t *testing.T) {
	b := Batch{validQuestion(), validQuestion()}
	ok, reasons := ValidateBatch(b, 10)
	if !ok {
		t.Fatalf("a valid short batch must pass: %v", reasons)
	}
}

func TestValidateBatchRejectsEmpty(t *testing.T) {
	ok, reasons := ValidateBatch(nil, 5)
	if ok || len(reasons) == 0 {
		t.Fatal("empty batch must fail with a reason")
	}
}

func TestValidateBatchPerQuestionReasons(t *testing.T) {
	bad := validQuestion()
	bad.Options = bad.Options[:3]
	b := Batch{validQuestion(), bad, validQuestion()}

	ok, reasons := ValidateBatch(b, 3)
	if ok {
		t.Fatal("batch with one invalid question must fail")
	}
	if len(reasons) != 1 {
		t.Fatalf("expected exactly one reason, got %v", reasons)
	}
	if !strings.Contains(reasons[0], "question 2") {
		t.Fatalf("reason should name the offending question: %q", reasons[0])
	}
}

func TestQuestionIssues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Question)
		want   string
	}{
		{"blank text", func(q *Question) { q.Text = "   \n" }, "empty question text"},
		{"too few options", func(q *Question) { q.Options = q.Options[:2] }, "want 4"},
		{"too many options", func(q *Question) { q.Options = append(q.Options, "e") }, "want 4"},
		{"no correct index", func(q *Question) { q.CorrectIndices = nil }, "no correct answer"},
		{"index out of range", func(q *Question) { q.CorrectIndices = []int{4} }, "out of range"},
		{"negative index", func(q *Question) { q.CorrectIndices = []int{-1} }, "out of range"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := validQuestion()
			tc.mutate(&q)
			issues := questionIssues(q)
			if len(issues) == 0 {
				t.Fatal("expected at least one issue")
			}
			found := false
			for _, issue := range issues {
				if strings.Contains(issue, tc.want) {
					found = true
				}
			}
			if !found {
				t.Fatalf("no issue containing %q in %v", tc.want, issues)
			}
		})
	}
}

func TestQuestionIssuesMetadataOptional(t *testing.T) {
	q := validQuestion()
	q.Explanation = ""
	q.Difficulty = 0
	q.Topic = ""
	if issues := questionIssues(q); len(issues) != 0 {
		t.Fatalf("metadata must not affect validity: %v", issues)
	}
}
