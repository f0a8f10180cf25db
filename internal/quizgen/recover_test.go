package quizgen

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// questionJSON renders one well-formed wire-format question.
func questionJSON(i int) string {
	return fmt.Sprintf(`{"question":"Question number %d?","possibleAnswers":["a%d","b%d","c%d","d%d"],"correctAnswer":[%d],"explanation":"because","difficulty":5,"topic":"general"}`,
		i, i, i, i, i, i%4)
}

// validPayload renders a fully valid document with n questions.
func validPayload(n int) string {
	items := make([]string, n)
	for i := 0; i < n; i++ {
		items[i] = questionJSON(i + 1)
	}
	return `{"questions":[` + strings.Join(items, ",") + `]}`
}

func TestRecoverBatchDirect(t *testing.T) {
	batch, err := RecoverBatch(validPayload(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(batch))
	}
	for i, q := range batch {
		if q.Ordinal != i+1 {
			t.Errorf("question %d: ordinal %d, want %d", i, q.Ordinal, i+1)
		}
		if len(q.Options) != OptionCount {
			t.Errorf("question %d: %d options", i, len(q.Options))
		}
	}
}

func TestDirectParseIsIdempotent(t *testing.T) {
	// already-valid JSON must succeed at the first strategy
	if _, err := parseDirect(validPayload(2)); err != nil {
		t.Fatalf("direct strategy failed on valid input: %v", err)
	}
}

func TestCascadeFencedInput(t *testing.T) {
	fenced := "```json\n" + validPayload(2) + "\n```"

	if _, err := parseDirect(fenced); err == nil {
		t.Fatal("direct strategy should fail on fenced input")
	}
	if _, err := parseCleaned(fenced); err != nil {
		t.Fatalf("cleaned strategy should succeed on fenced input: %v", err)
	}

	batch, err := RecoverBatch(fenced)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(batch))
	}
}

func TestCascadeFencedInputKeepsColonsInText(t *testing.T) {
	// question text with a colon must survive the cleaned strategy with all
	// metadata intact, not fall through to the lossy pattern sweep
	doc := `{"questions":[{"question":"What is a 3:1 gear ratio?","possibleAnswers":["a","b","c","d"],"correctAnswer":[0],"explanation":"three turns in: one turn out","difficulty":4,"topic":"mechanics"}]}`
	fenced := "```json\n" + doc + "\n```"

	batch, err := parseCleaned(fenced)
	if err != nil {
		t.Fatalf("cleaned strategy failed on fenced input with colons: %v", err)
	}
	if got := batch[0].Text; got != "What is a 3:1 gear ratio?" {
		t.Fatalf("question text corrupted: %q", got)
	}
	if batch[0].Explanation != "three turns in: one turn out" {
		t.Fatalf("explanation lost: %q", batch[0].Explanation)
	}
	if batch[0].Topic != "mechanics" || batch[0].Difficulty != 4 {
		t.Fatalf("metadata lost: %+v", batch[0])
	}
}

func TestItemLevelRejectionInParseStrategies(t *testing.T) {
	// five items, exactly one with only three options: all parse-based
	// strategies must reject the whole batch
	bad := `{"question":"Broken one?","possibleAnswers":["a","b","c"],"correctAnswer":[0]}`
	items := []string{questionJSON(1), questionJSON(2), bad, questionJSON(3), questionJSON(4)}
	doc := `{"questions":[` + strings.Join(items, ",") + `]}`

	if _, err := parseDirect(doc); err == nil {
		t.Fatal("direct strategy accepted a batch with an invalid item")
	}
	if _, err := parseCleaned(doc); err == nil {
		t.Fatal("cleaned strategy accepted a batch with an invalid item")
	}
	if _, err := parseRepaired(doc); err == nil {
		t.Fatal("repaired strategy accepted a batch with an invalid item")
	}

	// the cascade still recovers the valid subset through the pattern sweep
	batch, err := RecoverBatch(doc)
	if err != nil {
		t.Fatalf("cascade failed entirely: %v", err)
	}
	if len(batch) != 4 {
		t.Fatalf("expected the 4 valid items, got %d", len(batch))
	}
}

func TestStructuralRepairRecoversProseWrappedDocument(t *testing.T) {
	text := "Sure! Here are your questions.\n" + validPayload(3) + "\nLet me know if you need more."

	if _, err := parseDirect(text); err == nil {
		t.Fatal("direct strategy should fail on prose-wrapped input")
	}
	if _, err := parseCleaned(text); err == nil {
		t.Fatal("cleaned strategy should fail on prose-wrapped input")
	}
	batch, err := parseRepaired(text)
	if err != nil {
		t.Fatalf("repaired strategy should succeed: %v", err)
	}
	if len(batch) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(batch))
	}
}

func TestPatternExtractionSkipsMalformedTriples(t *testing.T) {
	text := "The model rambles first.\n" +
		questionJSON(1) + "\nmore rambling\n" +
		questionJSON(2) + "\n" +
		`{"question":"Only three options?","possibleAnswers":["a","b","c"],"correctAnswer":[0]}` + "\n" +
		questionJSON(3)

	batch, err := extractByPattern(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch) != 3 {
		t.Fatalf("expected 3 well-formed questions, got %d", len(batch))
	}
	for _, q := range batch {
		if len(q.Options) != OptionCount {
			t.Errorf("question %q: %d options", q.Text, len(q.Options))
		}
		if len(q.CorrectIndices) == 0 {
			t.Errorf("question %q: no correct index", q.Text)
		}
	}
}

func TestPatternExtractionCap(t *testing.T) {
	batch, err := extractByPattern(validPayload(15))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch) != patternItemCap {
		t.Fatalf("expected cap of %d, got %d", patternItemCap, len(batch))
	}
}

func TestRecoverBatchExhausted(t *testing.T) {
	_, err := RecoverBatch("there is no quiz content in this sentence")
	var rec *RecoveryError
	if !errors.As(err, &rec) {
		t.Fatalf("expected *RecoveryError, got %T (%v)", err, err)
	}
	if len(rec.Reasons) != len(recoveryStrategies) {
		t.Fatalf("expected %d reasons, got %d", len(recoveryStrategies), len(rec.Reasons))
	}
}

func TestRecoverBatchNormalizesIndices(t *testing.T) {
	doc := `{"questions":[{"question":"Multi?","possibleAnswers":["a","b","c","d"],"correctAnswer":[2,0,2]}]}`
	batch, err := RecoverBatch(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := batch[0].CorrectIndices
	if len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Fatalf("expected deduplicated sorted [0 2], got %v", got)
	}
}
