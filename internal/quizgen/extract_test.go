package quizgen

import (
	"testing"

	"github.com/ramgerassy/ace-ai-sub000/internal/providers"
)

func TestExtractTextPlainString(t *testing.T) {
	r := providers.TextResponse("hello")
	if got := ExtractText(r); got != "hello" {
		t.Fatalf("got %q", got)
	}
}

func TestExtractTextConcatenatesTextParts(t *testing.T) {
	r := providers.PartsResponse(
		providers.ContentPart{Kind: "thinking", Value: "let me think"},
		providers.ContentPart{Kind: providers.PartText, Value: `{"questions":`},
		providers.ContentPart{Kind: "tool_use", Value: "ignored"},
		providers.ContentPart{Kind: providers.PartText, Value: `[]}`},
	)
	want := `{"questions":[]}`
	if got := ExtractText(r); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestExtractTextZeroValue(t *testing.T) {
	if got := ExtractText(providers.RawResponse{}); got != "" {
		t.Fatalf("zero value should extract to empty string, got %q", got)
	}
}

func TestExtractTextEmptyString(t *testing.T) {
	// extraction never fails; an empty payload is still a string
	if got := ExtractText(providers.TextResponse("")); got != "" {
		t.Fatalf("got %q", got)
	}
}
