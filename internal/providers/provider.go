package providers

import (
	"context"
)

type SourceName string

const (
	SourceOpenAI SourceName = "OPENAI"
	SourceClaude SourceName = "CLAUDE"
	SourceGemini SourceName = "GEMINI"
)

// GenConfig is the per-call model configuration. One generation strategy is a
// GenConfig plus a prompt shape; the orchestrator owns the pairing.
type GenConfig struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Client is the external generation capability: submit a prompt and a model
// configuration, receive untrusted text or fail. A failed call is never
// retried here; the orchestrator decides what a failure means.
type Client interface {
	Name() SourceName
	Generate(ctx context.Context, prompt string, cfg GenConfig) (RawResponse, error)
}

const PartText = "text"

// ContentPart is one element of a multi-part model response. Only parts with
// Kind == PartText carry question content.
type ContentPart struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

type responseKind int

const (
	kindNone responseKind = iota
	kindText
	kindParts
)

// RawResponse is a tagged union over the two content shapes providers return:
// a plain string, or an ordered list of typed parts. The zero value carries
// nothing and extracts to the empty string.
type RawResponse struct {
	kind  responseKind
	text  string
	parts []ContentPart
}

func TextResponse(s string) RawResponse {
	return RawResponse{kind: kindText, text: s}
}

func PartsResponse(parts ...ContentPart) RawResponse {
	return RawResponse{kind: kindParts, parts: parts}
}

// AsText reports whether the response is a plain string, and returns it.
func (r RawResponse) AsText() (string, bool) {
	return r.text, r.kind == kindText
}

// AsParts reports whether the response is a part list, and returns it.
func (r RawResponse) AsParts() ([]ContentPart, bool) {
	return r.parts, r.kind == kindParts
}
