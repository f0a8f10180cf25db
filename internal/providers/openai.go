package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/ramgerassy/ace-ai-sub000/internal/telemetry"
)

type OpenAI struct {
	Key     string
	BaseURL string
	Client  *http.Client
	Limiter *rate.Limiter
	DryRun  bool
}

// NewOpenAI builds the client with a request-per-second budget so a burst of
// generation attempts cannot trip the provider's rate limits.
func NewOpenAI(key string, rps, burst int) *OpenAI {
	if rps <= 0 {
		rps = 2
	}
	if burst <= 0 {
		burst = 2
	}
	return &OpenAI{
		Key:     key,
		Client:  &http.Client{Timeout: 90 * time.Second},
		Limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (c *OpenAI) Name() SourceName { return SourceOpenAI }

func (c *OpenAI) Generate(ctx context.Context, prompt string, cfg GenConfig) (RawResponse, error) {
	log := telemetry.L().With().Str("provider", string(c.Name())).Str("model", cfg.Model).Logger()

	if c.DryRun {
		log.Info().Msg("openai_dry_run_enabled")
		return TextResponse(dryRunPayload), nil
	}

	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return RawResponse{}, err
		}
	}

	body := map[string]any{
		"model":             cfg.Model,
		"input":             prompt,
		"temperature":       cfg.Temperature,
		"max_output_tokens": cfg.MaxTokens,
	}
	b, _ := json.Marshal(body)

	base := c.BaseURL
	if base == "" {
		base = "https://api.openai.com"
	}
	req, _ := http.NewRequestWithContext(ctx, "POST", base+"/v1/responses", bytes.NewReader(b))
	req.Header.Set("Authorization", "Bearer "+c.Key)
	req.Header.Set("Content-Type", "application/json")

	t0 := time.Now()
	resp, err := c.httpClient().Do(req)
	if err != nil {
		log.Error().Err(err).Msg("openai_request_failed")
		return RawResponse{}, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	log.Debug().Int("body_len", len(raw)).Int("latency_ms", int(time.Since(t0)/time.Millisecond)).Msg("openai_response")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error().Str("status", resp.Status).RawJSON("body", raw).Msg("openai_http_error")
		return RawResponse{}, errors.New("openai http " + resp.Status)
	}

	return decodeOpenAIContent(raw)
}

func (c *OpenAI) httpClient() *http.Client {
	if c.Client != nil {
		return c.Client
	}
	return http.DefaultClient
}

// decodeOpenAIContent keeps the envelope shape: the Responses API top-level
// output_text is a plain string, the output[].content[] form is a part list,
// and the chat-completions fallback is a plain string again.
func decodeOpenAIContent(raw []byte) (RawResponse, error) {
	var r1 struct {
		OutputText string `json:"output_text"`
	}
	if json.Unmarshal(raw, &r1) == nil && r1.OutputText != "" {
		return TextResponse(r1.OutputText), nil
	}

	var r2 struct {
		Output []struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
	}
	if json.Unmarshal(raw, &r2) == nil && len(r2.Output) > 0 {
		var parts []ContentPart
		for _, out := range r2.Output {
			for _, c := range out.Content {
				kind := c.Type
				if kind == "output_text" {
					kind = PartText
				}
				parts = append(parts, ContentPart{Kind: kind, Value: c.Text})
			}
		}
		if len(parts) > 0 {
			return PartsResponse(parts...), nil
		}
	}

	var r3 struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if json.Unmarshal(raw, &r3) == nil && len(r3.Choices) > 0 {
		return TextResponse(r3.Choices[0].Message.Content), nil
	}

	return RawResponse{}, errors.New("openai: empty content")
}
