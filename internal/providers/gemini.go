package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ramgerassy/ace-ai-sub000/internal/telemetry"
)

type Gemini struct {
	Key     string
	BaseURL string
	Client  *http.Client
	DryRun  bool
}

func (c *Gemini) Name() SourceName { return SourceGemini }

func (c *Gemini) Generate(ctx context.Context, prompt string, cfg GenConfig) (RawResponse, error) {
	log := telemetry.L().With().Str("provider", string(c.Name())).Str("model", cfg.Model).Logger()

	if c.DryRun {
		log.Info().Msg("gemini_dry_run_enabled")
		return PartsResponse(ContentPart{Kind: PartText, Value: dryRunPayload}), nil
	}

	body := map[string]any{
		"contents": []any{
			map[string]any{
				"role": "user",
				"parts": []any{
					map[string]string{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]any{
			"temperature":      cfg.Temperature,
			"maxOutputTokens":  cfg.MaxTokens,
			"responseMimeType": "application/json",
		},
	}
	b, err := json.Marshal(body)
	if err != nil {
		return RawResponse{}, err
	}

	base := c.BaseURL
	if base == "" {
		base = "https://generativelanguage.googleapis.com"
	}
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", base, cfg.Model)
	req, _ := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-goog-api-key", c.Key)

	t0 := time.Now()
	hc := c.Client
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("gemini_request_failed")
		return RawResponse{}, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	log.Debug().Int("status_code", resp.StatusCode).Int("body_len", len(raw)).
		Int("latency_ms", int(time.Since(t0)/time.Millisecond)).Msg("gemini_response")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error().Str("status", resp.Status).RawJSON("body", raw).Msg("gemini_http_error")
		return RawResponse{}, errors.New("gemini http " + resp.Status)
	}

	var out struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
			FinishReason string `json:"finishReason"`
		} `json:"candidates"`
		PromptFeedback *struct {
			BlockReason string `json:"blockReason"`
		} `json:"promptFeedback"`
	}
	_ = json.Unmarshal(raw, &out)

	if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
		return RawResponse{}, errors.New("gemini blocked: " + out.PromptFeedback.BlockReason)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return RawResponse{}, errors.New("gemini empty candidates")
	}

	parts := make([]ContentPart, 0, len(out.Candidates[0].Content.Parts))
	for _, p := range out.Candidates[0].Content.Parts {
		parts = append(parts, ContentPart{Kind: PartText, Value: p.Text})
	}
	return PartsResponse(parts...), nil
}
