package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/ramgerassy/ace-ai-sub000/internal/telemetry"
)

type Anthropic struct {
	Key     string
	BaseURL string
	Client  *http.Client
	DryRun  bool
}

func (c *Anthropic) Name() SourceName { return SourceClaude }

func (c *Anthropic) Generate(ctx context.Context, prompt string, cfg GenConfig) (RawResponse, error) {
	log := telemetry.L().With().Str("provider", string(c.Name())).Str("model", cfg.Model).Logger()

	if c.DryRun {
		log.Info().Msg("anthropic_dry_run_enabled")
		return PartsResponse(ContentPart{Kind: PartText, Value: dryRunPayload}), nil
	}

	body := map[string]any{
		"model":      cfg.Model,
		"max_tokens": cfg.MaxTokens,
		"messages": []map[string]any{
			{"role": "user", "content": prompt},
		},
	}
	if cfg.Temperature > 0 {
		body["temperature"] = cfg.Temperature
	}
	b, _ := json.Marshal(body)

	base := c.BaseURL
	if base == "" {
		base = "https://api.anthropic.com"
	}
	req, _ := http.NewRequestWithContext(ctx, "POST", base+"/v1/messages", bytes.NewReader(b))
	req.Header.Set("x-api-key", c.Key)
	req.Header.Set("anthropic-version", "2023-06-01")
	req.Header.Set("Content-Type", "application/json")

	t0 := time.Now()
	hc := c.Client
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("anthropic_request_failed")
		return RawResponse{}, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	log.Debug().Int("body_len", len(raw)).Int("latency_ms", int(time.Since(t0)/time.Millisecond)).Msg("anthropic_response")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error().Str("status", resp.Status).RawJSON("body", raw).Msg("anthropic_http_error")
		return RawResponse{}, errors.New("anthropic http " + resp.Status)
	}

	var out struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	_ = json.Unmarshal(raw, &out)
	if len(out.Content) == 0 {
		return RawResponse{}, errors.New("anthropic empty content")
	}

	// keep the block list as-is; thinking blocks and the like are dropped
	// downstream by the extractor, not here
	parts := make([]ContentPart, 0, len(out.Content))
	for _, blk := range out.Content {
		parts = append(parts, ContentPart{Kind: blk.Type, Value: blk.Text})
	}
	return PartsResponse(parts...), nil
}
