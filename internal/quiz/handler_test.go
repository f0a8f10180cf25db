package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/ramgerassy/ace-ai-sub000/internal/config"
	"github.com/ramgerassy/ace-ai-sub000/internal/quizgen"
	"github.com/ramgerassy/ace-ai-sub000/internal/quota"
)

func testHandler() *Handler {
	return &Handler{cfg: &config.Config{GenMaxQuestions: 10}}
}

func TestValidateAcceptsWellFormedBody(t *testing.T) {
	h := testHandler()
	req, err := h.validate(generateBody{
		Subject:      "  computer networks ",
		Topics:       []string{" tcp ", "", "udp"},
		Level:        "Intermediate",
		NumQuestions: 5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Subject != "computer networks" {
		t.Fatalf("subject not trimmed: %q", req.Subject)
	}
	if len(req.Topics) != 2 {
		t.Fatalf("empty topics not dropped: %v", req.Topics)
	}
	if req.Level != quizgen.LevelIntermediate {
		t.Fatalf("level %q", req.Level)
	}
}

func TestValidateRejections(t *testing.T) {
	h := testHandler()
	cases := []struct {
		name string
		body generateBody
	}{
		{"empty subject", generateBody{Subject: "  ", Level: "easy", NumQuestions: 5}},
		{"bad level", generateBody{Subject: "math", Level: "impossible", NumQuestions: 5}},
		{"zero questions", generateBody{Subject: "math", Level: "easy", NumQuestions: 0}},
		{"too many questions", generateBody{Subject: "math", Level: "easy", NumQuestions: 11}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := h.validate(tc.body); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestBuildStrategiesPadsSingleProvider(t *testing.T) {
	cfg := &config.Config{ProviderDryRun: true, OpenAIModel: "gpt-4o-mini", GenTemperature: 0.7, GenMaxTokens: 2048}
	list := buildStrategies(cfg)
	if len(list) != 3 {
		t.Fatalf("expected 3 strategies, got %d", len(list))
	}
	if list[1].Config.Temperature == list[0].Config.Temperature {
		t.Fatal("padded retries should lower the temperature")
	}
}

func TestBuildStrategiesNoProviders(t *testing.T) {
	if list := buildStrategies(&config.Config{}); len(list) != 0 {
		t.Fatalf("expected no strategies, got %d", len(list))
	}
}

type scriptedService struct {
	resp  *QuizResponse
	err   error
	calls int
}

func (s *scriptedService) Generate(context.Context, string, quizgen.Request) (*QuizResponse, error) {
	s.calls++
	return s.resp, s.err
}

func (s *scriptedService) List(context.Context, int) ([]QuizRow, error) { return nil, nil }

func (s *scriptedService) Get(context.Context, string) (QuizRow, quizgen.Batch, error) {
	return QuizRow{}, nil, errors.New("not found")
}

type recordingQuota struct {
	consumeErr error
	refunds    int
}

func (q *recordingQuota) Consume(context.Context, string) error { return q.consumeErr }
func (q *recordingQuota) Refund(context.Context, string)        { q.refunds++ }
func (q *recordingQuota) Used(context.Context, string) int      { return 5 }

func generateApp(svc generationService, q quotaLimiter) *fiber.App {
	h := &Handler{
		cfg:   &config.Config{GenMaxQuestions: 10, GenDailyQuota: 50},
		svc:   svc,
		quota: q,
	}
	app := fiber.New()
	app.Post("/api/v1/quiz/generate", h.Generate)
	return app
}

func postGenerate(t *testing.T, app *fiber.App) *http.Response {
	t.Helper()
	body := `{"subject":"mechanics","topics":["gears"],"level":"easy","numQuestions":5}`
	req := httptest.NewRequest("POST", "/api/v1/quiz/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return res
}

func TestGenerateMapsSuccessTo200(t *testing.T) {
	svc := &scriptedService{resp: &QuizResponse{ID: "q-1", Status: StatusComplete}}
	res := postGenerate(t, generateApp(svc, &recordingQuota{}))

	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("status %d, want 200", res.StatusCode)
	}
	var out QuizResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if out.ID != "q-1" || out.Status != StatusComplete {
		t.Fatalf("unexpected body: %+v", out)
	}
}

func TestGenerateMapsPartialTo206(t *testing.T) {
	svc := &scriptedService{
		resp: &QuizResponse{ID: "q-2", Status: StatusPartial, RequestedCount: 5, AchievedCount: 3},
		err:  &quizgen.InsufficientQuestionsError{Requested: 5, Achieved: 3},
	}
	res := postGenerate(t, generateApp(svc, &recordingQuota{}))

	if res.StatusCode != fiber.StatusPartialContent {
		t.Fatalf("status %d, want 206", res.StatusCode)
	}
	var out struct {
		Error          string        `json:"error"`
		RequestedCount int           `json:"requestedCount"`
		AchievedCount  int           `json:"achievedCount"`
		Hint           string        `json:"hint"`
		Quiz           *QuizResponse `json:"quiz"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if out.Error != "insufficient_questions" || out.RequestedCount != 5 || out.AchievedCount != 3 {
		t.Fatalf("unexpected body: %+v", out)
	}
	if out.Hint == "" {
		t.Fatal("206 body should carry a remediation hint")
	}
	if out.Quiz == nil || out.Quiz.ID != "q-2" {
		t.Fatalf("206 body should carry the persisted partial quiz, got %+v", out.Quiz)
	}
}

func TestGenerateMapsExhaustedTo502AndRefundsQuota(t *testing.T) {
	svc := &scriptedService{err: &quizgen.GenerationExhaustedError{AttemptLog: []string{"a", "b", "c"}}}
	q := &recordingQuota{}
	res := postGenerate(t, generateApp(svc, q))

	if res.StatusCode != fiber.StatusBadGateway {
		t.Fatalf("status %d, want 502", res.StatusCode)
	}
	if q.refunds != 1 {
		t.Fatalf("expected the quota unit back, refunds=%d", q.refunds)
	}
}

func TestGenerateMapsInFlightTo409(t *testing.T) {
	svc := &scriptedService{err: ErrInFlight}
	res := postGenerate(t, generateApp(svc, &recordingQuota{}))

	if res.StatusCode != fiber.StatusConflict {
		t.Fatalf("status %d, want 409", res.StatusCode)
	}
}

func TestGenerateQuotaExceededIs429(t *testing.T) {
	svc := &scriptedService{}
	res := postGenerate(t, generateApp(svc, &recordingQuota{consumeErr: quota.ErrQuotaExceeded}))

	if res.StatusCode != fiber.StatusTooManyRequests {
		t.Fatalf("status %d, want 429", res.StatusCode)
	}
	if svc.calls != 0 {
		t.Fatal("generation must not run once the quota is spent")
	}
	var out struct {
		Used  int `json:"used"`
		Limit int `json:"limit"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if out.Used != 5 || out.Limit != 50 {
		t.Fatalf("unexpected quota body: %+v", out)
	}
}

func TestRequestCacheKeyNormalization(t *testing.T) {
	a := requestCacheKey(quizgen.Request{Subject: "History", Topics: []string{" WW2 "}, Level: quizgen.LevelEasy, Count: 5})
	b := requestCacheKey(quizgen.Request{Subject: "history", Topics: []string{"ww2"}, Level: quizgen.LevelEasy, Count: 5})
	if a != b {
		t.Fatal("equivalent requests should share a cache key")
	}
	c := requestCacheKey(quizgen.Request{Subject: "history", Topics: []string{"ww2"}, Level: quizgen.LevelEasy, Count: 6})
	if a == c {
		t.Fatal("different counts must not share a cache key")
	}
}
