package quiz

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/ramgerassy/ace-ai-sub000/internal/config"
	"github.com/ramgerassy/ace-ai-sub000/internal/middleware"
	"github.com/ramgerassy/ace-ai-sub000/internal/providers"
	"github.com/ramgerassy/ace-ai-sub000/internal/quizgen"
	"github.com/ramgerassy/ace-ai-sub000/internal/quota"
	"github.com/ramgerassy/ace-ai-sub000/internal/telemetry"
)

// generationService is what the handler needs from the service layer; *Service
// satisfies it.
type generationService interface {
	Generate(ctx context.Context, requestID string, req quizgen.Request) (*QuizResponse, error)
	List(ctx context.Context, limit int) ([]QuizRow, error)
	Get(ctx context.Context, publicID string) (QuizRow, quizgen.Batch, error)
}

// quotaLimiter is the per-client generation budget; *quota.Checker satisfies it.
type quotaLimiter interface {
	Consume(ctx context.Context, clientKey string) error
	Refund(ctx context.Context, clientKey string)
	Used(ctx context.Context, clientKey string) int
}

type Handler struct {
	cfg   *config.Config
	svc   generationService
	quota quotaLimiter
}

// buildStrategies maps every configured provider to one generation strategy,
// in cost order. With a single configured provider the orchestrator would get
// exactly one attempt, so the first provider is appended again; the attempt
// number switches it to the simplified prompt shape.
func buildStrategies(cfg *config.Config) []quizgen.Strategy {
	var list []quizgen.Strategy
	if cfg.OpenAIKey != "" || cfg.ProviderDryRun {
		cli := providers.NewOpenAI(cfg.OpenAIKey, cfg.OpenAIRPS, cfg.OpenAIBurst)
		cli.DryRun = cfg.ProviderDryRun
		list = append(list, quizgen.Strategy{
			Client: cli,
			Config: providers.GenConfig{Model: cfg.OpenAIModel, Temperature: cfg.GenTemperature, MaxTokens: cfg.GenMaxTokens},
		})
	}
	if cfg.AnthropicKey != "" {
		list = append(list, quizgen.Strategy{
			Client: &providers.Anthropic{Key: cfg.AnthropicKey, DryRun: cfg.ProviderDryRun},
			Config: providers.GenConfig{Model: cfg.AnthropicModel, Temperature: cfg.GenTemperature, MaxTokens: cfg.GenMaxTokens},
		})
	}
	if cfg.GeminiKey != "" {
		list = append(list, quizgen.Strategy{
			Client: &providers.Gemini{Key: cfg.GeminiKey, DryRun: cfg.ProviderDryRun},
			Config: providers.GenConfig{Model: cfg.GeminiModel, Temperature: cfg.GenTemperature, MaxTokens: cfg.GenMaxTokens},
		})
	}

	// retry with a lower temperature before giving up entirely
	for len(list) > 0 && len(list) < 3 {
		again := list[0]
		again.Config.Temperature = 0.2
		list = append(list, again)
	}
	return list
}

func NewHandler(cfg *config.Config, db *sqlx.DB, rdb *redis.Client) *Handler {
	svc := NewService(NewStore(db), rdb, buildStrategies(cfg),
		cfg.GenAttemptTimeout, cfg.GenCacheTTL, cfg.GenLockTTL)
	return &Handler{
		cfg:   cfg,
		svc:   svc,
		quota: quota.NewChecker(rdb, cfg.GenDailyQuota),
	}
}

type generateBody struct {
	Subject      string   `json:"subject"`
	Topics       []string `json:"topics"`
	Level        string   `json:"level"`
	NumQuestions int      `json:"numQuestions"`
}

func (h *Handler) Generate(c *fiber.Ctx) error {
	rid, _ := c.Locals(middleware.ReqIDKey).(string)
	log := telemetry.L().With().Str("req_id", rid).Logger()

	var body generateBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON body"})
	}

	req, err := h.validate(body)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := h.quota.Consume(c.UserContext(), c.IP()); err != nil {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": "daily generation quota exceeded",
			"used":  h.quota.Used(c.UserContext(), c.IP()),
			"limit": h.cfg.GenDailyQuota,
		})
	}

	resp, err := h.svc.Generate(c.UserContext(), rid, req)
	if err == nil {
		return c.JSON(resp)
	}

	var insufficient *quizgen.InsufficientQuestionsError
	if errors.As(err, &insufficient) {
		// partial content: the caller gets everything we did recover
		return c.Status(fiber.StatusPartialContent).JSON(fiber.Map{
			"error":          "insufficient_questions",
			"requestedCount": insufficient.Requested,
			"achievedCount":  insufficient.Achieved,
			"hint":           insufficient.Hint(),
			"quiz":           resp,
		})
	}

	var exhausted *quizgen.GenerationExhaustedError
	if errors.As(err, &exhausted) {
		// the caller got nothing; give the quota unit back
		h.quota.Refund(c.UserContext(), c.IP())
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "generation_exhausted",
			"message": "no questions could be generated; try again with different parameters",
		})
	}

	if errors.Is(err, ErrInFlight) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "an identical request is already being processed"})
	}

	log.Error().Err(err).Msg("generate_failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}

func (h *Handler) validate(body generateBody) (quizgen.Request, error) {
	subject := strings.TrimSpace(body.Subject)
	if subject == "" {
		return quizgen.Request{}, errors.New("subject is required")
	}
	level, ok := quizgen.ParseLevel(body.Level)
	if !ok {
		return quizgen.Request{}, errors.New("level must be easy, intermediate or hard")
	}
	if body.NumQuestions < 1 || body.NumQuestions > h.cfg.GenMaxQuestions {
		return quizgen.Request{}, errors.New("numQuestions out of range")
	}
	topics := make([]string, 0, len(body.Topics))
	for _, t := range body.Topics {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
	}
	return quizgen.Request{
		Subject: subject,
		Topics:  topics,
		Level:   level,
		Count:   body.NumQuestions,
	}, nil
}

func (h *Handler) ListQuizzes(c *fiber.Ctx) error {
	rows, err := h.svc.List(c.UserContext(), c.QueryInt("limit", 50))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "db error"})
	}
	out := make([]fiber.Map, 0, len(rows))
	for _, r := range rows {
		out = append(out, fiber.Map{
			"id":             r.PublicID,
			"subject":        r.Subject,
			"topics":         splitTopics(r.Topics),
			"level":          r.Level,
			"requestedCount": r.RequestedCount,
			"achievedCount":  r.AchievedCount,
			"status":         r.Status,
			"createdAt":      r.CreatedAt,
		})
	}
	return c.JSON(out)
}

func (h *Handler) GetQuiz(c *fiber.Ctx) error {
	rec, batch, err := h.svc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	}
	return c.JSON(QuizResponse{
		ID:             rec.PublicID,
		Subject:        rec.Subject,
		Topics:         splitTopics(rec.Topics),
		Level:          rec.Level,
		RequestedCount: rec.RequestedCount,
		AchievedCount:  rec.AchievedCount,
		Status:         rec.Status,
		Questions:      batch,
	})
}
