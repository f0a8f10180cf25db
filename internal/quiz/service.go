package quiz

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ramgerassy/ace-ai-sub000/internal/providers"
	"github.com/ramgerassy/ace-ai-sub000/internal/quizgen"
	"github.com/ramgerassy/ace-ai-sub000/internal/telemetry"
	"github.com/ramgerassy/ace-ai-sub000/internal/ws"
)

// ErrInFlight means an identical request is already being generated; the
// caller should wait for that one instead of double-spending provider calls.
var ErrInFlight = errors.New("identical generation already in flight")

// QuizResponse is the API shape for one quiz, fresh or persisted.
type QuizResponse struct {
	ID             string             `json:"id"`
	Subject        string             `json:"subject"`
	Topics         []string           `json:"topics,omitempty"`
	Level          string             `json:"level"`
	RequestedCount int                `json:"requestedCount"`
	AchievedCount  int                `json:"achievedCount"`
	Status         string             `json:"status"`
	Questions      []quizgen.Question `json:"questions"`
}

type Service struct {
	store          *Store
	rdb            *redis.Client
	strategies     []quizgen.Strategy
	attemptTimeout time.Duration
	cacheTTL       time.Duration
	lockTTL        time.Duration
}

func NewService(store *Store, rdb *redis.Client, strategies []quizgen.Strategy,
	attemptTimeout, cacheTTL, lockTTL time.Duration) *Service {
	return &Service{
		store:          store,
		rdb:            rdb,
		strategies:     strategies,
		attemptTimeout: attemptTimeout,
		cacheTTL:       cacheTTL,
		lockTTL:        lockTTL,
	}
}

// Generate runs the orchestrator for one request, persists whatever it
// produced, and caches full successes. On a partial result it returns both
// the persisted partial quiz and the *quizgen.InsufficientQuestionsError so
// the handler can surface the batch with a distinguishable status.
func (s *Service) Generate(ctx context.Context, requestID string, req quizgen.Request) (*QuizResponse, error) {
	log := telemetry.L().With().Str("req_id", requestID).Str("subject", req.Subject).Logger()
	room := ws.GenerationRoom(requestID)

	cacheKey := requestCacheKey(req)
	if resp := s.cachedResponse(ctx, cacheKey); resp != nil {
		log.Info().Str("quiz_id", resp.ID).Msg("generation_cache_hit")
		if ws.HasSubscribers(room) {
			ws.Broadcast(room, ws.EventCompleted, resp)
		}
		return resp, nil
	}

	// lock so identical concurrent requests don't both burn provider budget
	lockKey := "lock:gen:" + cacheKey
	ok, _ := s.rdb.SetNX(ctx, lockKey, requestID, s.lockTTL).Result()
	if !ok {
		log.Warn().Msg("generation_lock_exists")
		return nil, ErrInFlight
	}
	defer s.rdb.Del(context.WithoutCancel(ctx), lockKey)

	obs := quizgen.MultiObserver{
		quizgen.LogObserver{Log: log},
		ws.ProgressObserver{Room: room},
	}
	orch := quizgen.NewOrchestrator(s.timeoutStrategies(), obs)

	batch, err := orch.Generate(ctx, req)
	switch {
	case err == nil:
		resp, saveErr := s.persist(ctx, req, batch, StatusComplete)
		if saveErr != nil {
			log.Error().Err(saveErr).Msg("quiz_save_failed")
			return nil, saveErr
		}
		s.cacheResponse(ctx, cacheKey, resp)
		log.Info().Str("quiz_id", resp.ID).Int("questions", len(batch)).Msg("generation_complete")
		if ws.HasSubscribers(room) {
			ws.Broadcast(room, ws.EventCompleted, resp)
		}
		return resp, nil

	default:
		var insufficient *quizgen.InsufficientQuestionsError
		if errors.As(err, &insufficient) {
			resp, saveErr := s.persist(ctx, req, insufficient.Partial, StatusPartial)
			if saveErr != nil {
				log.Error().Err(saveErr).Msg("quiz_save_failed")
				return nil, saveErr
			}
			log.Warn().Str("quiz_id", resp.ID).
				Int("achieved", insufficient.Achieved).Int("requested", insufficient.Requested).
				Strs("attempts", insufficient.AttemptLog).Msg("generation_partial")
			ws.Broadcast(room, ws.EventPartial, resp)
			return resp, err
		}

		var exhausted *quizgen.GenerationExhaustedError
		if errors.As(err, &exhausted) {
			log.Error().Strs("attempts", exhausted.AttemptLog).Msg("generation_exhausted")
			ws.Broadcast(room, ws.EventFailed, map[string]any{"reason": "generation_exhausted"})
		}
		return nil, err
	}
}

func (s *Service) List(ctx context.Context, limit int) ([]QuizRow, error) {
	return s.store.ListQuizzes(ctx, limit)
}

func (s *Service) Get(ctx context.Context, publicID string) (QuizRow, quizgen.Batch, error) {
	return s.store.GetQuiz(ctx, publicID)
}

// timeoutStrategies wraps every provider client so each attempt gets its own
// deadline; a hung provider call must fail promptly so the loop can move to
// the next strategy.
func (s *Service) timeoutStrategies() []quizgen.Strategy {
	if s.attemptTimeout <= 0 {
		return s.strategies
	}
	out := make([]quizgen.Strategy, len(s.strategies))
	for i, st := range s.strategies {
		out[i] = quizgen.Strategy{
			Client: timeoutClient{inner: st.Client, timeout: s.attemptTimeout},
			Config: st.Config,
		}
	}
	return out
}

type timeoutClient struct {
	inner   providers.Client
	timeout time.Duration
}

func (t timeoutClient) Name() providers.SourceName { return t.inner.Name() }

func (t timeoutClient) Generate(ctx context.Context, prompt string, cfg providers.GenConfig) (providers.RawResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Generate(ctx, prompt, cfg)
}

func (s *Service) persist(ctx context.Context, req quizgen.Request, batch quizgen.Batch, status string) (*QuizResponse, error) {
	rec := QuizRow{
		PublicID:       uuid.New().String(),
		Subject:        req.Subject,
		Topics:         joinTopics(req.Topics),
		Level:          string(req.Level),
		RequestedCount: req.Count,
		AchievedCount:  len(batch),
		Status:         status,
	}
	if err := s.store.SaveQuiz(context.WithoutCancel(ctx), rec, batch); err != nil {
		return nil, err
	}
	return &QuizResponse{
		ID:             rec.PublicID,
		Subject:        rec.Subject,
		Topics:         req.Topics,
		Level:          rec.Level,
		RequestedCount: rec.RequestedCount,
		AchievedCount:  rec.AchievedCount,
		Status:         rec.Status,
		Questions:      batch,
	}, nil
}

func (s *Service) cachedResponse(ctx context.Context, key string) *QuizResponse {
	raw, err := s.rdb.Get(ctx, key).Result()
	if err != nil || raw == "" {
		return nil
	}
	var resp QuizResponse
	if json.Unmarshal([]byte(raw), &resp) != nil {
		return nil
	}
	return &resp
}

func (s *Service) cacheResponse(ctx context.Context, key string, resp *QuizResponse) {
	if s.cacheTTL <= 0 {
		return
	}
	b, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, b, s.cacheTTL).Err(); err != nil {
		log := telemetry.L()
		log.Warn().Err(err).Msg("generation_cache_set_err")
	}
}

// requestCacheKey hashes the normalized request so identical asks share one
// cache entry and one in-flight lock.
func requestCacheKey(req quizgen.Request) string {
	topics := make([]string, len(req.Topics))
	for i, t := range req.Topics {
		topics[i] = strings.ToLower(strings.TrimSpace(t))
	}
	payload, _ := json.Marshal(map[string]any{
		"subject": strings.ToLower(strings.TrimSpace(req.Subject)),
		"topics":  topics,
		"level":   req.Level,
		"count":   req.Count,
	})
	sum := sha256.Sum256(payload)
	return "quiz:gen:" + hex.EncodeToString(sum[:])
}
