package quizgen

import (
	"github.com/rs/zerolog"

	"github.com/ramgerassy/ace-ai-sub000/internal/providers"
)

// Observer receives structured events from the retry loop. Injecting it
// keeps the orchestrator's decision logic testable without capturing log
// output, and lets callers stream progress (for example over a websocket).
type Observer interface {
	AttemptStarted(attempt int, source providers.SourceName, model string)
	AttemptFailed(attempt int, reason string)
	AttemptRecovered(attempt, got, want int)
	StrategyFallback(next int, source providers.SourceName)
}

type NopObserver struct{}

func (NopObserver) AttemptStarted(int, providers.SourceName, string) {}
func (NopObserver) AttemptFailed(int, string)                        {}
func (NopObserver) AttemptRecovered(int, int, int)                   {}
func (NopObserver) StrategyFallback(int, providers.SourceName)       {}

// LogObserver writes every event to a zerolog logger.
type LogObserver struct {
	Log zerolog.Logger
}

func (o LogObserver) AttemptStarted(attempt int, source providers.SourceName, model string) {
	o.Log.Info().Int("attempt", attempt).Str("provider", string(source)).Str("model", model).Msg("attempt_started")
}

func (o LogObserver) AttemptFailed(attempt int, reason string) {
	o.Log.Warn().Int("attempt", attempt).Str("reason", reason).Msg("attempt_failed")
}

func (o LogObserver) AttemptRecovered(attempt, got, want int) {
	o.Log.Info().Int("attempt", attempt).Int("got", got).Int("want", want).Msg("attempt_recovered")
}

func (o LogObserver) StrategyFallback(next int, source providers.SourceName) {
	o.Log.Info().Int("next_attempt", next).Str("provider", string(source)).Msg("strategy_fallback")
}

// MultiObserver fans events out to several observers.
type MultiObserver []Observer

func (m MultiObserver) AttemptStarted(attempt int, source providers.SourceName, model string) {
	for _, o := range m {
		o.AttemptStarted(attempt, source, model)
	}
}

func (m MultiObserver) AttemptFailed(attempt int, reason string) {
	for _, o := range m {
		o.AttemptFailed(attempt, reason)
	}
}

func (m MultiObserver) AttemptRecovered(attempt, got, want int) {
	for _, o := range m {
		o.AttemptRecovered(attempt, got, want)
	}
}

func (m MultiObserver) StrategyFallback(next int, source providers.SourceName) {
	for _, o := range m {
		o.StrategyFallback(next, source)
	}
}
