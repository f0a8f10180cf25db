package ws

import (
	"github.com/ramgerassy/ace-ai-sub000/internal/providers"
)

// ProgressObserver streams one generation request's retry-loop events into
// its websocket room. It satisfies quizgen.Observer.
type ProgressObserver struct {
	Room string
}

func (o ProgressObserver) AttemptStarted(attempt int, source providers.SourceName, model string) {
	Broadcast(o.Room, EventAttemptStarted, map[string]any{
		"attempt":  attempt,
		"provider": string(source),
		"model":    model,
	})
}

func (o ProgressObserver) AttemptFailed(attempt int, reason string) {
	Broadcast(o.Room, EventAttemptFailed, map[string]any{
		"attempt": attempt,
		"reason":  reason,
	})
}

func (o ProgressObserver) AttemptRecovered(attempt, got, want int) {
	Broadcast(o.Room, EventAttemptRecovered, map[string]any{
		"attempt": attempt,
		"got":     got,
		"want":    want,
	})
}

func (o ProgressObserver) StrategyFallback(next int, source providers.SourceName) {
	Broadcast(o.Room, EventStrategyFallback, map[string]any{
		"next_attempt": next,
		"provider":     string(source),
	})
}
