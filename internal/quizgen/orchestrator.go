package quizgen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ramgerassy/ace-ai-sub000/internal/providers"
)

// Strategy is one generation configuration the orchestrator may try: a
// provider client plus the model settings to call it with. The prompt shape
// is decided by attempt number, not stored here.
type Strategy struct {
	Client providers.Client
	Config providers.GenConfig
}

// Orchestrator drives bounded, strictly sequential generation attempts.
// Attempts never race: each strategy is chosen in response to the absence of
// a prior success, so parallelism would only multiply provider cost.
type Orchestrator struct {
	strategies []Strategy
	obs        Observer
}

func NewOrchestrator(strategies []Strategy, obs Observer) *Orchestrator {
	if obs == nil {
		obs = NopObserver{}
	}
	return &Orchestrator{strategies: strategies, obs: obs}
}

func (o *Orchestrator) strategyAt(i int) Strategy {
	if i < len(o.strategies) {
		return o.strategies[i]
	}
	return o.strategies[0]
}

// Generate runs up to len(strategies) attempts and returns either a batch of
// exactly req.Count questions, an *InsufficientQuestionsError carrying the
// largest valid partial batch seen, or a *GenerationExhaustedError. All
// bookkeeping lives in this call frame; concurrent calls share nothing.
//
// Cancelling ctx aborts the whole operation: the context error is returned
// and neither terminal outcome is reported.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (Batch, error) {
	if len(o.strategies) == 0 {
		return nil, errors.New("no generation strategies configured")
	}
	if req.Count <= 0 {
		return nil, errors.New("question count must be positive")
	}

	var best Batch
	attemptLog := make([]string, 0, len(o.strategies))

	for i := 0; i < len(o.strategies); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		st := o.strategyAt(i)
		attempt := i + 1
		o.obs.AttemptStarted(attempt, st.Client.Name(), st.Config.Model)

		batch, reason := o.runAttempt(ctx, st, req, i)
		if reason != "" {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			entry := fmt.Sprintf("attempt %d (%s): %s", attempt, st.Client.Name(), reason)
			attemptLog = append(attemptLog, entry)
			o.obs.AttemptFailed(attempt, reason)
			if i+1 < len(o.strategies) {
				o.obs.StrategyFallback(attempt+1, o.strategyAt(i+1).Client.Name())
			}
			continue
		}

		o.obs.AttemptRecovered(attempt, len(batch), req.Count)
		if len(batch) == req.Count {
			return batch, nil
		}

		attemptLog = append(attemptLog,
			fmt.Sprintf("attempt %d (%s): recovered %d of %d questions", attempt, st.Client.Name(), len(batch), req.Count))
		if len(batch) > len(best) {
			best = batch
		}
		if i+1 < len(o.strategies) {
			o.obs.StrategyFallback(attempt+1, o.strategyAt(i+1).Client.Name())
		}
	}

	if len(best) > 0 {
		return nil, &InsufficientQuestionsError{
			Requested:  req.Count,
			Achieved:   len(best),
			Partial:    best,
			AttemptLog: attemptLog,
		}
	}
	return nil, &GenerationExhaustedError{AttemptLog: attemptLog}
}

// runAttempt performs one call-extract-recover-validate pass. It returns the
// validated batch, or a non-empty reason describing why the attempt yielded
// nothing. Provider failures are contained here; they end the attempt, never
// the loop.
func (o *Orchestrator) runAttempt(ctx context.Context, st Strategy, req Request, attemptIdx int) (Batch, string) {
	prompt := BuildPrompt(req, attemptIdx)

	resp, err := st.Client.Generate(ctx, prompt, st.Config)
	if err != nil {
		return nil, fmt.Sprintf("provider call failed: %v", err)
	}

	text := ExtractText(resp)
	batch, err := RecoverBatch(text)
	if err != nil {
		return nil, err.Error()
	}

	// a model that over-delivers is trimmed, not failed
	if len(batch) > req.Count {
		batch = batch[:req.Count]
	}

	if ok, reasons := ValidateBatch(batch, req.Count); !ok {
		return nil, "schema invalid: " + strings.Join(reasons, "; ")
	}
	return batch, ""
}
