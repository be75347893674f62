package replay

import (
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/eval"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/fog"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/signals"
)

// #region types
// Session is one refresh event to replay: the sub-scores it produced.
type Session struct {
	ID     string
	Scores signals.Scores
}

// ReplayConfig holds the eval settings applied before each simulated write.
type ReplayConfig struct {
	EvalConfig eval.EvalConfig
}

// DefaultReplayConfig returns the same eval settings the engine uses.
func DefaultReplayConfig() ReplayConfig {
	return ReplayConfig{EvalConfig: eval.DefaultEvalConfig()}
}

// Step captures the outcome of replaying one session.
type Step struct {
	SessionID string
	Action    string // "persist" | "eval_reject"
	Reason    string
	Result    fog.Result
	Eval      eval.EvalResult
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	TotalSessions int
	Persisted     int
	EvalRejects   int
	Transitions   int // bucket changes between consecutive persisted steps
	Buckets       map[fog.Bucket]int
	FinalState    fog.State
}

// #endregion types

// #region replay
// Replay runs each session through aggregate, smooth, bucket and eval in
// memory. A persisted step's fog value becomes the next session's previous;
// a rejected step leaves it unchanged. A nil start uses the default previous.
func Replay(start *float64, sessions []Session, config ReplayConfig) []Step {
	harness := eval.NewEvalHarness(config.EvalConfig)
	prev := start
	steps := make([]Step, 0, len(sessions))

	for _, s := range sessions {
		r := fog.Update(s.Scores, prev)
		ev := harness.Run(r)
		if !ev.Passed {
			steps = append(steps, Step{
				SessionID: s.ID,
				Action:    "eval_reject",
				Reason:    ev.Reason,
				Result:    r,
				Eval:      ev,
			})
			continue
		}

		v := r.State.FogValue
		prev = &v
		steps = append(steps, Step{
			SessionID: s.ID,
			Action:    "persist",
			Reason:    ev.Reason,
			Result:    r,
			Eval:      ev,
		})
	}

	return steps
}

// Summarize computes aggregate stats from replay steps.
func Summarize(steps []Step) ReplaySummary {
	s := ReplaySummary{
		TotalSessions: len(steps),
		Buckets:       make(map[fog.Bucket]int),
	}
	var last fog.Bucket
	for _, st := range steps {
		switch st.Action {
		case "persist":
			s.Persisted++
			b := st.Result.State.FogBucket
			s.Buckets[b]++
			if last != "" && b != last {
				s.Transitions++
			}
			last = b
			s.FinalState = st.Result.State
		case "eval_reject":
			s.EvalRejects++
		}
	}
	return s
}

// #endregion replay
