package eval

import (
	"math"
	"strings"
	"testing"

	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/fog"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/signals"
)

func metric(r EvalResult, name string) (EvalMetric, bool) {
	for _, m := range r.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return EvalMetric{}, false
}

func TestEvalPassesOnComputedResult(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	r := fog.Update(signals.Scores{Checkins: 0.5, Alignment: 1}, nil)

	result := h.Run(r)

	if !result.Passed {
		t.Fatalf("expected pass, got fail: %s", result.Reason)
	}
	if len(result.Metrics) != 10 {
		t.Fatalf("expected 10 metrics, got %d", len(result.Metrics))
	}
}

func TestEvalFailsOnNaNScore(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	r := fog.Update(signals.Scores{}, nil)
	r.Scores.Reflection = math.NaN()

	result := h.Run(r)

	if result.Passed {
		t.Fatal("expected fail on NaN sub-score")
	}
	if !strings.Contains(result.Reason, "reflection") {
		t.Errorf("expected reason to name reflection, got %q", result.Reason)
	}
}

func TestEvalFailsOnBucketMismatch(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	r := fog.Update(signals.Scores{}, nil)
	r.State.FogBucket = fog.BucketClear

	result := h.Run(r)

	if result.Passed {
		t.Fatal("expected fail on bucket mismatch")
	}
	m, ok := metric(result, "bucket")
	if !ok || m.Pass {
		t.Fatalf("expected failing bucket metric, got %+v", m)
	}
}

func TestEvalCountsMultipleFailures(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	r := fog.Update(signals.Scores{}, nil)
	r.Score = 2
	r.State.FogValue = -1

	result := h.Run(r)

	if result.Passed {
		t.Fatal("expected fail")
	}
	if !strings.Contains(result.Reason, "checks") {
		t.Errorf("expected multi-failure reason, got %q", result.Reason)
	}
}

func TestEvalJumpIsInformational(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	r := fog.Update(signals.Scores{}, nil)
	r.Previous = 0
	r.State = fog.State{FogValue: 0.9, FogBucket: fog.BucketHeavy}

	result := h.Run(r)

	if !result.Passed {
		t.Fatalf("jump should not fail the result: %s", result.Reason)
	}
	m, _ := metric(result, "fog_jump")
	if m.Pass {
		t.Error("expected jump metric to be flagged")
	}
}

func TestEvalSmoothedJumpWithinAlpha(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	prev := 0.0
	r := fog.Update(signals.Scores{}, &prev)

	m, _ := metric(h.Run(r), "fog_jump")
	if !m.Pass {
		t.Errorf("smoothed jump %f should be within alpha", m.Value)
	}
}
