package eval

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/fog"
)

// #region eval-harness
// EvalHarness validates a computed result before it is persisted.
type EvalHarness struct {
	config EvalConfig
}

// NewEvalHarness creates an eval harness with the given configuration.
func NewEvalHarness(config EvalConfig) *EvalHarness {
	return &EvalHarness{config: config}
}

// Run checks that every number in r is finite and in [0, 1] and that the
// bucket agrees with the fog value.
func (h *EvalHarness) Run(r fog.Result) EvalResult {
	var metrics []EvalMetric
	var failReasons []string

	// 1. Range checks
	ranged := []struct {
		name  string
		value float64
	}{
		{"checkins", r.Scores.Checkins},
		{"recovery", r.Scores.Recovery},
		{"alignment", r.Scores.Alignment},
		{"reflection", r.Scores.Reflection},
		{"consistency", r.Scores.Consistency},
		{"clarity_score", r.Score},
		{"previous_fog", r.Previous},
		{"fog_value", r.State.FogValue},
	}
	for _, c := range ranged {
		pass := h.inUnit(c.value)
		metrics = append(metrics, EvalMetric{Name: c.name, Value: c.value, Pass: pass})
		if !pass {
			failReasons = append(failReasons, fmt.Sprintf("%s %.6f outside [0, 1]", c.name, c.value))
		}
	}

	// 2. Bucket consistency
	want := fog.Bucketize(r.State.FogValue)
	bucketPass := r.State.FogBucket == want
	metrics = append(metrics, EvalMetric{Name: "bucket", Value: r.State.FogValue, Pass: bucketPass})
	if !bucketPass {
		failReasons = append(failReasons, fmt.Sprintf("bucket %s does not match fog %.6f (want %s)", r.State.FogBucket, r.State.FogValue, want))
	}

	// 3. Jump size: informational, never fails
	jump := math.Abs(r.State.FogValue - r.Previous)
	metrics = append(metrics, EvalMetric{
		Name:  "fog_jump",
		Value: jump,
		Pass:  jump <= h.config.MaxFogJump+h.config.Epsilon,
	})

	passed := len(failReasons) == 0
	reason := "all checks passed"
	if !passed {
		reason = fmt.Sprintf("eval failed: %s", failReasons[0])
		if len(failReasons) > 1 {
			reason = fmt.Sprintf("eval failed: %d checks: %s", len(failReasons), failReasons[0])
		}
	}

	return EvalResult{
		Passed:  passed,
		Metrics: metrics,
		Reason:  reason,
	}
}

// #endregion eval-harness

// #region helpers
func (h *EvalHarness) inUnit(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	return v >= -h.config.Epsilon && v <= 1+h.config.Epsilon
}

// #endregion helpers
