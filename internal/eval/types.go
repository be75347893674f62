package eval

// #region eval-config
// EvalConfig holds tolerances for pre-write validation.
type EvalConfig struct {
	MaxFogJump float64 // informational: largest expected |fog - previous| per session
	Epsilon    float64 // float tolerance on range and jump checks
}

// DefaultEvalConfig bounds the per-session jump by the smoothing factor.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{
		MaxFogJump: 0.25,
		Epsilon:    1e-9,
	}
}

// #endregion eval-config

// #region eval-metric
// EvalMetric captures a single validation check result.
type EvalMetric struct {
	Name  string
	Value float64
	Pass  bool
}

// #endregion eval-metric

// #region eval-result
// EvalResult is the output of pre-write validation.
type EvalResult struct {
	Passed  bool
	Metrics []EvalMetric
	Reason  string
}

// #endregion eval-result
