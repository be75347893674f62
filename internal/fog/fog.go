package fog

import (
	"math"

	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/signals"
)

// #region update-function

// Update is a pure function from the current sub-scores and the previously
// persisted fog value to the next fog state. prev is nil when nothing has
// been persisted for the user yet.
func Update(scores signals.Scores, prev *float64) Result {
	// 1. Resolve the previous value
	previous, usedDefault := DefaultPrevious, true
	if prev != nil && !math.IsNaN(*prev) && !math.IsInf(*prev, 0) {
		previous, usedDefault = signals.Clamp(*prev), false
	}

	// 2. Aggregate
	score := Aggregate(scores)

	// 3. Smooth
	raw := 1 - score
	smoothed := Smooth(score, previous)

	return Result{
		Scores:      scores,
		Score:       score,
		RawFog:      raw,
		Previous:    previous,
		UsedDefault: usedDefault,
		State: State{
			FogValue:  smoothed,
			FogBucket: Bucketize(smoothed),
		},
	}
}

// #endregion update-function

// #region aggregate

// Aggregate combines the sub-scores with DefaultWeights.
func Aggregate(s signals.Scores) float64 {
	w := DefaultWeights
	sum := w.Checkins*s.Checkins +
		w.Recovery*s.Recovery +
		w.Alignment*s.Alignment +
		w.Reflection*s.Reflection +
		w.Consistency*s.Consistency
	return signals.Clamp(sum)
}

// #endregion aggregate

// #region smooth

// Smooth converts a clarity score into raw fog and blends it with prev
// using an exponential moving average weighted Alpha on the new value.
func Smooth(score, prev float64) float64 {
	raw := 1 - signals.Clamp(score)
	v := Alpha*raw + (1-Alpha)*prev
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return DefaultPrevious
	}
	return signals.Clamp(v)
}

// #endregion smooth

// #region bucketize

// Bucketize maps a fog value onto its band. Exact band edges fall into the
// lower-fog bucket.
func Bucketize(v float64) Bucket {
	switch {
	case v > 0.75:
		return BucketHeavy
	case v > 0.5:
		return BucketPatchy
	case v > 0.25:
		return BucketHaze
	default:
		return BucketClear
	}
}

// #endregion bucketize
