package fog

import (
	"fmt"

	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/signals"
)

// #region bucket

// Bucket is the discrete, UI-facing fog label.
type Bucket string

const (
	BucketHeavy  Bucket = "heavy"
	BucketPatchy Bucket = "patchy"
	BucketHaze   Bucket = "haze"
	BucketClear  Bucket = "clear"
)

// ParseBucket validates a stored bucket name.
func ParseBucket(s string) (Bucket, error) {
	switch b := Bucket(s); b {
	case BucketHeavy, BucketPatchy, BucketHaze, BucketClear:
		return b, nil
	}
	return "", fmt.Errorf("unknown fog bucket %q", s)
}

// #endregion bucket

// #region weights

// Weights maps each sub-score to its share of the clarity score. The five
// weights sum to 1.
type Weights struct {
	Checkins    float64
	Recovery    float64
	Alignment   float64
	Reflection  float64
	Consistency float64
}

// DefaultWeights is the compiled-in weighting used by every computation.
var DefaultWeights = Weights{
	Checkins:    0.30,
	Recovery:    0.25,
	Alignment:   0.20,
	Reflection:  0.15,
	Consistency: 0.10,
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return w.Checkins + w.Recovery + w.Alignment + w.Reflection + w.Consistency
}

// #endregion weights

// #region smoothing

const (
	// Alpha is the weight given to the newest raw fog observation.
	Alpha = 0.25
	// DefaultPrevious is used when no fog value has ever been persisted.
	DefaultPrevious = 0.5
)

// #endregion smoothing

// #region state

// State is the persisted, smoothed fog reading for one user.
type State struct {
	FogValue  float64 `json:"fog_value"`
	FogBucket Bucket  `json:"fog_bucket"`
}

// #endregion state

// #region result

// Result bundles everything produced by one pass of Update.
type Result struct {
	Scores      signals.Scores `json:"scores"`
	Score       float64        `json:"clarity_score"`
	RawFog      float64        `json:"raw_fog"`
	Previous    float64        `json:"previous_fog"`
	UsedDefault bool           `json:"used_default_previous"`
	State       State          `json:"fog"`
}

// #endregion result
