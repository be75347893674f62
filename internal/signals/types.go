package signals

import "time"

// #region scores

// Scores holds the five clarity sub-scores, each in [0, 1].
type Scores struct {
	Checkins    float64 `json:"checkins" yaml:"checkins"`
	Recovery    float64 `json:"recovery" yaml:"recovery"`
	Alignment   float64 `json:"alignment" yaml:"alignment"`
	Reflection  float64 `json:"reflection" yaml:"reflection"`
	Consistency float64 `json:"consistency" yaml:"consistency"`
}

// #endregion scores

// #region divisors

// Normalization divisors: the raw amount at which each sub-score saturates.
const (
	CheckinsPerWeek      = 7
	DistinctEmotions     = 5
	TasksPerMonth        = 10
	ReflectionCharacters = 500
	ActiveDaysPerMonth   = 30
)

// #endregion divisors

// #region config

// ProducerConfig holds the knobs for sub-score computation.
type ProducerConfig struct {
	Location *time.Location // calendar-day boundaries for consistency
}

// DefaultProducerConfig counts calendar days in UTC.
func DefaultProducerConfig() ProducerConfig {
	return ProducerConfig{Location: time.UTC}
}

// #endregion config

// #region counts

// Counts are pre-aggregated activity totals, as recorded in replay fixtures.
type Counts struct {
	CheckIns           int     `json:"check_ins" yaml:"check_ins"`
	DistinctEmotions   int     `json:"distinct_emotions" yaml:"distinct_emotions"`
	Tasks              int     `json:"tasks" yaml:"tasks"`
	AvgReflectionChars float64 `json:"avg_reflection_chars" yaml:"avg_reflection_chars"`
	ActiveDays         int     `json:"active_days" yaml:"active_days"`
}

// #endregion counts
