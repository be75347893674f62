package signals

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/activity"
)

// #region producer

// Producer computes the clarity sub-scores from an activity window.
type Producer struct {
	config ProducerConfig
}

// NewProducer creates a Producer. A nil Location falls back to UTC.
func NewProducer(config ProducerConfig) *Producer {
	if config.Location == nil {
		config.Location = time.UTC
	}
	return &Producer{config: config}
}

// #endregion producer

// #region produce

// Produce computes all five sub-scores. Every score is recomputed from w.
func (p *Producer) Produce(w activity.Window) Scores {
	return Scores{
		Checkins:    p.checkinsScore(w),
		Recovery:    p.recoveryScore(w),
		Alignment:   p.alignmentScore(w),
		Reflection:  p.reflectionScore(w),
		Consistency: p.consistencyScore(w),
	}
}

// #endregion produce

// #region checkins

// checkinsScore saturates at one check-in per day over the week.
func (p *Producer) checkinsScore(w activity.Window) float64 {
	return ratio(float64(len(w.CheckIns)), CheckinsPerWeek)
}

// #endregion checkins

// #region recovery

// recoveryScore uses distinct emotion labels as a stand-in for recovery time.
func (p *Producer) recoveryScore(w activity.Window) float64 {
	labels := make(map[string]struct{}, len(w.CheckIns))
	for _, c := range w.CheckIns {
		label := strings.ToLower(strings.TrimSpace(c.EmotionLabel))
		if label == "" {
			continue
		}
		labels[label] = struct{}{}
	}
	return ratio(float64(len(labels)), DistinctEmotions)
}

// #endregion recovery

// #region alignment

func (p *Producer) alignmentScore(w activity.Window) float64 {
	return ratio(float64(len(w.Tasks)), TasksPerMonth)
}

// #endregion alignment

// #region reflection

// reflectionScore is the average reflection length in runes over 500.
func (p *Producer) reflectionScore(w activity.Window) float64 {
	if len(w.Reflections) == 0 {
		return 0
	}
	var total int
	for _, r := range w.Reflections {
		total += utf8.RuneCountInString(r.Text)
	}
	avg := float64(total) / float64(len(w.Reflections))
	return ratio(avg, ReflectionCharacters)
}

// #endregion reflection

// #region consistency

// consistencyScore counts distinct calendar days with any recorded activity.
func (p *Producer) consistencyScore(w activity.Window) float64 {
	days := make(map[string]struct{})
	mark := func(t time.Time) {
		if t.IsZero() {
			return
		}
		days[t.In(p.config.Location).Format(time.DateOnly)] = struct{}{}
	}
	for _, c := range w.CheckIns {
		mark(c.Date)
	}
	for _, t := range w.Tasks {
		mark(t.CompletedAt)
	}
	for _, r := range w.Reflections {
		mark(r.CreatedAt)
	}
	return ratio(float64(len(days)), ActiveDaysPerMonth)
}

// #endregion consistency

// #region helpers

// ratio divides a raw amount by its saturation point. Negative or NaN
// amounts are treated as zero before dividing.
func ratio(amount, divisor float64) float64 {
	if math.IsNaN(amount) || amount < 0 {
		amount = 0
	}
	if divisor <= 0 {
		return 0
	}
	return Clamp(amount / divisor)
}

// Clamp restricts v to [0, 1]. NaN maps to 0.
func Clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion helpers

// #region from-counts

// FromCounts applies the same saturation rules as Produce to totals that
// were already aggregated elsewhere.
func FromCounts(c Counts) Scores {
	return Scores{
		Checkins:    ratio(float64(c.CheckIns), CheckinsPerWeek),
		Recovery:    ratio(float64(c.DistinctEmotions), DistinctEmotions),
		Alignment:   ratio(float64(c.Tasks), TasksPerMonth),
		Reflection:  ratio(c.AvgReflectionChars, ReflectionCharacters),
		Consistency: ratio(float64(c.ActiveDays), ActiveDaysPerMonth),
	}
}

// #endregion from-counts
