package activity

import (
	"errors"
	"time"
)

// #region windows

// Lookback windows used when fetching raw activity.
const (
	CheckInWindow    = 7 * 24 * time.Hour
	TaskWindow       = 30 * 24 * time.Hour
	ReflectionWindow = 30 * 24 * time.Hour
)

// ErrEmptyUser is returned when an operation is scoped to a blank user ID.
var ErrEmptyUser = errors.New("user id is required")

// #endregion windows

// #region records

// CheckIn is a single emotion check-in.
type CheckIn struct {
	Date         time.Time `json:"date" yaml:"date"`
	EmotionLabel string    `json:"emotion_label" yaml:"emotion_label"`
}

// CompletedTask marks one task completion.
type CompletedTask struct {
	CompletedAt time.Time `json:"completed_at" yaml:"completed_at"`
}

// Reflection is a journal answer.
type Reflection struct {
	Text      string    `json:"text" yaml:"text"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// #endregion records

// #region window

// Window bundles the three record collections fetched for one computation.
// A nil slice and an empty slice mean the same thing: no activity.
type Window struct {
	CheckIns    []CheckIn       `json:"check_ins" yaml:"check_ins"`
	Tasks       []CompletedTask `json:"tasks" yaml:"tasks"`
	Reflections []Reflection    `json:"reflections" yaml:"reflections"`
}

// Empty reports whether the window holds no records at all.
func (w Window) Empty() bool {
	return len(w.CheckIns) == 0 && len(w.Tasks) == 0 && len(w.Reflections) == 0
}

// #endregion window

// #region bounds

// Bounds holds the inclusive lower edge of each window relative to a reference time.
type Bounds struct {
	Now              time.Time
	CheckInsSince    time.Time
	TasksSince       time.Time
	ReflectionsSince time.Time
}

// BoundsAt computes the window edges for now.
func BoundsAt(now time.Time) Bounds {
	return Bounds{
		Now:              now,
		CheckInsSince:    now.Add(-CheckInWindow),
		TasksSince:       now.Add(-TaskWindow),
		ReflectionsSince: now.Add(-ReflectionWindow),
	}
}

// #endregion bounds
