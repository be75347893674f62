package gate

import (
	"time"

	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/activity"
)

// #region gate

// Gate screens fetched activity so every record falls inside its window.
type Gate struct {
	config Config
}

// NewGate creates a gate with the given configuration.
func NewGate(config Config) *Gate {
	return &Gate{config: config}
}

// Screen returns the subset of w whose timestamps are set, not in the future,
// and within their lookback window relative to now. It never fails: bad
// records are dropped and listed in the report.
func (g *Gate) Screen(w activity.Window, now time.Time) (activity.Window, Report) {
	b := activity.BoundsAt(now)
	limit := now.Add(g.config.MaxClockSkew)
	var report Report

	check := func(kind string, at, since time.Time) bool {
		var reason DropReason
		switch {
		case at.IsZero():
			reason = DropZeroTime
		case at.After(limit):
			reason = DropFuture
		case at.Before(since):
			reason = DropOutsideWindow
		default:
			report.Kept++
			return true
		}
		report.Dropped = append(report.Dropped, Dropped{Kind: kind, At: at, Reason: reason})
		return false
	}

	var out activity.Window
	for _, c := range w.CheckIns {
		if check("check_in", c.Date, b.CheckInsSince) {
			out.CheckIns = append(out.CheckIns, c)
		}
	}
	for _, t := range w.Tasks {
		if check("task", t.CompletedAt, b.TasksSince) {
			out.Tasks = append(out.Tasks, t)
		}
	}
	for _, r := range w.Reflections {
		if check("reflection", r.CreatedAt, b.ReflectionsSince) {
			out.Reflections = append(out.Reflections, r)
		}
	}
	return out, report
}

// #endregion gate
