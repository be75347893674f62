package gate

import (
	"testing"
	"time"

	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/activity"
)

var now = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func ago(d time.Duration) time.Time { return now.Add(-d) }

const day = 24 * time.Hour

func TestScreenKeepsInWindowRecords(t *testing.T) {
	g := NewGate(DefaultConfig())
	w := activity.Window{
		CheckIns:    []activity.CheckIn{{Date: ago(2 * day), EmotionLabel: "calm"}},
		Tasks:       []activity.CompletedTask{{CompletedAt: ago(20 * day)}},
		Reflections: []activity.Reflection{{Text: "ok", CreatedAt: ago(29 * day)}},
	}

	out, report := g.Screen(w, now)

	if !report.Clean() {
		t.Fatalf("expected clean report, got %+v", report.Dropped)
	}
	if report.Kept != 3 {
		t.Fatalf("expected 3 kept, got %d", report.Kept)
	}
	if len(out.CheckIns) != 1 || len(out.Tasks) != 1 || len(out.Reflections) != 1 {
		t.Fatalf("unexpected screened window: %+v", out)
	}
}

func TestScreenDropsCheckInsOlderThanAWeek(t *testing.T) {
	g := NewGate(DefaultConfig())
	w := activity.Window{CheckIns: []activity.CheckIn{
		{Date: ago(8 * day), EmotionLabel: "old"},
		{Date: ago(6 * day), EmotionLabel: "recent"},
	}}

	out, report := g.Screen(w, now)

	if len(out.CheckIns) != 1 || out.CheckIns[0].EmotionLabel != "recent" {
		t.Fatalf("expected only the recent check-in, got %+v", out.CheckIns)
	}
	if len(report.Dropped) != 1 || report.Dropped[0].Reason != DropOutsideWindow {
		t.Fatalf("expected one outside_window drop, got %+v", report.Dropped)
	}
}

func TestScreenWindowEdgeIsInclusive(t *testing.T) {
	g := NewGate(DefaultConfig())
	w := activity.Window{Tasks: []activity.CompletedTask{{CompletedAt: ago(30 * day)}}}

	out, _ := g.Screen(w, now)

	if len(out.Tasks) != 1 {
		t.Fatal("expected task exactly on the window edge to be kept")
	}
}

func TestScreenDropsZeroTimestamps(t *testing.T) {
	g := NewGate(DefaultConfig())
	w := activity.Window{Reflections: []activity.Reflection{{Text: "no date"}}}

	out, report := g.Screen(w, now)

	if len(out.Reflections) != 0 {
		t.Fatal("expected zero-timestamp reflection to be dropped")
	}
	if report.Dropped[0].Reason != DropZeroTime || report.Dropped[0].Kind != "reflection" {
		t.Fatalf("unexpected drop: %+v", report.Dropped[0])
	}
}

func TestScreenFutureWithinSkewKept(t *testing.T) {
	g := NewGate(DefaultConfig())
	w := activity.Window{Tasks: []activity.CompletedTask{
		{CompletedAt: now.Add(30 * time.Second)},
		{CompletedAt: now.Add(time.Hour)},
	}}

	out, report := g.Screen(w, now)

	if len(out.Tasks) != 1 {
		t.Fatalf("expected 1 task kept, got %d", len(out.Tasks))
	}
	if report.Dropped[0].Reason != DropFuture {
		t.Fatalf("expected future drop, got %s", report.Dropped[0].Reason)
	}
}

func TestScreenEmptyWindow(t *testing.T) {
	g := NewGate(DefaultConfig())
	out, report := g.Screen(activity.Window{}, now)
	if !out.Empty() || !report.Clean() || report.Kept != 0 {
		t.Fatalf("expected empty passthrough, got %+v / %+v", out, report)
	}
}
