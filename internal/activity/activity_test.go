package activity

import (
	"errors"
	"testing"
	"time"
)

func TestBoundsAt(t *testing.T) {
	now := time.Date(2026, 4, 30, 12, 0, 0, 0, time.UTC)
	b := BoundsAt(now)
	if got := now.Sub(b.CheckInsSince); got != 7*24*time.Hour {
		t.Errorf("check-in window = %v, want 7 days", got)
	}
	if got := now.Sub(b.TasksSince); got != 30*24*time.Hour {
		t.Errorf("task window = %v, want 30 days", got)
	}
	if !b.ReflectionsSince.Equal(b.TasksSince) {
		t.Errorf("reflection and task windows should match")
	}
}

func TestWindowEmpty(t *testing.T) {
	if !(Window{}).Empty() {
		t.Error("zero window should be empty")
	}
	w := Window{Tasks: []CompletedTask{{CompletedAt: time.Now()}}}
	if w.Empty() {
		t.Error("window with a task should not be empty")
	}
}

func TestNormalizeCheckIn(t *testing.T) {
	now := time.Now()
	label, err := NormalizeCheckIn("u1", now, "  grateful ")
	if err != nil || label != "grateful" {
		t.Fatalf("got %q, %v", label, err)
	}
	if _, err := NormalizeCheckIn("", now, "calm"); !errors.Is(err, ErrEmptyUser) {
		t.Errorf("expected ErrEmptyUser, got %v", err)
	}
	if _, err := NormalizeCheckIn("u1", time.Time{}, "calm"); !errors.Is(err, ErrZeroTime) {
		t.Errorf("expected ErrZeroTime, got %v", err)
	}
	if _, err := NormalizeCheckIn("u1", now, " "); !errors.Is(err, ErrEmptyEmotion) {
		t.Errorf("expected ErrEmptyEmotion, got %v", err)
	}
}

func TestNormalizeReflectionAndTask(t *testing.T) {
	now := time.Now()
	if err := NormalizeReflection("u1", "\n\t", now); !errors.Is(err, ErrEmptyReflection) {
		t.Errorf("expected ErrEmptyReflection, got %v", err)
	}
	if err := NormalizeReflection("u1", "fine", now); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := NormalizeTask("u1", time.Time{}); !errors.Is(err, ErrZeroTime) {
		t.Errorf("expected ErrZeroTime, got %v", err)
	}
	if err := NormalizeTask("u1", now); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
