package service

import (
	"context"
	"errors"
	"io"
	"log"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/activity"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/engine"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/fog"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/proof"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/state"
)

func newTestService(t *testing.T) (*Service, *state.Store) {
	t.Helper()
	st, err := state.NewStore(filepath.Join(t.TempDir(), "svc.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	eng := engine.New(st, engine.DefaultConfig(), log.New(io.Discard, "", 0))
	return New(eng, st, st.Proofs(), nil), st
}

// End to end through SQLite: scenario A, then a perfect week, then three more.
func TestService_ScenariosThroughSQLite(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.Compute(ctx, "u1")
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	svc.Flush()
	if res.Fog.State.FogValue != 0.625 || res.Fog.State.FogBucket != fog.BucketPatchy {
		t.Fatalf("scenario A: expected 0.625 patchy, got %+v", res.Fog.State)
	}

	now := time.Now()
	labels := []string{"calm", "joy", "sad", "angry", "hopeful"}
	for i := 0; i < 7; i++ {
		if _, err := svc.RecordCheckIn(ctx, "u1", now.Add(-time.Duration(i)*24*time.Hour), labels[i%5]); err != nil {
			t.Fatalf("RecordCheckIn: %v", err)
		}
	}
	for i := 0; i < 29; i++ {
		if _, err := svc.RecordTask(ctx, "u1", now.Add(-time.Duration(i)*24*time.Hour-time.Minute)); err != nil {
			t.Fatalf("RecordTask: %v", err)
		}
	}
	// 30th active day, 29 days and 23 hours back
	svc.RecordTask(ctx, "u1", now.Add(-29*24*time.Hour-23*time.Hour))
	svc.RecordReflection(ctx, "u1", strings.Repeat("r", 500), now.Add(-time.Minute))

	res, _ = svc.Compute(ctx, "u1")
	svc.Flush()
	if res.PrevSource != engine.PrevPersisted {
		t.Fatalf("expected persisted previous, got %s", res.PrevSource)
	}
	if res.Fog.Scores.Checkins != 1 || res.Fog.Scores.Recovery != 1 || res.Fog.Scores.Alignment != 1 || res.Fog.Scores.Reflection != 1 {
		t.Fatalf("expected saturated scores, got %+v", res.Fog.Scores)
	}
	if res.Fog.State.FogBucket != fog.BucketHaze {
		t.Fatalf("scenario B: expected haze, got %+v", res.Fog.State)
	}

	for i := 0; i < 3; i++ {
		res, _ = svc.Compute(ctx, "u1")
		svc.Flush()
	}
	if res.Fog.State.FogValue >= 0.25 || res.Fog.State.FogBucket != fog.BucketClear {
		t.Fatalf("scenario C: expected clear, got %+v", res.Fog.State)
	}

	hist, err := svc.History(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 5 {
		t.Fatalf("expected 5 history entries, got %d", len(hist))
	}
	if math.Abs(hist[0].State.FogValue-res.Fog.State.FogValue) > 1e-12 {
		t.Errorf("newest history entry should match last result")
	}
}

func TestService_RecordDefaultsToNow(t *testing.T) {
	svc, st := newTestService(t)
	fixed := time.Date(2026, 3, 3, 3, 3, 3, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	ctx := context.Background()

	if _, err := svc.RecordTask(ctx, "u1", time.Time{}); err != nil {
		t.Fatalf("RecordTask: %v", err)
	}
	w, err := st.FetchActivityWindow(ctx, "u1", fixed)
	if err != nil {
		t.Fatalf("FetchActivityWindow: %v", err)
	}
	if len(w.Tasks) != 1 || !w.Tasks[0].CompletedAt.Equal(fixed) {
		t.Fatalf("expected task at %v, got %+v", fixed, w.Tasks)
	}
}

func TestService_RecordValidation(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.RecordCheckIn(context.Background(), "u1", time.Time{}, ""); !errors.Is(err, activity.ErrEmptyEmotion) {
		t.Fatalf("expected ErrEmptyEmotion, got %v", err)
	}
}

func TestService_Proofs(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		if _, err := svc.AppendProof(ctx, "u1", proof.ModuleDiary, "entry", ""); err != nil {
			t.Fatalf("AppendProof: %v", err)
		}
	}
	got, err := svc.ListProofs(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("ListProofs: %v", err)
	}
	if len(got) != proof.DefaultListLimit {
		t.Fatalf("expected default limit %d, got %d", proof.DefaultListLimit, len(got))
	}
	if _, err := svc.AppendProof(ctx, "u1", proof.Module("horoscope"), "x", ""); !errors.Is(err, proof.ErrUnknownModule) {
		t.Fatalf("expected ErrUnknownModule, got %v", err)
	}
}

func TestService_CustomProofLimit(t *testing.T) {
	st, err := state.NewStore(filepath.Join(t.TempDir(), "limit.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer st.Close()
	eng := engine.New(st, engine.DefaultConfig(), log.New(io.Discard, "", 0))
	svc := New(eng, st, st.Proofs(), func(int) int { return 2 })

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		svc.AppendProof(ctx, "u1", proof.ModuleNotes, "n", "")
	}
	got, _ := svc.ListProofs(ctx, "u1", 50)
	if len(got) != 2 {
		t.Fatalf("expected custom limit 2, got %d", len(got))
	}
}
