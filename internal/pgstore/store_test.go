package pgstore

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/fog"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/proof"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/signals"
)

// #region mocks

type recordedExec struct {
	sql  string
	args []any
}

type fakeExecer struct {
	calls  []recordedExec
	failOn int // 1-based call index to fail, 0 = never
}

func (f *fakeExecer) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, recordedExec{sql: sql, args: args})
	if f.failOn == len(f.calls) {
		return pgconn.CommandTag{}, errors.New("boom")
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

// #endregion mocks

func TestWriteFog_UpsertThenHistory(t *testing.T) {
	ex := &fakeExecer{}
	at := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	scores := signals.Scores{Checkins: 1, Recovery: 1, Alignment: 1, Reflection: 1, Consistency: 1}

	err := writeFog(context.Background(), ex, "u1", fog.State{FogValue: 0.46875, FogBucket: fog.BucketHaze}, scores, at)
	if err != nil {
		t.Fatalf("writeFog: %v", err)
	}
	if len(ex.calls) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(ex.calls))
	}
	if !strings.Contains(ex.calls[0].sql, "ON CONFLICT (user_id) DO UPDATE") {
		t.Errorf("first statement should upsert fog_state: %s", ex.calls[0].sql)
	}
	if !strings.Contains(ex.calls[1].sql, "fog_history") {
		t.Errorf("second statement should append history: %s", ex.calls[1].sql)
	}
	if got := ex.calls[0].args[2]; got != "haze" {
		t.Errorf("expected bucket arg haze, got %v", got)
	}
	if got := ex.calls[0].args[3].(float64); got < 0.999999 {
		t.Errorf("expected clarity score 1, got %v", got)
	}
}

func TestWriteFog_StopsOnUpsertError(t *testing.T) {
	ex := &fakeExecer{failOn: 1}
	err := writeFog(context.Background(), ex, "u1", fog.State{}, signals.Scores{}, time.Now())
	if err == nil || !strings.Contains(err.Error(), "upsert fog") {
		t.Fatalf("expected upsert error, got %v", err)
	}
	if len(ex.calls) != 1 {
		t.Fatalf("history must not be written after a failed upsert, got %d calls", len(ex.calls))
	}
}

// #region integration

func testStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("CLARITY_PG_TEST_URL")
	if url == "" {
		t.Skip("CLARITY_PG_TEST_URL not set, skipping Postgres integration test")
	}
	s, err := NewStore(context.Background(), url)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestIntegration_RoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	user := "it-" + uuid.NewString()
	now := time.Now().UTC()

	if _, err := s.RecordCheckIn(ctx, user, now.Add(-time.Hour), "calm"); err != nil {
		t.Fatalf("RecordCheckIn: %v", err)
	}
	if _, err := s.RecordTask(ctx, user, now.Add(-2*time.Hour)); err != nil {
		t.Fatalf("RecordTask: %v", err)
	}
	if _, err := s.RecordReflection(ctx, user, "quiet morning", now.Add(-3*time.Hour)); err != nil {
		t.Fatalf("RecordReflection: %v", err)
	}
	w, err := s.FetchActivityWindow(ctx, user, now)
	if err != nil {
		t.Fatalf("FetchActivityWindow: %v", err)
	}
	if len(w.CheckIns) != 1 || len(w.Tasks) != 1 || len(w.Reflections) != 1 {
		t.Fatalf("unexpected window: %+v", w)
	}

	if _, ok, err := s.ReadPreviousFog(ctx, user); err != nil || ok {
		t.Fatalf("expected no previous fog, got ok=%v err=%v", ok, err)
	}
	if err := s.WriteFogState(ctx, user, fog.State{FogValue: 0.625, FogBucket: fog.BucketPatchy}, signals.Scores{}); err != nil {
		t.Fatalf("WriteFogState: %v", err)
	}
	v, ok, err := s.ReadPreviousFog(ctx, user)
	if err != nil || !ok || v != 0.625 {
		t.Fatalf("expected 0.625, got %v ok=%v err=%v", v, ok, err)
	}
	hist, err := s.ListFogHistory(ctx, user, 5)
	if err != nil || len(hist) != 1 {
		t.Fatalf("expected 1 history row, got %d err=%v", len(hist), err)
	}
}

func TestIntegration_Proofs(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	user := "it-" + uuid.NewString()

	for _, text := range []string{"one", "two"} {
		if _, err := s.Proofs().Append(ctx, user, proof.ModuleNotes, text, ""); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	got, err := s.Proofs().ListRecent(ctx, user, 0)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(got) != 2 || got[0].ShortText != "two" {
		t.Fatalf("expected newest first, got %+v", got)
	}
}

// #endregion integration
