package proof

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/activity"
)

// #region helpers
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	_, err = db.Exec(`CREATE TABLE life_proofs (
		seq        INTEGER PRIMARY KEY AUTOINCREMENT,
		id         TEXT NOT NULL UNIQUE,
		user_id    TEXT NOT NULL,
		module     TEXT NOT NULL,
		short_text TEXT NOT NULL,
		created_at TEXT NOT NULL,
		source_id  TEXT
	)`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// steppedLog returns a log whose clock advances one second per append.
func steppedLog(db *sql.DB) *SQLiteLog {
	l := NewSQLiteLog(db)
	tick := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return l
}

// #endregion helpers

// #region append-tests
func TestAppend_Success(t *testing.T) {
	l := steppedLog(setupDB(t))
	ctx := context.Background()

	p, err := l.Append(ctx, "u1", ModuleJournal, "  wrote three pages  ", "entry-9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == "" {
		t.Error("expected generated id")
	}
	if p.ShortText != "wrote three pages" {
		t.Errorf("expected trimmed text, got %q", p.ShortText)
	}
	if p.SourceID != "entry-9" {
		t.Errorf("expected source id, got %q", p.SourceID)
	}

	var count int
	l.db.QueryRow("SELECT COUNT(*) FROM life_proofs").Scan(&count)
	if count != 1 {
		t.Errorf("expected 1 row, got %d", count)
	}
}

func TestAppend_EmptySourceStoredAsNull(t *testing.T) {
	l := steppedLog(setupDB(t))
	if _, err := l.Append(context.Background(), "u1", ModuleTasks, "done", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var source sql.NullString
	l.db.QueryRow("SELECT source_id FROM life_proofs").Scan(&source)
	if source.Valid {
		t.Error("expected NULL source_id for empty string")
	}
}

func TestAppend_Validation(t *testing.T) {
	l := steppedLog(setupDB(t))
	ctx := context.Background()

	tests := []struct {
		name   string
		user   string
		module Module
		text   string
		want   error
	}{
		{"empty user", " ", ModuleNotes, "x", activity.ErrEmptyUser},
		{"unknown module", "u1", Module("astrology"), "x", ErrUnknownModule},
		{"blank text", "u1", ModuleNotes, "   ", ErrEmptyText},
		{"too long", "u1", ModuleNotes, strings.Repeat("a", MaxTextLength+1), ErrTextTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Append(ctx, tt.user, tt.module, tt.text, "")
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestAppend_MaxLengthInRunesAccepted(t *testing.T) {
	l := steppedLog(setupDB(t))
	text := strings.Repeat("ü", MaxTextLength)
	if _, err := l.Append(context.Background(), "u1", ModuleDiary, text, ""); err != nil {
		t.Fatalf("expected %d runes to be accepted: %v", MaxTextLength, err)
	}
}

func TestAppend_Error(t *testing.T) {
	db := setupDB(t)
	l := steppedLog(db)
	db.Close() // close to force error

	if _, err := l.Append(context.Background(), "u1", ModuleDiary, "x", ""); err == nil {
		t.Fatal("expected error on closed db")
	}
}

// #endregion append-tests

// #region list-tests
func TestListRecent_NewestFirstAndLimited(t *testing.T) {
	l := steppedLog(setupDB(t))
	ctx := context.Background()
	for _, text := range []string{"first", "second", "third"} {
		if _, err := l.Append(ctx, "u1", ModuleCheckIn, text, ""); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	l.Append(ctx, "u2", ModuleCheckIn, "other user", "")

	got, err := l.ListRecent(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 proofs, got %d", len(got))
	}
	if got[0].ShortText != "third" || got[1].ShortText != "second" {
		t.Fatalf("unexpected order: %q, %q", got[0].ShortText, got[1].ShortText)
	}
	if !got[0].CreatedAt.After(got[1].CreatedAt) {
		t.Error("expected decreasing timestamps")
	}
}

func TestListRecent_SameTimestampUsesInsertOrder(t *testing.T) {
	l := NewSQLiteLog(setupDB(t))
	fixed := time.Date(2026, 2, 2, 2, 2, 2, 0, time.UTC)
	l.now = func() time.Time { return fixed }
	ctx := context.Background()
	l.Append(ctx, "u1", ModuleNotes, "a", "")
	l.Append(ctx, "u1", ModuleNotes, "b", "")

	got, _ := l.ListRecent(ctx, "u1", 10)
	if len(got) != 2 || got[0].ShortText != "b" {
		t.Fatalf("expected later insert first, got %+v", got)
	}
}

func TestListRecent_EmptyUser(t *testing.T) {
	l := steppedLog(setupDB(t))
	got, err := l.ListRecent(context.Background(), "nobody", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no proofs, got %d", len(got))
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, DefaultListLimit},
		{-3, DefaultListLimit},
		{7, 7},
		{MaxListLimit + 50, MaxListLimit},
	}
	for _, tt := range tests {
		if got := ClampLimit(tt.in); got != tt.want {
			t.Errorf("ClampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

// #endregion list-tests
