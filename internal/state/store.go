package state

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/activity"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/fog"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/proof"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/signals"
)

// #region schema
//go:embed migrations/*.sql
var migrationFS embed.FS

// timeFormat matches proof.TimeFormat so every table sorts the same way.
const timeFormat = proof.TimeFormat
// #endregion schema

// #region store-struct
// Store persists activity, fog state, and proofs in SQLite.
type Store struct {
	db     *sql.DB
	proofs *proof.SQLiteLog
	now    func() time.Time
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and applies pending migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma busy: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, proofs: proof.NewSQLiteLog(db), now: time.Now}, nil
}

func migrate(db *sql.DB) error {
	sub, err := fs.Sub(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrations sub-fs: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, sub)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}
	if _, err := provider.Up(context.Background()); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
// #endregion close

// #region accessors
// DB returns the underlying *sql.DB.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Proofs returns the proof log backed by this database.
func (s *Store) Proofs() *proof.SQLiteLog {
	return s.proofs
}
// #endregion accessors

// #region record-activity
// RecordCheckIn stores an emotion check-in and returns its ID.
func (s *Store) RecordCheckIn(ctx context.Context, userID string, date time.Time, emotion string) (string, error) {
	label, err := activity.NormalizeCheckIn(userID, date, emotion)
	if err != nil {
		return "", err
	}
	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO check_ins (id, user_id, checked_at, emotion_label) VALUES (?, ?, ?, ?)`,
		id, userID, date.UTC().Format(timeFormat), label,
	)
	if err != nil {
		return "", fmt.Errorf("insert check-in: %w", err)
	}
	return id, nil
}

// RecordTask stores a task completion and returns its ID.
func (s *Store) RecordTask(ctx context.Context, userID string, completedAt time.Time) (string, error) {
	if err := activity.NormalizeTask(userID, completedAt); err != nil {
		return "", err
	}
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO completed_tasks (id, user_id, completed_at) VALUES (?, ?, ?)`,
		id, userID, completedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return "", fmt.Errorf("insert task: %w", err)
	}
	return id, nil
}

// RecordReflection stores a journal answer and returns its ID.
func (s *Store) RecordReflection(ctx context.Context, userID, text string, createdAt time.Time) (string, error) {
	if err := activity.NormalizeReflection(userID, text, createdAt); err != nil {
		return "", err
	}
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reflections (id, user_id, text, created_at) VALUES (?, ?, ?, ?)`,
		id, userID, text, createdAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return "", fmt.Errorf("insert reflection: %w", err)
	}
	return id, nil
}
// #endregion record-activity

// #region fetch-window
// FetchActivityWindow reads the three windows for userID relative to now.
// A collection whose query fails is left empty; the failures are joined
// into the returned error alongside whatever was read.
func (s *Store) FetchActivityWindow(ctx context.Context, userID string, now time.Time) (activity.Window, error) {
	b := activity.BoundsAt(now)
	var w activity.Window
	var errs []error

	checkIns, err := s.fetchCheckIns(ctx, userID, b.CheckInsSince)
	if err != nil {
		errs = append(errs, err)
	}
	w.CheckIns = checkIns

	tasks, err := s.fetchTasks(ctx, userID, b.TasksSince)
	if err != nil {
		errs = append(errs, err)
	}
	w.Tasks = tasks

	reflections, err := s.fetchReflections(ctx, userID, b.ReflectionsSince)
	if err != nil {
		errs = append(errs, err)
	}
	w.Reflections = reflections

	return w, errors.Join(errs...)
}

func (s *Store) fetchCheckIns(ctx context.Context, userID string, since time.Time) ([]activity.CheckIn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT checked_at, emotion_label FROM check_ins
		 WHERE user_id = ? AND checked_at >= ? ORDER BY checked_at`,
		userID, since.UTC().Format(timeFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("query check-ins: %w", err)
	}
	defer rows.Close()

	var out []activity.CheckIn
	for rows.Next() {
		var at string
		var c activity.CheckIn
		if err := rows.Scan(&at, &c.EmotionLabel); err != nil {
			return nil, fmt.Errorf("scan check-in: %w", err)
		}
		c.Date, _ = time.Parse(timeFormat, at)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) fetchTasks(ctx context.Context, userID string, since time.Time) ([]activity.CompletedTask, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT completed_at FROM completed_tasks
		 WHERE user_id = ? AND completed_at >= ? ORDER BY completed_at`,
		userID, since.UTC().Format(timeFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var out []activity.CompletedTask
	for rows.Next() {
		var at string
		if err := rows.Scan(&at); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t, _ := time.Parse(timeFormat, at)
		out = append(out, activity.CompletedTask{CompletedAt: t})
	}
	return out, rows.Err()
}

func (s *Store) fetchReflections(ctx context.Context, userID string, since time.Time) ([]activity.Reflection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT text, created_at FROM reflections
		 WHERE user_id = ? AND created_at >= ? ORDER BY created_at`,
		userID, since.UTC().Format(timeFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("query reflections: %w", err)
	}
	defer rows.Close()

	var out []activity.Reflection
	for rows.Next() {
		var at string
		var r activity.Reflection
		if err := rows.Scan(&r.Text, &at); err != nil {
			return nil, fmt.Errorf("scan reflection: %w", err)
		}
		r.CreatedAt, _ = time.Parse(timeFormat, at)
		out = append(out, r)
	}
	return out, rows.Err()
}
// #endregion fetch-window

// #region fog-state
// ReadPreviousFog returns the last persisted fog value for userID.
// ok is false when nothing has been written yet.
func (s *Store) ReadPreviousFog(ctx context.Context, userID string) (float64, bool, error) {
	var v float64
	err := s.db.QueryRowContext(ctx,
		`SELECT fog_value FROM fog_state WHERE user_id = ?`, userID,
	).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read fog: %w", err)
	}
	return v, true, nil
}

// WriteFogState upserts the fog state for userID and appends a history row.
// Last write wins.
func (s *Store) WriteFogState(ctx context.Context, userID string, st fog.State, scores signals.Scores) error {
	if err := activity.CheckUser(userID); err != nil {
		return err
	}
	now := s.now().UTC().Format(timeFormat)
	score := fog.Aggregate(scores)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO fog_state (user_id, fog_value, fog_bucket, clarity_score,
			checkins, recovery, alignment, reflection, consistency, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			fog_value = excluded.fog_value,
			fog_bucket = excluded.fog_bucket,
			clarity_score = excluded.clarity_score,
			checkins = excluded.checkins,
			recovery = excluded.recovery,
			alignment = excluded.alignment,
			reflection = excluded.reflection,
			consistency = excluded.consistency,
			updated_at = excluded.updated_at`,
		userID, st.FogValue, string(st.FogBucket), score,
		scores.Checkins, scores.Recovery, scores.Alignment, scores.Reflection, scores.Consistency,
		now,
	)
	if err != nil {
		return fmt.Errorf("upsert fog: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO fog_history (user_id, fog_value, fog_bucket, clarity_score, computed_at)
		 VALUES (?, ?, ?, ?, ?)`,
		userID, st.FogValue, string(st.FogBucket), score, now,
	)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetSnapshot returns the persisted fog state for userID.
func (s *Store) GetSnapshot(ctx context.Context, userID string) (Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, fog_value, fog_bucket, clarity_score,
			checkins, recovery, alignment, reflection, consistency, updated_at
		 FROM fog_state WHERE user_id = ?`, userID,
	)
	snap, err := scanSnapshot(row)
	if err != nil {
		return Snapshot{}, fmt.Errorf("get snapshot %s: %w", userID, err)
	}
	return snap, nil
}

// ListSnapshots returns the most recently updated fog states across users.
func (s *Store) ListSnapshots(ctx context.Context, limit int) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, fog_value, fog_bucket, clarity_score,
			checkins, recovery, alignment, reflection, consistency, updated_at
		 FROM fog_state ORDER BY updated_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// ListFogHistory returns up to limit past writes for userID, newest first.
func (s *Store) ListFogHistory(ctx context.Context, userID string, limit int) ([]HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, user_id, fog_value, fog_bucket, clarity_score, computed_at
		 FROM fog_history WHERE user_id = ? ORDER BY seq DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var h HistoryEntry
		var bucket, at string
		if err := rows.Scan(&h.Seq, &h.UserID, &h.State.FogValue, &bucket, &h.ClarityScore, &at); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		h.State.FogBucket = fog.Bucket(bucket)
		h.ComputedAt, _ = time.Parse(timeFormat, at)
		out = append(out, h)
	}
	return out, rows.Err()
}
// #endregion fog-state

// #region helpers
type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (Snapshot, error) {
	var snap Snapshot
	var bucket, at string
	err := row.Scan(&snap.UserID, &snap.State.FogValue, &bucket, &snap.ClarityScore,
		&snap.Scores.Checkins, &snap.Scores.Recovery, &snap.Scores.Alignment,
		&snap.Scores.Reflection, &snap.Scores.Consistency, &at)
	if err != nil {
		return Snapshot{}, err
	}
	snap.State.FogBucket = fog.Bucket(bucket)
	snap.UpdatedAt, _ = time.Parse(timeFormat, at)
	return snap, nil
}
// #endregion helpers
