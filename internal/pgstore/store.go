package pgstore

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/activity"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/fog"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/signals"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/state"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// execer is satisfied by both the pool and a transaction.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store is the hosted Postgres adapter. It mirrors state.Store.
type Store struct {
	pool   *pgxpool.Pool
	proofs *ProofLog
	now    func() time.Time
}

// NewStore connects to databaseURL and applies pending migrations.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if err := migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool, proofs: NewProofLog(pool), now: time.Now}, nil
}

func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	sub, err := fs.Sub(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrations sub-fs: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, db, sub)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Proofs returns the proof log sharing this pool.
func (s *Store) Proofs() *ProofLog {
	return s.proofs
}

// RecordCheckIn stores an emotion check-in and returns its ID.
func (s *Store) RecordCheckIn(ctx context.Context, userID string, date time.Time, emotion string) (string, error) {
	label, err := activity.NormalizeCheckIn(userID, date, emotion)
	if err != nil {
		return "", err
	}
	id := uuid.New().String()
	if _, err := s.pool.Exec(ctx,
		`INSERT INTO check_ins (id, user_id, checked_at, emotion_label) VALUES ($1,$2,$3,$4)`,
		id, userID, date.UTC(), label,
	); err != nil {
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
	if _, err := s.pool.Exec(ctx,
		`INSERT INTO completed_tasks (id, user_id, completed_at) VALUES ($1,$2,$3)`,
		id, userID, completedAt.UTC(),
	); err != nil {
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
	if _, err := s.pool.Exec(ctx,
		`INSERT INTO reflections (id, user_id, text, created_at) VALUES ($1,$2,$3,$4)`,
		id, userID, text, createdAt.UTC(),
	); err != nil {
		return "", fmt.Errorf("insert reflection: %w", err)
	}
	return id, nil
}

// FetchActivityWindow reads the three windows for userID relative to now.
// Collections whose query fails come back empty and their errors are joined.
func (s *Store) FetchActivityWindow(ctx context.Context, userID string, now time.Time) (activity.Window, error) {
	b := activity.BoundsAt(now)
	var w activity.Window
	var errs []error

	rows, err := s.pool.Query(ctx,
		`SELECT checked_at, emotion_label FROM check_ins
		 WHERE user_id = $1 AND checked_at >= $2 ORDER BY checked_at`, userID, b.CheckInsSince)
	if err == nil {
		w.CheckIns, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (activity.CheckIn, error) {
			var c activity.CheckIn
			err := row.Scan(&c.Date, &c.EmotionLabel)
			return c, err
		})
	}
	if err != nil {
		errs = append(errs, fmt.Errorf("query check-ins: %w", err))
	}

	rows, err = s.pool.Query(ctx,
		`SELECT completed_at FROM completed_tasks
		 WHERE user_id = $1 AND completed_at >= $2 ORDER BY completed_at`, userID, b.TasksSince)
	if err == nil {
		w.Tasks, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (activity.CompletedTask, error) {
			var t activity.CompletedTask
			err := row.Scan(&t.CompletedAt)
			return t, err
		})
	}
	if err != nil {
		errs = append(errs, fmt.Errorf("query tasks: %w", err))
	}

	rows, err = s.pool.Query(ctx,
		`SELECT text, created_at FROM reflections
		 WHERE user_id = $1 AND created_at >= $2 ORDER BY created_at`, userID, b.ReflectionsSince)
	if err == nil {
		w.Reflections, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (activity.Reflection, error) {
			var r activity.Reflection
			err := row.Scan(&r.Text, &r.CreatedAt)
			return r, err
		})
	}
	if err != nil {
		errs = append(errs, fmt.Errorf("query reflections: %w", err))
	}

	return w, errors.Join(errs...)
}

// ReadPreviousFog returns the last persisted fog value; ok is false for new users.
func (s *Store) ReadPreviousFog(ctx context.Context, userID string) (float64, bool, error) {
	var v float64
	err := s.pool.QueryRow(ctx, `SELECT fog_value FROM fog_state WHERE user_id = $1`, userID).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read fog: %w", err)
	}
	return v, true, nil
}

// WriteFogState upserts the fog state and appends history in one transaction.
func (s *Store) WriteFogState(ctx context.Context, userID string, st fog.State, scores signals.Scores) error {
	if err := activity.CheckUser(userID); err != nil {
		return err
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := writeFog(ctx, tx, userID, st, scores, s.now().UTC()); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func writeFog(ctx context.Context, tx execer, userID string, st fog.State, scores signals.Scores, at time.Time) error {
	score := fog.Aggregate(scores)
	_, err := tx.Exec(ctx, `
INSERT INTO fog_state (user_id, fog_value, fog_bucket, clarity_score,
  checkins, recovery, alignment, reflection, consistency, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (user_id) DO UPDATE SET
  fog_value = EXCLUDED.fog_value,
  fog_bucket = EXCLUDED.fog_bucket,
  clarity_score = EXCLUDED.clarity_score,
  checkins = EXCLUDED.checkins,
  recovery = EXCLUDED.recovery,
  alignment = EXCLUDED.alignment,
  reflection = EXCLUDED.reflection,
  consistency = EXCLUDED.consistency,
  updated_at = EXCLUDED.updated_at`,
		userID, st.FogValue, string(st.FogBucket), score,
		scores.Checkins, scores.Recovery, scores.Alignment, scores.Reflection, scores.Consistency, at,
	)
	if err != nil {
		return fmt.Errorf("upsert fog: %w", err)
	}
	_, err = tx.Exec(ctx, `
INSERT INTO fog_history (user_id, fog_value, fog_bucket, clarity_score, computed_at)
VALUES ($1,$2,$3,$4,$5)`,
		userID, st.FogValue, string(st.FogBucket), score, at,
	)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

// GetSnapshot returns the persisted fog state for userID.
func (s *Store) GetSnapshot(ctx context.Context, userID string) (state.Snapshot, error) {
	var snap state.Snapshot
	var bucket string
	err := s.pool.QueryRow(ctx, `
SELECT user_id, fog_value, fog_bucket, clarity_score,
  checkins, recovery, alignment, reflection, consistency, updated_at
FROM fog_state WHERE user_id = $1`, userID).Scan(
		&snap.UserID, &snap.State.FogValue, &bucket, &snap.ClarityScore,
		&snap.Scores.Checkins, &snap.Scores.Recovery, &snap.Scores.Alignment,
		&snap.Scores.Reflection, &snap.Scores.Consistency, &snap.UpdatedAt,
	)
	if err != nil {
		return state.Snapshot{}, fmt.Errorf("get snapshot %s: %w", userID, err)
	}
	snap.State.FogBucket = fog.Bucket(bucket)
	return snap, nil
}

// ListFogHistory returns up to limit past writes for userID, newest first.
func (s *Store) ListFogHistory(ctx context.Context, userID string, limit int) ([]state.HistoryEntry, error) {
	rows, err := s.pool.Query(ctx, `
SELECT seq, user_id, fog_value, fog_bucket, clarity_score, computed_at
FROM fog_history WHERE user_id = $1 ORDER BY seq DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (state.HistoryEntry, error) {
		var h state.HistoryEntry
		var bucket string
		err := row.Scan(&h.Seq, &h.UserID, &h.State.FogValue, &bucket, &h.ClarityScore, &h.ComputedAt)
		h.State.FogBucket = fog.Bucket(bucket)
		return h, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan history: %w", err)
	}
	return out, nil
}
