package proof

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/activity"
)

// TimeFormat is fixed-width so stored timestamps sort lexically.
const TimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// #region validate

// Normalize checks an append request and returns the trimmed text.
func Normalize(userID string, module Module, shortText string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", activity.ErrEmptyUser
	}
	if _, ok := modules[module]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownModule, module)
	}
	text := strings.TrimSpace(shortText)
	if text == "" {
		return "", ErrEmptyText
	}
	if n := utf8.RuneCountInString(text); n > MaxTextLength {
		return "", fmt.Errorf("%w: %d > %d runes", ErrTextTooLong, n, MaxTextLength)
	}
	return text, nil
}

// ClampLimit applies DefaultListLimit and MaxListLimit.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

// #endregion validate

// #region sqlite-log

// SQLiteLog stores proofs in the life_proofs table of a SQLite database.
type SQLiteLog struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteLog wraps db. The life_proofs table must already exist.
func NewSQLiteLog(db *sql.DB) *SQLiteLog {
	return &SQLiteLog{db: db, now: time.Now}
}

// Append writes a new proof and returns it.
func (l *SQLiteLog) Append(ctx context.Context, userID string, module Module, shortText, sourceID string) (LifeProof, error) {
	text, err := Normalize(userID, module, shortText)
	if err != nil {
		return LifeProof{}, err
	}
	p := LifeProof{
		ID:        uuid.New().String(),
		UserID:    userID,
		Module:    module,
		ShortText: text,
		CreatedAt: l.now().UTC(),
		SourceID:  strings.TrimSpace(sourceID),
	}

	_, err = l.db.ExecContext(ctx,
		`INSERT INTO life_proofs (id, user_id, module, short_text, created_at, source_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, string(p.Module), p.ShortText,
		p.CreatedAt.Format(TimeFormat), nullIfEmpty(p.SourceID),
	)
	if err != nil {
		return LifeProof{}, fmt.Errorf("append proof: %w", err)
	}
	return p, nil
}

// ListRecent returns up to limit proofs for userID, newest first.
func (l *SQLiteLog) ListRecent(ctx context.Context, userID string, limit int) ([]LifeProof, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, user_id, module, short_text, created_at, source_id
		 FROM life_proofs WHERE user_id = ?
		 ORDER BY created_at DESC, seq DESC LIMIT ?`,
		userID, ClampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("list proofs: %w", err)
	}
	defer rows.Close()

	var out []LifeProof
	for rows.Next() {
		var p LifeProof
		var module, created string
		var source sql.NullString
		if err := rows.Scan(&p.ID, &p.UserID, &module, &p.ShortText, &created, &source); err != nil {
			return nil, fmt.Errorf("scan proof: %w", err)
		}
		p.Module = Module(module)
		p.CreatedAt, _ = time.Parse(TimeFormat, created)
		if source.Valid {
			p.SourceID = source.String
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// #endregion sqlite-log

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
