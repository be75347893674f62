package pgstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/proof"
)

// ProofLog stores proofs in the life_proofs table.
type ProofLog struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewProofLog wraps pool. The schema must already be migrated.
func NewProofLog(pool *pgxpool.Pool) *ProofLog {
	return &ProofLog{pool: pool, now: time.Now}
}

// Append writes a new proof and returns it.
func (l *ProofLog) Append(ctx context.Context, userID string, module proof.Module, shortText, sourceID string) (proof.LifeProof, error) {
	text, err := proof.Normalize(userID, module, shortText)
	if err != nil {
		return proof.LifeProof{}, err
	}
	p := proof.LifeProof{
		ID:        uuid.New().String(),
		UserID:    userID,
		Module:    module,
		ShortText: text,
		// Postgres keeps microseconds
		CreatedAt: l.now().UTC().Truncate(time.Microsecond),
		SourceID:  strings.TrimSpace(sourceID),
	}
	var source *string
	if p.SourceID != "" {
		source = &p.SourceID
	}
	_, err = l.pool.Exec(ctx, `
INSERT INTO life_proofs (id, user_id, module, short_text, created_at, source_id)
VALUES ($1,$2,$3,$4,$5,$6)`,
		p.ID, p.UserID, string(p.Module), p.ShortText, p.CreatedAt, source,
	)
	if err != nil {
		return proof.LifeProof{}, fmt.Errorf("append proof: %w", err)
	}
	return p, nil
}

// ListRecent returns up to limit proofs for userID, newest first.
func (l *ProofLog) ListRecent(ctx context.Context, userID string, limit int) ([]proof.LifeProof, error) {
	rows, err := l.pool.Query(ctx, `
SELECT id, user_id, module, short_text, created_at, COALESCE(source_id, '')
FROM life_proofs WHERE user_id = $1
ORDER BY created_at DESC, seq DESC LIMIT $2`, userID, proof.ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list proofs: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (proof.LifeProof, error) {
		var p proof.LifeProof
		var module string
		err := row.Scan(&p.ID, &p.UserID, &module, &p.ShortText, &p.CreatedAt, &p.SourceID)
		p.Module = proof.Module(module)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan proof: %w", err)
	}
	return out, nil
}
