package service

import (
	"context"
	"time"

	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/engine"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/proof"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/state"
)

// #region interfaces

// Recorder stores raw activity.
type Recorder interface {
	RecordCheckIn(ctx context.Context, userID string, date time.Time, emotion string) (string, error)
	RecordTask(ctx context.Context, userID string, completedAt time.Time) (string, error)
	RecordReflection(ctx context.Context, userID, text string, createdAt time.Time) (string, error)
}

// HistoryReader lists past fog writes.
type HistoryReader interface {
	ListFogHistory(ctx context.Context, userID string, limit int) ([]state.HistoryEntry, error)
}

// Backend is a full persistence adapter. state.Store and pgstore.Store
// both satisfy it.
type Backend interface {
	engine.Store
	Recorder
	HistoryReader
}

// #endregion interfaces

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 500
)

// #region service

// Service is the operation set shared by the HTTP, gRPC, MCP and CLI surfaces.
type Service struct {
	engine     *engine.Engine
	backend    Backend
	proofs     proof.Log
	proofLimit func(int) int
	now        func() time.Time
}

// New wires a service. proofLimit may be nil, in which case proof.ClampLimit applies.
func New(eng *engine.Engine, backend Backend, proofs proof.Log, proofLimit func(int) int) *Service {
	if proofLimit == nil {
		proofLimit = proof.ClampLimit
	}
	return &Service{
		engine:     eng,
		backend:    backend,
		proofs:     proofs,
		proofLimit: proofLimit,
		now:        time.Now,
	}
}

// Compute runs one clarity computation.
func (s *Service) Compute(ctx context.Context, userID string) (engine.Result, error) {
	return s.engine.Compute(ctx, userID)
}

// Flush waits for background fog writes.
func (s *Service) Flush() {
	s.engine.Flush()
}

// RecordCheckIn stores a check-in. A zero date means now.
func (s *Service) RecordCheckIn(ctx context.Context, userID string, date time.Time, emotion string) (string, error) {
	return s.backend.RecordCheckIn(ctx, userID, s.orNow(date), emotion)
}

// RecordTask stores a task completion. A zero time means now.
func (s *Service) RecordTask(ctx context.Context, userID string, completedAt time.Time) (string, error) {
	return s.backend.RecordTask(ctx, userID, s.orNow(completedAt))
}

// RecordReflection stores a reflection. A zero time means now.
func (s *Service) RecordReflection(ctx context.Context, userID, text string, createdAt time.Time) (string, error) {
	return s.backend.RecordReflection(ctx, userID, text, s.orNow(createdAt))
}

// AppendProof adds an entry to the proof log.
func (s *Service) AppendProof(ctx context.Context, userID string, module proof.Module, shortText, sourceID string) (proof.LifeProof, error) {
	return s.proofs.Append(ctx, userID, module, shortText, sourceID)
}

// ListProofs returns recent proofs, newest first. Non-positive limits use the default.
func (s *Service) ListProofs(ctx context.Context, userID string, limit int) ([]proof.LifeProof, error) {
	return s.proofs.ListRecent(ctx, userID, s.proofLimit(limit))
}

// History returns past fog writes, newest first.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]state.HistoryEntry, error) {
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}
	return s.backend.ListFogHistory(ctx, userID, limit)
}

func (s *Service) orNow(t time.Time) time.Time {
	if t.IsZero() {
		return s.now()
	}
	return t
}

// #endregion service
