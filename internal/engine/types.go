package engine

import (
	"context"
	"time"

	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/activity"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/eval"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/fog"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/gate"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/signals"
)

// #region interfaces

// ActivitySource reads a user's trailing activity windows.
type ActivitySource interface {
	FetchActivityWindow(ctx context.Context, userID string, now time.Time) (activity.Window, error)
}

// FogStore reads and writes the per-user fog state.
type FogStore interface {
	ReadPreviousFog(ctx context.Context, userID string) (float64, bool, error)
	WriteFogState(ctx context.Context, userID string, st fog.State, scores signals.Scores) error
}

// Store is everything the engine needs from persistence.
type Store interface {
	ActivitySource
	FogStore
}

// #endregion interfaces

// #region config

// Config controls an Engine.
type Config struct {
	Location     *time.Location // day boundaries for consistency
	WriteTimeout time.Duration  // bound on each background write
	Gate         gate.Config
	Eval         eval.EvalConfig
}

// DefaultConfig returns UTC days, a 10s write timeout, and default gate and eval settings.
func DefaultConfig() Config {
	return Config{
		Location:     time.UTC,
		WriteTimeout: 10 * time.Second,
		Gate:         gate.DefaultConfig(),
		Eval:         eval.DefaultEvalConfig(),
	}
}

// #endregion config

// #region result

// PrevSource says where the previous fog value came from.
type PrevSource string

const (
	PrevPersisted PrevSource = "persisted"
	PrevCached    PrevSource = "cached"
	PrevDefault   PrevSource = "default"
)

// Result is one computation as seen by callers.
type Result struct {
	UserID     string          `json:"user_id"`
	ComputedAt time.Time       `json:"computed_at"`
	Fog        fog.Result      `json:"result"`
	PrevSource PrevSource      `json:"previous_source"`
	Screen     gate.Report     `json:"screen"`
	Eval       eval.EvalResult `json:"eval"`
	// WriteQueued is true when the result passed eval and a write was started.
	WriteQueued bool `json:"write_queued"`
}

// #endregion result
