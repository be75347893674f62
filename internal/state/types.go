package state

import (
	"time"

	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/fog"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/signals"
)

// #region snapshot
// Snapshot is the persisted fog reading for one user.
type Snapshot struct {
	UserID       string         `json:"user_id"`
	State        fog.State      `json:"fog"`
	ClarityScore float64        `json:"clarity_score"`
	Scores       signals.Scores `json:"scores"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
// #endregion snapshot

// #region history-entry
// HistoryEntry is one past write of a user's fog state.
type HistoryEntry struct {
	Seq          int64     `json:"seq"`
	UserID       string    `json:"user_id"`
	State        fog.State `json:"fog"`
	ClarityScore float64   `json:"clarity_score"`
	ComputedAt   time.Time `json:"computed_at"`
}
// #endregion history-entry
