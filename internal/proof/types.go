package proof

import (
	"context"
	"errors"
	"time"
)

// #region module

// Module names the part of the product a proof came from.
type Module string

const (
	ModuleDiary         Module = "diary"
	ModuleCheckIn       Module = "checkin"
	ModuleJournal       Module = "journal"
	ModuleTracker       Module = "tracker"
	ModuleManifestation Module = "manifestation"
	ModuleNotes         Module = "notes"
	ModuleTasks         Module = "tasks"
	ModuleClarity       Module = "clarity"
)

var ordered = []Module{
	ModuleDiary, ModuleCheckIn, ModuleJournal, ModuleTracker,
	ModuleManifestation, ModuleNotes, ModuleTasks, ModuleClarity,
}

var modules = func() map[Module]struct{} {
	m := make(map[Module]struct{}, len(ordered))
	for _, mod := range ordered {
		m[mod] = struct{}{}
	}
	return m
}()

// Modules returns every accepted module in a stable order.
func Modules() []Module {
	return append([]Module(nil), ordered...)
}

// #endregion module

// #region errors

var (
	ErrEmptyText     = errors.New("proof text is required")
	ErrTextTooLong   = errors.New("proof text too long")
	ErrUnknownModule = errors.New("unknown proof module")
)

// #endregion errors

// #region life-proof

// LifeProof is one immutable piece of evidence of engagement.
type LifeProof struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Module    Module    `json:"module"`
	ShortText string    `json:"short_text"`
	CreatedAt time.Time `json:"created_at"`
	SourceID  string    `json:"source_id,omitempty"`
}

// #endregion life-proof

// #region limits

const (
	// MaxTextLength caps ShortText, counted in runes.
	MaxTextLength = 280
	// DefaultListLimit applies when a caller passes a non-positive limit.
	DefaultListLimit = 5
	// MaxListLimit caps a single read.
	MaxListLimit = 100
)

// #endregion limits

// #region log-interface

// Log is the append-only proof log. sourceID may be empty.
type Log interface {
	Append(ctx context.Context, userID string, module Module, shortText, sourceID string) (LifeProof, error)
	ListRecent(ctx context.Context, userID string, limit int) ([]LifeProof, error)
}

// #endregion log-interface
