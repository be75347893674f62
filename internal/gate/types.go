package gate

import "time"

// #region reason

// DropReason enumerates why a record was screened out.
type DropReason string

const (
	DropZeroTime      DropReason = "zero_timestamp"
	DropFuture        DropReason = "future_timestamp"
	DropOutsideWindow DropReason = "outside_window"
)

// #endregion reason

// #region dropped

// Dropped describes one screened-out record.
type Dropped struct {
	Kind   string // "check_in" | "task" | "reflection"
	At     time.Time
	Reason DropReason
}

// #endregion dropped

// #region config

// Config holds screening tolerances.
type Config struct {
	MaxClockSkew time.Duration // records this far past now are still accepted
}

// DefaultConfig tolerates one minute of clock skew between devices.
func DefaultConfig() Config {
	return Config{MaxClockSkew: time.Minute}
}

// #endregion config

// #region report

// Report summarizes one screening pass.
type Report struct {
	Kept    int
	Dropped []Dropped
}

// Clean reports whether every record survived.
func (r Report) Clean() bool {
	return len(r.Dropped) == 0
}

// #endregion report
