package replay

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/eval"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/fog"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/signals"
)

// #region fixture-types

// Fixture is the top-level structure of a replay fixture. YAML is the
// native format; JSON fixtures parse too since JSON is valid YAML.
type Fixture struct {
	Description string            `yaml:"description"`
	StartFog    *float64          `yaml:"start_fog"`
	Config      FixtureConfig     `yaml:"config"`
	Sessions    []FixtureSession  `yaml:"sessions"`
	Expected    []FixtureExpected `yaml:"expected"`
}

// FixtureSession gives either raw counts or explicit sub-scores. Scores win
// when both are present.
type FixtureSession struct {
	ID     string          `yaml:"id"`
	Counts *signals.Counts `yaml:"counts"`
	Scores *signals.Scores `yaml:"scores"`
}

// FixtureExpected is the expected outcome of one session. Fog is optional.
type FixtureExpected struct {
	ID     string   `yaml:"id"`
	Action string   `yaml:"action"`
	Bucket string   `yaml:"bucket"`
	Fog    *float64 `yaml:"fog"`
}

// FixtureConfig overrides eval tolerances. Zero values keep the defaults.
type FixtureConfig struct {
	MaxFogJump float64 `yaml:"max_fog_jump"`
	Epsilon    float64 `yaml:"epsilon"`
	// Tolerance is how close a step's fog must be to its expected value.
	Tolerance float64 `yaml:"tolerance"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a YAML or JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	for i, s := range f.Sessions {
		if s.Counts == nil && s.Scores == nil {
			return nil, fmt.Errorf("parse fixture %s: session %d (%s) has neither counts nor scores", path, i, s.ID)
		}
	}
	return &f, nil
}

// ToSessions converts fixture sessions to domain sessions.
func (f *Fixture) ToSessions() []Session {
	out := make([]Session, len(f.Sessions))
	for i, s := range f.Sessions {
		out[i] = Session{ID: s.ID}
		switch {
		case s.Scores != nil:
			out[i].Scores = *s.Scores
		case s.Counts != nil:
			out[i].Scores = signals.FromCounts(*s.Counts)
		}
	}
	return out
}

// ToReplayConfig converts a FixtureConfig to a domain ReplayConfig.
func (fc *FixtureConfig) ToReplayConfig() ReplayConfig {
	cfg := ReplayConfig{EvalConfig: eval.DefaultEvalConfig()}
	if fc.MaxFogJump > 0 {
		cfg.EvalConfig.MaxFogJump = fc.MaxFogJump
	}
	if fc.Epsilon > 0 {
		cfg.EvalConfig.Epsilon = fc.Epsilon
	}
	return cfg
}

// #endregion fixture-loader

// #region fixture-check

// Check compares steps against the fixture's expectations and returns one
// message per mismatch.
func (f *Fixture) Check(steps []Step) []string {
	var out []string
	if len(steps) != len(f.Expected) {
		out = append(out, fmt.Sprintf("expected %d steps, got %d", len(f.Expected), len(steps)))
	}
	tol := f.Config.Tolerance
	if tol <= 0 {
		tol = 1e-9
	}
	for i, want := range f.Expected {
		if i >= len(steps) {
			break
		}
		got := steps[i]
		if want.ID != "" && got.SessionID != want.ID {
			out = append(out, fmt.Sprintf("step %d: expected id=%s, got %s", i, want.ID, got.SessionID))
		}
		if want.Action != "" && got.Action != want.Action {
			out = append(out, fmt.Sprintf("step %d (%s): expected action=%s, got %s (reason: %s)",
				i, got.SessionID, want.Action, got.Action, got.Reason))
		}
		if want.Bucket != "" && got.Result.State.FogBucket != fog.Bucket(want.Bucket) {
			out = append(out, fmt.Sprintf("step %d (%s): expected bucket=%s, got %s (fog %.6f)",
				i, got.SessionID, want.Bucket, got.Result.State.FogBucket, got.Result.State.FogValue))
		}
		if want.Fog != nil && math.Abs(got.Result.State.FogValue-*want.Fog) > tol {
			out = append(out, fmt.Sprintf("step %d (%s): expected fog=%.6f, got %.6f",
				i, got.SessionID, *want.Fog, got.Result.State.FogValue))
		}
	}
	return out
}

// #endregion fixture-check
