package engine

import (
	"errors"
	"fmt"
	"os"

	"github.com/dnldd/swing/candidate"
	"github.com/dnldd/swing/indicator"
	"github.com/dnldd/swing/regime"
	"github.com/dnldd/swing/risk"
	"github.com/dnldd/swing/scoring"
	"gopkg.in/yaml.v3"
)

// Tunables represents every numeric heuristic of the analysis pipeline.
type Tunables struct {
	Indicator indicator.Config `yaml:"indicator"`
	Candidate candidate.Config `yaml:"candidate"`
	Scoring   scoring.Config   `yaml:"scoring"`
	Risk      risk.Config      `yaml:"risk"`
	Regime    regime.Config    `yaml:"regime"`
}

// DefaultTunables returns a fresh copy of the default tunables.
func DefaultTunables() *Tunables {
	return &Tunables{
		Indicator: *indicator.DefaultConfig(),
		Candidate: *candidate.DefaultConfig(),
		Scoring:   *scoring.DefaultConfig(),
		Risk:      *risk.DefaultConfig(),
		Regime:    *regime.DefaultConfig(),
	}
}

// ParseTunables decodes yaml tunables over the defaults. Omitted fields keep their default.
func ParseTunables(data []byte) (*Tunables, error) {
	t := DefaultTunables()
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("decoding tunables: %w", err)
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	return t, nil
}

// LoadTunables reads yaml tunables from the provided file path.
func LoadTunables(path string) (*Tunables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tunables file: %w", err)
	}

	return ParseTunables(data)
}

// Validate asserts the tunables are coherent.
func (t *Tunables) Validate() error {
	var errs error

	if t.Candidate.OKRiskReward <= 0 {
		errs = errors.Join(errs, fmt.Errorf("candidate ok risk reward must be positive"))
	}
	if t.Candidate.StopATR <= 0 || t.Candidate.EntryBandATR < 0 {
		errs = errors.Join(errs, fmt.Errorf("candidate atr multiples must be positive"))
	}
	if t.Candidate.InvalidationCloses < 1 {
		errs = errors.Join(errs, fmt.Errorf("candidate invalidation closes must be at least 1"))
	}
	if t.Scoring.MinConfidence >= t.Scoring.MaxConfidence {
		errs = errors.Join(errs, fmt.Errorf("scoring min confidence must be below max confidence"))
	}
	for idx := 1; idx < len(t.Scoring.Grades); idx++ {
		if t.Scoring.Grades[idx].Min >= t.Scoring.Grades[idx-1].Min {
			errs = errors.Join(errs, fmt.Errorf("scoring grades must descend by minimum score"))
			break
		}
	}
	if t.Risk.ATRMultiple <= 0 {
		errs = errors.Join(errs, fmt.Errorf("risk atr multiple must be positive"))
	}
	if t.Regime.Period < 2 {
		errs = errors.Join(errs, fmt.Errorf("regime period must be at least 2"))
	}

	return errs
}
