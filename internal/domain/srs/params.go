package srs

import (
	"errors"
	"fmt"

	"github.com/phrazzld/recall-api/internal/domain"
)

// DefaultIntervalTable maps a stage index to the number of days until the
// next review.
var DefaultIntervalTable = [domain.MaxStage + 1]int{domain.InitialIntervalDays, 4, 7, 30, 90}

// ErrInvalidParams is returned when a ParamsConfig cannot produce a usable ladder.
var ErrInvalidParams = errors.New("invalid srs params")

// Params defines all configurable parameters for the SRS algorithm
type Params struct {
	// IntervalTable is indexed by stage; its length fixes the stage ceiling.
	IntervalTable [domain.MaxStage + 1]int

	// StageDelta is how far each performance moves an item up the ladder.
	// Again is special-cased to reset to stage 0 and is not looked up here.
	StageDelta map[domain.Performance]int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance.
// Zero values keep the defaults.
type ParamsConfig struct {
	IntervalDays []int

	HardStageDelta   int
	MediumStageDelta int
	EasyStageDelta   int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		IntervalTable: DefaultIntervalTable,
		StageDelta: map[domain.Performance]int{
			domain.PerformanceHard:   1,
			domain.PerformanceMedium: 1,
			domain.PerformanceEasy:   2,
		},
	}
}

// NewParams creates a new Params instance with custom configuration.
// IntervalDays, when set, must hold one strictly positive, non-decreasing
// entry per stage.
func NewParams(config ParamsConfig) (*Params, error) {
	params := NewDefaultParams()

	if len(config.IntervalDays) > 0 {
		if len(config.IntervalDays) != len(params.IntervalTable) {
			return nil, fmt.Errorf("%w: interval table needs %d entries, got %d",
				ErrInvalidParams, len(params.IntervalTable), len(config.IntervalDays))
		}
		prev := 0
		for i, days := range config.IntervalDays {
			if days < 1 || days < prev {
				return nil, fmt.Errorf("%w: interval for stage %d must be >= max(1, %d), got %d",
					ErrInvalidParams, i, prev, days)
			}
			params.IntervalTable[i] = days
			prev = days
		}
	}

	if config.HardStageDelta > 0 {
		params.StageDelta[domain.PerformanceHard] = config.HardStageDelta
	}
	if config.MediumStageDelta > 0 {
		params.StageDelta[domain.PerformanceMedium] = config.MediumStageDelta
	}
	if config.EasyStageDelta > 0 {
		params.StageDelta[domain.PerformanceEasy] = config.EasyStageDelta
	}

	return params, nil
}

// IntervalFor returns the days until the next review for a stage.
// Out-of-range stages are clamped to the ladder.
func (p *Params) IntervalFor(stage int) int {
	return p.IntervalTable[clampStage(stage)]
}
