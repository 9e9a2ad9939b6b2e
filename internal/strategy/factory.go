package strategy

import (
	"errors"
	"fmt"

	"roulette-lab/internal/domain"
)

// Factory errors
var (
	ErrUnknownStrategyType = errors.New("unknown strategy type")
	ErrMissingID           = errors.New("strategy requires an id")
	ErrEmptyTriggerSet     = errors.New("FIXED requires at least one number or a preset")
	ErrInvalidNumber       = errors.New("trigger number outside 0..37")
	ErrUnknownPreset       = errors.New("unknown preset")
	ErrMissingLookback     = errors.New("LAST_N requires Lookback")
	ErrInvalidLookback     = errors.New("LAST_N lookback must be within 1..37")
	ErrMissingRadius       = errors.New("NEIGHBORS requires Radius")
	ErrInvalidRadius       = errors.New("NEIGHBORS radius must be within 0..18")
)

// maxLookback is the largest useful LAST_N window: beyond it every value has been seen.
const maxLookback = domain.MaxOutcome

// FromConfig creates a Strategy from domain.StrategyConfig.
// Every failure is a *domain.ValidationError wrapping one of the factory errors.
func FromConfig(cfg domain.StrategyConfig) (Strategy, error) {
	if cfg.ID == "" {
		return Strategy{}, domain.NewValidationError("id", "must not be empty", ErrMissingID)
	}

	var (
		s   Strategy
		err error
	)
	switch cfg.StrategyType {
	case domain.StrategyTypeFixed:
		s, err = fromFixedConfig(cfg)
	case domain.StrategyTypeLastN:
		s, err = fromLastNConfig(cfg)
	case domain.StrategyTypeNeighbors:
		s, err = fromNeighborsConfig(cfg)
	case domain.StrategyTypeRepeatLast:
		s = NewDerived(cfg.ID, RepeatLast())
	default:
		err = domain.NewValidationError("type", fmt.Sprintf("%q", cfg.StrategyType), ErrUnknownStrategyType)
	}
	if err != nil {
		return Strategy{}, err
	}

	return s.WithName(cfg.Name), nil
}

// fromFixedConfig creates a fixed strategy from explicit numbers and/or a preset.
func fromFixedConfig(cfg domain.StrategyConfig) (Strategy, error) {
	set, err := NewTriggerSet(cfg.Numbers)
	if err != nil {
		return Strategy{}, err
	}

	if cfg.Preset != "" {
		p, ok := Preset(cfg.Preset)
		if !ok {
			return Strategy{}, domain.NewValidationError("preset", fmt.Sprintf("%q", cfg.Preset), ErrUnknownPreset)
		}
		set = set.Union(p)
	}

	if set.IsEmpty() {
		return Strategy{}, domain.NewValidationError("numbers", "empty trigger set", ErrEmptyTriggerSet)
	}

	return NewFixed(cfg.ID, set), nil
}

// fromLastNConfig creates a LAST_N derived strategy from config.
func fromLastNConfig(cfg domain.StrategyConfig) (Strategy, error) {
	if cfg.Lookback == nil {
		return Strategy{}, domain.NewValidationError("lookback", "missing", ErrMissingLookback)
	}
	if *cfg.Lookback < 1 || *cfg.Lookback > maxLookback {
		return Strategy{}, domain.NewValidationError("lookback", fmt.Sprintf("%d", *cfg.Lookback), ErrInvalidLookback)
	}

	return NewDerived(cfg.ID, LastN(*cfg.Lookback)), nil
}

// fromNeighborsConfig creates a NEIGHBORS derived strategy from config.
func fromNeighborsConfig(cfg domain.StrategyConfig) (Strategy, error) {
	if cfg.Radius == nil {
		return Strategy{}, domain.NewValidationError("radius", "missing", ErrMissingRadius)
	}
	if *cfg.Radius < 0 || *cfg.Radius > MaxNeighborRadius {
		return Strategy{}, domain.NewValidationError("radius", fmt.Sprintf("%d", *cfg.Radius), ErrInvalidRadius)
	}

	return NewDerived(cfg.ID, Neighbors(*cfg.Radius)), nil
}
