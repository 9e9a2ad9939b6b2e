package strategy

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"roulette-lab/internal/domain"
)

// Registry errors
var (
	ErrUnknownStrategy   = errors.New("unknown strategy")
	ErrDuplicateStrategy = errors.New("duplicate strategy id")
)

// Registry maps strategy identifiers to strategies.
// Thread-safe for concurrent access.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
	configs    map[string]domain.StrategyConfig
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		strategies: make(map[string]Strategy),
		configs:    make(map[string]domain.StrategyConfig),
	}
}

// NewRegistryFromConfigs builds a registry from a strategy catalog.
func NewRegistryFromConfigs(cfgs []domain.StrategyConfig) (*Registry, error) {
	r := NewRegistry()
	for _, cfg := range cfgs {
		if err := r.RegisterConfig(cfg); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a strategy. Returns ErrDuplicateStrategy if the id is taken.
func (r *Registry) Register(s Strategy) error {
	if s.ID() == "" {
		return domain.NewValidationError("id", "must not be empty", ErrMissingID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.strategies[s.ID()]; exists {
		return fmt.Errorf("register %s: %w", s.ID(), ErrDuplicateStrategy)
	}
	r.strategies[s.ID()] = s
	return nil
}

// RegisterConfig builds a strategy from cfg and registers it, keeping cfg for listing.
func (r *Registry) RegisterConfig(cfg domain.StrategyConfig) error {
	s, err := FromConfig(cfg)
	if err != nil {
		return fmt.Errorf("strategy %q: %w", cfg.ID, err)
	}
	if err := r.Register(s); err != nil {
		return err
	}

	r.mu.Lock()
	r.configs[cfg.ID] = cfg
	r.mu.Unlock()
	return nil
}

// Get returns the strategy registered under id.
func (r *Registry) Get(id string) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.strategies[id]
	if !ok {
		return Strategy{}, fmt.Errorf("strategy %q: %w", id, ErrUnknownStrategy)
	}
	return s, nil
}

// Config returns the configuration a strategy was built from, if any.
func (r *Registry) Config(id string) (domain.StrategyConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.configs[id]
	return cfg, ok
}

// List returns all strategies sorted by id.
func (r *Registry) List() []Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Strategy, 0, len(r.strategies))
	for _, s := range r.strategies {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID() < out[j].ID()
	})
	return out
}

// Len returns the number of registered strategies.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.strategies)
}
