package strategy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/shared"
	"github.com/erp/pricing/internal/domain/shared/strategy"
)

// StrategyRegistry manages strategy registrations
type StrategyRegistry struct {
	mu                 sync.RWMutex
	resolutionPolicies map[string]pricing.ResolutionPolicy
	defaults           map[strategy.StrategyType]string
}

// NewStrategyRegistry creates a new strategy registry
func NewStrategyRegistry() *StrategyRegistry {
	return &StrategyRegistry{
		resolutionPolicies: make(map[string]pricing.ResolutionPolicy),
		defaults:           make(map[strategy.StrategyType]string),
	}
}

// RegisterResolutionPolicy registers a conflict resolution policy
func (r *StrategyRegistry) RegisterResolutionPolicy(p pricing.ResolutionPolicy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if _, exists := r.resolutionPolicies[name]; exists {
		return fmt.Errorf("%w: resolution strategy '%s' already registered", shared.ErrAlreadyExists, name)
	}
	r.resolutionPolicies[name] = p
	return nil
}

// GetResolutionPolicy returns a policy by name, or the default if name is empty.
// Unknown names fail with pricing.ErrInvalidStrategy.
func (r *StrategyRegistry) GetResolutionPolicy(name string) (pricing.ResolutionPolicy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name == "" {
		name = r.defaults[strategy.StrategyTypeResolution]
		if name == "" {
			return nil, fmt.Errorf("%w: no default resolution strategy set", shared.ErrNotFound)
		}
	}

	parsed, err := pricing.ParseResolutionStrategy(name)
	if err != nil {
		return nil, err
	}
	p, exists := r.resolutionPolicies[parsed.String()]
	if !exists {
		return nil, pricing.ErrInvalidStrategy.WithMessage("Resolution strategy '%s' is not registered", name)
	}
	return p, nil
}

// DefaultResolutionStrategy returns the configured default
func (r *StrategyRegistry) DefaultResolutionStrategy() pricing.ResolutionStrategy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return pricing.ResolutionStrategy(r.defaults[strategy.StrategyTypeResolution])
}

// ListResolutionPolicies returns all registered policies sorted by name
func (r *StrategyRegistry) ListResolutionPolicies() []pricing.ResolutionPolicy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.resolutionPolicies))
	for name := range r.resolutionPolicies {
		names = append(names, name)
	}
	sort.Strings(names)

	policies := make([]pricing.ResolutionPolicy, 0, len(names))
	for _, name := range names {
		policies = append(policies, r.resolutionPolicies[name])
	}
	return policies
}

// UnregisterResolutionPolicy removes a policy
func (r *StrategyRegistry) UnregisterResolutionPolicy(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.resolutionPolicies[name]; !exists {
		return fmt.Errorf("%w: resolution strategy '%s' not found", shared.ErrNotFound, name)
	}
	delete(r.resolutionPolicies, name)

	if r.defaults[strategy.StrategyTypeResolution] == name {
		delete(r.defaults, strategy.StrategyTypeResolution)
	}
	return nil
}

// SetDefault sets the default strategy for a type
func (r *StrategyRegistry) SetDefault(strategyType strategy.StrategyType, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !strategyType.IsValid() {
		return fmt.Errorf("%w: invalid strategy type '%s'", shared.ErrInvalidInput, strategyType)
	}
	if _, exists := r.resolutionPolicies[name]; !exists {
		return fmt.Errorf("%w: resolution strategy '%s' not found", shared.ErrNotFound, name)
	}
	r.defaults[strategyType] = name
	return nil
}

// GetDefault returns the default strategy name for a type
func (r *StrategyRegistry) GetDefault(strategyType strategy.StrategyType) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaults[strategyType]
}
