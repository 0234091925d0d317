package strategy

import (
	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/shared/strategy"
	"github.com/erp/pricing/internal/infrastructure/strategy/resolution"
)

// NewRegistryWithDefaults creates a registry holding the four built-in
// resolution policies. defaultName selects the policy used when a request
// names none; an empty value falls back to ASK.
func NewRegistryWithDefaults(defaultName string) (*StrategyRegistry, error) {
	r := NewStrategyRegistry()

	policies := []pricing.ResolutionPolicy{
		resolution.NewAskPolicy(),
		resolution.NewOverwritePolicy(),
		resolution.NewPreservePolicy(),
		resolution.NewRelativePolicy(),
	}
	for _, p := range policies {
		if err := r.RegisterResolutionPolicy(p); err != nil {
			return nil, err
		}
	}

	if defaultName == "" {
		defaultName = pricing.StrategyAsk.String()
	}
	parsed, err := pricing.ParseResolutionStrategy(defaultName)
	if err != nil {
		return nil, err
	}
	if err := r.SetDefault(strategy.StrategyTypeResolution, parsed.String()); err != nil {
		return nil, err
	}

	return r, nil
}
