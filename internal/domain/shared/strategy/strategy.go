// Package strategy holds the plug-in contract shared by pricing strategies.
package strategy

// StrategyType groups strategies that answer the same question. The
// registry keeps one default per type.
type StrategyType string

// StrategyTypeResolution strategies decide what happens to more specific
// prices when a broader price changes underneath them.
const StrategyTypeResolution StrategyType = "resolution"

func (t StrategyType) String() string { return string(t) }

// IsValid reports whether the registry accepts defaults for t
func (t StrategyType) IsValid() bool {
	switch t {
	case StrategyTypeResolution:
		return true
	}
	return false
}

// Strategy is what the registry and the strategies endpoint know about a
// plug-in; behaviour lives on the type-specific interfaces.
type Strategy interface {
	Name() string
	Type() StrategyType
	Description() string
}

// BaseStrategy is embedded by concrete strategies to satisfy Strategy
type BaseStrategy struct {
	name, description string
	kind              StrategyType
}

// NewBaseStrategy describes a strategy of the given type
func NewBaseStrategy(name string, kind StrategyType, description string) BaseStrategy {
	return BaseStrategy{name: name, description: description, kind: kind}
}

func (s BaseStrategy) Name() string        { return s.name }
func (s BaseStrategy) Type() StrategyType  { return s.kind }
func (s BaseStrategy) Description() string { return s.description }
