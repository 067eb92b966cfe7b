package intern

import (
	"fmt"
	"strings"
)

// Strategy selects how a pool searches for existing entries.
type Strategy string

// Supported lookup strategies.
const (
	StrategyHash   Strategy = "hash"
	StrategyLinear Strategy = "linear"
)

// Table is the full surface shared by Pool and LinearPool.
type Table interface {
	Interner
	Intern(string) (Handle, bool)
	Lookup(string) (Handle, bool)
	Values() []string
	Fingerprint() uint64
}

// ParseStrategy converts a user supplied name into a Strategy. An empty
// value selects the hash strategy.
func ParseStrategy(value string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(value))) {
	case "", StrategyHash:
		return StrategyHash, nil
	case StrategyLinear:
		return StrategyLinear, nil
	default:
		return "", fmt.Errorf("unknown intern strategy %q: expected %q or %q", value, StrategyHash, StrategyLinear)
	}
}

// New returns an empty table using the given strategy.
func New(strategy Strategy) Table {
	return NewFrom(strategy, nil)
}

// NewFrom returns a table using the given strategy seeded with values.
func NewFrom(strategy Strategy, values []string) Table {
	if strategy == StrategyLinear {
		return NewLinearPoolFrom(values)
	}
	return NewPoolFrom(values)
}
