// Package chance provides the random source used by every stochastic decision
// the bot makes, so tests can force any branch.
package chance

import "math/rand/v2"

// Source is the subset of math/rand/v2 the bot needs.
type Source interface {
	// IntN returns a value in [0, n). It panics if n <= 0.
	IntN(n int) int
	// Float64 returns a value in [0.0, 1.0).
	Float64() float64
}

type global struct{}

func (global) IntN(n int) int   { return rand.IntN(n) }
func (global) Float64() float64 { return rand.Float64() }

// Default returns a Source backed by the goroutine-safe top-level math/rand/v2 functions.
func Default() Source {
	return global{}
}

// Seeded returns a deterministic Source. It is not safe for concurrent use.
func Seeded(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// OneIn reports true with probability 1/n.
func OneIn(r Source, n int) bool {
	return r.IntN(n) == 0
}

// Pick returns a random element of items, or the zero value when items is empty.
func Pick[T any](r Source, items []T) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	return items[r.IntN(len(items))], true
}
