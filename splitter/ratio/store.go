// Package ratio holds the split-ratio value the dispatcher reads on every
// call, and the optimizer that recomputes it from bandwidth-table lookups.
package ratio

import (
	"sync/atomic"

	"github.com/netcas/splitter/splitter/tunables"
)

// SplitScale is the fixed-point scale of the ratio: SplitScale means "100% of
// eligible requests to cache".
const SplitScale = tunables.SplitScale

// Store holds the current optimal split ratio. Per spec.md §4.5/§5, reads
// happen on every dispatch call and must never block a concurrent writer (and
// vice versa); an atomic word gives that without a reader/writer lock, since
// the ratio's consistency with other control-path fields is not required.
type Store struct {
	value atomic.Uint64
}

// NewStore returns a Store initialized to SplitScale (100% to cache), the
// spec's default at init and reset.
func NewStore() *Store {
	s := &Store{}
	s.value.Store(SplitScale)
	return s
}

// Load returns the current ratio.
func (s *Store) Load() uint64 { return s.value.Load() }

// Store sets the ratio, clamping to [0, SplitScale].
func (s *Store) Store(r uint64) {
	if r > SplitScale {
		r = SplitScale
	}
	s.value.Store(r)
}

// Reset restores the default ratio (SplitScale).
func (s *Store) Reset() { s.value.Store(SplitScale) }
