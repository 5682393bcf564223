package evolve

import (
	"math"
	"sync"
	"sync/atomic"
)

// slot is one population member: a bytecode body plus its last-evaluated
// fitness and rank. Grounded on wyf-ACCEPT-eth2030's sharded state
// (pkg/core/state/sharded_state.go): there, each shard carries its own
// lock so a writer touches only the shard it routes into while other
// shards stay lockable; here, each population slot carries its own lock so
// a worker commits only the slot it selected as "worst" this generation
// while every other slot's fitness/rank stays readable lock-free
// (SPEC_FULL.md §5's "lock only the slot you write" requirement).
//
// fitness and rank are stored as atomic bit patterns rather than behind the
// mutex: SPEC_FULL.md §9 calls for atomic-word reads on these two fields
// specifically, reserving the per-slot lock for the combined
// bytecode-plus-stats commit.
type slot struct {
	mu       sync.Mutex
	bytecode []byte
	fitBits  atomic.Uint64
	rankBits atomic.Uint64
}

func (s *slot) fitness() float64 { return math.Float64frombits(s.fitBits.Load()) }
func (s *slot) rank() float64    { return math.Float64frombits(s.rankBits.Load()) }

func (s *slot) bytecodeCopy() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]byte, len(s.bytecode))
	copy(out, s.bytecode)
	return out
}

// commit replaces the slot's bytecode and stats atomically with respect to
// other commits to this slot; fitness/rank become visible to lock-free
// readers the instant each Store executes.
func (s *slot) commit(bytecode []byte, fitness, rank float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bytecode = bytecode
	s.fitBits.Store(math.Float64bits(fitness))
	s.rankBits.Store(math.Float64bits(rank))
}
