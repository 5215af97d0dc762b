// Package random provides the uniform source every rule draws from.
//
// Rules never keep their own generators; they share one Source per session
// so that a configured seed reproduces a whole game.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// Source is a uniform random source.
type Source interface {
	// Float64 returns a value in [0.0, 1.0).
	Float64() float64
	// IntN returns a value in [0, n). It panics if n <= 0.
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }
func (globalSource) IntN(n int) int   { return rand.IntN(n) }

// Global returns the process-wide source.
func Global() Source { return globalSource{} }

// NewSeeded returns a deterministic source for seed.
func NewSeeded(seed int64) Source {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Choice returns a uniformly chosen element of items. items must not be empty.
func Choice[T any](src Source, items []T) T {
	return items[src.IntN(len(items))]
}

// Chance reports whether a uniform draw falls at or below p.
func Chance(src Source, p float64) bool {
	return src.Float64() <= p
}

// Scripted replays fixed draws, for tests. Float64 and IntN consume from
// their own queues and fall back to 0 when exhausted.
type Scripted struct {
	Floats []float64
	Ints   []int
}

func (s *Scripted) Float64() float64 {
	if len(s.Floats) == 0 {
		return 0
	}
	f := s.Floats[0]
	s.Floats = s.Floats[1:]
	return f
}

func (s *Scripted) IntN(n int) int {
	if len(s.Ints) == 0 {
		return 0
	}
	v := s.Ints[0] % n
	s.Ints = s.Ints[1:]
	return v
}
