package core

import "math/rand"

// Sampler is the uniform generator behind jittered anti-aliasing.
// Implementations are not safe for concurrent use; give each worker its own.
type Sampler interface {
	// Jitter returns a uniform sample in [-0.5, 0.5)
	Jitter() float64
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler with its own deterministic stream
func NewSeededSampler(seed int64) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewSource(seed)))
}

// Jitter returns a random float64 in [-0.5, 0.5)
func (r *RandomSampler) Jitter() float64 {
	return r.random.Float64() - 0.5
}

// CenterSampler always samples the pixel center
type CenterSampler struct{}

// Jitter implements Sampler
func (CenterSampler) Jitter() float64 { return 0 }
