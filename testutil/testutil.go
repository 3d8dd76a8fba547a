package testutil

import (
	"math"
	"math/rand"
	"slices"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64n returns a pseudo-random number in [0,n). n must be > 0.
func (r *RNG) Uint64n(n uint64) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n <= math.MaxInt64 {
		return uint64(r.rand.Int63n(int64(n)))
	}
	for {
		if v := r.rand.Uint64(); v < n {
			return v
		}
	}
}

// Text returns n symbols drawn uniformly from [0, sigma).
func (r *RNG) Text(n int, sigma uint64) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	text := make([]uint64, n)
	for i := range text {
		text[i] = uint64(r.rand.Int63n(int64(sigma)))
	}
	return text
}

// ZipfText returns n symbols over [0, sigma) with Zipfian frequencies.
// Skewed texts repeat q-grams far more often than uniform ones.
func (r *RNG) ZipfText(n int, sigma uint64, s float64) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	text := make([]uint64, n)
	for i := range text {
		text[i] = uint64(r.zipfLocked(int(sigma), s))
	}
	return text
}

// RepeatText returns n symbols made of one random unit of length period
// repeated end to end.
func (r *RNG) RepeatText(n, period int, sigma uint64) []uint64 {
	unit := r.Text(period, sigma)
	text := make([]uint64, n)
	for i := range text {
		text[i] = unit[i%period]
	}
	return text
}

// Zipf returns a Zipfian-distributed value in [0, n).
// P(k) ∝ 1/k^s where s is the skew parameter.
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked is the internal implementation (caller must hold lock).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1
		}
	}

	return n - 1
}

// Pattern returns a random substring of text of length m, or a random
// string over [0, sigma) when text is shorter than m.
func (r *RNG) Pattern(text []uint64, m int, sigma uint64) []uint64 {
	if m <= len(text) {
		start := r.Intn(len(text) - m + 1)
		return slices.Clone(text[start : start+m])
	}
	return r.Text(m, sigma)
}

// NaiveLocate returns every start position of pattern in text, ascending.
// An empty pattern has no occurrences.
func NaiveLocate(text, pattern []uint64) []uint64 {
	var out []uint64
	if len(pattern) == 0 {
		return out
	}
	for i := 0; i+len(pattern) <= len(text); i++ {
		if slices.Equal(text[i:i+len(pattern)], pattern) {
			out = append(out, uint64(i))
		}
	}
	return out
}
