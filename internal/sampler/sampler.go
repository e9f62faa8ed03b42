package sampler

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

var (
	// ErrConfiguration is wrapped by every weight-table error.
	ErrConfiguration = errors.New("sampler: invalid weight table")

	ErrArity          = fmt.Errorf("%w: arity mismatch", ErrConfiguration)
	ErrNegativeWeight = fmt.Errorf("%w: negative weight", ErrConfiguration)
	ErrNonPositiveSum = fmt.Errorf("%w: weights sum to zero", ErrConfiguration)
)

// Sampler draws weighted and uniform random choices from one source.
// It is not safe for concurrent use.
type Sampler struct {
	rng *rand.Rand
}

// New wraps rng. A nil rng gets a fresh source seeded from crypto/rand.
func New(rng *rand.Rand) *Sampler {
	if rng == nil {
		rng = rand.New(rand.NewSource(seed()))
	}
	return &Sampler{rng: rng}
}

// NewSeeded is a convenience for deterministic callers (tests, replays).
func NewSeeded(seed int64) *Sampler {
	return New(rand.New(rand.NewSource(seed)))
}

func seed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}

// Sample returns a 1-based index i with probability weights[i-1]/sum.
// The draw is taken over the half-open interval [0, sum).
func (s *Sampler) Sample(arity int, weights ...float64) (int, error) {
	if arity <= 0 || len(weights) != arity {
		return 0, fmt.Errorf("%w: want %d weights, got %d", ErrArity, arity, len(weights))
	}

	sum := 0.0
	last := 0
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) {
			return 0, fmt.Errorf("%w: weights[%d]=%v", ErrNegativeWeight, i, w)
		}
		if w > 0 {
			last = i + 1
		}
		sum += w
	}
	if sum <= 0 || math.IsInf(sum, 0) {
		return 0, ErrNonPositiveSum
	}

	r := s.rng.Float64() * sum
	if r >= sum {
		r = math.Nextafter(sum, 0)
	}

	current := 0.0
	for i, w := range weights {
		current += w
		if w > 0 && r < current {
			return i + 1, nil
		}
	}
	return last, nil
}

// Intn returns a uniform index in [0, n). n must be positive.
func (s *Sampler) Intn(n int) int {
	return s.rng.Intn(n)
}

// closedSteps gives FloatClosed 2^53+1 evenly spaced outcomes, both ends included.
const closedSteps = 1 << 53

// FloatClosed draws uniformly from [lo, hi], both ends reachable.
func (s *Sampler) FloatClosed(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	u := float64(s.rng.Int63n(closedSteps+1)) / closedSteps
	v := lo + u*(hi-lo)
	if v > hi {
		return hi
	}
	return v
}
