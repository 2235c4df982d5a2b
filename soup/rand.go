package soup

import (
	"math/rand"
	"time"
)

// Source is the random number source used by every randomized operation
// (population seeding, crossover point, mutation point and slot choice).
// *rand.Rand satisfies it.
type Source interface {
	// Intn returns a uniformly distributed integer in [0, n). n must be positive.
	Intn(n int) int
}

// NewSource returns a math/rand backed Source. A zero seed picks a time-based seed.
func NewSource(seed int64) Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
