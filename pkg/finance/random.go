// Package finance implements the yearly numeric models of the simulation:
// portfolio growth and household cash flow, life satisfaction, and mortgage
// eligibility. All randomness comes from an injectable Source so tests can
// seed it.
package finance

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

// Source yields uniform floats in [0, 1).
type Source interface {
	Float64() float64
}

// lockedSource guards a *rand.Rand so one source can be shared by every
// session of a server.
type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedSource) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// NewSource returns a PCG-backed source. A zero seed seeds from the clock.
func NewSource(seed uint64) Source {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &lockedSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Normal draws from N(mean, stddev²) with the Box–Muller transform:
// z = sqrt(-2 ln u1) * cos(2π u2) for independent uniforms u1, u2.
func Normal(src Source, mean, stddev float64) float64 {
	u1 := src.Float64()
	for u1 <= math.SmallestNonzeroFloat64 {
		u1 = src.Float64()
	}
	u2 := src.Float64()
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	return mean + stddev*z
}
