// Package kmeans clusters flattened color samples with Lloyd's algorithm.
//
// Samples and centroids are stored flattened, dim float64 values per
// entry. The package also provides the two steps that precede clustering:
// reducing a sample grid to its distinct colors and drawing the initial
// centroids from them.
package kmeans

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/floats"
)

// ErrInsufficientUniqueColors indicates that more clusters were requested
// than distinct colors exist to seed them from.
type ErrInsufficientUniqueColors struct {
	Unique    int
	Requested int
}

func (e *ErrInsufficientUniqueColors) Error() string {
	return fmt.Sprintf("insufficient unique colors: %d clusters requested, only %d distinct colors available",
		e.Requested, e.Unique)
}

// State describes why the engine stopped.
type State int

const (
	// StateRunning is the in-flight state; Run never returns it.
	StateRunning State = iota
	// StateConverged means every centroid moved strictly less than the
	// tolerance in the final iteration.
	StateConverged
	// StateMaxIterationsReached means the iteration cap was hit first.
	StateMaxIterationsReached
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateConverged:
		return "converged"
	case StateMaxIterationsReached:
		return "max iterations reached"
	default:
		return fmt.Sprintf("unknown state %d", int(s))
	}
}

// Dedup returns the distinct samples of the flattened sequence in
// first-occurrence order. Two samples are equal when all dim channel
// values match exactly.
func Dedup(samples []float64, dim int) []float64 {
	n := len(samples) / dim

	seen := make(map[string]struct{}, n)
	unique := make([]float64, 0, len(samples))
	key := make([]byte, dim*8)

	for i := 0; i < n; i++ {
		s := samples[i*dim : (i+1)*dim]
		for j, v := range s {
			binary.BigEndian.PutUint64(key[j*8:], math.Float64bits(v))
		}
		if _, ok := seen[string(key)]; ok {
			continue
		}
		seen[string(key)] = struct{}{}
		unique = append(unique, s...)
	}

	return unique
}

// InitCentroids picks k distinct positions of the unique-color sequence
// uniformly at random, without replacement, and returns independent copies
// of the chosen colors as the initial centroids. A nil rng uses the
// package-level source.
func InitCentroids(unique []float64, dim, k int, rng *rand.Rand) ([]float64, error) {
	n := len(unique) / dim
	if k > n {
		return nil, &ErrInsufficientUniqueColors{Unique: n, Requested: k}
	}

	// A permutation prefix gives k distinct draws with a termination
	// guarantee, unlike the rejection-sampling loop it replaces.
	var perm []int
	if rng != nil {
		perm = rng.Perm(n)
	} else {
		perm = rand.Perm(n)
	}

	centroids := make([]float64, k*dim)
	for i := 0; i < k; i++ {
		copy(centroids[i*dim:(i+1)*dim], unique[perm[i]*dim:(perm[i]+1)*dim])
	}

	return centroids, nil
}

// Result holds the terminal state of a clustering run.
type Result struct {
	// Centroids is the final centroid set, flattened, k*dim values.
	Centroids []float64
	// Assignments maps each sample index to its cluster index. Every
	// sample has exactly one assignment.
	Assignments []int
	// Iterations is the number of full assignment/update passes executed.
	Iterations int
	// State is StateConverged or StateMaxIterationsReached.
	State State
}

// Run executes assignment/update passes over the samples until every
// centroid moves strictly less than tolerance in one iteration, or maxIter
// passes complete. The samples are read-only; the centroids slice is
// mutated in place and returned in the result.
//
// A cluster that receives no samples in an iteration keeps its previous
// centroid value exactly. This is deliberate policy, not an error: it
// avoids a divide by zero and keeps output deterministic for a given
// seeding.
//
// The context is checked once per iteration; iteration boundaries are the
// only safe cancellation points. The optional onIteration hook observes
// each completed pass with the largest centroid shift and the pass
// duration.
func Run(ctx context.Context, samples []float64, dim int, centroids []float64, maxIter int, tolerance float64, onIteration func(iteration int, shift float64, elapsed time.Duration)) (*Result, error) {
	n := len(samples) / dim
	k := len(centroids) / dim

	assignments := make([]int, n)
	counts := make([]int, k)
	sums := make([]float64, k*dim)
	prev := make([]float64, k*dim)

	state := StateMaxIterationsReached

	iter := 0
	for ; iter < maxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		copy(prev, centroids)

		// Assignment pass: nearest centroid by squared Euclidean distance
		// over all dim channels, lowest index winning ties.
		for i := 0; i < n; i++ {
			s := samples[i*dim : (i+1)*dim]
			best := 0
			bestDist := squaredL2(s, centroids[:dim])
			for j := 1; j < k; j++ {
				if d := squaredL2(s, centroids[j*dim:(j+1)*dim]); d < bestDist {
					bestDist = d
					best = j
				}
			}
			assignments[i] = best
		}

		// Update pass: per-channel mean over each cluster's members.
		for i := range sums {
			sums[i] = 0
		}
		for i := range counts {
			counts[i] = 0
		}
		for i := 0; i < n; i++ {
			a := assignments[i]
			floats.Add(sums[a*dim:(a+1)*dim], samples[i*dim:(i+1)*dim])
			counts[a]++
		}
		for j := 0; j < k; j++ {
			if counts[j] == 0 {
				// Empty cluster: centroid stays at its previous value.
				continue
			}
			floats.ScaleTo(centroids[j*dim:(j+1)*dim], 1/float64(counts[j]), sums[j*dim:(j+1)*dim])
		}

		// Converged iff every centroid moved strictly less than tolerance.
		converged := true
		maxShift := 0.0
		for j := 0; j < k; j++ {
			d := floats.Distance(prev[j*dim:(j+1)*dim], centroids[j*dim:(j+1)*dim], 2)
			if d > maxShift {
				maxShift = d
			}
			if d >= tolerance {
				converged = false
			}
		}

		if onIteration != nil {
			onIteration(iter, maxShift, time.Since(start))
		}

		if converged {
			state = StateConverged
			iter++
			break
		}
	}

	return &Result{
		Centroids:   centroids,
		Assignments: assignments,
		Iterations:  iter,
		State:       state,
	}, nil
}

func squaredL2(a, b []float64) float64 {
	var d float64
	for i, v := range a {
		delta := v - b[i]
		d += delta * delta
	}
	return d
}
