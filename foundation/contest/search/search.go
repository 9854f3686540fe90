// Package search implements the client side brute force search for a
// candidate that solves a transaction's puzzle. The work is spread over a
// fixed number of goroutines that each walk their own range of nonces.
package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/ardanlabs/powcontest/foundation/contest/pow"
	"golang.org/x/sync/errgroup"
)

// ErrNotFound is returned when the search is cancelled before any worker
// finds a solution.
var ErrNotFound = errors.New("no solution found")

// DefaultStride is the distance between the starting nonces of two workers.
// Larger strides are reduced so the workers' ranges can't wrap.
const DefaultStride uint64 = 1 << 32

// nonceLimit bounds the random starting nonce.
const nonceLimit = math.MaxUint64 / 2

// EventHandler defines a function that is called when events
// occur during the search.
type EventHandler func(v string, args ...any)

// Config represents what is needed to run a search.
type Config struct {
	TxID       uint64
	ClientID   uint64
	Difficulty int
	Workers    int
	Oracle     pow.Oracle
	Stride     uint64
	Timeout    time.Duration
	Seed       uint64
	EvHandler  EventHandler
}

// Result represents the solution surfaced by the search.
type Result struct {
	Candidate string
	Digest    string
	Nonce     uint64
	Worker    int
	Attempts  uint64
	Duration  time.Duration
}

// Candidate builds the string a client proposes for a transaction.
func Candidate(clientID uint64, txID uint64, nonce uint64) string {
	return fmt.Sprintf("%d-%d-%d", clientID, txID, nonce)
}

// Run starts the workers and blocks until one of them finds a candidate that
// meets the difficulty, or the context is cancelled. Only the first result is
// returned, any others are discarded.
func Run(ctx context.Context, cfg Config) (Result, error) {
	cfg = withDefaults(cfg)

	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	ev("search: Run: started: txid[%d]: difficulty[%d]: workers[%d]", cfg.TxID, cfg.Difficulty, cfg.Workers)
	defer ev("search: Run: completed")

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	// Cancelling this context is the signal for every worker to stop.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	base := startingNonce(cfg.Seed)

	var attempts atomic.Uint64
	found := make(chan Result, 1)
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	for i := range cfg.Workers {
		nonce := base + uint64(i)*cfg.Stride

		g.Go(func() error {
			var count uint64
			defer func() {
				attempts.Add(count)
			}()

			for {
				if ctx.Err() != nil {
					return nil
				}

				candidate := Candidate(cfg.ClientID, cfg.TxID, nonce)
				digest := cfg.Oracle.Digest(candidate)
				count++

				if pow.IsSolved(cfg.Difficulty, digest) {
					select {
					case found <- Result{Candidate: candidate, Digest: digest, Nonce: nonce, Worker: i}:
						ev("search: Run: SOLVED: worker[%d]: candidate[%s]: digest[%s]", i, candidate, digest)
					default:
					}
					cancel()
					return nil
				}

				nonce++
			}
		})
	}

	g.Wait()

	select {
	case res := <-found:
		res.Attempts = attempts.Load()
		res.Duration = time.Since(start)
		ev("search: Run: attempts[%d]: duration[%v]", res.Attempts, res.Duration)
		return res, nil

	default:
		ev("search: Run: CANCELLED: attempts[%d]", attempts.Load())
		return Result{}, ErrNotFound
	}
}

// =============================================================================

func withDefaults(cfg Config) Config {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Stride == 0 {
		cfg.Stride = DefaultStride
	}

	// The workers' starting nonces must fit in the room startingNonce
	// leaves, otherwise they wrap around and the ranges overlap.
	if limit := maxStride(cfg.Workers); cfg.Stride > limit {
		cfg.Stride = limit
	}
	if cfg.Oracle.Algorithm() == "" {
		cfg.Oracle = pow.Default
	}
	return cfg
}

// startingNonce chooses a random starting point for the nonces. A non-zero
// seed makes the starting point repeatable. The value leaves room for the
// workers' ranges before wrapping.
func startingNonce(seed uint64) uint64 {
	if seed != 0 {
		return rand.New(rand.NewPCG(seed, seed)).Uint64N(nonceLimit)
	}
	return rand.Uint64N(nonceLimit)
}

// maxStride is the largest stride that keeps every worker's starting nonce
// below the point where it would wrap.
func maxStride(workers int) uint64 {
	return (math.MaxUint64 - nonceLimit) / uint64(workers)
}
