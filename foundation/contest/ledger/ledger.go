// Package ledger maintains the set of transactions and their puzzles for the
// mining contest. The ledger is the single owner of transaction state and
// every operation runs under one lock so reads and writes are atomic.
package ledger

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/ardanlabs/powcontest/foundation/contest/pow"
)

// Set of error variables for the ledger.
var (
	ErrNotFound          = errors.New("transaction not found")
	ErrInvalidDifficulty = errors.New("invalid difficulty")
)

// Default range for generated difficulties.
const (
	DefaultMinDifficulty = 1
	DefaultMaxDifficulty = 4
)

// EventHandler defines a function that is called when events
// occur in the processing of transactions.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to construct a ledger.
type Config struct {
	Oracle        pow.Oracle
	MinDifficulty int
	MaxDifficulty int
	EvHandler     EventHandler
}

// Ledger manages the transactions for the contest.
type Ledger struct {
	mu        sync.Mutex
	records   []Record
	firstOpen int
	oracle    pow.Oracle
	minDiff   int
	maxDiff   int
	evHandler EventHandler
}

// New constructs an empty ledger.
func New(cfg Config) (*Ledger, error) {
	if cfg.MinDifficulty == 0 {
		cfg.MinDifficulty = DefaultMinDifficulty
	}
	if cfg.MaxDifficulty == 0 {
		cfg.MaxDifficulty = DefaultMaxDifficulty
	}
	if cfg.Oracle.Algorithm() == "" {
		cfg.Oracle = pow.Default
	}

	// A difficulty longer than the digest can never be solved.
	if cfg.MinDifficulty < 1 || cfg.MaxDifficulty < cfg.MinDifficulty || cfg.MaxDifficulty > cfg.Oracle.Size() {
		return nil, fmt.Errorf("range %d..%d for %s: %w", cfg.MinDifficulty, cfg.MaxDifficulty, cfg.Oracle.Algorithm(), ErrInvalidDifficulty)
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	l := Ledger{
		oracle:    cfg.Oracle,
		minDiff:   cfg.MinDifficulty,
		maxDiff:   cfg.MaxDifficulty,
		evHandler: ev,
	}

	return &l, nil
}

// Oracle returns the oracle used to validate solutions.
func (l *Ledger) Oracle() pow.Oracle {
	return l.oracle
}

// Create adds a new unsolved transaction and returns its id. A difficulty of
// zero asks the ledger to pick one from its configured range.
func (l *Ledger) Create(difficulty int) (TxID, error) {
	if difficulty < 0 || difficulty > l.oracle.Size() {
		return 0, fmt.Errorf("difficulty %d for %s: %w", difficulty, l.oracle.Algorithm(), ErrInvalidDifficulty)
	}

	l.mu.Lock()
	id, difficulty := l.create(difficulty)
	l.mu.Unlock()

	l.evHandler("ledger: Create: NEW: txid[%d]: difficulty[%d]", id, difficulty)

	return id, nil
}

// Get returns a copy of the specified transaction.
func (l *Ledger) Get(id TxID) (Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, exists := l.lookup(id)
	if !exists {
		return Record{}, ErrNotFound
	}

	return *rec, nil
}

// LowestUnsolved returns the smallest id of a transaction that hasn't been
// solved yet.
func (l *Ledger) LowestUnsolved() (TxID, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.lowestUnsolved()
}

// LowestUnsolvedOrCreate returns the smallest unsolved id. If every known
// transaction is solved, a new one is created under the same lock. The bool
// reports if a transaction was created.
func (l *Ledger) LowestUnsolvedOrCreate() (TxID, bool) {
	l.mu.Lock()

	if id, exists := l.lowestUnsolved(); exists {
		l.mu.Unlock()
		return id, false
	}

	id, difficulty := l.create(0)
	l.mu.Unlock()

	l.evHandler("ledger: LowestUnsolvedOrCreate: NEW: txid[%d]: difficulty[%d]", id, difficulty)

	return id, true
}

// TrySolve attempts to solve the specified transaction on behalf of a client.
// The existence check, solved check, candidate validation and the update are
// performed as one unit, so only one client can ever win a transaction.
func (l *Ledger) TrySolve(id TxID, client ClientID, candidate string) Outcome {
	out := l.trySolve(id, client, candidate)

	// Events are emitted outside the lock since the handler may block.
	if out == Accepted {
		l.evHandler("ledger: TrySolve: SOLVED: txid[%d]: client[%d]: solution[%s]", id, client, candidate)
	}

	return out
}

// Records returns a copy of all the transactions in id order.
func (l *Ledger) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	recs := make([]Record, len(l.records))
	copy(recs, l.records)

	return recs
}

// Count returns the number of transactions in the ledger.
func (l *Ledger) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.records)
}

// =============================================================================

// trySolve performs the checks and update for TrySolve under the lock.
func (l *Ledger) trySolve(id TxID, client ClientID, candidate string) Outcome {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, exists := l.lookup(id)
	if !exists {
		return NotFound
	}

	if rec.Solved {
		return AlreadySolved
	}

	if !l.oracle.MeetsDifficulty(candidate, rec.Difficulty) {
		return Invalid
	}

	rec.Solution = candidate
	rec.Winner = client
	rec.Solved = true
	rec.SolvedAt = time.Now().UTC()

	return Accepted
}

// create appends a new transaction and returns its id and difficulty. The
// caller must hold the lock.
func (l *Ledger) create(difficulty int) (TxID, int) {
	if difficulty == 0 {
		difficulty = l.minDiff + rand.IntN(l.maxDiff-l.minDiff+1)
	}

	// Ids are the position in the slice, so they are assigned in order
	// starting at 0 and never reused.
	id := TxID(len(l.records))
	l.records = append(l.records, Record{
		ID:         id,
		Difficulty: difficulty,
		CreatedAt:  time.Now().UTC(),
	})

	return id, difficulty
}

// lookup returns a pointer to the stored transaction. The caller must hold
// the lock and never let the pointer escape.
func (l *Ledger) lookup(id TxID) (*Record, bool) {
	if id >= TxID(len(l.records)) {
		return nil, false
	}
	return &l.records[id], true
}

// lowestUnsolved scans forward from the first transaction that could still be
// open. Solved is permanent so the scan never has to look back. The caller
// must hold the lock.
func (l *Ledger) lowestUnsolved() (TxID, bool) {
	for l.firstOpen < len(l.records) {
		if !l.records[l.firstOpen].Solved {
			return TxID(l.firstOpen), true
		}
		l.firstOpen++
	}
	return 0, false
}
