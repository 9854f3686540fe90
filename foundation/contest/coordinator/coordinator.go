// Package coordinator is the core API for the mining contest. It hands out
// transactions, answers questions about them and arbitrates submissions. All
// transaction state lives in the ledger it is constructed with.
package coordinator

import (
	"fmt"

	"github.com/ardanlabs/powcontest/foundation/contest/ledger"
	"github.com/prometheus/client_golang/prometheus"
)

// EventHandler defines a function that is called when events
// occur in the processing of requests.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to start the coordinator.
type Config struct {
	Ledger            *ledger.Ledger
	GenesisDifficulty int
	Registerer        prometheus.Registerer
	EvHandler         EventHandler
}

// Coordinator provides the contest operations on top of a ledger.
type Coordinator struct {
	ledger    *ledger.Ledger
	metrics   *metrics
	evHandler EventHandler
}

// New constructs a coordinator and creates the first transaction (txid 0).
func New(cfg Config) (*Coordinator, error) {
	if cfg.Ledger == nil {
		return nil, fmt.Errorf("ledger is required")
	}

	// A genesis puzzle longer than the digest could never be solved.
	if size := cfg.Ledger.Oracle().Size(); cfg.GenesisDifficulty < 0 || cfg.GenesisDifficulty > size {
		return nil, fmt.Errorf("genesis difficulty %d outside 0..%d: %w", cfg.GenesisDifficulty, size, ledger.ErrInvalidDifficulty)
	}

	// Metrics go into a private registry unless the application
	// wants them exposed.
	if cfg.Registerer == nil {
		cfg.Registerer = prometheus.NewRegistry()
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	c := Coordinator{
		ledger:    cfg.Ledger,
		metrics:   newMetrics(cfg.Registerer),
		evHandler: ev,
	}

	id, err := c.ledger.Create(cfg.GenesisDifficulty)
	if err != nil {
		return nil, fmt.Errorf("creating genesis transaction: %w", err)
	}
	c.metrics.created.Inc()
	c.metrics.open.Inc()

	c.evHandler("coordinator: New: genesis txid[%d]", id)

	return &c, nil
}

// Assign returns the lowest unsolved transaction. When every transaction has
// been solved, a new one is created and returned.
func (c *Coordinator) Assign() ledger.TxID {
	id, created := c.ledger.LowestUnsolvedOrCreate()
	if created {
		c.metrics.created.Inc()
		c.metrics.open.Inc()
		c.evHandler("coordinator: Assign: created txid[%d]", id)
	}

	return id
}

// Challenge returns the difficulty of the specified transaction. The bool is
// false when the transaction is unknown.
func (c *Coordinator) Challenge(id ledger.TxID) (int, bool) {
	rec, err := c.ledger.Get(id)
	if err != nil {
		return -1, false
	}

	return rec.Difficulty, true
}

// Status returns the state of the specified transaction.
func (c *Coordinator) Status(id ledger.TxID) Status {
	rec, err := c.ledger.Get(id)
	if err != nil {
		return Unknown
	}

	return statusOf(rec)
}

// Submit validates a client's candidate for the specified transaction. When
// the candidate is accepted, the next transaction is created before
// returning so there is always a puzzle to work on.
func (c *Coordinator) Submit(id ledger.TxID, client ledger.ClientID, candidate string) ledger.Outcome {
	out := c.ledger.TrySolve(id, client, candidate)
	c.metrics.submissions.WithLabelValues(out.String()).Inc()

	c.evHandler("coordinator: Submit: txid[%d]: client[%d]: outcome[%s]", id, client, out)

	if out != ledger.Accepted {
		return out
	}

	c.metrics.open.Dec()
	if rec, err := c.ledger.Get(id); err == nil {
		c.metrics.timeToSolve.Observe(rec.SolvedAt.Sub(rec.CreatedAt).Seconds())
	}

	next, err := c.ledger.Create(0)
	if err != nil {
		c.evHandler("coordinator: Submit: ERROR: creating next transaction: %s", err)
		return out
	}
	c.metrics.created.Inc()
	c.metrics.open.Inc()

	c.evHandler("coordinator: Submit: WINNER: txid[%d]: client[%d]: next txid[%d]", id, client, next)

	return out
}

// WinnerOf returns who solved the specified transaction.
func (c *Coordinator) WinnerOf(id ledger.TxID) Winner {
	rec, err := c.ledger.Get(id)
	if err != nil {
		return Winner{Status: Unknown}
	}

	if !rec.Solved {
		return Winner{Status: Pending}
	}

	return Winner{Status: Solved, ClientID: rec.Winner}
}

// SolutionOf returns the puzzle and solution details for the specified
// transaction.
func (c *Coordinator) SolutionOf(id ledger.TxID) SolutionInfo {
	rec, err := c.ledger.Get(id)
	if err != nil {
		return SolutionInfo{Status: Unknown, Difficulty: -1}
	}

	return SolutionInfo{
		Status:     statusOf(rec),
		Difficulty: rec.Difficulty,
		Solution:   rec.Solution,
	}
}

// Transactions returns a copy of every transaction known to the coordinator.
func (c *Coordinator) Transactions() []ledger.Record {
	return c.ledger.Records()
}

// Algorithm returns the name of the hash algorithm used to validate
// solutions.
func (c *Coordinator) Algorithm() string {
	return c.ledger.Oracle().Algorithm()
}

// =============================================================================

func statusOf(rec ledger.Record) Status {
	if rec.Solved {
		return Solved
	}
	return Pending
}
