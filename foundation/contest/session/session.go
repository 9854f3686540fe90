// Package session drives a client through a round of the mining contest:
// ask for a transaction, fetch its challenge, search for a solution and
// submit it.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ardanlabs/powcontest/foundation/contest/ledger"
	"github.com/ardanlabs/powcontest/foundation/contest/pow"
	"github.com/ardanlabs/powcontest/foundation/contest/search"
)

// ErrInvalidChallenge is returned when the coordinator hands back a
// challenge that can't be mined.
var ErrInvalidChallenge = errors.New("invalid challenge")

// Challenge represents the puzzle for a transaction.
type Challenge struct {
	TxID       uint64 `json:"txid"`
	Difficulty int    `json:"difficulty"`
	Algorithm  string `json:"algorithm"`
}

// Solution represents the solution details for a transaction.
type Solution struct {
	TxID       uint64 `json:"txid"`
	Status     int    `json:"status"`
	Difficulty int    `json:"difficulty"`
	Solution   string `json:"solution"`
}

// Client represents the set of coordinator operations a client can call.
// Values are the wire values, errors are reserved for transport failures.
type Client interface {
	Assign(ctx context.Context) (uint64, error)
	Challenge(ctx context.Context, txID uint64) (Challenge, error)
	Status(ctx context.Context, txID uint64) (int, error)
	Submit(ctx context.Context, txID uint64, clientID uint64, candidate string) (int, error)
	Winner(ctx context.Context, txID uint64) (int64, error)
	Solution(ctx context.Context, txID uint64) (Solution, error)
}

// EventHandler defines a function that is called when events
// occur during a session.
type EventHandler func(v string, args ...any)

// Config represents the configuration for a driver.
type Config struct {
	Client     Client
	ClientID   uint64
	Workers    int
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
	EvHandler  EventHandler
}

// Report describes the result of one round of mining.
type Report struct {
	TxID       uint64
	Difficulty int
	Candidate  string
	Result     int
	Attempts   uint64
	Duration   time.Duration
}

// Outcome returns the meaning of the submit result.
func (r Report) Outcome() ledger.Outcome {
	return ledger.OutcomeFromCode(r.Result)
}

// Won reports if this client won the transaction.
func (r Report) Won() bool {
	return r.Outcome() == ledger.Accepted
}

// Driver runs mining rounds for a single client. Rounds run one at a time.
type Driver struct {
	client     Client
	clientID   uint64
	workers    int
	timeout    time.Duration
	retries    int
	retryDelay time.Duration
	evHandler  EventHandler
}

// New constructs a driver.
func New(cfg Config) (*Driver, error) {
	if cfg.Client == nil {
		return nil, errors.New("client is required")
	}

	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	d := Driver{
		client:     cfg.Client,
		clientID:   cfg.ClientID,
		workers:    cfg.Workers,
		timeout:    cfg.Timeout,
		retries:    cfg.Retries,
		retryDelay: cfg.RetryDelay,
		evHandler:  ev,
	}

	return &d, nil
}

// Mine performs a single round: assign, challenge, search and submit.
func (d *Driver) Mine(ctx context.Context) (Report, error) {
	d.evHandler("session: Mine: started: client[%d]", d.clientID)
	defer d.evHandler("session: Mine: completed: client[%d]", d.clientID)

	txID, err := d.client.Assign(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("assign: %w", err)
	}

	ch, err := d.client.Challenge(ctx, txID)
	if err != nil {
		return Report{}, fmt.Errorf("challenge: %w", err)
	}

	if ch.Difficulty <= 0 {
		return Report{}, fmt.Errorf("txid %d difficulty %d: %w", txID, ch.Difficulty, ErrInvalidChallenge)
	}

	oracle, err := pow.New(ch.Algorithm)
	if err != nil {
		return Report{}, fmt.Errorf("txid %d: %w", txID, err)
	}

	d.evHandler("session: Mine: txid[%d]: difficulty[%d]: algorithm[%s]", txID, ch.Difficulty, oracle.Algorithm())

	res, err := search.Run(ctx, search.Config{
		TxID:       txID,
		ClientID:   d.clientID,
		Difficulty: ch.Difficulty,
		Workers:    d.workers,
		Oracle:     oracle,
		Timeout:    d.timeout,
		EvHandler:  search.EventHandler(d.evHandler),
	})
	if err != nil {
		return Report{}, fmt.Errorf("txid %d: %w", txID, err)
	}

	result, err := d.client.Submit(ctx, txID, d.clientID, res.Candidate)
	if err != nil {
		return Report{}, fmt.Errorf("submit: %w", err)
	}

	rpt := Report{
		TxID:       txID,
		Difficulty: ch.Difficulty,
		Candidate:  res.Candidate,
		Result:     result,
		Attempts:   res.Attempts,
		Duration:   res.Duration,
	}

	d.evHandler("session: Mine: txid[%d]: candidate[%s]: outcome[%s]", txID, res.Candidate, rpt.Outcome())

	return rpt, nil
}

// Run performs the specified number of rounds, or runs until the context is
// cancelled when rounds is zero. Transport failures are retried up to the
// configured number of times before giving up.
func (d *Driver) Run(ctx context.Context, rounds int) ([]Report, error) {
	var reports []Report

	for round := 0; rounds == 0 || round < rounds; round++ {
		var rpt Report
		var err error

		for attempt := 0; ; attempt++ {
			rpt, err = d.Mine(ctx)
			if err == nil || !retryable(err) || attempt >= d.retries || ctx.Err() != nil {
				break
			}

			d.evHandler("session: Run: round[%d]: attempt[%d]: RETRY: %s", round, attempt, err)

			select {
			case <-time.After(d.retryDelay):
			case <-ctx.Done():
			}
		}

		if err != nil {
			if ctx.Err() != nil {
				return reports, nil
			}
			return reports, err
		}

		reports = append(reports, rpt)
	}

	return reports, nil
}

// retryable decides if a failed round is worth trying again. Local failures
// won't change by trying again.
func retryable(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidChallenge),
		errors.Is(err, pow.ErrUnknownAlgorithm):
		return false
	}
	return true
}
