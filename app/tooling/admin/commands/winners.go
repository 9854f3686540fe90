package commands

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/powcontest/foundation/contest/client"
	"github.com/ardanlabs/powcontest/foundation/contest/coordinator"
)

// Tally represents the number of transactions a client has won.
type Tally struct {
	ClientID int64
	Won      int
}

// Winners prints the number of transactions won by each client, optionally
// for a single client.
func Winners(ctx context.Context, args conf.Args, l Lister) error {
	txs, err := l.Transactions(ctx)
	if err != nil {
		return err
	}

	tallies := CountWins(txs)

	if s := args.Num(1); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("client %q: %w", s, err)
		}
		tallies = slices.DeleteFunc(tallies, func(t Tally) bool {
			return t.ClientID != id
		})
	}

	for _, t := range tallies {
		fmt.Printf("Client: %d  Won: %d\n", t.ClientID, t.Won)
	}

	return nil
}

// CountWins counts the solved transactions by winner, most wins first.
func CountWins(txs []client.Tx) []Tally {
	counts := make(map[int64]int)
	for _, tx := range txs {
		if tx.Status == coordinator.Solved.Code() {
			counts[tx.Winner]++
		}
	}

	tallies := make([]Tally, 0, len(counts))
	for id, n := range counts {
		tallies = append(tallies, Tally{ClientID: id, Won: n})
	}

	slices.SortFunc(tallies, func(a, b Tally) int {
		if a.Won != b.Won {
			return b.Won - a.Won
		}
		switch {
		case a.ClientID < b.ClientID:
			return -1
		case a.ClientID > b.ClientID:
			return 1
		}
		return 0
	})

	return tallies
}
