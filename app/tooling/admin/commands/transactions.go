// Package commands contains the functionality for the set of commands
// currently supported by the admin tool.
package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/powcontest/foundation/contest/client"
	"github.com/ardanlabs/powcontest/foundation/contest/coordinator"
)

// ErrHelp provides context that help was given.
var ErrHelp = errors.New("provided help")

// Lister is the behavior needed to read the transactions.
type Lister interface {
	Transactions(ctx context.Context) ([]client.Tx, error)
}

// Transactions prints the transactions, optionally only those that are
// open or solved.
func Transactions(ctx context.Context, args conf.Args, l Lister) error {
	txs, err := l.Transactions(ctx)
	if err != nil {
		return err
	}

	filter := args.Num(1)

	for _, tx := range filterTxs(txs, filter) {
		switch tx.Status {
		case coordinator.Solved.Code():
			fmt.Printf("TxID: %d  Difficulty: %d  Winner: %d  Solution: %s  Solved: %s\n",
				tx.TxID, tx.Difficulty, tx.Winner, tx.Solution, tx.SolvedAt.Sub(tx.CreatedAt))
		default:
			fmt.Printf("TxID: %d  Difficulty: %d  Open since: %s\n",
				tx.TxID, tx.Difficulty, tx.CreatedAt.Format("2006-01-02 15:04:05"))
		}
	}

	return nil
}

func filterTxs(txs []client.Tx, filter string) []client.Tx {
	var status int
	switch filter {
	case "open":
		status = coordinator.Pending.Code()
	case "solved":
		status = coordinator.Solved.Code()
	default:
		return txs
	}

	var out []client.Tx
	for _, tx := range txs {
		if tx.Status == status {
			out = append(out, tx)
		}
	}
	return out
}
