package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ardanlabs/powcontest/foundation/contest/ledger"
	"github.com/ardanlabs/powcontest/foundation/contest/session"
	"github.com/spf13/cobra"
)

var assignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Print the transaction to work on.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(func(ctx context.Context, c session.Client) error {
			txID, err := c.Assign(ctx)
			if err != nil {
				return err
			}
			fmt.Println("txid:", txID)
			return nil
		})
	},
}

var challengeCmd = &cobra.Command{
	Use:   "challenge <txid>",
	Short: "Print the difficulty of a transaction.",
	Args:  cobra.ExactArgs(1),
	RunE: withTxID(func(ctx context.Context, c session.Client, txID uint64) error {
		ch, err := c.Challenge(ctx, txID)
		if err != nil {
			return err
		}
		fmt.Printf("txid: %d difficulty: %d algorithm: %s\n", ch.TxID, ch.Difficulty, ch.Algorithm)
		return nil
	}),
}

var statusCmd = &cobra.Command{
	Use:   "status <txid>",
	Short: "Print the state of a transaction.",
	Args:  cobra.ExactArgs(1),
	RunE: withTxID(func(ctx context.Context, c session.Client, txID uint64) error {
		st, err := c.Status(ctx, txID)
		if err != nil {
			return err
		}
		fmt.Printf("txid: %d status: %d\n", txID, st)
		return nil
	}),
}

var winnerCmd = &cobra.Command{
	Use:   "winner <txid>",
	Short: "Print the client that solved a transaction.",
	Args:  cobra.ExactArgs(1),
	RunE: withTxID(func(ctx context.Context, c session.Client, txID uint64) error {
		w, err := c.Winner(ctx, txID)
		if err != nil {
			return err
		}
		fmt.Printf("txid: %d winner: %d\n", txID, w)
		return nil
	}),
}

var solutionCmd = &cobra.Command{
	Use:   "solution <txid>",
	Short: "Print the puzzle and solution of a transaction.",
	Args:  cobra.ExactArgs(1),
	RunE: withTxID(func(ctx context.Context, c session.Client, txID uint64) error {
		sol, err := c.Solution(ctx, txID)
		if err != nil {
			return err
		}
		fmt.Printf("txid: %d status: %d difficulty: %d solution: %q\n", sol.TxID, sol.Status, sol.Difficulty, sol.Solution)
		return nil
	}),
}

var submitCmd = &cobra.Command{
	Use:   "submit <txid> <solution>",
	Short: "Submit a candidate solution for a transaction.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		txID, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("txid %q: %w", args[0], err)
		}

		return call(func(ctx context.Context, c session.Client) error {
			result, err := c.Submit(ctx, txID, clientID, args[1])
			if err != nil {
				return err
			}
			fmt.Printf("txid: %d result: %d (%s)\n", txID, result, ledger.OutcomeFromCode(result))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(assignCmd)
	rootCmd.AddCommand(challengeCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(winnerCmd)
	rootCmd.AddCommand(solutionCmd)
	rootCmd.AddCommand(submitCmd)
}

// call connects to the coordinator and runs f under the call timeout.
func call(f func(ctx context.Context, c session.Client) error) error {
	c, release, err := connect()
	if err != nil {
		return err
	}
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return f(ctx, c)
}

// withTxID parses the txid argument before making the call.
func withTxID(f func(ctx context.Context, c session.Client, txID uint64) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		txID, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("txid %q: %w", args[0], err)
		}

		return call(func(ctx context.Context, c session.Client) error {
			return f(ctx, c, txID)
		})
	}
}
