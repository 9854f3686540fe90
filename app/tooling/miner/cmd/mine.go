package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/powcontest/foundation/contest/session"
	"github.com/ardanlabs/powcontest/foundation/logger"
	"github.com/spf13/cobra"
)

var (
	workers       int
	rounds        int
	retries       int
	searchTimeout time.Duration
	verbose       bool
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Mine transactions until the rounds are complete or interrupted.",
	Args:  cobra.NoArgs,
	RunE:  mineRun,
}

func init() {
	rootCmd.AddCommand(mineCmd)
	mineCmd.Flags().IntVarP(&workers, "workers", "w", 0, "Number of search goroutines, 0 uses every cpu.")
	mineCmd.Flags().IntVarP(&rounds, "rounds", "n", 1, "Number of rounds to mine, 0 mines until interrupted.")
	mineCmd.Flags().IntVar(&retries, "retries", 3, "Number of times a failed round is retried.")
	mineCmd.Flags().DurationVar(&searchTimeout, "search-timeout", 0, "Deadline for a single search, 0 waits forever.")
	mineCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log the mining events.")
}

func mineRun(cmd *cobra.Command, args []string) error {
	log, err := logger.New("MINER", "stderr")
	if err != nil {
		return err
	}
	defer log.Sync()

	c, release, err := connect()
	if err != nil {
		return err
	}
	defer release()

	ev := func(v string, args ...any) {
		if verbose {
			log.Infow(fmt.Sprintf(v, args...), "client", clientID)
		}
	}

	d, err := session.New(session.Config{
		Client:    c,
		ClientID:  clientID,
		Workers:   workers,
		Timeout:   searchTimeout,
		Retries:   retries,
		EvHandler: ev,
	})
	if err != nil {
		return err
	}

	// An interrupt cancels the running search and ends mining immediately.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reports, err := d.Run(ctx, rounds)
	for _, rpt := range reports {
		fmt.Printf("txid: %d difficulty: %d candidate: %q outcome: %s attempts: %d duration: %v\n",
			rpt.TxID, rpt.Difficulty, rpt.Candidate, rpt.Outcome(), rpt.Attempts, rpt.Duration)
	}

	var won int
	for _, rpt := range reports {
		if rpt.Won() {
			won++
		}
	}
	fmt.Printf("rounds: %d won: %d\n", len(reports), won)

	if err != nil {
		log.Errorw("mine", "ERROR", err)
		return err
	}

	return nil
}
